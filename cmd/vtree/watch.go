package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/protocol"
	"github.com/vango-dev/vtree/pkg/remote"
	"github.com/vango-dev/vtree/pkg/snapshot"
)

func watchCmd(g *globalFlags) *cobra.Command {
	var (
		format string
		count  int
		click  string
	)

	cmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "Mirror a served app and print every update",
		Long: `Connect to a vtree server as a replica and print the mirrored tree after
every batch of host operations.

--click raises a click on the first element with the given tag once the
initial tree has arrived, which is handy for smoke tests.

Examples:
  vtree watch
  vtree watch ws://localhost:8080/ws --format html
  vtree watch --click button --count 2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			url := "ws://" + cfg.Serve.Addr + cfg.Serve.Path
			if len(args) == 1 {
				url = args[0]
			}
			show, err := treePrinter(format)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			logger := cfg.Log.NewLogger(cmd.ErrOrStderr())
			c, err := remote.Dial(dialCtx, url, remote.WithClientLogger(logger))
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			success(out, "Connected to %s (session %s)", url, c.Session())
			for received := 0; count == 0 || received < count; {
				batch, err := c.Next(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					var em *protocol.ErrorMessage
					if stderrors.As(err, &em) && !em.Fatal {
						info(out, "server: %s", em.Message)
						continue
					}
					return err
				}
				received++
				fmt.Fprintf(out, "# batch %d (%d ops)\n", batch.Seq, len(batch.Ops))
				show(out, c)

				if received == 1 && click != "" {
					target := memhost.Find(c.Container(), memhost.ByTag(click))
					if target == nil {
						return errors.New(errors.ProtocolUnknownNode).
							WithDetailf("No <%s> in the mirrored tree.", click)
					}
					if err := c.Send(target, "click", ""); err != nil {
						return err
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "outline", "Output format: outline, html or text")
	cmd.Flags().IntVarP(&count, "count", "n", 0, "Stop after this many batches (0 = until interrupted)")
	cmd.Flags().StringVar(&click, "click", "", "Click the first element with this tag after the initial tree")

	return cmd
}

func treePrinter(format string) (func(io.Writer, *remote.Client), error) {
	switch format {
	case "outline":
		return func(w io.Writer, c *remote.Client) {
			fmt.Fprint(w, snapshot.Take("", c.Container()).Outline())
		}, nil
	case "html":
		return func(w io.Writer, c *remote.Client) {
			fmt.Fprintln(w, c.Document().HTML(c.Container()))
		}, nil
	case "text":
		return func(w io.Writer, c *remote.Client) {
			fmt.Fprintln(w, memhost.TextContent(c.Container()))
		}, nil
	}
	return nil, errors.New(errors.ConfigInvalid).
		WithDetailf("--format must be outline, html or text, got %q.", format)
}
