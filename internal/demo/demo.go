// Package demo holds the sample applications run by the vtree CLI.
package demo

import (
	"io"
	"log/slog"
	"strings"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// App is a runnable sample.
type App struct {
	Name        string
	Description string
	// New builds the app's root element. Components log their lifecycle to
	// logger at Debug.
	New func(logger *slog.Logger) *vdom.Element
}

var apps = []App{
	{
		Name:        "counter",
		Description: "A greeting, a counter and a button that increments it",
		New: func(logger *slog.Logger) *vdom.Element {
			return vdom.Comp(CounterType, vdom.Props{"logger": logger})
		},
	},
	{
		Name:        "todo",
		Description: "A todo list with an input, toggles and removal",
		New: func(logger *slog.Logger) *vdom.Element {
			return vdom.Comp(TodoType, vdom.Props{"logger": logger, "title": "Todo"})
		},
	},
}

// Apps returns the registered apps in display order.
func Apps() []App {
	return append([]App(nil), apps...)
}

// Names returns the app names.
func Names() []string {
	names := make([]string, len(apps))
	for i, a := range apps {
		names[i] = a.Name
	}
	return names
}

// Lookup finds an app by name.
func Lookup(name string) (App, error) {
	for _, a := range apps {
		if a.Name == name {
			return a, nil
		}
	}
	return App{}, errors.New(errors.CLIUnknownApp).
		WithDetailf("No app named %q. Available: %s.", name, strings.Join(Names(), ", "))
}

func loggerFrom(props vdom.Props) *slog.Logger {
	if l, ok := props["logger"].(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
