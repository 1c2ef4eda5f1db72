// Package snapshot captures memhost trees as serializable values and stores
// them on disk or in S3.
//
//	snap := snapshot.Take("counter", container)
//	store, _ := snapshot.NewFileStore("snapshots", snapshot.FormatJSON)
//	err := store.Save(ctx, snap)
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/vdom"
)

// Version is written into every snapshot.
const Version = 1

// Format selects the snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML:
		return Format(s), nil
	}
	return "", errors.New(errors.SnapshotCodec).WithDetailf("Unknown snapshot format %q.", s)
}

// Ext returns the file extension, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// ContentType returns the MIME type used when storing objects.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Snapshot is a point-in-time copy of a host subtree.
type Snapshot struct {
	Version int       `json:"version" yaml:"version"`
	Name    string    `json:"name" yaml:"name"`
	Taken   time.Time `json:"taken" yaml:"taken"`
	Root    *Node     `json:"root" yaml:"root"`
}

// Node is one captured host node. Attribute values are stored in their
// display form; listeners are reduced to their event names.
type Node struct {
	ID       uint64            `json:"id" yaml:"id"`
	Tag      string            `json:"tag" yaml:"tag"`
	Text     string            `json:"text,omitempty" yaml:"text,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty" yaml:"attrs,omitempty"`
	Events   []string          `json:"events,omitempty" yaml:"events,omitempty"`
	Children []*Node           `json:"children,omitempty" yaml:"children,omitempty"`
}

// Take captures the subtree rooted at root.
func Take(name string, root *memhost.Node) *Snapshot {
	return &Snapshot{
		Version: Version,
		Name:    name,
		Taken:   time.Now().UTC().Truncate(time.Second),
		Root:    capture(root),
	}
}

func capture(n *memhost.Node) *Node {
	out := &Node{ID: n.ID(), Tag: n.Tag()}
	if n.IsText() {
		out.Text = n.Value()
	} else {
		for name, v := range n.Attrs() {
			if out.Attrs == nil {
				out.Attrs = make(map[string]string)
			}
			out.Attrs[name] = memhost.FormatValue(v)
		}
		if events := n.Events(); len(events) > 0 {
			out.Events = events
		}
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, capture(c))
	}
	return out
}

// Encode serializes s.
func (s *Snapshot) Encode(format Format) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(s)
		if err == nil {
			err = enc.Close()
		}
		data = buf.Bytes()
	default:
		_, err = ParseFormat(string(format))
		return nil, err
	}
	if err != nil {
		return nil, errors.New(errors.SnapshotCodec).Wrap(err)
	}
	return data, nil
}

// Decode parses a snapshot encoded by Encode.
func Decode(data []byte, format Format) (*Snapshot, error) {
	var s Snapshot
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &s)
	case FormatYAML:
		err = yaml.Unmarshal(data, &s)
	default:
		_, err = ParseFormat(string(format))
		return nil, err
	}
	if err != nil {
		return nil, errors.New(errors.SnapshotCodec).Wrap(err)
	}
	if s.Version != Version {
		return nil, errors.New(errors.SnapshotCodec).
			WithDetailf("Unsupported snapshot version %d.", s.Version)
	}
	if s.Root == nil {
		return nil, errors.New(errors.SnapshotCodec).WithDetail("Snapshot has no root node.")
	}
	return &s, nil
}

// Outline renders the tree one node per line, indented by depth:
//
//	<root>
//	  <div class="a">
//	    "Hello World!"
func (s *Snapshot) Outline() string {
	var sb strings.Builder
	outline(&sb, s.Root, 0)
	return sb.String()
}

func outline(sb *strings.Builder, n *Node, depth int) {
	if n == nil {
		return
	}
	sb.WriteString(strings.Repeat("  ", depth))
	if n.Tag == memhost.TextTag {
		fmt.Fprintf(sb, "%q\n", n.Text)
		return
	}
	sb.WriteString("<" + n.Tag)
	for _, name := range slices.Sorted(maps.Keys(n.Attrs)) {
		fmt.Fprintf(sb, " %s=%q", name, n.Attrs[name])
	}
	sb.WriteString(">")
	for _, ev := range n.Events {
		sb.WriteString(" " + vdom.ListenerPrefix + ev)
	}
	sb.WriteString("\n")
	for _, c := range n.Children {
		outline(sb, c, depth+1)
	}
}

// Diff lists the structural differences between two trees, ignoring node
// IDs. Each entry is prefixed with the child-index path of the node, e.g.
// "/0/2: tag div != span". A nil result means the trees are equal.
func Diff(a, b *Node) []string {
	var out []string
	diff(&out, "", a, b)
	return out
}

func diff(out *[]string, path string, a, b *Node) {
	at := path
	if at == "" {
		at = "/"
	}
	switch {
	case a == nil && b == nil:
		return
	case a == nil:
		*out = append(*out, fmt.Sprintf("%s: added <%s>", at, b.Tag))
		return
	case b == nil:
		*out = append(*out, fmt.Sprintf("%s: removed <%s>", at, a.Tag))
		return
	case a.Tag != b.Tag:
		*out = append(*out, fmt.Sprintf("%s: tag %s != %s", at, a.Tag, b.Tag))
		return
	}
	if a.Text != b.Text {
		*out = append(*out, fmt.Sprintf("%s: text %q != %q", at, a.Text, b.Text))
	}
	if !maps.Equal(a.Attrs, b.Attrs) {
		*out = append(*out, fmt.Sprintf("%s: attrs %v != %v", at, a.Attrs, b.Attrs))
	}
	if !slices.Equal(a.Events, b.Events) {
		*out = append(*out, fmt.Sprintf("%s: events %v != %v", at, a.Events, b.Events))
	}
	for i := range max(len(a.Children), len(b.Children)) {
		var ac, bc *Node
		if i < len(a.Children) {
			ac = a.Children[i]
		}
		if i < len(b.Children) {
			bc = b.Children[i]
		}
		diff(out, fmt.Sprintf("%s/%d", path, i), ac, bc)
	}
}
