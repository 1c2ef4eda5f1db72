package remote

import (
	"github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/memhost"
	"github.com/vango-dev/vtree/pkg/protocol"
)

// Replica mirrors a server tree into a local document by applying op
// batches. Local node IDs differ from the server's; the replica keeps the
// mapping in both directions.
//
// Listeners are registered with the event name as the handler, so local
// dispatch does nothing. Events are sent to the server instead.
type Replica struct {
	doc       *memhost.Document
	container *memhost.Node
	toLocal   map[uint64]*memhost.Node
	toServer  map[uint64]uint64
	lastSeq   uint64
}

// NewReplica creates a replica whose container stands in for the server
// node serverContainer.
func NewReplica(serverContainer uint64) *Replica {
	doc := memhost.New()
	r := &Replica{
		doc:       doc,
		container: doc.NewContainer("root"),
		toLocal:   make(map[uint64]*memhost.Node),
		toServer:  make(map[uint64]uint64),
	}
	r.bind(serverContainer, r.container)
	return r
}

// Document returns the local document.
func (r *Replica) Document() *memhost.Document { return r.doc }

// Container returns the local container.
func (r *Replica) Container() *memhost.Node { return r.container }

// LastSeq returns the sequence number of the last applied batch.
func (r *Replica) LastSeq() uint64 { return r.lastSeq }

// ServerID returns the server ID of a local node. Nodes of other documents
// are not found.
func (r *Replica) ServerID(n *memhost.Node) (uint64, bool) {
	id, ok := r.toServer[n.ID()]
	if !ok || r.toLocal[id] != n {
		return 0, false
	}
	return id, true
}

// Node returns the local node for a server ID.
func (r *Replica) Node(serverID uint64) *memhost.Node {
	return r.toLocal[serverID]
}

func (r *Replica) bind(serverID uint64, n *memhost.Node) {
	r.toLocal[serverID] = n
	r.toServer[n.ID()] = serverID
}

func (r *Replica) unbind(n *memhost.Node) {
	if sid, ok := r.toServer[n.ID()]; ok {
		delete(r.toLocal, sid)
		delete(r.toServer, n.ID())
	}
	for _, c := range n.Children() {
		r.unbind(c)
	}
}

func (r *Replica) lookup(serverID uint64) (*memhost.Node, error) {
	n := r.toLocal[serverID]
	if n == nil {
		return nil, errors.New(errors.ProtocolUnknownNode).WithDetailf("Node #%d is not in the replica.", serverID)
	}
	return n, nil
}

// Apply applies a batch in order. Batches must arrive with consecutive
// sequence numbers. An error leaves the ops before the failing one applied.
func (r *Replica) Apply(b *protocol.Batch) error {
	if b.Seq != r.lastSeq+1 {
		return errors.New(errors.ProtocolMalformed).
			WithDetailf("Batch %d arrived after %d.", b.Seq, r.lastSeq)
	}
	for i := range b.Ops {
		if err := r.apply(&b.Ops[i]); err != nil {
			return err
		}
	}
	r.lastSeq = b.Seq
	return nil
}

func (r *Replica) apply(op *protocol.HostOp) error {
	switch op.Kind {
	case protocol.OpCreateElement:
		if r.toLocal[op.Node] != nil {
			return errors.New(errors.ProtocolMalformed).WithDetailf("Node #%d created twice.", op.Node)
		}
		r.bind(op.Node, r.doc.CreateElement(op.Name).(*memhost.Node))
		return nil

	case protocol.OpCreateText:
		if r.toLocal[op.Node] != nil {
			return errors.New(errors.ProtocolMalformed).WithDetailf("Node #%d created twice.", op.Node)
		}
		r.bind(op.Node, r.doc.CreateText().(*memhost.Node))
		return nil
	}

	n, err := r.lookup(op.Node)
	if err != nil {
		return err
	}

	switch op.Kind {
	case protocol.OpAppendChild:
		p, err := r.lookup(op.Parent)
		if err != nil {
			return err
		}
		r.doc.AppendChild(p, n)

	case protocol.OpRemoveChild:
		p, err := r.lookup(op.Parent)
		if err != nil {
			return err
		}
		if n.Parent() != p {
			return errors.New(errors.ProtocolMalformed).
				WithDetailf("Node #%d is not a child of #%d.", op.Node, op.Parent)
		}
		r.unbind(n)
		r.doc.RemoveChild(p, n)

	case protocol.OpReplaceChild:
		p, err := r.lookup(op.Parent)
		if err != nil {
			return err
		}
		old, err := r.lookup(op.Old)
		if err != nil {
			return err
		}
		if old.Parent() != p {
			return errors.New(errors.ProtocolMalformed).
				WithDetailf("Node #%d is not a child of #%d.", op.Old, op.Parent)
		}
		r.unbind(old)
		r.doc.ReplaceChild(p, n, old)

	case protocol.OpSetAttribute:
		r.doc.SetAttribute(n, op.Name, op.Value)

	case protocol.OpClearAttribute:
		r.doc.ClearAttribute(n, op.Name)

	case protocol.OpAddListener:
		r.doc.AddListener(n, op.Name, op.Name)

	case protocol.OpRemoveListener:
		r.doc.RemoveListener(n, op.Name, op.Name)

	default:
		return errors.New(errors.ProtocolMalformed).WithDetailf("Unknown op kind %d.", op.Kind)
	}
	return nil
}
