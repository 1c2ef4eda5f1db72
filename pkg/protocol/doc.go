// Package protocol implements the binary wire protocol that mirrors a host
// tree across a connection.
//
// A server renders into a recording host and ships every host operation it
// receives, in order, as a batch. A replica applies the batch to its own
// tree and sends user events back addressed by node ID. Handlers never leave
// the server; a listener operation only tells the replica which events a
// node is interested in.
//
// # Wire Format
//
// All messages are framed with a 6-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Flags        │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (4 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameHello (0x00): Server → Client session setup
//   - FrameEvent (0x01): Client → Server events
//   - FrameOps (0x02): Server → Client host operation batches
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: node IDs, sequence numbers and counts (protobuf-style)
//   - ZigZag: signed attribute values
//   - Length-prefixed: strings
//   - Tagged: attribute values carry a one-byte kind
package protocol
