// Package rpc is the client side of the channel to the corral daemon.
//
// Every daemon operation is a server-streaming gRPC call: the client sends
// one request message and receives zero or more replies followed by a
// terminal status. Intermediate replies may carry daemon log lines, which
// are forwarded to the configured log writer. Messages are the plain Go
// structs in api/v1alpha1, encoded with a deterministic CBOR codec
// registered under the "cbor" content subtype.
//
// Failures are gRPC status errors. Classify reduces them to the outcomes
// the command layer reasons about, and InstanceErrors decodes the
// per-instance error map the daemon attaches to Aborted statuses.
package rpc
