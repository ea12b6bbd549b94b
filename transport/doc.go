// Package transport provides the byte-level serial link used to talk to an
// IGM401 gauge module.
//
// The link is half-duplex RS485 at a fixed 19200 baud. A Transport performs
// exactly two blocking operations, Send and Receive, each bounded by the
// configured read timeout (0.5s by default). It never retries: every failure
// is returned to the caller, classified by one of the sentinel errors
// ErrConnection, ErrTimeout or ErrIO.
//
// A Transport is NOT goroutine-safe. Only one command/response exchange may be
// in flight on a link at a time, and the caller owning the Transport is
// responsible for that discipline.
package transport
