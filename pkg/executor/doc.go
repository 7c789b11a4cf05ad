// Package executor implements the safe-execution bracket: begin a
// transaction, acquire a shared capability lease over the operation's
// resource, run the caller's function, record the attempt in the
// audit tracer, then commit or abort.
//
// Every mutating or reading entry point that touches capability-gated
// state should go through ExecuteSafe rather than calling pkg/graph or
// pkg/cas directly, so every state change passes through one audited
// dispatch point.
package executor
