// Package native describes the engine's binary contract in Go terms.
//
// The engine talks to extensions only through the call tables defined here
// (Io, Archiver, Allocator), opaque Tokens and integer status codes. Field
// order follows the engine headers. Nothing in this package holds managed
// objects; adapters in the stream, archiver and alloc packages fill the
// tables with fixed entry points that resolve tokens on every call.
//
// # Status codes
//
// ErrorCode values 0 through 29 are produced by the engine. ErrFault is
// reserved by the bridge and is outside that range: when the engine reports
// it, a managed failure waits in the fault channel for the calling thread.
//
// # Error slot
//
// The engine keeps its last error code per thread. ErrorState models that
// slot; ThreadErrors is the in-process implementation keyed by OS thread.
package native
