// Package archiver exposes Go archive formats to the engine.
//
// New turns a physfs.Archiver into the engine's archiver call table. When
// the engine probes a file, OpenArchive reports one of three outcomes:
//
//   - opened: the archive is registered, owns the stream and its token is returned
//   - not this format (physfs.ErrUnrecognized): not claimed, no fault
//   - this format but unusable: claimed, the error parked in the fault channel
//
// Every other entry point resolves the archive by its token. Missing entries
// and unsupported open modes are reported with the engine's own codes
// (native.ErrNotFound, native.ErrUnsupported) rather than as faults.
package archiver
