// Package physfs connects Go code to a PhysicsFS-style virtual filesystem
// engine.
//
// The engine composes directories and archive files into one namespace and
// talks to its extensions only through fixed call tables, opaque tokens and
// integer status codes. This module adapts Go values to those tables so that
// Go streams, archive formats and allocators can take part in the engine.
//
// # Architecture Overview
//
//	physfs/            Capability interfaces: Stream, Archive, Allocator
//	├── native/        Engine ABI: call tables, tokens, status codes
//	├── handle/        Token registry for managed objects
//	├── fault/         Thread-scoped fault channel
//	├── stream/        Stream adapters in both directions
//	├── archiver/      Archive-format adapter
//	├── alloc/         Allocator bridge
//	├── archivers/     Archive formats (zip, billy filesystems)
//	├── wasmhost/      Host module for a WebAssembly build of the engine
//	├── config/        Host configuration
//	├── errors/        Structured error types
//	└── cmd/
//	    └── physfs-host/  Runs a WebAssembly engine build with Go archivers
//
// # Streams
//
// Export hands a Go stream to the engine; Import wraps an engine stream as a
// Go one. Importing an exported table yields the original Go value:
//
//	io := stream.Export(stream.NewMemory([]byte("hello")))
//	s := stream.Import(io) // the *stream.Memory again
//
// # Failures
//
// Adapter entry points never panic into the engine. A Go error raised inside
// a capability is captured per OS thread and the engine sees the reserved
// code native.ErrFault. Application code reads it back with fault.Last:
//
//	err := fault.Locked(func() error {
//		if !mountArchive() {
//			return fault.Last()
//		}
//		return nil
//	})
//
// Contract violations, such as an unknown token or an enumerate callback
// returning an undefined value, panic with an errors.KindProtocol error.
package physfs
