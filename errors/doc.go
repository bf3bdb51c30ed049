// Package errors provides structured error types for the bridge.
//
// Errors are categorized by Phase (which adapter produced them) and Kind
// (error category). Errors that correspond to an engine status carry the
// native code in Code so they can be handed back to the engine unchanged.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseArchive, errors.KindInvalidData).
//		Path("maps/level1.bsp").
//		Detail("truncated central directory").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.NotFound(errors.PhaseArchive, "maps/missing.bsp")
//	err := errors.FromCode(native.ErrBusy)
//
// Protocol errors describe defects in the engine/adapter contract. They are
// raised as panics, never returned.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
