// Package fault carries failures out of engine callbacks.
//
// An adapter entry point cannot return a Go error or panic into the engine:
// the engine only understands status codes. When a capability fails, the
// entry point calls Capture, which parks the error for the current OS thread
// and sets the engine's error code to native.ErrFault. The entry point then
// returns its ordinary failure value (-1, 0 or nil).
//
// Once control is back in application code, the caller reads the engine's
// code and hands it to Check. The sentinel replays the parked error exactly
// as it was captured; any other code becomes an *errors.Error.
//
//	err := fault.Locked(func() error {
//		if engine.Mount(...) == 0 {
//			return fault.Last()
//		}
//		return nil
//	})
//
// Faults are per thread. The call, the status check and the retrieval must
// run on one OS thread, which Locked guarantees for Go callers. A fault
// captured on one thread is invisible to every other thread.
package fault
