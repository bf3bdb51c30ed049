// Package handle maps opaque tokens to managed values.
//
// The engine can only store a fixed-width token where a managed object is
// expected. Registry is the authority that turns that token back into the
// object on every callback:
//
//	streams := handle.New[*adapter](errors.PhaseStream)
//
//	tok := streams.Register(a)  // stored by the engine
//	a = streams.Resolve(tok)    // inside every entry point
//	streams.Release(tok)        // in the destroy callback, exactly once
//
// # Tokens
//
// A token packs a slot index with the slot's generation. Slots are reused
// after Release, but the generation changes, so a stale token never
// resolves to the slot's new occupant. Token 0 is never issued.
//
// # Failure
//
// Resolve panics with a protocol error when the token is unknown: it means
// the engine called back with an object the adapters already forgot, which
// is a contract defect, not a recoverable condition. Lookup is the
// non-fatal probe.
//
// # Observers
//
// Subscribe receives EventRegistered and EventReleased notifications, which
// is how lifecycle accounting is verified in tests.
package handle
