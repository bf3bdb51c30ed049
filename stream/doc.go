// Package stream adapts byte streams between Go and the engine.
//
// Export registers a physfs.Stream and returns an engine call table whose
// entry points are shared by every exported stream; each call finds its
// stream through the table's opaque token. The engine owns the table and
// ends its life with Destroy, which closes the stream. Failures inside a
// stream are parked in the fault channel and the entry point returns the
// engine's failure value. When an archive takes over an exported stream,
// Disown drops the table's registration instead.
//
// Import goes the other way. It turns an engine table into a
// physfs.Stream, or returns the original Go stream when the table came from
// Export.
//
// Memory, File and Nothing are ready-made streams.
package stream
