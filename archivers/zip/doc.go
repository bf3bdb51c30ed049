// Package zip reads ZIP archives for the engine.
//
// Entries compressed with Deflate, Store or Zstandard (method 93) are
// supported. The format is read-only: write and append opens fail with
// physfs.ErrModeUnsupported.
package zip
