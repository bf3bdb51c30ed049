// Package wasmhost lets a WebAssembly build of the engine use Go streams
// and archivers.
//
// The host module (default name "physfs_bridge") exports flat functions
// over i32/i64 values. Pointers are offsets into the guest's memory and
// managed objects are 64-bit tokens:
//
//	io_read(tok i64, buf i32, len i32) i64
//	io_write(tok i64, buf i32, len i32) i64
//	io_seek(tok i64, pos i64) i32
//	io_tell(tok i64) i64
//	io_length(tok i64) i64
//	io_duplicate(tok i64) i64
//	io_flush(tok i64) i32
//	io_destroy(tok i64)
//
//	archiver_count() i32
//	archiver_extension(idx i32, buf i32, cap i32) i32
//	archive_open(idx i32, kind i32, io i64, name i32, name_len i32, for_write i32, claimed i32) i64
//	archive_enumerate(arc i64, dir i32, dir_len i32, orig i32, orig_len i32, data i64) i32
//	archive_open_read(arc i64, name i32, name_len i32) i64
//	archive_open_write(arc i64, name i32, name_len i32) i64
//	archive_open_append(arc i64, name i32, name_len i32) i64
//	archive_remove(arc i64, name i32, name_len i32) i32
//	archive_mkdir(arc i64, name i32, name_len i32) i32
//	archive_stat(arc i64, name i32, name_len i32, stat i32) i32
//	archive_close(arc i64)
//
// The guest must export memory, malloc, free, PHYSFS_setErrorCode,
// PHYSFS_getLastErrorCode, physfs_enum_callback and, when it mounts
// streams it owns, the physfs_io_* functions. After every host call the
// engine code raised on the host, including the fault sentinel, is stored
// in the guest with PHYSFS_setErrorCode.
//
// A stream passed to archive_open belongs to the archive once the open
// succeeds. A host token is invalid from then on and the guest must not
// destroy a stream of its own either.
package wasmhost
