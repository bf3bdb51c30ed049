package zip

import (
	"bytes"
	stdio "io"
	"io/fs"
	"testing"
	"time"

	kzip "github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/archiver"
	"github.com/wippyai/physfs-bridge/errors"
	"github.com/wippyai/physfs-bridge/fault"
	"github.com/wippyai/physfs-bridge/internal/thread"
	"github.com/wippyai/physfs-bridge/native"
	"github.com/wippyai/physfs-bridge/stream"
)

var modified = time.Date(2023, 7, 14, 9, 30, 0, 0, time.UTC)

func build(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := kzip.NewWriter(&buf)
	w.RegisterCompressor(zstd.ZipMethodWinZip, zstd.ZipCompressor())

	add := func(name string, method uint16, body string) {
		f, err := w.CreateHeader(&kzip.FileHeader{Name: name, Method: method, Modified: modified})
		require.NoError(t, err)
		_, err = f.Write([]byte(body))
		require.NoError(t, err)
	}
	add("readme.txt", kzip.Deflate, "welcome to the archive")
	add("maps/e1m1.bsp", kzip.Store, "BSP29")
	add("maps/dm/arena.bsp", kzip.Deflate, "arena")
	add("empty/", kzip.Store, "")
	add("notes.zst", zstd.ZipMethodWinZip, "compressed with zstd")
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func open(t *testing.T) *Archive {
	t.Helper()
	arc, err := New().OpenArchive(physfs.ArchiveArgs{Stream: stream.NewReader(build(t)), Name: "pak0.zip"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = arc.Close() })
	return arc.(*Archive)
}

func list(a *Archive, dir string) []string {
	var names []string
	for n, err := range a.ListFiles(dir, dir) {
		if err != nil {
			return nil
		}
		names = append(names, n)
	}
	return names
}

func readAll(t *testing.T, s physfs.Stream) string {
	t.Helper()
	data, err := stdio.ReadAll(s)
	require.NoError(t, err)
	return string(data)
}

func TestOpenArchive_Unrecognized(t *testing.T) {
	for _, data := range []string{"", "PK", "plain text file"} {
		_, err := New().OpenArchive(physfs.ArchiveArgs{Stream: stream.NewReader([]byte(data))})
		assert.ErrorIs(t, err, physfs.ErrUnrecognized, data)
	}
}

func TestOpenArchive_Corrupt(t *testing.T) {
	_, err := New().OpenArchive(physfs.ArchiveArgs{Stream: stream.NewReader([]byte("PK\x03\x04 definitely not a zip"))})
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, native.ErrCorrupt, e.Code)
	assert.Equal(t, errors.KindInvalidData, e.Kind)
}

func TestOpenArchive_ForWrite(t *testing.T) {
	_, err := New().OpenArchive(physfs.ArchiveArgs{Stream: stream.NewReader(build(t)), ForWrite: true})
	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, native.ErrReadOnly, e.Code)
}

func TestArchive_ListFiles(t *testing.T) {
	a := open(t)

	assert.Equal(t, []string{"empty", "maps", "notes.zst", "readme.txt"}, list(a, ""))
	assert.Equal(t, []string{"dm", "e1m1.bsp"}, list(a, "maps"))
	assert.Equal(t, []string{"arena.bsp"}, list(a, "maps/dm/"))
	assert.Empty(t, list(a, "empty"))
	assert.Empty(t, list(a, "missing"))
	assert.Empty(t, list(a, "readme.txt"))
}

func TestArchive_OpenRead(t *testing.T) {
	a := open(t)

	s, err := a.Open("readme.txt", physfs.ModeRead)
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "welcome to the archive", readAll(t, s))

	require.NoError(t, s.Seek(11))
	assert.Equal(t, "the archive", readAll(t, s))

	size, err := s.Length()
	require.NoError(t, err)
	assert.EqualValues(t, 22, size)

	assert.Error(t, s.Seek(23))
}

func TestArchive_Zstd(t *testing.T) {
	a := open(t)

	s, err := a.Open("notes.zst", physfs.ModeRead)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "compressed with zstd", readAll(t, s))
}

func TestArchive_DuplicateIsIndependent(t *testing.T) {
	a := open(t)

	s, err := a.Open("maps/e1m1.bsp", physfs.ModeRead)
	require.NoError(t, err)
	defer s.Close()

	buf := make([]byte, 3)
	_, err = stdio.ReadFull(s, buf)
	require.NoError(t, err)

	dup, err := s.Duplicate()
	require.NoError(t, err)
	defer dup.Close()

	assert.Equal(t, "BSP29", readAll(t, dup))
	assert.Equal(t, "29", readAll(t, s))
}

func TestArchive_OpenErrors(t *testing.T) {
	a := open(t)

	_, err := a.Open("readme.txt", physfs.ModeWrite)
	assert.ErrorIs(t, err, physfs.ErrModeUnsupported)

	_, err = a.Open("nope", physfs.ModeRead)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestArchive_Stat(t *testing.T) {
	a := open(t)

	info, err := a.Stat("maps/e1m1.bsp")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.EqualValues(t, 5, info.Size)
	assert.Equal(t, physfs.FileTypeRegular, info.Type)
	assert.True(t, info.ReadOnly)
	assert.Equal(t, modified.Unix(), info.ModTime.Unix())

	info, err = a.Stat("maps")
	require.NoError(t, err)
	assert.Equal(t, physfs.FileTypeDirectory, info.Type)

	info, err = a.Stat("missing")
	assert.NoError(t, err)
	assert.Nil(t, info)
}

func TestArchive_ReadOnly(t *testing.T) {
	a := open(t)
	assert.ErrorIs(t, a.Remove("readme.txt"), &errors.Error{Phase: errors.PhaseArchive, Kind: errors.KindUnsupported})
	assert.ErrorIs(t, a.Mkdir("saves"), &errors.Error{Phase: errors.PhaseArchive, Kind: errors.KindUnsupported})
}

func TestThroughEngineTable(t *testing.T) {
	tbl := archiver.New(New())
	assert.Equal(t, "ZIP", tbl.Info.Extension)

	thread.Locked(func() {
		var claimed bool
		tok := tbl.OpenArchive(stream.Export(stream.NewReader([]byte("not a zip"))), "a.txt", false, &claimed)
		assert.Zero(t, tok)
		assert.False(t, claimed)
		assert.False(t, fault.Default.Pending())

		tok = tbl.OpenArchive(stream.Export(stream.NewReader([]byte("PK\x03\x04junk"))), "b.zip", false, &claimed)
		assert.Zero(t, tok)
		assert.True(t, claimed)
		assert.ErrorIs(t, fault.Last(), &errors.Error{Phase: errors.PhaseArchive, Kind: errors.KindInvalidData})

		tok = tbl.OpenArchive(stream.Export(stream.NewReader(build(t))), "pak0.zip", false, &claimed)
		require.NotZero(t, tok)
		assert.True(t, claimed)
		defer tbl.CloseArchive(tok)

		var names []string
		res := tbl.Enumerate(tok, "maps", func(_ any, _, name string) native.EnumResult {
			names = append(names, name)
			return native.EnumOK
		}, "maps", nil)
		assert.Equal(t, native.EnumOK, res)
		assert.Equal(t, []string{"dm", "e1m1.bsp"}, names)

		io := tbl.OpenRead(tok, "readme.txt")
		require.NotNil(t, io)
		defer io.Destroy(io)
		buf := make([]byte, 7)
		assert.EqualValues(t, 7, io.Read(io, buf))
		assert.Equal(t, "welcome", string(buf))
		assert.EqualValues(t, 22, io.Length(io))

		assert.Nil(t, tbl.OpenWrite(tok, "readme.txt"))
		assert.Equal(t, native.ErrUnsupported, native.Errors.LastErrorCode())

		var st native.Stat
		assert.EqualValues(t, 0, tbl.Stat(tok, "ghost", &st))
		assert.Equal(t, native.ErrNotFound, native.Errors.LastErrorCode())
	})
}
