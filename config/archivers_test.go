package config

import (
	stdio "io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/archivers/billyfs"
	"github.com/wippyai/physfs-bridge/archivers/zip"
)

func TestNewArchiver_Zip(t *testing.T) {
	a, err := NewArchiver(ArchiverConfig{Type: TypeZip})
	require.NoError(t, err)
	assert.IsType(t, &zip.Archiver{}, a)
	assert.Equal(t, "ZIP", a.Info().Extension)
}

func TestNewArchiver_Dir(t *testing.T) {
	a, err := NewArchiver(ArchiverConfig{
		Type:        TypeDir,
		Description: "game data",
		Options:     map[string]any{"root": t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &billyfs.Archiver{}, a)
	assert.Equal(t, "game data", a.Info().Description)

	_, err = NewArchiver(ArchiverConfig{Type: TypeDir})
	assert.Error(t, err)
}

func TestNewArchiver_MemorySeeded(t *testing.T) {
	a, err := NewArchiver(ArchiverConfig{
		Type:     TypeMemory,
		ReadOnly: true,
		Options: map[string]any{
			"dirs":  "save,maps",
			"files": map[string]any{"maps/e1m1.bsp": "BSP29"},
		},
	})
	require.NoError(t, err)

	arc, err := a.OpenArchive(physfs.ArchiveArgs{Name: "maps"})
	require.NoError(t, err)
	defer arc.Close()

	s, err := arc.Open("e1m1.bsp", physfs.ModeRead)
	require.NoError(t, err)
	defer s.Close()
	data, err := stdio.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "BSP29", string(data))

	_, err = arc.Open("new.bsp", physfs.ModeWrite)
	assert.ErrorIs(t, err, physfs.ErrModeUnsupported)

	info, err := arc.Stat("e1m1.bsp")
	require.NoError(t, err)
	assert.True(t, info.ReadOnly)

	_, err = a.OpenArchive(physfs.ArchiveArgs{Name: "save"})
	assert.NoError(t, err)
}

func TestNewArchivers_ReportsIndex(t *testing.T) {
	_, err := NewArchivers([]ArchiverConfig{{Type: TypeZip}, {Type: "rar"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "archivers[1]")

	list, err := NewArchivers(Default().Archivers)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
