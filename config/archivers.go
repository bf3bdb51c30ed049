package config

import (
	"fmt"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/mitchellh/mapstructure"

	physfs "github.com/wippyai/physfs-bridge"
	"github.com/wippyai/physfs-bridge/archivers/billyfs"
	"github.com/wippyai/physfs-bridge/archivers/zip"
	"github.com/wippyai/physfs-bridge/errors"
)

// Archiver types.
const (
	TypeZip    = "zip"
	TypeDir    = "dir"
	TypeMemory = "memory"
)

// ArchiverConfig selects one archiver. Options are type specific:
//
//	dir:    root (required)
//	memory: files (path -> contents), dirs
type ArchiverConfig struct {
	Type        string         `mapstructure:"type" validate:"required,oneof=zip dir memory"`
	Description string         `mapstructure:"description"`
	ReadOnly    bool           `mapstructure:"read_only"`
	Options     map[string]any `mapstructure:"options"`
}

type dirOptions struct {
	Root string `mapstructure:"root"`
}

type memoryOptions struct {
	Files map[string]string `mapstructure:"files"`
	Dirs  []string          `mapstructure:"dirs"`
}

func decode(options map[string]any, out any) error {
	d, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return d.Decode(options)
}

func decodeDir(options map[string]any) (dirOptions, error) {
	var o dirOptions
	err := decode(options, &o)
	return o, err
}

// NewArchiver builds the archiver c describes.
func NewArchiver(c ArchiverConfig) (physfs.Archiver, error) {
	var opts []billyfs.Option
	if c.ReadOnly {
		opts = append(opts, billyfs.ReadOnly())
	}
	if c.Description != "" {
		opts = append(opts, billyfs.Description(c.Description))
	}

	switch c.Type {
	case TypeZip:
		return zip.New(), nil

	case TypeDir:
		o, err := decodeDir(c.Options)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "dir archiver options")
		}
		if o.Root == "" {
			return nil, invalid("dir archiver: root is required")
		}
		return billyfs.NewOS(o.Root, opts...), nil

	case TypeMemory:
		var o memoryOptions
		if err := decode(c.Options, &o); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "memory archiver options")
		}
		fs := memfs.New()
		for _, dir := range o.Dirs {
			if err := fs.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(errors.PhaseConfig, errors.KindInternal, err, "seed "+dir)
			}
		}
		for name, body := range o.Files {
			if err := util.WriteFile(fs, name, []byte(body), 0o644); err != nil {
				return nil, errors.Wrap(errors.PhaseConfig, errors.KindInternal, err, "seed "+name)
			}
		}
		return billyfs.New(fs, opts...), nil
	}
	return nil, invalid(fmt.Sprintf("unknown archiver type %q", c.Type))
}

// NewArchivers builds every configured archiver in order.
func NewArchivers(cfgs []ArchiverConfig) ([]physfs.Archiver, error) {
	out := make([]physfs.Archiver, 0, len(cfgs))
	for i, c := range cfgs {
		a, err := NewArchiver(c)
		if err != nil {
			return nil, fmt.Errorf("archivers[%d]: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
