package config

import (
	stderrors "errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/physfs-bridge/errors"
)

var validate = validator.New()

// Validate checks struct tags, then the rules tags cannot express.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if len(cfg.Archivers) == 0 {
		return invalid("archivers: at least one archiver must be configured")
	}
	for i, a := range cfg.Archivers {
		if a.Type != TypeDir {
			continue
		}
		opts, err := decodeDir(a.Options)
		if err != nil {
			return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, fmt.Sprintf("archivers[%d].options", i))
		}
		if opts.Root == "" {
			return invalid(fmt.Sprintf("archivers[%d]: dir archiver needs options.root", i))
		}
	}
	return nil
}

func invalid(detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).Detail(detail).Build()
}

// formatValidationError reports the first failed field.
func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if stderrors.As(err, &verrs) && len(verrs) > 0 {
		e := verrs[0]
		return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(e.Namespace()).
			Detail("validation failed on '%s' tag (value: %v)", e.Tag(), e.Value()).
			Build()
	}
	return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "validate config")
}
