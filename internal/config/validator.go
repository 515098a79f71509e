package config

import (
	"os"

	"github.com/standardbeagle/edk2meta/internal/errors"
)

// Validator checks a WorkspaceConfig is usable before a Factory is built
// from it. It only validates; it does not fill in any defaults.
type Validator struct{}

// NewValidator creates a configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and leaves it unmodified. It returns a *errors.ParseError with Kind FileNotFound when
// the workspace root or a PACKAGES_PATH entry doesn't exist on disk, since
// those are the only failure modes the original environment-driven
// resolution can hit before a single file is even opened.
func (v *Validator) ValidateAndSetDefaults(cfg *WorkspaceConfig) error {
	if cfg.WorkspaceRoot == "" {
		return errors.New(errors.FileNotFound, "WORKSPACE", 0, "workspace root is not set")
	}
	if info, err := os.Stat(cfg.WorkspaceRoot); err != nil || !info.IsDir() {
		return errors.New(errors.FileNotFound, cfg.WorkspaceRoot, 0, "workspace root does not exist or is not a directory")
	}

	for _, p := range cfg.PackagesPath {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			return errors.New(errors.FileNotFound, p, 0, "PACKAGES_PATH entry does not exist or is not a directory")
		}
	}

	return nil
}

// ValidateConfig is a convenience wrapper around Validator for callers that
// don't need to reuse a Validator instance.
func ValidateConfig(cfg *WorkspaceConfig) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
