package services

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lewiuberg/nortax/apperror"
	"github.com/lewiuberg/nortax/logger"
	"github.com/lewiuberg/nortax/models"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"
)

// SettingsStore persists payslip settings as an indented JSON file.
type SettingsStore struct {
	fs   afero.Fs
	path string
}

// NewSettingsStore stores settings at path on the OS filesystem
func NewSettingsStore(path string) *SettingsStore {
	return NewSettingsStoreWithFs(afero.NewOsFs(), path)
}

// NewSettingsStoreWithFs stores settings at path on fsys
func NewSettingsStoreWithFs(fsys afero.Fs, path string) *SettingsStore {
	return &SettingsStore{fs: fsys, path: path}
}

// Load reads the settings file. When the file does not exist the defaults are
// written first and then read back.
func (s *SettingsStore) Load() (models.PayslipSettings, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info("Settings file %s not found, creating it with defaults", s.path)
		if err := s.Save(models.DefaultPayslipSettings()); err != nil {
			return models.PayslipSettings{}, err
		}
		data, err = afero.ReadFile(s.fs, s.path)
	}
	if err != nil {
		return models.PayslipSettings{}, apperror.SettingsFile(err, "could not read settings file "+s.path)
	}

	var settings models.PayslipSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return models.PayslipSettings{}, apperror.SettingsFile(err, "malformed settings file "+s.path)
	}
	if err := settings.Validate(); err != nil {
		return models.PayslipSettings{}, apperror.SettingsFile(err, "invalid settings file "+s.path)
	}
	return settings, nil
}

// Save writes settings to a temporary file next to the target and renames it
// into place, so a reader never sees a partly written file.
func (s *SettingsStore) Save(settings models.PayslipSettings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return apperror.SettingsFile(err, "could not encode settings")
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return apperror.SettingsFile(err, "could not create settings directory "+dir)
		}
	}

	tmp, err := afero.TempFile(s.fs, dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return apperror.SettingsFile(err, "could not create temporary settings file in "+dir)
	}
	tmpName := tmp.Name()

	_, err = tmp.Write(append(data, '\n'))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = s.fs.Chmod(tmpName, os.FileMode(0o644))
	}
	if err == nil {
		err = s.fs.Rename(tmpName, s.path)
	}
	if err != nil {
		_ = s.fs.Remove(tmpName)
		return apperror.SettingsFile(err, "could not write settings file "+s.path)
	}
	return nil
}
