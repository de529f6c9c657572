package keyring

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem abstracts the filesystem operations needed by FileProvider.
type FileSystem interface {
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
}

type osFileSystem struct{}

var _ FileSystem = osFileSystem{}

func (osFileSystem) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }
func (osFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}
func (osFileSystem) MkdirAll(path string, perm os.FileMode) error { return os.MkdirAll(path, perm) }

// FileProvider keeps the API key in <config dir>/renderenv/credentials with
// 0600 permissions.
type FileProvider struct {
	// FS provides filesystem operations. Defaults to the real OS filesystem.
	FS FileSystem
	// ConfigDir returns the user's config directory. Defaults to os.UserConfigDir.
	ConfigDir func() (string, error)
}

func (p *FileProvider) fs() FileSystem {
	if p.FS != nil {
		return p.FS
	}
	return osFileSystem{}
}

// Path returns the credentials file location.
func (p *FileProvider) Path() (string, error) {
	configDir := p.ConfigDir
	if configDir == nil {
		configDir = os.UserConfigDir
	}
	dir, err := configDir()
	if err != nil {
		return "", fmt.Errorf("determining config directory: %w", err)
	}
	return filepath.Join(dir, storeService, "credentials"), nil
}

// Name implements Provider.
func (p *FileProvider) Name() string { return "credentials file" }

// Get reads the key from the credentials file.
func (p *FileProvider) Get() (string, error) {
	path, err := p.Path()
	if err != nil {
		return "", err
	}
	data, err := p.fs().ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoAPIKey
		}
		return "", fmt.Errorf("reading credentials file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// Store writes the key to the credentials file.
func (p *FileProvider) Store(key string) error {
	path, err := p.Path()
	if err != nil {
		return err
	}
	if err := p.fs().MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := p.fs().WriteFile(path, []byte(key+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing credentials file: %w", err)
	}
	return nil
}
