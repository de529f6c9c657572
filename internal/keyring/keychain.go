package keyring

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// KeychainProvider uses the macOS Keychain (security CLI) for API key storage.
type KeychainProvider struct {
	// CommandRunner allows overriding exec.Command for testing.
	CommandRunner func(name string, args ...string) *exec.Cmd
}

func (p *KeychainProvider) commandRunner() func(string, ...string) *exec.Cmd {
	if p.CommandRunner != nil {
		return p.CommandRunner
	}
	return exec.Command
}

// Name implements Provider.
func (p *KeychainProvider) Name() string { return "macOS Keychain" }

// Get reads the key from the login keychain.
func (p *KeychainProvider) Get() (string, error) {
	cmd := p.commandRunner()("security", "find-generic-password", "-s", storeService, "-a", storeAccount, "-w")
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: security", ErrToolNotFound)
		}
		return "", fmt.Errorf("security find-generic-password failed: %w", err)
	}
	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// Store writes the key to the login keychain, replacing any previous entry (-U).
func (p *KeychainProvider) Store(key string) error {
	cmd := p.commandRunner()("security", "add-generic-password", "-s", storeService, "-a", storeAccount, "-w", key, "-U")
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: security", ErrToolNotFound)
		}
		return fmt.Errorf("security add-generic-password failed: %w", err)
	}
	return nil
}
