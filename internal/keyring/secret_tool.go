package keyring

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SecretToolProvider uses secret-tool (GNOME keyring / libsecret) for API key storage.
type SecretToolProvider struct {
	// CommandRunner allows overriding exec.Command for testing.
	CommandRunner func(name string, args ...string) *exec.Cmd
}

func (p *SecretToolProvider) commandRunner() func(string, ...string) *exec.Cmd {
	if p.CommandRunner != nil {
		return p.CommandRunner
	}
	return exec.Command
}

// Name implements Provider.
func (p *SecretToolProvider) Name() string { return "secret-tool" }

// Get looks the key up via secret-tool.
func (p *SecretToolProvider) Get() (string, error) {
	cmd := p.commandRunner()("secret-tool", "lookup", "service", storeService, "account", storeAccount)
	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", fmt.Errorf("%w: secret-tool", ErrToolNotFound)
		}
		return "", fmt.Errorf("secret-tool lookup failed: %w", err)
	}
	key := strings.TrimSpace(string(out))
	if key == "" {
		return "", ErrNoAPIKey
	}
	return key, nil
}

// Store saves the key via secret-tool. The key goes through stdin so it never
// shows up in the process list.
func (p *SecretToolProvider) Store(key string) error {
	cmd := p.commandRunner()(
		"secret-tool", "store",
		"--label=Render API key (renderenv)",
		"service", storeService,
		"account", storeAccount,
	)
	cmd.Stdin = bytes.NewReader([]byte(key))
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w: secret-tool", ErrToolNotFound)
		}
		return fmt.Errorf("secret-tool store failed: %w", err)
	}
	return nil
}
