// Package keyring resolves the Render API key without it ever living in
// source: from the environment, the OS credential store, a private file, or
// an interactive prompt.
package keyring

import (
	"errors"
	"io"
)

// EnvVar is the environment variable holding the Render API key.
const EnvVar = "RENDER_API_KEY"

// Identifiers under which the key is stored in native credential stores.
const (
	storeService = "renderenv"
	storeAccount = "default"
)

// Provider abstracts API key storage and retrieval.
type Provider interface {
	// Name identifies the provider in status output.
	Name() string
	// Get returns the stored API key, or ErrNoAPIKey if none is found.
	Get() (string, error)
	// Store persists the given API key.
	Store(key string) error
}

// Prompter asks the operator for an API key.
type Prompter interface {
	Prompt(stdin io.Reader, msgWriter io.Writer) (string, error)
}

// ErrNoAPIKey is returned when no API key is found.
var ErrNoAPIKey = errors.New("no API key found")

// ErrToolNotFound is returned when the native credential storage tool is not installed.
var ErrToolNotFound = errors.New("credential storage tool not found")
