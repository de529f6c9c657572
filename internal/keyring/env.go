package keyring

import (
	"errors"
	"os"
)

// EnvProvider reads the API key from an environment variable.
type EnvProvider struct {
	// Var is the variable to read. Defaults to EnvVar.
	Var string
	// LookupEnv allows overriding os.LookupEnv for testing.
	LookupEnv func(key string) (string, bool)
}

func (p *EnvProvider) variable() string {
	if p.Var != "" {
		return p.Var
	}
	return EnvVar
}

// Name implements Provider.
func (p *EnvProvider) Name() string {
	return "environment (" + p.variable() + ")"
}

// Get returns the value of the configured variable.
func (p *EnvProvider) Get() (string, error) {
	lookup := p.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	val, ok := lookup(p.variable())
	if !ok || val == "" {
		return "", ErrNoAPIKey
	}
	return val, nil
}

// Store is not supported for environment variables.
func (p *EnvProvider) Store(string) error {
	return errors.New("cannot store API key in environment variable")
}
