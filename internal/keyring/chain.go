package keyring

import "errors"

// ChainProvider tries multiple providers in order, returning the first success.
type ChainProvider struct {
	Providers []Provider
}

// Name implements Provider.
func (p *ChainProvider) Name() string { return "chain" }

// Get returns the key from the first provider that has one.
func (p *ChainProvider) Get() (string, error) {
	_, key, err := p.Source()
	return key, err
}

// Source is like Get but also returns the name of the provider that supplied the key.
func (p *ChainProvider) Source() (string, string, error) {
	for _, provider := range p.Providers {
		key, err := provider.Get()
		if err == nil {
			return provider.Name(), key, nil
		}
	}
	return "", "", ErrNoAPIKey
}

// Store stores the key using the first provider that accepts it.
func (p *ChainProvider) Store(key string) error {
	for _, provider := range p.Providers {
		if err := provider.Store(key); err == nil {
			return nil
		}
	}
	return errors.New("no provider could store the API key")
}
