package keyring

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
)

// ResolveOptions configures Resolve and Login.
type ResolveOptions struct {
	// Provider resolves API keys (typically a ChainProvider).
	Provider Provider
	// Prompter asks the operator for a key when Provider has none.
	Prompter Prompter
	// NativeStore is the platform credential store (secret-tool or Keychain).
	NativeStore Provider
	// FileStore is the file-based fallback credential store.
	FileStore Provider
	// Stdin for interactive input.
	Stdin io.Reader
	// MsgWriter receives prompts and warnings, typically stderr so that
	// progress output on stdout stays clean.
	MsgWriter io.Writer
	// ReadLine reads a confirmation answer. Defaults to reading from Stdin.
	ReadLine func() (string, error)
}

func (o *ResolveOptions) readLine() (string, error) {
	if o.ReadLine != nil {
		return o.ReadLine()
	}
	var buf [256]byte
	n, err := o.Stdin.Read(buf[:])
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(buf[:n])), nil
}

// Resolve returns the API key from opts.Provider, or prompts for one and
// stores it for next time. Storage prefers the native store; when its tool
// is missing, install instructions are shown and the operator is asked before
// the key is written to a file.
func Resolve(opts ResolveOptions) (string, error) {
	if opts.Provider != nil {
		if key, err := opts.Provider.Get(); err == nil {
			return key, nil
		}
	}
	return Login(opts)
}

// Login always prompts for a key and stores it. Storage failures are reported
// on MsgWriter but do not fail the login; the key is still returned.
func Login(opts ResolveOptions) (string, error) {
	if opts.Prompter == nil {
		return "", ErrNoAPIKey
	}
	key, err := opts.Prompter.Prompt(opts.Stdin, opts.MsgWriter)
	if err != nil {
		return "", fmt.Errorf("prompting for API key: %w", err)
	}
	storeKey(key, opts)
	return key, nil
}

func storeKey(key string, opts ResolveOptions) {
	if opts.NativeStore != nil {
		err := opts.NativeStore.Store(key)
		switch {
		case err == nil:
			fmt.Fprintf(opts.MsgWriter, "API key saved to %s.\n", opts.NativeStore.Name())
			return
		case errors.Is(err, ErrToolNotFound):
			fmt.Fprintf(opts.MsgWriter, "\n%s\n\n", nativeToolInstallHint())
		default:
			fmt.Fprintf(opts.MsgWriter, "Warning: could not store API key in %s: %v\n", opts.NativeStore.Name(), err)
		}
	}

	if opts.FileStore == nil {
		return
	}
	fmt.Fprint(opts.MsgWriter, "Store API key in a local config file instead? [y/N]: ")
	answer, err := opts.readLine()
	if err != nil {
		fmt.Fprintf(opts.MsgWriter, "Warning: could not read response: %v\n", err)
		return
	}
	if answer != "y" && answer != "Y" && answer != "yes" {
		fmt.Fprintln(opts.MsgWriter, "API key was not saved. You will be prompted again next time.")
		return
	}
	if err := opts.FileStore.Store(key); err != nil {
		fmt.Fprintf(opts.MsgWriter, "Warning: could not store API key in file: %v\n", err)
		return
	}
	fmt.Fprintf(opts.MsgWriter, "API key saved to %s.\n", opts.FileStore.Name())
}

func nativeToolInstallHint() string {
	switch runtime.GOOS {
	case "darwin":
		return "The macOS security CLI should be available by default.\n" +
			"If missing, install Xcode Command Line Tools:\n" +
			"  xcode-select --install"
	default:
		return "Install secret-tool for secure credential storage:\n" +
			"  Ubuntu/Debian: sudo apt install libsecret-tools\n" +
			"  Fedora:        sudo dnf install libsecret\n" +
			"  Arch:          sudo pacman -S libsecret"
	}
}
