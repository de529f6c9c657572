package keyring

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// InteractivePrompter reads the API key from the terminal without echo.
type InteractivePrompter struct {
	// ReadPassword allows overriding term.ReadPassword for testing.
	ReadPassword func(fd int) ([]byte, error)
}

// Prompt prints instructions to msgWriter and reads the key from the
// terminal attached to os.Stdin. stdin is unused: disabling echo needs a file
// descriptor, not an io.Reader.
func (p *InteractivePrompter) Prompt(_ io.Reader, msgWriter io.Writer) (string, error) {
	fmt.Fprintln(msgWriter, "No Render API key found.")
	fmt.Fprintln(msgWriter, "Create one at: https://dashboard.render.com/u/settings#api-keys")
	fmt.Fprint(msgWriter, "Enter your Render API key: ")

	readPassword := p.ReadPassword
	if readPassword == nil {
		readPassword = term.ReadPassword
	}

	keyBytes, err := readPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	fmt.Fprintln(msgWriter)

	key := strings.TrimSpace(string(keyBytes))
	if key == "" {
		return "", errors.New("API key cannot be empty")
	}
	return key, nil
}
