package keyring_test

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"

	"github.com/duboisf/renderenv/internal/keyring"
)

// --- Helper process for subprocess-based exec.Command mocking ---

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	fmt.Fprint(os.Stdout, os.Getenv("GO_HELPER_STDOUT"))
	code, _ := strconv.Atoi(os.Getenv("GO_HELPER_EXIT_CODE"))
	os.Exit(code)
}

// fakeCommandRunner returns a CommandRunner that re-executes the test binary
// as a fake secret-tool/security process. Every invoked argv is appended to calls.
func fakeCommandRunner(stdout string, exitCode int, calls *[]string) func(string, ...string) *exec.Cmd {
	return func(name string, args ...string) *exec.Cmd {
		if calls != nil {
			*calls = append(*calls, strings.Join(append([]string{name}, args...), " "))
		}
		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(),
			"GO_WANT_HELPER_PROCESS=1",
			"GO_HELPER_STDOUT="+stdout,
			fmt.Sprintf("GO_HELPER_EXIT_CODE=%d", exitCode),
		)
		return cmd
	}
}

// missingCommandRunner simulates a tool that is not installed.
func missingCommandRunner(string, ...string) *exec.Cmd {
	return exec.Command("renderenv-test-definitely-not-installed")
}

// --- Mock provider for testing ChainProvider and Resolve ---

type mockProvider struct {
	name     string
	getKey   string
	getErr   error
	storeErr error
	stored   string
}

func (m *mockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockProvider) Get() (string, error) {
	return m.getKey, m.getErr
}

func (m *mockProvider) Store(key string) error {
	m.stored = key
	return m.storeErr
}

var _ keyring.Provider = (*mockProvider)(nil)

// --- Mock prompter ---

type mockPrompter struct {
	key    string
	err    error
	called bool
}

func (m *mockPrompter) Prompt(_ io.Reader, _ io.Writer) (string, error) {
	m.called = true
	return m.key, m.err
}

var _ keyring.Prompter = (*mockPrompter)(nil)
