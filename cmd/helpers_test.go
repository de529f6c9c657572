package cmd_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/duboisf/renderenv/cmd"
	"github.com/duboisf/renderenv/internal/api"
	"github.com/duboisf/renderenv/internal/config"
	"github.com/duboisf/renderenv/internal/envsync"
	"github.com/duboisf/renderenv/internal/keyring"
)

// --- Mock keyring provider ---

type staticProvider struct {
	name   string
	key    string
	err    error
	stored string
}

func (p *staticProvider) Name() string {
	if p.name == "" {
		return "static"
	}
	return p.name
}

func (p *staticProvider) Get() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return p.key, nil
}

func (p *staticProvider) Store(key string) error {
	p.stored = key
	return p.err
}

var _ keyring.Provider = (*staticProvider)(nil)

// --- Mock prompter ---

type staticPrompter struct {
	key string
	err error
}

func (p *staticPrompter) Prompt(_ io.Reader, _ io.Writer) (string, error) {
	return p.key, p.err
}

// --- Fake Render API ---

// fakeRender serves the two env-var endpoints. Keys in existing answer 409 on
// create; createStatus and updateStatus force a status code for a key.
type fakeRender struct {
	mu           sync.Mutex
	existing     map[string]bool
	createStatus map[string]int
	updateStatus map[string]int
	calls        []string
	authHeaders  []string
	values       map[string]string
}

func newFakeRender(t *testing.T, existing ...string) (*fakeRender, *httptest.Server) {
	t.Helper()
	f := &fakeRender{
		existing:     map[string]bool{},
		createStatus: map[string]int{},
		updateStatus: map[string]int{},
		values:       map[string]string{},
	}
	for _, k := range existing {
		f.existing[k] = true
	}

	r := chi.NewRouter()
	r.Post("/services/{service}/env-vars", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Key, Value string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, "POST "+chi.URLParam(r, "service")+" "+body.Key)
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		if code, ok := f.createStatus[body.Key]; ok {
			http.Error(w, "rejected "+body.Key, code)
			return
		}
		if f.existing[body.Key] {
			http.Error(w, "already exists", http.StatusConflict)
			return
		}
		f.values[body.Key] = body.Value
		w.WriteHeader(http.StatusCreated)
	})
	r.Put("/services/{service}/env-vars/{key}", func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "key")
		var body struct{ Value string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, "PUT "+chi.URLParam(r, "service")+" "+key)
		if code, ok := f.updateStatus[key]; ok {
			http.Error(w, "update rejected", code)
			return
		}
		f.values[key] = body.Value
		w.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeRender) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRender) Value(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[key]
}

func (f *fakeRender) AuthHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...)
}

// staticConfig returns a LoadConfig func that ignores the environment and
// yields a fresh copy of cfg on every call.
func staticConfig(cfg config.Config) func(config.LoadOptions) (*config.Config, error) {
	return func(config.LoadOptions) (*config.Config, error) {
		c := cfg
		return &c, nil
	}
}

// testConfig is a valid configuration pointing at server, with no variables file.
func testConfig(server *httptest.Server) config.Config {
	return config.Config{
		ServiceID: "srv-test",
		BaseURL:   server.URL,
		Timeout:   5 * time.Second,
	}
}

// testOptions creates cmd.Options wired to the given httptest.Server.
func testOptions(t *testing.T, server *httptest.Server) cmd.Options {
	t.Helper()
	return cmd.Options{
		NewAPIClient: func(apiKey string, cfg *config.Config, logger *slog.Logger) envsync.Client {
			return api.NewClient(apiKey, cfg.BaseURL, api.WithTimeout(cfg.Timeout), api.WithLogger(logger))
		},
		LoadConfig:      staticConfig(testConfig(server)),
		KeyringProvider: &staticProvider{key: "rnd_test"},
		Prompter:        &staticPrompter{key: "rnd_prompted"},
		NativeStore:     &staticProvider{},
		Stdin:           &bytes.Buffer{},
		Stdout:          &bytes.Buffer{},
		Stderr:          &bytes.Buffer{},
	}
}

// executeCommand executes the given cobra command with args and captures output.
func executeCommand(root *cobra.Command, args ...string) (stdout, stderr string, err error) {
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	root.SetOut(outBuf)
	root.SetErr(errBuf)
	root.SetArgs(args)
	err = root.Execute()
	return outBuf.String(), errBuf.String(), err
}
