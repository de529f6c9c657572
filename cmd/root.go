package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/duboisf/renderenv/internal/api"
	"github.com/duboisf/renderenv/internal/config"
	"github.com/duboisf/renderenv/internal/envsync"
	"github.com/duboisf/renderenv/internal/keyring"
)

// ErrSyncFailed is returned by the sync command when at least one variable
// could not be set. The per-variable diagnostics have already been printed.
var ErrSyncFailed = errors.New("some variables failed to sync")

// Options holds injectable dependencies for all commands.
type Options struct {
	// NewAPIClient creates a Render API client from an API key and the run
	// configuration.
	NewAPIClient func(apiKey string, cfg *config.Config, logger *slog.Logger) envsync.Client
	// LoadConfig reads the run configuration. Defaults to config.Load.
	LoadConfig func(config.LoadOptions) (*config.Config, error)
	// KeyringProvider resolves API keys.
	KeyringProvider keyring.Provider
	// Prompter handles interactive API key prompts.
	Prompter keyring.Prompter
	// NativeStore is the platform-specific credential store.
	NativeStore keyring.Provider
	// FileStore is the file-based fallback credential store.
	FileStore keyring.Provider
	// Stdin for interactive input.
	Stdin io.Reader
	// Stdout for command output.
	Stdout io.Writer
	// Stderr for logs, prompts and errors.
	Stderr io.Writer
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	verbose bool
	envFile string
}

// logger returns a text logger on stderr, at debug level when verbose.
func (g *globalFlags) logger(w io.Writer) *slog.Logger {
	if w == nil {
		w = io.Discard
	}
	level := slog.LevelInfo
	if g.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewRootCmd creates the root cobra command with all subcommands wired up.
func NewRootCmd(opts Options) *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "renderenv",
		Short: "Ensure environment variables are set on a Render service",
		Long: "renderenv creates each declared environment variable on a Render service,\n" +
			"updating it in place when it already exists.",
		SilenceUsage:  true,
		SilenceErrors: true,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}
	if opts.Stdout != nil {
		root.SetOut(opts.Stdout)
	}
	if opts.Stderr != nil {
		root.SetErr(opts.Stderr)
	}

	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging on stderr")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Dotenv file loaded before reading the environment")
	_ = root.RegisterFlagCompletionFunc("verbose", cobra.NoFileCompletions)

	root.AddGroup(
		&cobra.Group{ID: "core", Title: "Core Commands:"},
		&cobra.Group{ID: "setup", Title: "Setup Commands:"},
	)

	syncCmd := newSyncCmd(opts, flags)
	syncCmd.GroupID = "core"

	authCmd := newAuthCmd(opts)
	authCmd.GroupID = "setup"
	completionCmd := newCompletionCmd()
	completionCmd.GroupID = "setup"
	versionCmd := newVersionCmd()
	versionCmd.GroupID = "setup"

	root.SetHelpCommand(&cobra.Command{Hidden: true})

	root.AddCommand(
		syncCmd,
		authCmd,
		completionCmd,
		versionCmd,
	)
	return root
}

// Execute creates the root command with default options and runs it with ctx.
func Execute(ctx context.Context) error {
	opts := DefaultOptions()
	return NewRootCmd(opts).ExecuteContext(ctx)
}

// nativeKeyringProvider returns the platform-specific keyring provider.
func nativeKeyringProvider() keyring.Provider {
	switch runtime.GOOS {
	case "darwin":
		return &keyring.KeychainProvider{}
	default:
		return &keyring.SecretToolProvider{}
	}
}

// DefaultOptions returns production-ready Options with platform-appropriate
// keyring, standard I/O, and the default API client.
func DefaultOptions() Options {
	native := nativeKeyringProvider()
	file := &keyring.FileProvider{}
	return Options{
		NewAPIClient: newRenderClient,
		LoadConfig:   config.Load,
		KeyringProvider: &keyring.ChainProvider{
			Providers: []keyring.Provider{
				&keyring.EnvProvider{},
				native,
				file,
			},
		},
		Prompter:    &keyring.InteractivePrompter{},
		NativeStore: native,
		FileStore:   file,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
	}
}

func newRenderClient(apiKey string, cfg *config.Config, logger *slog.Logger) envsync.Client {
	return api.NewClient(apiKey, cfg.BaseURL,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(logger),
		api.WithUserAgent("renderenv/"+Version),
	)
}

func (o Options) resolveOptions() keyring.ResolveOptions {
	stdin := o.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	msg := o.Stderr
	if msg == nil {
		msg = io.Discard
	}
	return keyring.ResolveOptions{
		Provider:    o.KeyringProvider,
		Prompter:    o.Prompter,
		NativeStore: o.NativeStore,
		FileStore:   o.FileStore,
		Stdin:       stdin,
		MsgWriter:   msg,
	}
}
