package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/duboisf/renderenv/internal/config"
	"github.com/duboisf/renderenv/internal/envsync"
	"github.com/duboisf/renderenv/internal/format"
	"github.com/duboisf/renderenv/internal/keyring"
	"github.com/duboisf/renderenv/internal/vars"
)

type syncFlags struct {
	service string
	file    string
	sets    []string
	timeout time.Duration
	dryRun  bool
}

func newSyncCmd(opts Options, global *globalFlags) *cobra.Command {
	var flags syncFlags

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Create or update the declared variables on a Render service",
		Long: "Create each declared environment variable on the target service. A variable\n" +
			"that already exists is updated in place. Variables are read from the\n" +
			"variables file (renderenv.toml by default) and --set flags.",
		Example: "  renderenv sync --service srv-123 --set NODE_ENV=production\n" +
			"  renderenv sync --file render.yaml --dry-run",
		Args: cobra.NoArgs,
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, global, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.service, "service", "s", "", "Render service id (overrides RENDER_SERVICE_ID)")
	f.StringVarP(&flags.file, "file", "f", "", "Variables file (.toml, .yaml or dotenv)")
	f.StringArrayVar(&flags.sets, "set", nil, "Set a variable as KEY=VALUE (repeatable, wins over the file)")
	f.DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout (overrides RENDER_TIMEOUT)")
	f.BoolVar(&flags.dryRun, "dry-run", false, "Print what would be synced without calling the API")

	_ = cmd.RegisterFlagCompletionFunc("service", cobra.NoFileCompletions)
	_ = cmd.RegisterFlagCompletionFunc("set", cobra.NoFileCompletions)
	_ = cmd.RegisterFlagCompletionFunc("timeout", cobra.NoFileCompletions)
	_ = cmd.MarkFlagFilename("file", "toml", "yaml", "yml", "env")

	return cmd
}

func runSync(cmd *cobra.Command, opts Options, global *globalFlags, flags syncFlags) error {
	logger := global.logger(cmd.ErrOrStderr())

	loadConfig := opts.LoadConfig
	if loadConfig == nil {
		loadConfig = config.Load
	}
	cfg, err := loadConfig(config.LoadOptions{
		EnvFile:         global.envFile,
		EnvFileRequired: cmd.Flags().Changed("env-file"),
	})
	if err != nil {
		return err
	}

	if flags.service != "" {
		cfg.ServiceID = flags.service
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout = flags.timeout
	}

	set, err := loadVariables(cfg, flags)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Debug("configuration loaded",
		"service", cfg.ServiceID,
		"base_url", cfg.BaseURL,
		"timeout", cfg.Timeout,
		"variables", set.Len(),
	)

	progress := format.NewProgress(cmd.OutOrStdout())
	if flags.dryRun {
		progress.Plan(cfg.ServiceID, set)
		return nil
	}

	var client envsync.Client
	if set.Len() > 0 {
		apiKey, err := keyring.Resolve(opts.resolveOptions())
		if err != nil {
			return fmt.Errorf("resolving API key: %w", err)
		}
		newClient := opts.NewAPIClient
		if newClient == nil {
			newClient = newRenderClient
		}
		client = newClient(apiKey, cfg, logger)
	}

	progress.Start(cfg.ServiceID, set.Len())
	res, err := envsync.New(client, progress).Sync(cmd.Context(), cfg.ServiceID, set)
	if err != nil {
		fmt.Fprintln(cmd.OutOrStdout())
		logger.Warn("sync interrupted",
			"succeeded", res.Succeeded,
			"failed", res.Failed,
			"not_attempted", set.Len()-len(res.Outcomes),
		)
		return err
	}
	progress.Summary(res)
	if !res.OK() {
		return ErrSyncFailed
	}
	return nil
}

// loadVariables builds the variable set from the variables file and --set
// overrides. A missing default file is not an error; a missing --file is.
// The file's service is used only when no other source named one.
func loadVariables(cfg *config.Config, flags syncFlags) (*vars.Set, error) {
	set := vars.NewSet()

	path, explicit := cfg.VarsFile, false
	if flags.file != "" {
		path, explicit = flags.file, true
	}
	if path != "" {
		file, err := vars.LoadFile(path)
		switch {
		case err == nil:
			set.Merge(file.Vars)
			if cfg.ServiceID == "" {
				cfg.ServiceID = file.Service
			}
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	overrides, err := vars.ParseAssignments(flags.sets)
	if err != nil {
		return nil, fmt.Errorf("invalid --set: %w", err)
	}
	set.Merge(overrides)
	return set, nil
}
