package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/duboisf/renderenv/internal/keyring"
)

func newAuthCmd(opts Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the Render API key",
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
	}
	cmd.AddCommand(newAuthLoginCmd(opts), newAuthStatusCmd(opts))
	return cmd
}

func newAuthLoginCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Prompt for an API key and store it in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := keyring.Login(opts.resolveOptions()); err != nil {
				return fmt.Errorf("login: %w", err)
			}
			return nil
		},
	}
}

// keySource is implemented by providers that can tell where a key came from.
type keySource interface {
	Source() (name, key string, err error)
}

func newAuthStatusCmd(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API key is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.KeyringProvider == nil {
				return keyring.ErrNoAPIKey
			}

			name := opts.KeyringProvider.Name()
			var err error
			if src, ok := opts.KeyringProvider.(keySource); ok {
				name, _, err = src.Source()
			} else {
				_, err = opts.KeyringProvider.Get()
			}
			if errors.Is(err, keyring.ErrNoAPIKey) {
				fmt.Fprintln(out, "No API key configured. Run 'renderenv auth login' or set "+keyring.EnvVar+".")
				return err
			}
			if err != nil {
				return fmt.Errorf("reading API key: %w", err)
			}
			fmt.Fprintf(out, "API key found in %s.\n", name)
			return nil
		},
	}
}
