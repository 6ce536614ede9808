package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/announce/config"
	annerrors "github.com/randalmurphal/announce/errors"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show and edit announce configuration",
		Long: `Show and edit announce configuration.

Values resolve from flags, then ANNOUNCE_* and CI environment variables,
then .announce.yaml in the repository, then ~/.config/announce/config.yaml,
then defaults. Credentials are read from the environment only.`,
	}

	cmd.AddCommand(
		newConfigGetCmd(a),
		newConfigSetCmd(a),
		newConfigUnsetCmd(a),
		newConfigListCmd(a),
	)
	return cmd
}

func newConfigGetCmd(a *app) *cobra.Command {
	var showSource bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the resolved value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if !knownKey(key) {
				return fmt.Errorf("%w: unknown config key %q", config.ErrInvalidValue, key)
			}
			value, source := a.newResolver().Resolve().GetWithSource(key)
			value = config.Mask(key, value)
			if showSource {
				fmt.Fprintf(a.stdout, "%s\t(%s)\n", value, sourceLabel(source))
				return nil
			}
			fmt.Fprintln(a.stdout, value)
			return nil
		},
	}
	cmd.Flags().BoolVar(&showSource, "source", false, "Also print where the value came from")
	return cmd
}

func newConfigSetCmd(a *app) *cobra.Command {
	var local bool

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save a value to the global (or repository) config file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			save := config.AnnounceSaveConfig()
			if local {
				root := a.root
				if root == "" {
					root = a.newResolver().GitRoot()
				}
				if root == "" {
					return annerrors.NewNotInGitRepoError(withMessenger)
				}
				if err := save.SaveLocal(root, key, value); err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "Set %s in %s\n", key, "repository config")
				return nil
			}
			if err := save.SaveGlobal(key, value); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Set %s in global config\n", key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "Write .announce.yaml in the repository root")
	return cmd
}

func newConfigUnsetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a key from the global config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.AnnounceSaveConfig().DeleteGlobalKey(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Removed %s from global config\n", args[0])
			return nil
		},
	}
}

func newConfigListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List resolved values and their sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved := a.newResolver().Resolve()
			keys := resolved.Keys()
			slices.Sort(keys)

			tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tVALUE\tSOURCE")
			for _, key := range keys {
				value, source := resolved.GetWithSource(key)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", key, config.Mask(key, value), sourceLabel(source))
			}
			return tw.Flush()
		},
	}
}

func knownKey(key string) bool {
	if slices.Contains(config.FileKeys(), key) {
		return true
	}
	_, ok := config.EnvAliases()[key]
	return ok
}

func sourceLabel(s config.Source) string {
	if s == "" {
		return "unset"
	}
	return string(s)
}
