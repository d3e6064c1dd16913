package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/hoard/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the hoard config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default config file",
	Long: `Write the commented default config. The path defaults to
.hoard/config.yaml. An existing file is kept unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := defaultConfigPath
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one config value, keeping comments",
	Long: `Set a dotted config key in the active config file. Comments and
unrelated keys are preserved. The result is validated before it is kept.

Examples:
  hoard config set store.backend sqlite
  hoard config set schema.allow_incompatible true
  hoard config set flags.auto-ulid false`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFileUsed()

		before, err := os.ReadFile(path) //nolint:gosec // G304: path is the active config file
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		if err := config.SetValue(path, args[0], args[1]); err != nil {
			return err
		}

		v := viper.New()
		config.SetDefaults(v)
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return restoreConfig(path, before, fmt.Errorf("reading %s: %w", path, err))
		}
		if _, err := config.Load(v); err != nil {
			return restoreConfig(path, before, err)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %s (%s)\n", args[0], args[1], path)
		return err
	},
}

// restoreConfig puts back the previous contents after a rejected edit.
func restoreConfig(path string, before []byte, cause error) error {
	if before == nil {
		_ = os.Remove(path)
	} else if err := os.WriteFile(path, before, 0o600); err != nil {
		return fmt.Errorf("%w (restoring %s: %v)", cause, path, err)
	}
	return cause
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings := viper.AllSettings()
		if jsonOutput {
			return newFormatter(cmd.OutOrStdout()).JSON(settings)
		}
		data, err := yaml.Marshal(settings)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", configFileUsed())
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configSetCmd, configShowCmd)

	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
}
