package cli

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pluginforge/create-plugin/internal/config"
	"github.com/pluginforge/create-plugin/internal/manifest"
)

var configKeys = []string{
	config.KeyMirror,
	config.KeyTimeout,
	config.KeyMaxArchiveBytes,
	config.KeyMaxEntries,
	config.KeyLicense,
	config.KeyMinPlatformVersion,
	config.KeyAuthorName,
	config.KeyAuthorEmail,
	config.KeyAuthorURL,
	config.KeyAuthorHandle,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage user settings",
	Long: `Read and write settings stored at ~/.create-plugin/config.yaml.

Every key can also be set through the environment, e.g. CREATE_PLUGIN_MIRROR
or CREATE_PLUGIN_AUTHOR_NAME.

Keys: ` + strings.Join(configKeys, ", "),
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := checkConfigValue(key, value); err != nil {
			return err
		}
		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("setting config key %q: %w", key, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !slices.Contains(configKeys, args[0]) {
			return unknownKey(args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), config.Get(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting with its effective value",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, key := range configKeys {
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", key, config.Get(key))
		}
		return nil
	},
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key %q: choose one of %s", key, strings.Join(configKeys, ", "))
}

// checkConfigValue rejects values that would only fail later, at create time.
func checkConfigValue(key, value string) error {
	switch key {
	case config.KeyTimeout:
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q: use a positive duration such as 45s", key, value)
		}
	case config.KeyMaxArchiveBytes, config.KeyMaxEntries:
		if n, err := strconv.ParseInt(value, 10, 64); err != nil || n <= 0 {
			return fmt.Errorf("invalid %s %q: use a positive integer", key, value)
		}
	case config.KeyMinPlatformVersion:
		if _, err := manifest.ParsePlatformVersion(value); err != nil {
			return err
		}
	case config.KeyMirror, config.KeyLicense, config.KeyAuthorName, config.KeyAuthorEmail,
		config.KeyAuthorURL, config.KeyAuthorHandle:
	default:
		return unknownKey(key)
	}
	return nil
}
