package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/culpritdev/culprit/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration settings",
	Long: `Manage configuration. Values live in .culprit/config.yaml at the
repository root and can be overridden per key by environment variables
(culprit config keys lists them).

EXAMPLES:
  culprit config set run.retries 2
  culprit config get ref-base
  culprit config list`,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]
		if err := config.ValidateKey(key, value); err != nil {
			fatal(err)
		}
		repo := openRepo(rootCtx)
		if err := config.WriteFileKey(repo.Root, key, value); err != nil {
			fatal(err)
		}
		config.Set(key, value)
		fmt.Printf("Set %s = %s (in %s)\n", key, value, config.FilePath(repo.Root))
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Show one configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		if config.Lookup(key) == nil {
			fatalf("unknown config key %q (culprit config keys lists them)", key)
		}
		fmt.Println(config.GetString(key))
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show every effective configuration value",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.Keys {
			fmt.Printf("%s = %s\n", k.Name, config.GetString(k.Name))
		}
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the known configuration keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range config.Keys {
			fmt.Printf("%-22s %s", k.Name, k.Description)
			if k.EnvVar != "" {
				fmt.Printf(" (env %s)", k.EnvVar)
			}
			if k.Default != "" {
				fmt.Printf(" [default %s]", k.Default)
			}
			fmt.Println()
		}
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}
