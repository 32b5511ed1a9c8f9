package cmd

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/config"
	"github.com/spf13/cobra"
)

// configCmd represents the config command group
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the setcolors configuration file",
	Long:  `Commands for managing the setcolors configuration file.`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the configuration file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := config.InitConfig(); err != nil {
			return fmt.Errorf("error initializing config: %v", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Config file initialized at:", config.GetConfigFilePath())
		return nil
	},
}

// configShowCmd prints the effective configuration
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file, .env and
SETCOLORS_* environment variables, and the global flags.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", config.GetConfigFilePath())
		return toml.NewEncoder(out).Encode(cfg)
	},
}

// configSetRaritiesCmd changes the rarities used when --rarity is omitted
var configSetRaritiesCmd = &cobra.Command{
	Use:   "set-rarities <rarities>",
	Short: "Set the default rarities, e.g. M,R,U,C",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rarities, err := card.ParseRarities(args)
		if err != nil {
			return err
		}
		rarities = card.Unique(rarities)
		if len(rarities) == 0 {
			return fmt.Errorf("no rarity given")
		}

		cfg, err := config.InitConfig()
		if err != nil {
			return err
		}

		labels := make([]string, len(rarities))
		for i, r := range rarities {
			labels[i] = r.Label()
		}
		cfg.DefaultRarities = labels

		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Default rarities set to: %s\n", strings.Join(labels, ","))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetRaritiesCmd)
}
