package cmd

import (
	"fmt"

	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/validator"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Validate the rarity files of an output directory",
	Long: `Validate re-reads the <set>.<rarity>.csv files of a directory and checks that
every line is a "<name>;<color>" pair with a known color code.

With --set only that set's files are checked, and every rarity given with
--rarity must have a file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		dir := cfg.OutputDir
		if len(args) == 1 {
			dir = args[0]
		}

		v := validator.NewValidator(dir)
		v.Set, _ = cmd.Flags().GetString("set")
		if v.Set != "" {
			if err := card.ValidateSetCode(v.Set); err != nil {
				return err
			}
			if cmd.Flags().Changed("rarity") {
				if v.Expect, err = requestedRarities(cmd, cfg); err != nil {
					return err
				}
			}
		}

		results, err := v.Validate()
		if err != nil {
			return fmt.Errorf("validation error: %v", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Validation Results:")
		fmt.Fprintln(out, "-------------------")

		if len(results.Errors) == 0 {
			fmt.Fprintf(out, "✅ '%s' is valid: %d files, %d cards.\n", dir, results.Files, results.Cards)
		} else {
			fmt.Fprintf(out, "❌ '%s' has %d validation errors:\n", dir, len(results.Errors))
			for i, err := range results.Errors {
				fmt.Fprintf(out, "%d. %s\n", i+1, err)
			}
		}

		if len(results.Warnings) > 0 {
			fmt.Fprintln(out, "\nWarnings:")
			for i, warn := range results.Warnings {
				fmt.Fprintf(out, "%d. %s\n", i+1, warn)
			}
		}

		if len(results.Errors) > 0 {
			return fmt.Errorf("validation failed")
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().String("set", "", "Only check the files of this set")
}
