package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/arcanaland/setcolors/internal/card"
	"github.com/arcanaland/setcolors/internal/config"
	"github.com/arcanaland/setcolors/internal/export"
	"github.com/arcanaland/setcolors/internal/harvest"
	"github.com/arcanaland/setcolors/internal/logging"
	"github.com/arcanaland/setcolors/internal/scryfall"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// RootCmd fetches a set and writes one CSV file per rarity
var RootCmd = &cobra.Command{
	Use:   "setcolors <set>",
	Short: "Export the colors of a Magic set's booster cards, one CSV file per rarity",
	Long: `setcolors queries Scryfall for the booster cards of a set, classifies each card
by color and writes <set>.<rarity>.csv files with one "<name>;<color>" line per card.

Color codes are W, U, B, R or G for single-colored cards, M for multicolored
cards and C for colorless ones.

Examples:
  setcolors NEO
  setcolors DMU -r M,R
  setcolors one -r c -o ./exports`,
	Args:          setArg,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	},
	RunE: runHarvest,
}

func init() {
	flags := RootCmd.PersistentFlags()
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/setcolors/config.toml)")
	flags.StringSliceP("rarity", "r", nil, "Rarities among M,R,U,C, comma or space separated (default M,R,U)")
	flags.String("api-url", "", "Scryfall API base URL")
	flags.String("user-agent", "", "User-Agent header sent to Scryfall")
	flags.Duration("timeout", 0, "Per-request timeout (default 30s)")
	flags.Bool("all-pages", false, "Follow every result page instead of the first one")
	flags.BoolP("verbose", "v", false, "Show debug logs")
	flags.Bool("no-color", false, "Disable colored output")

	RootCmd.Flags().StringP("output", "o", "", "Output directory (default from config, else the working directory)")

	RootCmd.AddCommand(validateCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// setArg requires exactly one valid set code
func setArg(cmd *cobra.Command, args []string) error {
	if err := cobra.ExactArgs(1)(cmd, args); err != nil {
		return err
	}
	return card.ValidateSetCode(args[0])
}

func runHarvest(cmd *cobra.Command, args []string) error {
	set := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	rarities, err := requestedRarities(cmd, cfg)
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.OutputDir
	}

	logger := newLogger(cmd)
	client, err := newClient(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report := harvest.New(client, export.NewWriter(output), logger).Run(ctx, set, rarities)
	printReport(cmd.OutOrStdout(), report)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d rarities failed: %w", len(failed), len(report.Results), report.Err())
	}
	return nil
}

// loadConfig reads the config file then applies the flags shared by all commands
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.APIURL = v
	}
	if v, _ := cmd.Flags().GetString("user-agent"); v != "" {
		cfg.UserAgent = v
	}
	if v, _ := cmd.Flags().GetDuration("timeout"); v > 0 {
		cfg.Timeout = v.String()
	}
	if v, _ := cmd.Flags().GetBool("all-pages"); v {
		cfg.AllPages = true
	}
	return cfg, nil
}

// requestedRarities parses --rarity, falling back to the configured defaults
func requestedRarities(cmd *cobra.Command, cfg *config.Config) ([]card.Rarity, error) {
	values, _ := cmd.Flags().GetStringSlice("rarity")
	if len(values) == 0 {
		return cfg.Rarities()
	}

	rarities, err := card.ParseRarities(values)
	if err != nil {
		return nil, err
	}
	if len(rarities) == 0 {
		return cfg.Rarities()
	}
	return rarities, nil
}

func newLogger(cmd *cobra.Command) *logrus.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return logging.New(cmd.ErrOrStderr(), verbose)
}

func newClient(cfg *config.Config, logger logrus.FieldLogger) (*scryfall.Client, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	return scryfall.NewClient(scryfall.Config{
		BaseURL:   cfg.APIURL,
		UserAgent: cfg.UserAgent,
		Timeout:   timeout,
		RateLimit: cfg.RateLimit,
		AllPages:  cfg.AllPages,
		Logger:    logger,
	}), nil
}

// printReport prints one line per rarity and a summary of the failures
func printReport(w io.Writer, report *harvest.Report) {
	for _, res := range report.Results {
		if res.Err != nil {
			fmt.Fprintf(w, "❌ %s %s\n", color.RedString("%-10s", res.Rarity), res.Err)
			continue
		}
		fmt.Fprintf(w, "✅ %s %s %s\n",
			color.CyanString("%-10s", res.Rarity),
			color.HiWhiteString("%s", res.Path),
			color.HiBlackString("(%d cards)", res.Cards))
	}

	failed := report.Failed()
	if len(failed) == 0 {
		return
	}

	labels := make([]string, len(failed))
	for i, res := range failed {
		labels[i] = res.Rarity.Label()
	}
	fmt.Fprintf(w, "\nFailed rarities for %s: %s\n", report.Set, color.RedString("%s", strings.Join(labels, ", ")))
}
