package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/audiolab/sofaconv/internal/updater"
	"github.com/audiolab/sofaconv/pkg/config"
	"github.com/audiolab/sofaconv/pkg/logger"
	"github.com/audiolab/sofaconv/pkg/upstream"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load() // Ignore error if .env doesn't exist

	var configFile, conventionsPath, logLevel string
	var assumeYes bool

	root := &cobra.Command{
		Use:   "sofaconv",
		Short: "sofaconv - SOFA convention cache and compiler",
		Long: `sofaconv maintains a local cache of SOFA convention definitions and
compiles each tab-separated source file into a nested JSON record.

Conventions define what data a SOFA file stores and how it is stored. The
cache is synchronized against the official SOFAtoolbox repository; compiled
records are rebuilt on every run so that output format upgrades propagate
even when upstream did not change.`,
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file (optional)")
	root.PersistentFlags().StringVar(&conventionsPath, "path", "", "Path to the local convention cache (overrides config)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	// Version command
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sofaconv v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	// Update command: sync with upstream, then compile everything
	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Synchronize conventions with upstream and recompile them",
		Long: `Download the official SOFA conventions, overwrite cached copies that
changed, and compile every cached source file into its JSON record.

If the official conventions contain errors, updating can break consumers of
the compiled records. Read the documentation before continuing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, conventionsPath, logLevel)
			if err != nil {
				return err
			}
			if !assumeYes && !confirm() {
				fmt.Println("Updating the conventions was canceled.")
				return nil
			}
			return runUpdate(cmd.Context(), cfg)
		},
	}
	updateCmd.Flags().BoolVarP(&assumeYes, "assume-yes", "y", false, "Update without asking for confirmation")
	root.AddCommand(updateCmd)

	// Compile command: rebuild records from the cache without fetching
	root.AddCommand(&cobra.Command{
		Use:   "compile",
		Short: "Recompile cached conventions without contacting upstream",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, conventionsPath, logLevel)
			if err != nil {
				return err
			}
			return runCompile(cfg)
		},
	})

	// List command: show cached conventions
	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached conventions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configFile, conventionsPath, logLevel)
			if err != nil {
				return err
			}
			return runList(cfg)
		},
	})

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration from file and flags
func loadConfig(configFile, conventionsPath, logLevel string) (*config.Config, error) {
	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if conventionsPath != "" {
		cfg.Paths.Conventions = conventionsPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := logger.Init(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Encoding:    cfg.Log.Encoding,
	}); err != nil {
		return nil, err
	}

	return cfg, nil
}

// confirm asks the user to acknowledge an upstream update
func confirm() bool {
	fmt.Println("Are you sure that you want to update the conventions? " +
		"Read the documentation before continuing. (y/n)")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(response) == "y"
}

// runUpdate synchronizes the cache and recompiles all conventions
func runUpdate(ctx context.Context, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("reading SOFA conventions", zap.String("url", cfg.Upstream.PageURL))

	u := updater.New(cfg, upstream.NewClient(cfg))
	report, err := u.Run(ctx)
	if err != nil {
		return err
	}

	for _, name := range report.Added {
		fmt.Printf("- added new convention: %s\n", name)
	}
	for _, name := range report.Updated {
		fmt.Printf("- updated existing convention: %s\n", name)
	}
	if report.Changed() {
		fmt.Println("... done.")
	} else {
		fmt.Println("... conventions already up to date.")
	}

	return failOnCompileErrors(report)
}

// runCompile rebuilds every record from the local cache
func runCompile(cfg *config.Config) error {
	defer func() { _ = logger.Sync() }()

	u := updater.New(cfg, upstream.NewClient(cfg))
	report := &updater.Report{}
	if err := u.CompileAll(report); err != nil {
		return err
	}

	fmt.Printf("compiled %d conventions\n", len(report.Compiled))
	return failOnCompileErrors(report)
}

// runList prints the cached convention names
func runList(cfg *config.Config) error {
	u := updater.New(cfg, upstream.NewClient(cfg))
	names, err := u.LocalConventions()
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(strings.TrimSuffix(name, cfg.Upstream.Extension))
	}
	return nil
}

// failOnCompileErrors reports failed documents and turns them into a
// non-zero exit
func failOnCompileErrors(report *updater.Report) error {
	if len(report.Failed) > 0 {
		for _, failure := range report.Failed {
			fmt.Fprintf(os.Stderr, "failed to compile %s: %v\n", failure.Name, failure.Err)
		}
		return fmt.Errorf("%d of %d conventions failed to compile",
			len(report.Failed), len(report.Failed)+len(report.Compiled))
	}
	return nil
}
