// Package cli provides the command-line interface for practica-link.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/api"
	"github.com/practica/practica-link/internal/config"
	"github.com/practica/practica-link/internal/logging"
)

var (
	// Global flags
	cfgFile    string
	apiToken   string
	tokenFile  string // Path to file containing the API token
	apiBaseURL string
	verbose    bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by main package at startup
var (
	Version   = "v1.2.0-dev"
	BuildTime = "2026-08-31"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "practica-link",
		Short: "Practica Link - document upload client for the Practica platform",
		Long: `Practica Link ` + Version + ` - Built: ` + BuildTime + `
Upload client documents to the Practica tax platform from the command line.

Typical flow:
  practica-link folders tree              # find a destination folder
  practica-link upload --folder 42 *.pdf  # upload into it

Documents can also be submitted against pending document requests:
  practica-link requests list
  practica-link requests submit <request-id> w2.pdf`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewDefaultLogger()
			if verbose {
				logging.SetGlobalLevel(-1) // zerolog.DebugLevel
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&apiToken, "api-token", "", "Practica API token (overrides all other sources)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Path to file containing the API token")
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "api-url", "", "Practica platform URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling operations...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newUploadCmd())
	rootCmd.AddCommand(newFoldersCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newRequestsCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context is cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// loadConfig loads the API config and applies env and flag overrides.
// Precedence: flags over env vars over the config file.
func loadConfig() (*config.APIConfig, error) {
	cfg, err := config.LoadAPIConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	if apiBaseURL != "" {
		cfg.PlatformURL = apiBaseURL
	}
	if tokenFile != "" {
		data, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read token file: %w", err)
		}
		cfg.APIToken = trimToken(string(data))
	}
	if apiToken != "" {
		cfg.APIToken = apiToken
	}

	return cfg, nil
}

// newAPIClient builds the platform client from config and global flags.
func newAPIClient() (*api.Client, *config.APIConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}
