package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/practica/practica-link/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage practica-link configuration",
		Long: `Configuration management commands for practica-link.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for practica-link.

The configuration is saved to ~/.config/practica/apiconfig with
owner-only permissions, since it holds the API token.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath := cfgFile
			if configPath == "" {
				var err error
				configPath, err = config.DefaultAPIConfigPath()
				if err != nil {
					return err
				}
			}

			if !force {
				if _, err := os.Stat(configPath); err == nil {
					fmt.Printf("Configuration already exists at: %s\n", configPath)
					fmt.Println("Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			fmt.Println("Practica Configuration Setup")
			fmt.Println("============================")
			fmt.Println()

			cfg := config.NewAPIConfig()
			reader := bufio.NewReader(os.Stdin)

			fmt.Printf("Platform URL [%s]: ", cfg.PlatformURL)
			urlInput, _ := reader.ReadString('\n')
			if urlInput = strings.TrimSpace(urlInput); urlInput != "" {
				cfg.PlatformURL = urlInput
			}

			// Token input is hidden on a TTY.
			for cfg.APIToken == "" {
				token, err := promptToken()
				if err != nil {
					return err
				}
				if token == "" {
					fmt.Println("  Error: API token is required")
					continue
				}
				cfg.APIToken = token
			}

			fmt.Printf("Upload timeout in seconds [%d]: ", cfg.Upload.TimeoutSeconds)
			timeoutInput, _ := reader.ReadString('\n')
			if timeoutInput = strings.TrimSpace(timeoutInput); timeoutInput != "" {
				if v, err := strconv.Atoi(timeoutInput); err == nil {
					cfg.Upload.TimeoutSeconds = v
				}
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveAPIConfig(cfg, configPath); err != nil {
				return err
			}

			fmt.Printf("\nConfiguration saved to: %s\n", configPath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")
	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Platform URL:   %s\n", cfg.PlatformURL)
			fmt.Printf("API token:      %s\n", maskToken(cfg.APIToken))
			fmt.Printf("Upload timeout: %ds\n", cfg.Upload.TimeoutSeconds)
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgFile != "" {
				fmt.Println(cfgFile)
				return nil
			}
			path, err := config.DefaultAPIConfigPath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

// maskToken keeps the first and last four characters of a token visible.
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}
