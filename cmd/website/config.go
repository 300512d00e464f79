package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"website/internal/config"
	"website/internal/paths"
)

var (
	configFormat    = newChoiceValue("json", "json", "yaml", "toml")
	configInitForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage site configuration",
	Long:  "View and create the site configuration stored in site.{json,yaml,toml}",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration after defaults, the config file and
environment variables (PORT, MAINTENANCE_MODE, SITE_*) are applied.

Examples:
  website config show                # JSON
  website config show --format yaml
  website config show --format toml`,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default site.toml",
	RunE:  runConfigInit,
}

func init() {
	configShowCmd.Flags().Var(configFormat, "format", "Output format (json, yaml, toml)")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing site.toml")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	root, err := paths.Root(rootFlag)
	if err != nil {
		return err
	}
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	out, err := cfg.Encode(configFormat.String())
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	root, err := paths.Root(rootFlag)
	if err != nil {
		return err
	}

	target := filepath.Join(root, config.FileName+".toml")
	if _, err := os.Stat(target); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}

	path, err := config.DefaultConfig().Save(root)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
