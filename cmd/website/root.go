package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"website/internal/config"
	"website/internal/version"
)

var (
	// rootFlag is the site root; views/, public/ and server.log resolve against it
	rootFlag string
	// logLevelFlag overrides logging.level for the diagnostics log
	logLevelFlag string
)

var rootCmd = &cobra.Command{
	Use:   "website",
	Short: "website - a small server-rendered personal site",
	Long: `website serves a handful of templated pages and the files in public/,
and appends one line per request to server.log.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("website version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Site root directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Diagnostics level: debug, info, warn, error or off (default: logging.level)")
}

// modeValue is an on/off flag that remembers whether it was set.
type modeValue struct {
	on  bool
	set bool
}

var _ pflag.Value = (*modeValue)(nil)

func (m *modeValue) String() string {
	if m.on {
		return "on"
	}
	return "off"
}

func (m *modeValue) Set(s string) error {
	on, err := config.ParseMode(s)
	if err != nil {
		return err
	}
	m.on, m.set = on, true
	return nil
}

func (m *modeValue) Type() string { return "on|off" }

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(def string, choices ...string) *choiceValue {
	return &choiceValue{value: def, choices: choices}
}

func (c *choiceValue) String() string { return c.value }

func (c *choiceValue) Set(s string) error {
	s = strings.ToLower(s)
	for _, choice := range c.choices {
		if s == choice {
			c.value = s
			return nil
		}
	}
	return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
}

func (c *choiceValue) Type() string { return strings.Join(c.choices, "|") }
