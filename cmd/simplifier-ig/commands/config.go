package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ArdonToonstra/simplifier-ig/internal/config"
	"github.com/ArdonToonstra/simplifier-ig/internal/settings"
)

// ConfigCmd groups the persisted-settings subcommands.
type ConfigCmd struct {
	Show  ConfigShowCmd  `cmd:"" default:"1" help:"Show effective invocation settings."`
	Clear ConfigClearCmd `cmd:"" help:"Wipe the persisted settings document."`
}

// ConfigShowCmd prints the stored settings and where each effective value
// would come from.
type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(g *Global) error {
	st, err := g.openSettings()
	if err != nil {
		return err
	}
	stored, err := st.Load()
	if err != nil {
		return err
	}

	fmt.Fprintf(g.Stdout, "Settings file: %s\n", st.Path())
	fmt.Fprintf(g.Stdout, "  inputPath:           %s\n", orUnset(stored.InputPath))
	fmt.Fprintf(g.Stdout, "  defaultOutputFolder: %s\n", orUnset(stored.DefaultOutputFolder))
	if stored.LastRunID != "" && stored.LastRunAt != nil {
		fmt.Fprintf(g.Stdout, "  last run:            %s at %s\n",
			stored.LastRunID, stored.LastRunAt.Format("2006-01-02 15:04:05"))
	}

	for _, env := range []string{settings.EnvInput, settings.EnvOutput, settings.EnvHome} {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(g.Stdout, "  %s=%s (overrides stored value)\n", env, v)
		}
	}

	input := stored.ResolveInput("")
	fmt.Fprintf(g.Stdout, "Effective input: %s\n", input)
	if _, err := os.Stat(filepath.Join(input, config.SettingsFileName)); err == nil {
		fmt.Fprintf(g.Stdout, "  %s present\n", config.SettingsFileName)
	} else {
		fmt.Fprintf(g.Stdout, "  %s missing (not a guide input tree)\n", config.SettingsFileName)
	}
	if _, err := os.Stat(filepath.Join(input, config.VariablesFileName)); err == nil {
		fmt.Fprintf(g.Stdout, "  %s present\n", config.VariablesFileName)
	}
	fmt.Fprintf(g.Stdout, "Effective output: %s\n", stored.ResolveOutput(""))
	return nil
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}

// ConfigClearCmd wipes the persisted settings document.
type ConfigClearCmd struct{}

func (c *ConfigClearCmd) Run(g *Global) error {
	st, err := g.openSettings()
	if err != nil {
		return err
	}
	if err := st.Clear(); err != nil {
		return err
	}
	fmt.Fprintf(g.Stdout, "Cleared %s\n", st.Path())
	return nil
}
