package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for log configuration.
type Flags struct {
	Level  string
	Format string
}

// NewConfig creates a new [Config] using these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds CLI flag values for log configuration.
type Config struct {
	Level  string
	Format string
	Flags  Flags
}

// NewConfig returns a [Config] with the default flag names.
func NewConfig() *Config {
	return Flags{
		Level:  "log-level",
		Format: "log-format",
	}.NewConfig()
}

// RegisterFlags adds logging flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Level, c.Flags.Level, "warn",
		fmt.Sprintf("log level, one of: %s", strings.Join(GetAllLevelStrings(), ", ")))
	flags.StringVar(&c.Format, c.Flags.Format, "text",
		fmt.Sprintf("log format, one of: %s", strings.Join(GetAllFormatStrings(), ", ")))
}

// RegisterCompletions registers shell completions for log flags on cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Level,
		cobra.FixedCompletions(GetAllLevelStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Level, err)
	}

	err = cmd.RegisterFlagCompletionFunc(c.Flags.Format,
		cobra.FixedCompletions(GetAllFormatStrings(), cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Format, err)
	}

	return nil
}

// NewLogger creates a logger writing to w at the configured level and
// format.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	h, err := NewHandlerFromStrings(w, c.Level, c.Format)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
