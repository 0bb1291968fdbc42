// Command micropad runs the macro keypad and manages its stored profiles.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/chaz8081/micropad/internal/config"
	"github.com/chaz8081/micropad/internal/logging"
)

// CLI is the command tree.
type CLI struct {
	Config   string `help:"Path to config file (default: ~/.config/micropad/config.yaml)" type:"path"`
	LogLevel string `help:"Override log_level from the config file (trace, debug, info, warn, error)"`

	Run      RunCmd      `cmd:"" default:"1" help:"Start the keypad"`
	Profiles ProfilesCmd `cmd:"" help:"Inspect and edit stored profiles"`
	Reset    ResetCmd    `cmd:"" help:"Erase all profiles and restore the defaults"`
	Conf     ConfCmd     `cmd:"" name:"config" help:"Manage the config file"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("micropad"),
		kong.Description("Configurable macro keypad"),
		kong.UsageOnError(),
	)

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config validation: %v\n", err)
		os.Exit(2)
	}

	logger, closers, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to setup logger: %v\n", err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	raw, rawCloser, err := logging.OpenRaw(cfg.LogLevel, cfg.LogRawFile)
	if err != nil {
		logger.Error("failed to open raw log file", "file", cfg.LogRawFile, "error", err)
	}
	if rawCloser != nil {
		closers = append(closers, rawCloser)
	}

	ctx.Bind(cfg)
	ctx.BindTo(raw, (*logging.RawLogger)(nil))
	err = ctx.Run()

	for _, c := range closers {
		_ = c.Close()
	}
	ctx.FatalIfErrorf(err)
}

// loadConfig loads the config from the specified path, or falls back to
// the default config path, or uses built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadOrDefault(config.DefaultConfigPath())
}
