package command

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokstore/internal/cli/output"
	"github.com/yndnr/tokstore/internal/core/service"
	"github.com/yndnr/tokstore/internal/infra/buildinfo"
	"github.com/yndnr/tokstore/internal/server/config"
	"github.com/yndnr/tokstore/internal/storage"
	"github.com/yndnr/tokstore/internal/storage/adapter"
	"github.com/yndnr/tokstore/internal/telemetry/logger"
	"github.com/yndnr/tokstore/pkg/secret"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "tokstore-cli",
		Usage:   "TokStore command-line tool",
		Version: buildinfo.Get().String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			TokenCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		HideVersion: true,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			EnvVars: []string{"TOKSTORE_CONFIG"},
		},
		&cli.StringSliceFlag{
			Name:  "set",
			Usage: "Override a configuration key (e.g. --set session.adapter=file)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   string(output.FormatTable),
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Log at the configured level instead of errors only",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	ConfigFile string
	Overrides  []string
	Output     string
	Verbose    bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		ConfigFile: c.String("config"),
		Overrides:  c.StringSlice("set"),
		Output:     c.String("output"),
		Verbose:    c.Bool("verbose"),
	}
}

// parseOverrides turns key=value pairs into a config override map.
func parseOverrides(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", p)
		}
		out[key] = value
	}
	return out, nil
}

// loadConfig loads configuration from the global flags. It is not verified.
func loadConfig(c *cli.Context) (*config.ServerConfig, error) {
	flags := ParseGlobalFlags(c)
	overrides, err := parseOverrides(flags.Overrides)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.ConfigFile, overrides)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger writes to the app's error stream. Without --verbose only
// errors are shown.
func newLogger(c *cli.Context, cfg *config.ServerConfig) (*slog.Logger, error) {
	lc := cfg.LoggerConfig(c.App.ErrWriter)
	if !ParseGlobalFlags(c).Verbose {
		lc.Level = "error"
	}
	return logger.New(lc)
}

// openStore builds the token store for the configured backend. The returned
// release func must be called once the command is done.
func openStore(c *cli.Context) (*service.TokenStore, func(), error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, err
	}

	log, err := newLogger(c, cfg)
	if err != nil {
		return nil, nil, err
	}

	hasher, err := secret.New(cfg.HasherConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("init hasher: %w", err)
	}

	a, backend, err := adapter.Open(cfg.StorageConfig(), log)
	if err != nil {
		return nil, nil, fmt.Errorf("open backend: %w", err)
	}
	if a == storage.AdapterMemory {
		fmt.Fprintln(c.App.ErrWriter, memoryAdapterNotice)
	}

	store := service.NewTokenStore(backend, hasher, service.WithLogger(log))
	release := func() {
		if _, err := store.Quit(context.Background()); err != nil {
			log.Error("backend release failed", "error", err)
		}
	}
	return store, release, nil
}

// memoryAdapterNotice warns that tokens do not outlive the invocation.
const memoryAdapterNotice = "notice: session.adapter is memory; tokens are discarded when this command exits (use file or redis to keep them)"

// printResult formats data to the app's output stream.
func printResult(c *cli.Context, data any) error {
	format, err := output.ParseFormat(ParseGlobalFlags(c).Output)
	if err != nil {
		return err
	}
	return output.NewFormatter(format).Format(c.App.Writer, data)
}

// printDegraded reports that the request was accepted without effect.
func printDegraded(c *cli.Context) error {
	fmt.Fprintln(c.App.ErrWriter, "no local session store configured (NO_LOCAL_SESSION)")
	return nil
}
