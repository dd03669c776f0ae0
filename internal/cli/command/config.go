package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokstore/internal/cli/output"
	"github.com/yndnr/tokstore/internal/infra/confloader"
	"github.com/yndnr/tokstore/internal/server/config"
	"github.com/yndnr/tokstore/internal/storage"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Aliases: []string{"cfg"},
		Usage:   "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration with secrets masked",
				Action: configShow,
			},
			{
				Name:   "validate",
				Usage:  "Validate the effective configuration",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	data := confloader.ToMap(config.Sanitize(cfg))

	// Nested sections read better as YAML than as a flat table.
	if !c.IsSet("output") {
		return output.NewFormatter(output.FormatYAML).Format(c.App.Writer, data)
	}
	return printResult(c, data)
}

func configValidate(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := config.Verify(cfg); err != nil {
		return err
	}

	a, err := storage.ResolveAdapter(cfg.Session.Adapter, cfg.Directory.ManagesSessions)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "configuration ok (adapter: %s)\n", a)
	return nil
}
