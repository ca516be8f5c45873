package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sharedstore-go/internal/cli/config"
	"github.com/yndnr/sharedstore-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI config file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective settings",
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write the effective settings to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

func effectiveConfig(c *cli.Context) *config.CLIConfig {
	flags := ParseGlobalFlags(c)
	return &config.CLIConfig{
		HostURL:      flags.HostURL,
		Origin:       flags.Origin,
		TargetOrigin: flags.TargetOrigin,
		Timeout:      flags.Timeout,
		Output:       string(flags.Output),
	}
}

func configShow(c *cli.Context) error {
	cfg := effectiveConfig(c)
	if ParseGlobalFlags(c).Output == output.FormatTable {
		return render(c, map[string]string{
			"config":        c.String("config"),
			"host_url":      cfg.HostURL,
			"origin":        cfg.Origin,
			"target_origin": cfg.TargetOrigin,
			"timeout":       cfg.Timeout.String(),
			"output":        cfg.Output,
		})
	}
	return render(c, cfg)
}

func configInit(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(effectiveConfig(c), path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(writer(c), "wrote %s\n", path)
	return nil
}
