package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sharedstore-go/internal/cli/config"
	"github.com/yndnr/sharedstore-go/internal/cli/connection"
	"github.com/yndnr/sharedstore-go/internal/cli/output"
	"github.com/yndnr/sharedstore-go/internal/client"
	"github.com/yndnr/sharedstore-go/internal/infra/buildinfo"
	"github.com/yndnr/sharedstore-go/internal/telemetry/logger"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "sharedstore-cli",
		Usage:   "Talk to a sharedstore host through its HTTP bridge",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			PingCommand(),
			GetCommand(),
			SetCommand(),
			UpdateCommand(),
			DeleteCommand(),
			KeysCommand(),
			SelftestCommand(),
			ConfigCommand(),
		},
		Before: applyConfigFile,
	}
}

// applyConfigFile fills the global flags not given on the command line or
// in the environment from the CLI config file.
func applyConfigFile(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	defaults := map[string]string{
		"host-url":      cfg.HostURL,
		"origin":        cfg.Origin,
		"target-origin": cfg.TargetOrigin,
		"timeout":       cfg.Timeout.String(),
		"output":        cfg.Output,
	}
	for name, value := range defaults {
		if c.IsSet(name) || value == "" {
			continue
		}
		if err := c.Set(name, value); err != nil {
			return fmt.Errorf("config %s: %w", name, err)
		}
	}

	if _, err := output.ParseFormat(c.String("output")); err != nil {
		return err
	}
	return nil
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"SHAREDSTORE_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "host-url",
			Aliases: []string{"H"},
			Usage:   "Base URL of the sharedstore host",
			EnvVars: []string{"SHAREDSTORE_HOST_URL"},
			Value:   "http://127.0.0.1:5090",
		},
		&cli.StringFlag{
			Name:    "origin",
			Usage:   "Origin presented to the host; must be on its allow-list",
			EnvVars: []string{"SHAREDSTORE_ORIGIN"},
			Value:   connection.DefaultOrigin,
		},
		&cli.StringFlag{
			Name:    "target-origin",
			Usage:   "Origin the requests are addressed to (default: origin of --host-url, \"*\" for any)",
			EnvVars: []string{"SHAREDSTORE_TARGET_ORIGIN"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Aliases: []string{"t"},
			Usage:   "Reply deadline per request",
			EnvVars: []string{"SHAREDSTORE_TIMEOUT"},
			Value:   client.DefaultTimeout,
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
			Usage:   "Log protocol traffic to stderr",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	HostURL      string
	Origin       string
	TargetOrigin string
	Timeout      time.Duration
	Output       output.Format
	Verbose      bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, _ := output.ParseFormat(c.String("output"))
	return &GlobalFlags{
		HostURL:      c.String("host-url"),
		Origin:       c.String("origin"),
		TargetOrigin: c.String("target-origin"),
		Timeout:      c.Duration("timeout"),
		Output:       format,
		Verbose:      c.Bool("verbose"),
	}
}

// connect dials the host named by the global flags.
func connect(c *cli.Context) (*connection.Session, error) {
	flags := ParseGlobalFlags(c)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	if flags.Verbose {
		l, err := logger.New(logger.Config{Level: "debug", Format: "text", Output: c.App.ErrWriter})
		if err != nil {
			return nil, err
		}
		log = l
	}

	s, err := connection.Dial(connection.Options{
		HostURL:      flags.HostURL,
		Origin:       flags.Origin,
		TargetOrigin: flags.TargetOrigin,
		Timeout:      flags.Timeout,
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", flags.HostURL, err)
	}
	return s, nil
}

// render writes data in the format selected by --output.
func render(c *cli.Context, data any) error {
	return output.NewFormatter(ParseGlobalFlags(c).Output).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
