package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sharedstore-go/internal/cli/output"
	"github.com/yndnr/sharedstore-go/internal/client"
	"github.com/yndnr/sharedstore-go/internal/protocol"
)

// PingCommand returns the ping command.
func PingCommand() *cli.Command {
	return &cli.Command{
		Name:   "ping",
		Usage:  "Check that the host answers",
		Action: pingAction,
	}
}

// GetCommand returns the get command.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read the value of a key",
		ArgsUsage: "KEY",
		Action:    getAction,
	}
}

// SetCommand returns the set command.
func SetCommand() *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     "Store a value under a new key",
		ArgsUsage: "KEY [VALUE]",
		Flags:     valueFlags(),
		Action: func(c *cli.Context) error {
			return writeAction(c, protocol.CmdSet)
		},
	}
}

// UpdateCommand returns the update command.
func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Replace the value of an existing key",
		ArgsUsage: "KEY [VALUE]",
		Flags:     valueFlags(),
		Action: func(c *cli.Context) error {
			return writeAction(c, protocol.CmdUpdate)
		},
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     "Remove a key",
		ArgsUsage: "KEY",
		Action:    deleteAction,
	}
}

// KeysCommand returns the keys command.
func KeysCommand() *cli.Command {
	return &cli.Command{
		Name:    "keys",
		Aliases: []string{"ls"},
		Usage:   "List the known keys in insertion order",
		Action:  keysAction,
	}
}

func valueFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read the value from a file (\"-\" for stdin)",
		},
		&cli.BoolFlag{
			Name:    "string",
			Aliases: []string{"s"},
			Usage:   "Store VALUE as a JSON string even if it parses as JSON",
		},
	}
}

// pingResult is the output of ping.
type pingResult struct {
	Host      string `json:"host" yaml:"host"`
	OK        bool   `json:"ok" yaml:"ok"`
	ElapsedMS int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}

func (r pingResult) Table() *output.Table {
	return &output.Table{
		Headers: []string{"HOST", "OK", "ELAPSED"},
		Rows:    [][]string{{r.Host, fmt.Sprint(r.OK), fmt.Sprintf("%dms", r.ElapsedMS)}},
	}
}

// valueResult is the output of get.
type valueResult struct {
	Key   string `json:"key" yaml:"key"`
	Value any    `json:"value" yaml:"value"`
	raw   protocol.Value
}

func (r valueResult) Table() *output.Table {
	return &output.Table{
		Headers: []string{"KEY", "VALUE"},
		Rows:    [][]string{{r.Key, output.Compact(r.raw)}},
	}
}

// writeResult is the output of set, update and delete.
type writeResult struct {
	Cmd string `json:"cmd" yaml:"cmd"`
	Key string `json:"key" yaml:"key"`
	OK  bool   `json:"ok" yaml:"ok"`
}

func (r writeResult) Table() *output.Table {
	return &output.Table{
		Headers: []string{"CMD", "KEY", "OK"},
		Rows:    [][]string{{r.Cmd, r.Key, fmt.Sprint(r.OK)}},
	}
}

// withSession dials the host, runs fn and closes the session.
func withSession(c *cli.Context, fn func(ctx context.Context, s *client.Client) error) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	return fn(c.Context, s.Client)
}

func pingAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *client.Client) error {
		start := time.Now()
		if err := s.Ping(ctx); err != nil {
			return fmt.Errorf("ping: %w", err)
		}
		return render(c, pingResult{
			Host:      ParseGlobalFlags(c).HostURL,
			OK:        true,
			ElapsedMS: time.Since(start).Milliseconds(),
		})
	})
}

func getAction(c *cli.Context) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}

	return withSession(c, func(ctx context.Context, s *client.Client) error {
		v, err := s.GetValue(ctx, key)
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		var decoded any
		if err := v.Decode(&decoded); err != nil {
			return fmt.Errorf("get %s: stored value is not JSON: %w", key, err)
		}
		return render(c, valueResult{Key: key, Value: decoded, raw: v})
	})
}

func writeAction(c *cli.Context, cmd protocol.Command) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}
	value, err := readValue(c)
	if err != nil {
		return err
	}

	return withSession(c, func(ctx context.Context, s *client.Client) error {
		var err error
		if cmd == protocol.CmdSet {
			err = s.SetValue(ctx, key, value)
		} else {
			err = s.UpdateValue(ctx, key, value)
		}
		if err != nil {
			return fmt.Errorf("%s %s: %w", cmd, key, err)
		}
		return render(c, writeResult{Cmd: string(cmd), Key: key, OK: true})
	})
}

func deleteAction(c *cli.Context) error {
	key, err := requireKey(c)
	if err != nil {
		return err
	}

	return withSession(c, func(ctx context.Context, s *client.Client) error {
		if err := s.DeleteValue(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		return render(c, writeResult{Cmd: string(protocol.CmdDelete), Key: key, OK: true})
	})
}

func keysAction(c *cli.Context) error {
	return withSession(c, func(ctx context.Context, s *client.Client) error {
		keys, err := s.GetKeys(ctx)
		if err != nil {
			return fmt.Errorf("keys: %w", err)
		}
		return render(c, keys)
	})
}

func requireKey(c *cli.Context) (string, error) {
	key := c.Args().First()
	if key == "" {
		return "", errors.New("KEY argument required")
	}
	return key, nil
}

// readValue returns the value of set and update from the second argument or
// --file. Text that is valid JSON is sent as is, other text as a JSON string.
func readValue(c *cli.Context) (protocol.Value, error) {
	var text []byte
	switch path := c.String("file"); {
	case path == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		text = data
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read value file: %w", err)
		}
		text = data
	case c.Args().Len() >= 2:
		text = []byte(c.Args().Get(1))
	default:
		return nil, errors.New("VALUE argument or --file required")
	}

	if !c.Bool("string") && json.Valid(text) {
		return protocol.Value(text), nil
	}
	return protocol.NewValue(string(text))
}
