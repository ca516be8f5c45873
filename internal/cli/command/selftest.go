package command

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sharedstore-go/internal/cli/output"
	"github.com/yndnr/sharedstore-go/internal/client"
	"github.com/yndnr/sharedstore-go/internal/host/engine"
	"github.com/yndnr/sharedstore-go/internal/protocol"
)

// ErrSelftestFailed is returned when at least one selftest step fails.
var ErrSelftestFailed = errors.New("selftest failed")

// SelftestCommand returns the selftest command.
func SelftestCommand() *cli.Command {
	return &cli.Command{
		Name:  "selftest",
		Usage: "Run the CRUD round trip against the host and report each step",
		Description: "The test key must not exist on the host. The run leaves the store as it found it\n" +
			"unless a step fails midway.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "key",
				Usage: "Key used by the test",
				Value: "test1",
			},
			&cli.StringFlag{
				Name:  "index-key",
				Usage: "Reserved index key of the host",
				Value: engine.DefaultIndexKey,
			},
		},
		Action: selftestAction,
	}
}

// step is one line of the selftest report.
type step struct {
	Name      string `json:"name" yaml:"name"`
	Passed    bool   `json:"passed" yaml:"passed"`
	Detail    string `json:"detail,omitempty" yaml:"detail,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms" yaml:"elapsed_ms"`
}

type report struct {
	Steps  []step `json:"steps" yaml:"steps"`
	Passed int    `json:"passed" yaml:"passed"`
	Failed int    `json:"failed" yaml:"failed"`
}

func (r *report) Table() *output.Table {
	t := &output.Table{Headers: []string{"STEP", "RESULT", "ELAPSED", "DETAIL"}}
	for _, s := range r.Steps {
		result := "PASS"
		if !s.Passed {
			result = "FAIL"
		}
		detail := s.Detail
		if detail == "" {
			detail = "-"
		}
		t.AddRow(s.Name, result, fmt.Sprintf("%dms", s.ElapsedMS), detail)
	}
	t.AddRow("", fmt.Sprintf("%d/%d", r.Passed, len(r.Steps)), "", "")
	return t
}

type content struct {
	Content string `json:"content"`
}

func selftestAction(c *cli.Context) error {
	s, err := connect(c)
	if err != nil {
		return err
	}
	defer s.Close()

	rep := runSelftest(c.Context, s.Client, c.String("key"), c.String("index-key"))
	if err := render(c, rep); err != nil {
		return err
	}
	if rep.Failed > 0 {
		return fmt.Errorf("%w: %d of %d steps", ErrSelftestFailed, rep.Failed, len(rep.Steps))
	}
	return nil
}

// runSelftest walks the set/update/get/delete life cycle of key, including
// the refusals the host must answer with.
func runSelftest(ctx context.Context, c *client.Client, key, indexKey string) *report {
	rep := &report{}
	run := func(name string, fn func() error) bool {
		start := time.Now()
		err := fn()
		st := step{Name: name, Passed: err == nil, ElapsedMS: time.Since(start).Milliseconds()}
		if err != nil {
			st.Detail = err.Error()
			rep.Failed++
		} else {
			rep.Passed++
		}
		rep.Steps = append(rep.Steps, st)
		return err == nil
	}

	// Every later step writes to key, so a key owned by someone else
	// stops the run here.
	ok := run("keys without test key", func() error {
		keys, err := c.GetKeys(ctx)
		if err != nil {
			return err
		}
		if slices.Contains(keys, key) {
			return fmt.Errorf("key %q already exists", key)
		}
		return nil
	})
	if !ok {
		return rep
	}
	run("ping", func() error {
		return c.Ping(ctx)
	})
	run("set", func() error {
		return c.SetValue(ctx, key, content{Content: "test"})
	})
	run("set existing is refused", func() error {
		return wantRefusal(c.SetValue(ctx, key, content{Content: "test"}), protocol.ErrSetExisting)
	})
	run("set index key is refused", func() error {
		return wantRefusal(c.SetValue(ctx, indexKey, content{Content: "test"}), protocol.ErrReservedKey)
	})
	run("update", func() error {
		return c.UpdateValue(ctx, key, content{Content: "test updated"})
	})
	run("get", func() error {
		v, err := c.GetValue(ctx, key)
		if err != nil {
			return err
		}
		var got content
		if err := v.Decode(&got); err != nil {
			return err
		}
		if got.Content != "test updated" {
			return fmt.Errorf("got %s", v)
		}
		return nil
	})
	run("keys with test key", func() error {
		keys, err := c.GetKeys(ctx)
		if err != nil {
			return err
		}
		if !slices.Contains(keys, key) {
			return fmt.Errorf("key %q missing from %v", key, keys)
		}
		return nil
	})
	run("delete", func() error {
		return c.DeleteValue(ctx, key)
	})
	run("delete missing is refused", func() error {
		return wantRefusal(c.DeleteValue(ctx, key), protocol.ErrDeleteMissing)
	})
	run("keys after delete", func() error {
		keys, err := c.GetKeys(ctx)
		if err != nil {
			return err
		}
		if slices.Contains(keys, key) {
			return fmt.Errorf("key %q still listed", key)
		}
		return nil
	})

	return rep
}

func wantRefusal(err error, want *protocol.ErrorDetail) error {
	if err == nil {
		return fmt.Errorf("accepted, want refusal %d", want.ID)
	}
	if !errors.Is(err, want) {
		return fmt.Errorf("got %v, want refusal %d", err, want.ID)
	}
	return nil
}
