package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewFormatter(t *testing.T) {
	if _, ok := NewFormatter(FormatJSON).(*JSONFormatter); !ok {
		t.Error("expected JSONFormatter")
	}
	if _, ok := NewFormatter(FormatYAML).(*YAMLFormatter); !ok {
		t.Error("expected YAMLFormatter")
	}
	if _, ok := NewFormatter("unknown").(*TableFormatter); !ok {
		t.Error("expected TableFormatter as default")
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{"key": "test1", "value": map[string]string{"content": "test"}}

	if err := (&JSONFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "\n  \"key\": \"test1\"") {
		t.Errorf("output not indented: %s", buf.String())
	}
}

func TestYAMLFormatter(t *testing.T) {
	tests := []struct {
		name string
		data any
		want []string
	}{
		{
			name: "map",
			data: map[string]any{"key": "test1", "ok": true},
			want: []string{"key: test1", "ok: true"},
		},
		{
			name: "raw json value",
			data: json.RawMessage(`{"content":"test","n":[1,2]}`),
			want: []string{"content: test", "n:", "- 1"},
		},
		{
			name: "list",
			data: []string{"a", "b"},
			want: []string{"- a", "- b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&YAMLFormatter{}).Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("output missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}

type keyed struct{ key, value string }

func (k keyed) Table() *Table {
	return &Table{Headers: []string{"KEY", "VALUE"}, Rows: [][]string{{k.key, k.value}}}
}

func TestTableFormatter(t *testing.T) {
	tests := []struct {
		name      string
		data      any
		noHeaders bool
		want      string
	}{
		{
			name: "strings",
			data: []string{"test1", "test2"},
			want: "VALUE\ntest1\ntest2\n",
		},
		{
			name:      "strings no headers",
			data:      []string{"test1"},
			noHeaders: true,
			want:      "test1\n",
		},
		{
			name: "sorted map",
			data: map[string]string{"b": "2", "a": "1"},
			want: "KEY  VALUE\na    1\nb    2\n",
		},
		{
			name: "tabular",
			data: keyed{"test1", `{"content":"test"}`},
			want: "KEY    VALUE\ntest1  {\"content\":\"test\"}\n",
		},
		{
			name: "nil",
			data: nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			f := &TableFormatter{NoHeaders: tt.noHeaders}
			if err := f.Format(&buf, tt.data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("Format() =\n%q\nwant\n%q", buf.String(), tt.want)
			}
		})
	}
}

func TestTableFormatter_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (&TableFormatter{}).Format(&buf, struct {
		N int `json:"n"`
	}{7}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"n": 7`) {
		t.Errorf("fallback output = %s", buf.String())
	}
}

func TestCompact(t *testing.T) {
	if got := Compact([]byte("{ \"a\" : [1, 2] }")); got != `{"a":[1,2]}` {
		t.Errorf("Compact() = %q", got)
	}
	if got := Compact([]byte("not json")); got != "not json" {
		t.Errorf("Compact() = %q", got)
	}
}
