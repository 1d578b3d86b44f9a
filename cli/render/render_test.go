package render

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

type sample struct {
	Key      string   `json:"key" yaml:"key"`
	Status   bool     `json:"status" yaml:"status"`
	Count    int      `json:"count" yaml:"count"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
	Note     string   `json:"note,omitempty" yaml:"note,omitempty"`
	Hidden   string   `json:"-" yaml:"-"`
}

var value = sample{
	Key:      "abc",
	Status:   true,
	Count:    3,
	Errors:   []string{"first", "second"},
	Warnings: []string{},
	Hidden:   "secret",
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{" table ", FormatTable, false},
		{"yaml", FormatYAML, false},
		{"msgpack", FormatMsgpack, false},
		{"", "", false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "json, table, yaml, or msgpack")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRenderer_InvalidFormat(t *testing.T) {
	_, err := NewRenderer(&bytes.Buffer{}, "csv", false)
	assert.Error(t, err)
}

func TestNewRenderer_DefaultsToJSONOffTerminal(t *testing.T) {
	r, err := NewRenderer(&bytes.Buffer{}, "", false)
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, r.Format())
}

func TestRender_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatJSON, false, &buf).Render(value))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got["key"])
	assert.NotContains(t, got, "note")
	assert.NotContains(t, buf.String(), "secret")
}

func TestRender_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatYAML, false, &buf).Render(value))

	var got sample
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got.Key)
	assert.Equal(t, []string{"first", "second"}, got.Errors)
}

func TestRender_Msgpack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatMsgpack, false, &buf).Render(value))

	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "abc", got["key"])
	assert.Equal(t, true, got["status"])
	assert.NotContains(t, got, "note")
}

func TestRender_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatTable, true, &buf).Render(&value))

	want := "" +
		"key:       abc\n" +
		"status:    true\n" +
		"count:     3\n" +
		"errors:    first\n" +
		"           second\n" +
		"warnings:  -\n"
	assert.Equal(t, want, buf.String())
}

func TestRender_TableNoAnsiOnPlainWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatTable, false, &buf).Render(value))
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestRender_TableScalar(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRendererWithWriter(FormatTable, true, &buf).Render("plain"))
	assert.Equal(t, "plain\n", buf.String())
}

func TestRender_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewRendererWithWriter(Format("xml"), false, &buf).Render(value))
}
