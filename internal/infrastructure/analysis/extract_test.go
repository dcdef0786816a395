package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"debug around", "Loading YOLO...\n{\"a\":1}\nDone in 2s", `{"a":1}`, true},
		{"brace in string", `log {"msg":"curly } inside","n":2} tail`, `{"msg":"curly } inside","n":2}`, true},
		{"escaped quote", `{"msg":"say \"}\" ok"}`, `{"msg":"say \"}\" ok"}`, true},
		{"skips invalid span", "cfg {not json}\n{\"ok\":true}", `{"ok":true}`, true},
		{"nested", `x {"severity":{"level":"high"},"detections":[]} y`, `{"severity":{"level":"high"},"detections":[]}`, true},
		{"none", "Road", "", false},
		{"unbalanced", `{"a":1`, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractJSONObject([]byte(tc.input))
			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			var want map[string]any
			require.NoError(t, json.Unmarshal([]byte(tc.want), &want))
			gotJSON, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tc.want, string(gotJSON))
		})
	}
}

func TestExtractKeepsNumbersVerbatim(t *testing.T) {
	got, ok := ExtractJSONObject([]byte(`{"conf":0.87500000000000001,"count":12345678901234567890}`))
	require.True(t, ok)
	assert.Equal(t, json.Number("0.87500000000000001"), got["conf"])
	assert.Equal(t, json.Number("12345678901234567890"), got["count"])
}

func TestLastLine(t *testing.T) {
	assert.Equal(t, "Road", LastLine([]byte("Using device cpu\r\nRoad\r\n\n")))
	assert.Equal(t, "Not a Road", LastLine([]byte("debug\n  Not a Road  ")))
	assert.Equal(t, "", LastLine([]byte("\n\n")))
}

func TestIsRoad(t *testing.T) {
	assert.True(t, IsRoad(" Road "))
	assert.True(t, IsRoad("road"))
	assert.False(t, IsRoad("Not a Road"))
	assert.False(t, IsRoad(""))
}
