package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ExtractJSONObject returns the first balanced {...} span in out that
// decodes as a JSON object. Numbers are kept as json.Number so the payload
// round-trips unchanged.
func ExtractJSONObject(out []byte) (map[string]any, bool) {
	for start := bytes.IndexByte(out, '{'); start >= 0; {
		if end := matchBrace(out, start); end > start {
			if obj, ok := decodeObject(out[start : end+1]); ok {
				return obj, true
			}
		}
		next := bytes.IndexByte(out[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

// matchBrace returns the index of the brace closing out[start], skipping
// braces inside string literals. -1 when unbalanced.
func matchBrace(out []byte, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(out); i++ {
		c := out[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func decodeObject(span []byte) (map[string]any, bool) {
	decoder := json.NewDecoder(bytes.NewReader(span))
	decoder.UseNumber()
	var obj map[string]any
	if err := decoder.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	return obj, true
}

// LastLine returns the trimmed last non-empty line of out.
func LastLine(out []byte) string {
	lines := strings.Split(strings.ReplaceAll(string(out), "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
