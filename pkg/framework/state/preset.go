package state

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Preset keys
const (
	KeyName     = "name"
	KeyVersion  = "version"
	KeyPluginID = "pluginId"
	paramPrefix = "param."
)

// PresetHeader is the metadata block of a preset file
type PresetHeader struct {
	Name     string
	Version  string
	PluginID string
}

// WritePreset writes a UTF-8 key=value preset: the header keys first, then
// one param.<id> line per parameter in registry order.
func (m *Manager) WritePreset(w io.Writer, h PresetHeader) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s=%s\n", KeyName, oneLine(h.Name))
	fmt.Fprintf(bw, "%s=%s\n", KeyVersion, oneLine(h.Version))
	fmt.Fprintf(bw, "%s=%s\n", KeyPluginID, oneLine(h.PluginID))
	for _, p := range m.registry.All() {
		fmt.Fprintf(bw, "%s%s=%s\n", paramPrefix, p.ID, strconv.FormatFloat(p.Raw(), 'g', -1, 64))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("state: write preset: %w", err)
	}
	return nil
}

// ReadPreset parses a preset and applies its parameter values.
//
// The whole file is checked before anything is applied: a malformed line,
// a missing header key or a plugin id other than pluginID leaves every
// parameter untouched. Unknown parameter ids are skipped.
func (m *Manager) ReadPreset(r io.Reader, pluginID string) (PresetHeader, error) {
	var h PresetHeader
	seen := make(map[string]bool, 3)
	values := make(map[string]float64)

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if line == 1 {
			text = strings.TrimPrefix(text, "\ufeff")
		}
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		key, value, ok := strings.Cut(text, "=")
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if !ok || key == "" {
			return h, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, line, text)
		}

		switch {
		case key == KeyName:
			h.Name = value
		case key == KeyVersion:
			h.Version = value
		case key == KeyPluginID:
			h.PluginID = value
		case strings.HasPrefix(key, paramPrefix):
			v, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return h, fmt.Errorf("%w: line %d: %s: %v", ErrMalformedLine, line, key, err)
			}
			values[strings.TrimPrefix(key, paramPrefix)] = v
			continue
		default:
			// Unknown keys are ignored
			continue
		}
		seen[key] = true
	}
	if err := sc.Err(); err != nil {
		return h, fmt.Errorf("state: read preset: %w", err)
	}

	for _, key := range []string{KeyName, KeyVersion, KeyPluginID} {
		if !seen[key] {
			return h, fmt.Errorf("%w: %s", ErrMissingKey, key)
		}
	}
	if h.PluginID != pluginID {
		return h, fmt.Errorf("%w: got %q, want %q", ErrPluginMismatch, h.PluginID, pluginID)
	}

	m.registry.SetValues(values)
	return h, nil
}

func oneLine(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
