// Package state persists parameter values as a binary blob or a text preset.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/realmrhigh/theone/pkg/framework/param"
)

// Errors returned while loading state or presets
var (
	ErrTruncated      = errors.New("state: truncated")
	ErrPluginMismatch = errors.New("state: preset belongs to another plugin")
	ErrMissingKey     = errors.New("state: preset missing required key")
	ErrMalformedLine  = errors.New("state: malformed preset line")
)

// maxIDLength bounds a record's id so a corrupt length cannot force a huge read
const maxIDLength = 1 << 12

// Manager handles plugin state saving and loading.
//
// The blob is a flat run of little-endian records, one per parameter in
// registry order:
//
//	[u32 id length][id bytes][f32 raw value]
type Manager struct {
	registry *param.Registry
}

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{registry: registry}
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	var hdr [4]byte
	for _, p := range m.registry.All() {
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(p.ID)))
		if _, err := w.Write(hdr[:]); err != nil {
			return fmt.Errorf("state: write %s: %w", p.ID, err)
		}
		if _, err := io.WriteString(w, p.ID); err != nil {
			return fmt.Errorf("state: write %s: %w", p.ID, err)
		}
		binary.LittleEndian.PutUint32(hdr[:], math.Float32bits(float32(p.Raw())))
		if _, err := w.Write(hdr[:]); err != nil {
			return fmt.Errorf("state: write %s: %w", p.ID, err)
		}
	}
	return nil
}

// Bytes returns the state blob
func (m *Manager) Bytes() []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes cannot fail
	_ = m.Save(&buf)
	return buf.Bytes()
}

// Load reads records until the input ends. Records for unknown ids are
// skipped. An incomplete trailing record stops the load with ErrTruncated;
// every record before it stays applied. It returns the number of values
// applied.
func (m *Manager) Load(r io.Reader) (int, error) {
	applied := 0
	var hdr [4]byte
	idBuf := make([]byte, 0, 64)

	for {
		n, err := io.ReadFull(r, hdr[:])
		if err == io.EOF && n == 0 {
			return applied, nil
		}
		if err != nil {
			return applied, fmt.Errorf("%w: record %d length", ErrTruncated, applied)
		}

		idLen := binary.LittleEndian.Uint32(hdr[:])
		if idLen > maxIDLength {
			return applied, fmt.Errorf("%w: record %d id length %d", ErrTruncated, applied, idLen)
		}
		if cap(idBuf) < int(idLen) {
			idBuf = make([]byte, idLen)
		}
		idBuf = idBuf[:idLen]
		if _, err := io.ReadFull(r, idBuf); err != nil {
			return applied, fmt.Errorf("%w: record %d id", ErrTruncated, applied)
		}
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return applied, fmt.Errorf("%w: record %q value", ErrTruncated, idBuf)
		}

		value := float64(math.Float32frombits(binary.LittleEndian.Uint32(hdr[:])))
		if p := m.registry.Get(string(idBuf)); p != nil {
			p.Set(value)
			applied++
		}
	}
}

// LoadBytes is Load over an in-memory blob
func (m *Manager) LoadBytes(data []byte) (int, error) {
	return m.Load(bytes.NewReader(data))
}
