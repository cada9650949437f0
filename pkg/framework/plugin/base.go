package plugin

import (
	"fmt"
	"io"
	"os"

	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/framework/state"
)

// Base provides core functionality for all plugins: metadata, the
// parameter registry, state and preset persistence, and default host hooks.
type Base struct {
	info   Info
	params *param.Registry
	state  *state.Manager

	// Optional callbacks for customization
	onPanic      func()
	onBackground func()
	onForeground func()
}

// NewBase creates a new plugin base
func NewBase(info Info) (*Base, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	b := &Base{
		info:   info,
		params: param.NewRegistry(),
	}

	// Initialize state manager with parameter registry
	b.state = state.NewManager(b.params)

	return b, nil
}

// Info returns the plugin metadata
func (b *Base) Info() Info {
	return b.info
}

// Parameters returns the parameter registry for configuration
func (b *Base) Parameters() *param.Registry {
	return b.params
}

// SaveState returns the binary state blob
func (b *Base) SaveState() []byte {
	return b.state.Bytes()
}

// LoadState applies a state blob. On ErrTruncated the records before the
// cut stay applied.
func (b *Base) LoadState(data []byte) error {
	_, err := b.state.LoadBytes(data)
	return err
}

// SavePreset writes a text preset under the given name
func (b *Base) SavePreset(w io.Writer, name string) error {
	return b.state.WritePreset(w, state.PresetHeader{
		Name:     name,
		Version:  b.info.Version,
		PluginID: b.info.ID,
	})
}

// LoadPreset reads a text preset, rejecting one saved by another plugin
func (b *Base) LoadPreset(r io.Reader) (state.PresetHeader, error) {
	return b.state.ReadPreset(r, b.info.ID)
}

// SavePresetFile writes a preset to path
func (b *Base) SavePresetFile(path, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("plugin: save preset: %w", err)
	}
	if err := b.SavePreset(f, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadPresetFile reads a preset from path
func (b *Base) LoadPresetFile(path string) (state.PresetHeader, error) {
	f, err := os.Open(path)
	if err != nil {
		return state.PresetHeader{}, fmt.Errorf("plugin: load preset: %w", err)
	}
	defer f.Close()
	return b.LoadPreset(f)
}
