// Package plugin defines the contract between a host and an instrument or
// effect, plus an embeddable Base that implements the persistence side of it.
package plugin

import (
	"io"

	"github.com/realmrhigh/theone/pkg/framework/bus"
	"github.com/realmrhigh/theone/pkg/framework/param"
	"github.com/realmrhigh/theone/pkg/framework/process"
	"github.com/realmrhigh/theone/pkg/framework/state"
	"github.com/realmrhigh/theone/pkg/midi"
)

// Plugin is what a host drives.
//
// ProcessAudio runs on the render goroutine and must not block or allocate.
// ProcessMidiMessage mutates voice state and must not run concurrently with
// ProcessAudio. Everything else is control-path and may block.
type Plugin interface {
	Info() Info
	Parameters() *param.Registry

	// Lifecycle
	Initialize(cfg bus.IOConfig) error
	SetAudioIOConfig(cfg bus.IOConfig) error
	Shutdown()

	// Render
	ProcessAudio(ctx *process.Context)
	ProcessMidiMessage(msg midi.Message)

	// Persistence
	SaveState() []byte
	LoadState(data []byte) error
	SavePreset(w io.Writer, name string) error
	LoadPreset(r io.Reader) (state.PresetHeader, error)

	// Host lifecycle hooks
	OnBackground()
	OnForeground()
	OnLowMemory()
}
