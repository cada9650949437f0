package host

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cwbudde/wav"
	"github.com/go-audio/audio"
)

// WAVBitDepth is the PCM resolution written to disk
const WAVBitDepth = 16

// ErrInvalidWAV is returned for files the decoder rejects
var ErrInvalidWAV = errors.New("host: invalid wav file")

// WAVWriter is a Sink that collects interleaved frames in memory and
// encodes them to a 16-bit PCM file on Close.
type WAVWriter struct {
	path       string
	sampleRate int
	channels   int
	outRate    int
	data       []float32
}

// NewWAVWriter creates a writer for channels at sampleRate. Nothing is
// written until Close.
func NewWAVWriter(path string, sampleRate, channels int) *WAVWriter {
	return &WAVWriter{
		path:       path,
		sampleRate: sampleRate,
		channels:   channels,
		outRate:    sampleRate,
	}
}

// SetOutputRate resamples to rate on Close
func (w *WAVWriter) SetOutputRate(rate int) {
	w.outRate = rate
}

// WriteBlock interleaves one rendered block
func (w *WAVWriter) WriteBlock(block [][]float32) error {
	if len(block) != w.channels {
		return fmt.Errorf("host: block has %d channels, writer %d", len(block), w.channels)
	}
	if w.channels == 0 {
		return nil
	}
	frames := len(block[0])
	for i := 0; i < frames; i++ {
		for ch := range block {
			w.data = append(w.data, block[ch][i])
		}
	}
	return nil
}

// Frames returns the number of frames collected
func (w *WAVWriter) Frames() int {
	if w.channels == 0 {
		return 0
	}
	return len(w.data) / w.channels
}

// Samples returns the collected interleaved samples
func (w *WAVWriter) Samples() []float32 {
	return w.data
}

// Close resamples if requested and writes the file
func (w *WAVWriter) Close() error {
	data := w.data
	if w.outRate != w.sampleRate {
		var err error
		data, err = Resample(data, w.channels, w.sampleRate, w.outRate)
		if err != nil {
			return err
		}
	}

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(w.path)
	if err != nil {
		return err
	}
	if err := WriteWAV(f, data, w.outRate, w.channels); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", w.path, err)
	}
	return f.Close()
}

// WriteWAV encodes interleaved float samples in [-1, 1] as 16-bit PCM
func WriteWAV(w io.WriteSeeker, samples []float32, sampleRate, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, WAVBitDepth, channels, 1)
	buf := &audio.Float32Buffer{
		Format: &audio.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
		},
		Data:           samples,
		SourceBitDepth: WAVBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// ReadWAV decodes a PCM file into interleaved float samples in [-1, 1]
func ReadWAV(path string) (samples []float32, sampleRate, channels int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, err
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, 0, 0, fmt.Errorf("%w: %s", ErrInvalidWAV, path)
	}

	depth := buf.SourceBitDepth
	if depth <= 0 {
		depth = WAVBitDepth
	}
	scale := float32(int64(1) << (depth - 1))
	samples = make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		samples[i] = float32(v) / scale
	}
	return samples, buf.Format.SampleRate, buf.Format.NumChannels, nil
}
