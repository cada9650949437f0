package host

import (
	"math"

	dspresample "github.com/cwbudde/algo-dsp/dsp/resample"
)

// Resample converts interleaved samples between rates, one channel at a
// time. The output is aligned with the input: the filter's group delay is
// trimmed from the start and its tail flushed with silence, so a frame at
// time t lands at time t in the result.
func Resample(samples []float32, channels, fromRate, toRate int) ([]float32, error) {
	if fromRate == toRate || channels < 1 || len(samples) == 0 {
		return samples, nil
	}
	frames := len(samples) / channels

	var (
		out    []float32
		in     []float64
		delay  int
		length int
	)
	for ch := 0; ch < channels; ch++ {
		r, err := dspresample.NewForRates(
			float64(fromRate),
			float64(toRate),
			dspresample.WithQuality(dspresample.QualityBest),
		)
		if err != nil {
			return nil, err
		}
		if in == nil {
			up, down := r.Ratio()
			// The prototype FIR is linear phase, centred in the upsampled domain
			center := float64(len(r.Prototype())-1) / 2
			delay = int(math.Round(center / float64(down)))
			length = int(math.Round(float64(frames) * float64(up) / float64(down)))
			in = make([]float64, frames+r.TapsPerPhase())
			out = make([]float32, length*channels)
		}

		for i := 0; i < frames; i++ {
			in[i] = float64(samples[i*channels+ch])
		}
		res := r.Process(in)
		for i := 0; i < length && delay+i < len(res); i++ {
			out[i*channels+ch] = float32(res[delay+i])
		}
	}
	return out, nil
}
