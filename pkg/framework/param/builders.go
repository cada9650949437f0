package param

// Common parameter helpers

// FrequencyParameter creates a standard frequency parameter with logarithmic scaling
func FrequencyParameter(id string, name string, min, max, defaultVal float64) *Builder {
	return New(id, name).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Logarithmic().
		Gesture().
		Formatter(FrequencyFormatter, FrequencyParser)
}

// TimeParameter creates an envelope-style time parameter in seconds with log scaling
func TimeParameter(id string, name string, minSec, maxSec, defaultSec float64) *Builder {
	return New(id, name).
		Range(minSec, maxSec).
		Default(defaultSec).
		Unit("s").
		Logarithmic().
		Formatter(SecondsFormatter, SecondsParser)
}

// LevelParameter creates a 0-1 level shown as a percentage
func LevelParameter(id string, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(0, 1).
		Default(defaultVal).
		Unit("%").
		Gesture().
		Formatter(PercentFormatter, PercentParser)
}

// AmountParameter creates a bipolar -1..1 amount shown as a signed percentage
func AmountParameter(id string, name string, defaultVal float64) *Builder {
	return New(id, name).
		Range(-1, 1).
		Default(defaultVal).
		Bipolar().
		Formatter(func(v float64) string {
			return SignedFormatter(0, "%")(v * 100)
		}, func(s string) (float64, error) {
			v, err := SignedParser("%")(s)
			return v / 100, err
		})
}

// PanParameter creates a stereo pan parameter (-1 left, 1 right)
func PanParameter(id string, name string) *Builder {
	return New(id, name).
		Range(-1, 1).
		Default(0).
		Bipolar().
		Gesture().
		Formatter(PanFormatter, PanParser)
}

// SemitoneParameter creates an integer transpose parameter
func SemitoneParameter(id string, name string, span int) *Builder {
	return New(id, name).
		Range(float64(-span), float64(span)).
		Default(0).
		Unit("st").
		Integer().
		Bipolar().
		Formatter(SignedFormatter(0, "st"), SignedParser("st"))
}

// OctaveParameter creates an integer octave shift parameter
func OctaveParameter(id string, name string, span int) *Builder {
	return New(id, name).
		Range(float64(-span), float64(span)).
		Default(0).
		Unit("oct").
		Integer().
		Bipolar().
		Formatter(SignedFormatter(0, "oct"), SignedParser("oct"))
}

// CentsParameter creates a fine-tune parameter in cents
func CentsParameter(id string, name string) *Builder {
	return New(id, name).
		Range(-100, 100).
		Default(0).
		Unit("ct").
		Bipolar().
		Precision(1).
		Formatter(SignedFormatter(1, "ct"), SignedParser("ct"))
}

// RateParameter creates a log-scaled rate parameter (Hz) for LFOs
func RateParameter(id string, name string, minHz, maxHz, defaultHz float64) *Builder {
	return New(id, name).
		Range(minHz, maxHz).
		Default(defaultHz).
		Unit("Hz").
		Logarithmic().
		Precision(2)
}

// ChoiceParameter creates an enumerated parameter over the given names
func ChoiceParameter(id string, name string, choices ...string) *Builder {
	return New(id, name).Enum(choices...)
}

// ToggleParameter creates an on/off switch
func ToggleParameter(id string, name string, on bool) *Builder {
	def := 0.0
	if on {
		def = 1
	}
	return New(id, name).Toggle().Default(def)
}
