package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Common parameter formatters and parsers

// FrequencyFormatter formats frequency values with Hz/kHz
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

// FrequencyParser parses frequency strings
func FrequencyParser(str string) (float64, error) {
	str = strings.TrimSpace(str)

	lower := strings.ToLower(str)
	if strings.HasSuffix(lower, "khz") {
		numStr := strings.TrimSpace(str[:len(str)-3])
		val, err := strconv.ParseFloat(numStr, 64)
		if err != nil {
			return 0, err
		}
		return val * 1000, nil
	}

	if strings.HasSuffix(lower, "hz") {
		str = strings.TrimSpace(str[:len(str)-2])
	}
	return strconv.ParseFloat(str, 64)
}

// SecondsFormatter formats a time in seconds, switching to ms below one second
func SecondsFormatter(seconds float64) string {
	if seconds < 1 {
		return fmt.Sprintf("%.1f ms", seconds*1000)
	}
	return fmt.Sprintf("%.2f s", seconds)
}

// SecondsParser parses "120 ms", "1.5 s" or a bare number of seconds
func SecondsParser(str string) (float64, error) {
	str = strings.ToLower(strings.TrimSpace(str))

	if strings.HasSuffix(str, "ms") {
		val, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(str, "ms")), 64)
		if err != nil {
			return 0, err
		}
		return val / 1000, nil
	}

	str = strings.TrimSpace(strings.TrimSuffix(str, "s"))
	return strconv.ParseFloat(str, 64)
}

// PercentFormatter formats a 0-1 value as a percentage
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value*100)
}

// PercentParser parses percentage strings into 0-1
func PercentParser(str string) (float64, error) {
	str = strings.TrimSuffix(strings.TrimSpace(str), "%")
	v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
	if err != nil {
		return 0, err
	}
	return v / 100, nil
}

// PanFormatter formats pan position
func PanFormatter(pan float64) string {
	if math.Abs(pan) < 0.01 {
		return "C"
	} else if pan < 0 {
		return fmt.Sprintf("%.0fL", -pan*100)
	}
	return fmt.Sprintf("%.0fR", pan*100)
}

// PanParser parses pan position strings
func PanParser(str string) (float64, error) {
	str = strings.ToUpper(strings.TrimSpace(str))

	if str == "C" || str == "CENTER" {
		return 0, nil
	}

	if strings.HasSuffix(str, "L") {
		numStr := strings.TrimSuffix(str, "L")
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return -val / 100, nil
	}

	if strings.HasSuffix(str, "R") {
		numStr := strings.TrimSuffix(str, "R")
		val, err := strconv.ParseFloat(strings.TrimSpace(numStr), 64)
		if err != nil {
			return 0, err
		}
		return val / 100, nil
	}

	// Try to parse as plain number (-1 to 1)
	return strconv.ParseFloat(str, 64)
}

// SignedFormatter returns a formatter that always shows the sign
func SignedFormatter(decimals int, unit string) func(float64) string {
	return func(v float64) string {
		s := strconv.FormatFloat(v, 'f', decimals, 64)
		if v > 0 {
			s = "+" + s
		}
		return withUnit(s, unit)
	}
}

// SignedParser parses values written by SignedFormatter
func SignedParser(unit string) func(string) (float64, error) {
	return func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		if unit != "" {
			str = strings.TrimSpace(strings.TrimSuffix(str, unit))
		}
		return strconv.ParseFloat(strings.TrimPrefix(str, "+"), 64)
	}
}
