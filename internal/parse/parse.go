// Package parse turns raw tool output into typed values. Every parser is
// pure; failures wrap ErrUnparsable.
package parse

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// ErrUnparsable is returned when output cannot be turned into a value.
var ErrUnparsable = stderrors.New("unparsable output")

// ErrImplausible is returned when a reading falls outside its band.
var ErrImplausible = stderrors.New("implausible reading")

// Band is a plausibility range for a reading. MinExclusive makes the lower
// bound open.
type Band struct {
	Min, Max     float64
	MinExclusive bool
}

var (
	// CPUBand applies to every CPU temperature source.
	CPUBand = Band{Min: 25, Max: 100}
	// GPUBand accepts any positive reading below an obvious unit error.
	GPUBand = Band{Min: 0, Max: 150, MinExclusive: true}
)

// Contains reports whether v lies in the band.
func (b Band) Contains(v float64) bool {
	if math.IsNaN(v) || v > b.Max {
		return false
	}
	if b.MinExclusive {
		return v > b.Min
	}

	return v >= b.Min
}

func unparsable(raw string) error {
	return fmt.Errorf("%w: %q", ErrUnparsable, truncate(raw))
}

func truncate(s string) string {
	const max = 64
	if len(s) > max {
		return s[:max] + "..."
	}

	return s
}

// Clamp limits a percentage to [0,100].
func Clamp(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}

	return v
}

// ClampInt is Clamp for integer inputs.
func ClampInt(v int) int {
	return int(Clamp(float64(v)))
}

// Number parses a trimmed float.
func Number(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, unparsable(raw)
	}

	return v, nil
}

// Percentage parses a decimal and clamps it.
func Percentage(raw string) (float64, error) {
	v, err := Number(firstLine(raw))
	if err != nil {
		return 0, err
	}

	return Clamp(v), nil
}

// ToScale maps a 0-100 percentage onto [0,max].
func ToScale(pct, max int) int {
	return int(float64(ClampInt(pct)) / 100 * float64(max))
}

// FromScale maps a [0,max] reading back onto 0-100.
func FromScale(raw, max int) int {
	if max <= 0 {
		return 0
	}

	return ClampInt(int(math.Round(float64(raw) / float64(max) * 100)))
}

// TenthsKelvin converts a tenths-of-Kelvin reading to Celsius rounded to
// one decimal place.
func TenthsKelvin(raw string, band Band) (float64, error) {
	v, err := Number(firstLine(raw))
	if err != nil {
		return 0, err
	}

	return checkBand(round1(v/10-273.15), band)
}

// Celsius parses a plain Celsius reading.
func Celsius(raw string, band Band) (float64, error) {
	v, err := Number(firstLine(raw))
	if err != nil {
		return 0, err
	}

	return checkBand(v, band)
}

// CheckBand validates an already-numeric reading.
func CheckBand(v float64, band Band) (float64, error) {
	return checkBand(v, band)
}

func checkBand(v float64, band Band) (float64, error) {
	if !band.Contains(v) {
		return 0, fmt.Errorf("%w: %.1f", ErrImplausible, v)
	}

	return v, nil
}

// MaxZoneTemperature extracts every "TempC: x" field from a multi-zone
// listing and returns the highest in-band value.
func MaxZoneTemperature(raw string, band Band) (float64, error) {
	found := false
	best := math.Inf(-1)

	scanner := bufio.NewScanner(strings.NewReader(raw))
	for scanner.Scan() {
		line := scanner.Text()
		idx := strings.Index(line, "TempC")
		if idx < 0 {
			continue
		}
		rest := line[idx+len("TempC"):]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			continue
		}
		v, err := Number(rest[colon+1:])
		if err != nil {
			continue
		}
		found = true
		if band.Contains(v) && v > best {
			best = v
		}
	}

	if !found {
		return 0, unparsable(raw)
	}
	if math.IsInf(best, -1) {
		return 0, fmt.Errorf("%w: no zone in band", ErrImplausible)
	}

	return best, nil
}

// Flag parses a 0/1 flag.
func Flag(raw string) (bool, error) {
	switch strings.TrimSpace(firstLine(raw)) {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}

	return false, unparsable(raw)
}

var percentToken = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*%`)

// EmbeddedPercent returns the first "NN%" token in free text.
func EmbeddedPercent(raw string) (float64, error) {
	m := percentToken.FindStringSubmatch(raw)
	if m == nil {
		return 0, unparsable(raw)
	}

	v, err := Number(m[1])
	if err != nil {
		return 0, err
	}

	return Clamp(v), nil
}

func firstLine(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexAny(raw, "\r\n"); i >= 0 {
		return raw[:i]
	}

	return raw
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
