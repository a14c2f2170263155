package parse

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5))
	assert.Equal(t, 100.0, Clamp(150))
	assert.Equal(t, 42.0, Clamp(42))

	for v := -1000.0; v <= 1000; v += 7.5 {
		c := Clamp(v)
		assert.True(t, c >= 0 && c <= 100, "clamp(%v) = %v", v, c)
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		err  bool
	}{
		{raw: "37.25\r\n", want: 37.25},
		{raw: " 101 ", want: 100},
		{raw: "-3", want: 0},
		{raw: "12\n13", want: 12},
		{raw: "", err: true},
		{raw: "n/a", err: true},
		{raw: "NaN", err: true},
	}

	for _, tt := range tests {
		got, err := Percentage(tt.raw)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnparsable, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	const max = 65535

	scaled := ToScale(50, max)
	assert.True(t, scaled == 32767 || scaled == 32768, "scaled = %d", scaled)
	assert.Equal(t, 50, FromScale(scaled, max))

	for pct := 0; pct <= 100; pct++ {
		back := FromScale(ToScale(pct, max), max)
		assert.InDelta(t, pct, back, 1, "pct %d", pct)
	}

	assert.Equal(t, 0, ToScale(-10, max))
	assert.Equal(t, max, ToScale(200, max))
}

func TestTenthsKelvin(t *testing.T) {
	got, err := TenthsKelvin("3232\r\n", CPUBand)
	require.NoError(t, err)
	assert.InDelta(t, 50.05, got, 0.051)

	got, err = TenthsKelvin("2982", CPUBand)
	require.NoError(t, err)
	assert.InDelta(t, 25.05, got, 0.051)

	_, err = TenthsKelvin("2732", CPUBand)
	assert.ErrorIs(t, err, ErrImplausible)

	_, err = TenthsKelvin("", CPUBand)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestCelsiusGPUBand(t *testing.T) {
	got, err := Celsius("61", GPUBand)
	require.NoError(t, err)
	assert.Equal(t, 61.0, got)

	_, err = Celsius("0", GPUBand)
	assert.ErrorIs(t, err, ErrImplausible)

	_, err = Celsius("[N/A]", GPUBand)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestMaxZoneTemperature(t *testing.T) {
	raw := "Zone1 TempC: 45.2\nZone2 TempC: 52.8\nZone3 TempC: 10.0\n"

	got, err := MaxZoneTemperature(raw, CPUBand)
	require.NoError(t, err)
	assert.Equal(t, 52.8, got)
}

func TestMaxZoneTemperatureFormatList(t *testing.T) {
	raw := "\r\nZone  : ACPI\\ThermalZone\\TZ00_0\r\nTempK : 3282\r\nTempC : 55.1\r\n\r\n" +
		"Zone  : ACPI\\ThermalZone\\TZ01_0\r\nTempK : 2982\r\nTempC : 150.0\r\n"

	got, err := MaxZoneTemperature(raw, CPUBand)
	require.NoError(t, err)
	assert.Equal(t, 55.1, got)
}

func TestMaxZoneTemperatureNoPlausibleValue(t *testing.T) {
	_, err := MaxZoneTemperature("Zone1 TempC: 10.0\nZone2 TempC: 120", CPUBand)
	assert.ErrorIs(t, err, ErrImplausible)
	assert.False(t, errors.Is(err, ErrUnparsable))

	_, err = MaxZoneTemperature("Get-WmiObject : Access denied", CPUBand)
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestFlag(t *testing.T) {
	v, err := Flag("1\r\n")
	require.NoError(t, err)
	assert.True(t, v)

	v, err = Flag("0")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = Flag("")
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestEmbeddedPercent(t *testing.T) {
	raw := "Volume: front-left: 26214 /  40% / -23.88 dB,   front-right: 26214 /  40% / -23.88 dB"
	got, err := EmbeddedPercent(raw)
	require.NoError(t, err)
	assert.Equal(t, 40.0, got)

	got, err = EmbeddedPercent("intel_backlight,backlight,750,75%,1000")
	require.NoError(t, err)
	assert.Equal(t, 75.0, got)

	_, err = EmbeddedPercent("muted")
	assert.ErrorIs(t, err, ErrUnparsable)
}

func TestBandContains(t *testing.T) {
	assert.True(t, CPUBand.Contains(25))
	assert.True(t, CPUBand.Contains(100))
	assert.False(t, CPUBand.Contains(24.9))
	assert.False(t, GPUBand.Contains(0))
	assert.True(t, GPUBand.Contains(0.5))
}
