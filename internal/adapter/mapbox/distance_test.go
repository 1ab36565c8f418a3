package mapbox

import (
	"math"
	"testing"
)

func TestHaversineDistance(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{"same point", 43.238949, 76.889709, 43.238949, 76.889709, 0, 0.001},
		{"across town", 43.238949, 76.889709, 43.262654, 76.928640, 4.1, 0.3},
		{"city to city", 43.238949, 76.889709, 51.169392, 71.449074, 972, 5},
	}

	for _, tt := range tests {
		got := HaversineDistance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
		if math.Abs(got-tt.wantKm) > tt.tolerance {
			t.Errorf("%s: got %.3f km, want %.1f km (±%.1f)", tt.name, got, tt.wantKm, tt.tolerance)
		}
	}
}

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{0.25, "250m"},
		{0.999, "999m"},
		{1.0, "1.0km"},
		{12.34, "12.3km"},
	}

	for _, tt := range tests {
		if got := FormatDistance(tt.km); got != tt.want {
			t.Errorf("FormatDistance(%v) = %q, want %q", tt.km, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{5, "5min"},
		{59, "59min"},
		{60, "1h"},
		{75, "1h 15min"},
		{120, "2h"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.minutes); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
