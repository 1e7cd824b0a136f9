package vpn

import (
	"math"
	"testing"
)

func TestDistance_KnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		expectedKm             float64
		toleranceKm            float64
	}{
		{"Berlin to Paris", 52.5200, 13.4050, 48.8566, 2.3522, 878, 10},
		{"London to New York", 51.5074, -0.1278, 40.7128, -74.0060, 5570, 30},
		{"equator quarter turn", 0, 0, 0, 90, 10007.5, 5},
		{"pole to pole", 90, 0, -90, 0, 20015, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.expectedKm) > tt.toleranceKm {
				t.Errorf("Distance() = %.1f km, want %.1f ± %.1f", got, tt.expectedKm, tt.toleranceKm)
			}
		})
	}
}

func TestDistance_Symmetry(t *testing.T) {
	pairs := [][4]float64{
		{52.52, 13.40, 48.85, 2.35},
		{-33.87, 151.21, 35.68, 139.69},
		{0, 0, 0.001, 0.001},
	}

	for _, p := range pairs {
		forward := Distance(p[0], p[1], p[2], p[3])
		backward := Distance(p[2], p[3], p[0], p[1])
		if math.Abs(forward-backward) > 1e-9 {
			t.Errorf("Distance not symmetric: %v vs %v for %v", forward, backward, p)
		}
	}
}

func TestDistance_SamePointIsZero(t *testing.T) {
	points := [][2]float64{{0, 0}, {52.52, 13.40}, {-90, 0}, {45, -120}}

	for _, p := range points {
		if d := Distance(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("Distance(p, p) = %v, want 0 for %v", d, p)
		}
	}
}

func TestDistance_NeverNegative(t *testing.T) {
	coords := []float64{-90, -45.5, 0, 33.3, 90}
	for _, lat1 := range coords {
		for _, lat2 := range coords {
			if d := Distance(lat1, 10, lat2, -170); d < 0 {
				t.Errorf("Distance returned negative value %v", d)
			}
		}
	}
}
