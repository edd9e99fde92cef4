package bbox

import "testing"

func TestContainsInclusiveEdges(t *testing.T) {
	b := New(8.573179, 49.352003, 8.79405, 49.459693)

	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"center", 49.4, 8.6, true},
		{"on min corner", b.MinLat, b.MinLon, true},
		{"on max corner", b.MaxLat, b.MaxLon, true},
		{"outside west", 49.4, 8.0, false},
		{"outside north", 50.0, 8.6, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := b.Contains(c.lat, c.lon); got != c.want {
				t.Errorf("Contains(%v, %v) = %v, want %v", c.lat, c.lon, got, c.want)
			}
		})
	}
}
