package display

import (
	"testing"

	"luxtrail/internal/geo"
)

func TestDescribe(t *testing.T) {
	p := geo.Position{Lat: 48.2, Lon: 16.37, Alt: 171.5}
	want := "Longitude: 16.37\nLatitude: 48.2\nAltitude: 171.5\nLocation Name: Wien"
	if got := Describe(p, "Wien"); got != want {
		t.Fatalf("Describe =\n%s\nwant\n%s", got, want)
	}
	wantLast := "Last Longitude: 16.37\nLast Latitude: 48.2\nLast Altitude: 171.5\nLast Location Name: unknown"
	if got := DescribeLast(p, "unknown"); got != wantLast {
		t.Fatalf("DescribeLast =\n%s\nwant\n%s", got, wantLast)
	}
}

func TestScalars(t *testing.T) {
	cases := []struct{ got, want string }{
		{Light(12.5), "Light: 12.5 lux"},
		{Light(0.1), "Light: 0.1 lux"},
		{LastLight(0), "Last Light: 0 lux"},
		{Distance(30), "Distance: 30 m"},
		{Distance(12.25), "Distance: 12.25 m"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}

func TestCheckpointLog(t *testing.T) {
	e1 := CheckpointEntry("A", 10)
	e2 := CheckpointEntry("B", 2.5)
	log := Log(Log("", e1), e2)
	if want := "A\n10 lux\nB\n2.5 lux"; log != want {
		t.Fatalf("log = %q, want %q", log, want)
	}
}
