package route

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"luxtrail/internal/geo"
)

func TestLoadRoute(t *testing.T) {
	r, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load route: %v", err)
	}
	if r.Name != "example" {
		t.Fatalf("unexpected name %s", r.Name)
	}
	if len(r.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(r.Legs))
	}
	if r.Legs[1].LightLux != 300 {
		t.Fatalf("unexpected light %v", r.Legs[1].LightLux)
	}
	if r.Length() != 55 {
		t.Fatalf("length = %v, want 55", r.Length())
	}
}

func TestLoadRejectsInvalidLeg(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("legs:\n  - name: x\n    distance_m: 10\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for leg without speed")
	}
}

func TestPlan(t *testing.T) {
	r, err := Load("testdata/simple.yaml")
	if err != nil {
		t.Fatalf("load route: %v", err)
	}
	start := geo.Position{Lat: 10, Lon: 20, Alt: 5}
	steps := r.Plan(start, 1)

	// 45 m at 1.5 m/s is 30 steps, 10 m at 2 m/s is 5 more
	if len(steps) != 1+30+5 {
		t.Fatalf("steps = %d, want 36", len(steps))
	}
	if steps[0].Position != start || steps[0].Lux != 100 {
		t.Fatalf("first step should be the start, got %+v", steps[0])
	}
	if got := geo.Distance(start, steps[30].Position); math.Abs(got-45) > 0.01 {
		t.Fatalf("end of first leg is %v m from start, want 45", got)
	}
	last := steps[len(steps)-1]
	if last.Leg != "east" || last.Lux != 300 || last.Position.Alt != 5 {
		t.Fatalf("unexpected last step %+v", last)
	}
	if got := geo.Distance(steps[30].Position, last.Position); math.Abs(got-10) > 0.01 {
		t.Fatalf("second leg is %v m long, want 10", got)
	}
}

func TestPlanShortensFinalStride(t *testing.T) {
	r := Route{Legs: []Leg{{Name: "a", HeadingDeg: 0, DistanceM: 5, SpeedMPS: 2}}}
	steps := r.Plan(geo.Position{}, 1)
	if len(steps) != 4 {
		t.Fatalf("steps = %d, want 4", len(steps))
	}
	if got := geo.Distance(steps[2].Position, steps[3].Position); math.Abs(got-1) > 1e-6 {
		t.Fatalf("final stride = %v, want 1", got)
	}
}

func TestBuiltInRoutes(t *testing.T) {
	routes := BuiltIn()
	for _, name := range []string{"city-block", "park-loop", "indoor"} {
		r, ok := routes[name]
		if !ok {
			t.Fatalf("missing route %s", name)
		}
		if err := r.Validate(); err != nil {
			t.Fatalf("route %s invalid: %v", name, err)
		}
		if r.Description == "" {
			t.Fatalf("route %s missing description", name)
		}
	}
	if _, err := Lookup("city-block"); err != nil {
		t.Fatalf("lookup built-in: %v", err)
	}
	if _, err := Lookup("testdata/simple.yaml"); err != nil {
		t.Fatalf("lookup file: %v", err)
	}
	if _, err := Lookup("nowhere"); err == nil {
		t.Fatalf("expected error for unknown route")
	}
}
