package route

// BuiltIn returns predefined routes.
func BuiltIn() map[string]Route {
	return map[string]Route{
		"city-block": {
			Name:        "City Block",
			Description: "Walk around a city block with a shaded arcade on the north side.",
			Legs: []Leg{
				{Name: "east street", HeadingDeg: 90, DistanceM: 120, SpeedMPS: 1.4, LightLux: 8000},
				{Name: "arcade", HeadingDeg: 0, DistanceM: 80, SpeedMPS: 1.2, LightLux: 400},
				{Name: "west street", HeadingDeg: 270, DistanceM: 120, SpeedMPS: 1.4, LightLux: 6000},
				{Name: "back to start", HeadingDeg: 180, DistanceM: 80, SpeedMPS: 1.4, LightLux: 7000},
			},
		},
		"park-loop": {
			Name:        "Park Loop",
			Description: "Open lawn, a tree-covered path and a short underpass.",
			Legs: []Leg{
				{Name: "lawn", HeadingDeg: 45, DistanceM: 150, SpeedMPS: 1.3, LightLux: 20000},
				{Name: "tree path", HeadingDeg: 135, DistanceM: 200, SpeedMPS: 1.1, LightLux: 2500},
				{Name: "underpass", HeadingDeg: 225, DistanceM: 40, SpeedMPS: 1.5, LightLux: 150},
				{Name: "riverside", HeadingDeg: 315, DistanceM: 160, SpeedMPS: 1.3, LightLux: 15000},
			},
		},
		"indoor": {
			Name:        "Indoor",
			Description: "Corridors of an office building.",
			Legs: []Leg{
				{Name: "lobby", HeadingDeg: 0, DistanceM: 35, SpeedMPS: 1.0, LightLux: 500},
				{Name: "corridor", HeadingDeg: 90, DistanceM: 60, SpeedMPS: 1.0, LightLux: 300},
				{Name: "storage", HeadingDeg: 180, DistanceM: 30, SpeedMPS: 0.8, LightLux: 50},
			},
		},
	}
}

// Lookup returns a built-in route by name or loads it from path.
func Lookup(nameOrPath string) (*Route, error) {
	if r, ok := BuiltIn()[nameOrPath]; ok {
		return &r, nil
	}
	return Load(nameOrPath)
}
