package config

// Presets are ready-made configurations for common scenarios.
var Presets = map[string]*Config{
	// One grain on a circular orbit at 1 AU, no fields. Radius should
	// hold to well under 1e-3 relative drift.
	"circular-orbit": {
		Model: "uniform", Dt: 60, Steps: 1000, Substeps: 1,
		Uniform: UniformConfig{
			GM:        DefaultGM,
			E:         []float64{0, 0, 0},
			B:         []float64{0, 0, 0},
			Particles: 1,
			Radius:    1.495978707e11,
			Speed:     29784.69,
			Charge:    0,
			Mass:      DefaultMass,
			Beta:      0,
		},
	},
	// The historical demo ensemble: four charged grains on a ring with
	// tangential interstellar inflow speed and a weak beta.
	"ring": {
		Model: "uniform", Dt: 60, Steps: 200, Substeps: 1,
		Uniform: UniformConfig{
			GM:        DefaultGM,
			E:         []float64{0, 0, 0},
			B:         []float64{0, 0, 5e-9},
			Particles: 4,
			Radius:    DefaultRadius,
			Speed:     DefaultSpeed,
			Charge:    DefaultCharge,
			Mass:      DefaultMass,
			Beta:      DefaultBeta,
		},
	},
	// An olivine grain descending onto the standoff surface; terminates
	// at the ionopause boundary.
	"ionopause-entry": {
		Model: "ionopause", Dt: 0.1, Steps: 30, Substeps: 1,
		Ionopause: IonopauseConfig{
			C: 1, B0: 1, V0: 1, Z0: 1, D: 1, Sd: 1,
			Density:   3300,
			Material:  "olivine",
			Diameter:  0.2e-6,
			Particles: 1,
			Position:  []float64{1, 0, 2},
			Velocity:  []float64{0, 0, -1},
		},
	},
}

// GetPreset returns a copy of the named preset, so callers can layer
// flag overrides on top without mutating the shared table.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Uniform.E = append([]float64(nil), p.Uniform.E...)
	cfg.Uniform.B = append([]float64(nil), p.Uniform.B...)
	cfg.Ionopause.Position = append([]float64(nil), p.Ionopause.Position...)
	cfg.Ionopause.Velocity = append([]float64(nil), p.Ionopause.Velocity...)
	return &cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
