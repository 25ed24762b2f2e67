// Package config loads run configurations and turns them into force
// models, initial ensembles and time grids.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/forces"
	"github.com/nkoval/dustsim/internal/grain"
)

const (
	DefaultDt        = 60.0
	DefaultSteps     = 200
	DefaultParticles = 4
	DefaultGM        = 1.32712440018e20
	DefaultRadius    = 1.5e11   // ~1 AU
	DefaultSpeed     = 26_000.0 // interstellar inflow speed, m/s
	DefaultCharge    = 1.6e-19
	DefaultMass      = 1e-16
	DefaultBeta      = 0.1
)

type Config struct {
	Model    string  `yaml:"model"` // uniform | ionopause
	Backend  string  `yaml:"backend"`
	Dt       float64 `yaml:"dt"`
	Steps    int     `yaml:"steps"`
	Substeps int     `yaml:"substeps"`

	Uniform   UniformConfig   `yaml:"uniform"`
	Ionopause IonopauseConfig `yaml:"ionopause"`
}

// UniformConfig describes a heliospheric run. The ensemble is generated
// as a ring of particles on tangential orbits.
type UniformConfig struct {
	GM        float64   `yaml:"gm"`
	E         []float64 `yaml:"e_field"`
	B         []float64 `yaml:"b_field"`
	Particles int       `yaml:"particles"`
	Radius    float64   `yaml:"radius"`
	Speed     float64   `yaml:"speed"`
	Charge    float64   `yaml:"charge"`
	Mass      float64   `yaml:"mass"`
	Beta      float64   `yaml:"beta"`
}

// IonopauseConfig describes an interstellar run in the legacy unit
// system. Particles fan out along x from the given position.
type IonopauseConfig struct {
	C        float64 `yaml:"c"`
	B0       float64 `yaml:"b0"`
	V0       float64 `yaml:"v0"`
	Z0       float64 `yaml:"z0"`
	D        float64 `yaml:"d"`  // solar distance
	Sd       float64 `yaml:"sd"` // solar constant
	Density  float64 `yaml:"density"`
	Material string  `yaml:"material"`
	Diameter float64 `yaml:"diameter"`

	Particles int       `yaml:"particles"`
	Position  []float64 `yaml:"position"`
	Velocity  []float64 `yaml:"velocity"`
	Spacing   float64   `yaml:"spacing"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:    "uniform",
		Backend:  "",
		Dt:       DefaultDt,
		Steps:    DefaultSteps,
		Substeps: 1,
		Uniform: UniformConfig{
			GM:        DefaultGM,
			E:         []float64{0, 0, 0},
			B:         []float64{0, 0, 0},
			Particles: DefaultParticles,
			Radius:    DefaultRadius,
			Speed:     DefaultSpeed,
			Charge:    DefaultCharge,
			Mass:      DefaultMass,
			Beta:      DefaultBeta,
		},
		Ionopause: IonopauseConfig{
			C:         1,
			B0:        1,
			V0:        1,
			Z0:        1,
			D:         1,
			Sd:        1,
			Density:   3300,
			Material:  string(grain.Olivine),
			Diameter:  0.2e-6,
			Particles: 1,
			Position:  []float64{1, 0, 2},
			Velocity:  []float64{0, 0, -1},
			Spacing:   0.1,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Grid() dust.TimeGrid {
	return dust.TimeGrid{Dt: c.Dt, Steps: c.Steps, Substeps: c.Substeps}
}

// Build constructs the force model and initial ensemble the config
// describes. Configuration errors (unknown model or material, malformed
// vectors) are returned before any integration starts.
func (c *Config) Build() (dust.Model, []dust.State, error) {
	switch c.Model {
	case "uniform":
		return c.buildUniform()
	case "ionopause":
		return c.buildIonopause()
	default:
		return nil, nil, fmt.Errorf("config: unknown model %q", c.Model)
	}
}

func vec3(name string, v []float64) ([3]float64, error) {
	if len(v) == 0 {
		return [3]float64{}, nil
	}
	if len(v) != 3 {
		return [3]float64{}, fmt.Errorf("config: %s must have 3 components, got %d", name, len(v))
	}
	return [3]float64{v[0], v[1], v[2]}, nil
}

func (c *Config) buildUniform() (dust.Model, []dust.State, error) {
	u := c.Uniform
	if u.Particles < 1 {
		return nil, nil, fmt.Errorf("config: particle count must be at least 1, got %d", u.Particles)
	}
	if u.Mass <= 0 {
		return nil, nil, fmt.Errorf("config: grain mass must be positive, got %g", u.Mass)
	}

	e, err := vec3("e_field", u.E)
	if err != nil {
		return nil, nil, err
	}
	b, err := vec3("b_field", u.B)
	if err != nil {
		return nil, nil, err
	}

	n := u.Particles
	initial := make([]dust.State, n)
	qom := make([]float64, n)
	beta := make([]float64, n)
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		initial[i] = dust.State{
			u.Radius * math.Cos(angle),
			u.Radius * math.Sin(angle),
			0,
			-u.Speed * math.Sin(angle),
			u.Speed * math.Cos(angle),
			0,
		}
		qom[i] = u.Charge / u.Mass
		beta[i] = u.Beta
	}

	model, err := forces.NewUniformField(u.GM, e, b, qom, beta)
	if err != nil {
		return nil, nil, err
	}
	return model, initial, nil
}

func (c *Config) buildIonopause() (dust.Model, []dust.State, error) {
	ic := c.Ionopause
	if ic.Particles < 1 {
		return nil, nil, fmt.Errorf("config: particle count must be at least 1, got %d", ic.Particles)
	}

	pos, err := vec3("position", ic.Position)
	if err != nil {
		return nil, nil, err
	}
	vel, err := vec3("velocity", ic.Velocity)
	if err != nil {
		return nil, nil, err
	}

	grains := make([]grain.Grain, ic.Particles)
	initial := make([]dust.State, ic.Particles)
	for i := range grains {
		grains[i] = grain.Grain{
			Material: grain.Material(ic.Material),
			Density:  ic.Density,
			Diameter: ic.Diameter,
		}
		initial[i] = dust.State{
			pos[0] + float64(i)*ic.Spacing, pos[1], pos[2],
			vel[0], vel[1], vel[2],
		}
	}

	model, err := forces.NewIonopauseFromGrains(ic.C, ic.B0, ic.V0, ic.Z0, ic.D, ic.Sd, grains)
	if err != nil {
		return nil, nil, err
	}
	return model, initial, nil
}
