// Package store persists finished runs: a metadata.json and a
// trajectory.csv per run directory.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/nkoval/dustsim/internal/dust"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Model     string    `json:"model"`
	Backend   string    `json:"backend"`
	Timestamp time.Time `json:"timestamp"`
	Dt        float64   `json:"dt"`
	Steps     int       `json:"steps"`
	Substeps  int       `json:"substeps"`
	Particles int       `json:"particles"`
	Status    string    `json:"status"`
	ValidLen  []int     `json:"valid_len"`
	Boundary  []int     `json:"boundary,omitempty"`
}

// TrajectoryRow is one reported sample of one particle. Truncated rows
// are never written, so a particle that hit the boundary simply stops
// appearing in the file.
type TrajectoryRow struct {
	Step     int     `csv:"step"`
	Time     float64 `csv:"time"`
	Particle int     `csv:"particle"`
	X        float64 `csv:"x"`
	Y        float64 `csv:"y"`
	Z        float64 `csv:"z"`
	VX       float64 `csv:"vx"`
	VY       float64 `csv:"vy"`
	VZ       float64 `csv:"vz"`
}

func (s *Store) Save(model string, grid dust.TimeGrid, res *dust.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	grid = grid.Normalize()
	meta := RunMetadata{
		ID:        runID,
		Model:     model,
		Backend:   res.Backend,
		Timestamp: time.Now(),
		Dt:        grid.Dt,
		Steps:     grid.Steps,
		Substeps:  grid.Substeps,
		Particles: res.Traj.Particles(),
		Status:    res.Status.String(),
		ValidLen:  res.ValidLen,
		Boundary:  res.Boundary,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	rows := make([]TrajectoryRow, 0, (grid.Steps+1)*res.Traj.Particles())
	for k := 0; k <= grid.Steps; k++ {
		for i := 0; i < res.Traj.Particles(); i++ {
			if k > res.ValidLen[i] {
				continue
			}
			st := res.Traj.At(k, i)
			rows = append(rows, TrajectoryRow{
				Step: k, Time: res.Times[k], Particle: i,
				X: st[0], Y: st[1], Z: st[2],
				VX: st[3], VY: st[4], VZ: st[5],
			})
		}
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := gocsv.MarshalFile(&rows, csvFile); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) ([]TrajectoryRow, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var rows []TrajectoryRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ParticleRadii extracts the origin distance series of one particle
// from a loaded trajectory, in step order.
func ParticleRadii(rows []TrajectoryRow, particle int) []float64 {
	rs := make([]float64, 0)
	for _, row := range rows {
		if row.Particle != particle {
			continue
		}
		st := dust.State{row.X, row.Y, row.Z, row.VX, row.VY, row.VZ}
		rs = append(rs, st.Radius())
	}
	return rs
}
