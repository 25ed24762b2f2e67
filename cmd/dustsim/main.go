package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/nkoval/dustsim/internal/compute"
	"github.com/nkoval/dustsim/internal/config"
	"github.com/nkoval/dustsim/internal/dust"
	"github.com/nkoval/dustsim/internal/grain"
	"github.com/nkoval/dustsim/internal/legacy"
	"github.com/nkoval/dustsim/internal/sim"
	"github.com/nkoval/dustsim/internal/store"
	"github.com/nkoval/dustsim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string
	backend    string
	dt         float64
	steps      int
	substeps   int
	saveRun    bool
	frameRate  int
	particle   int
	outFile    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dustsim",
		Short: "charged dust grain trajectory integrator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dustsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an integration",
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
	runCmd.Flags().StringVar(&backend, "backend", "", "compute backend (scalar, vector, accel)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "reporting interval (overrides config)")
	runCmd.Flags().IntVar(&steps, "steps", 0, "reported step count (overrides config)")
	runCmd.Flags().IntVar(&substeps, "substeps", 0, "internal substeps per reported step")
	runCmd.Flags().BoolVar(&saveRun, "save", false, "persist the run to the data directory")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with a live terminal view",
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	liveCmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	compareCmd := &cobra.Command{
		Use:   "compare [backend1] [backend2]",
		Short: "run two backends on the same ensemble and report the deviation",
		Args:  cobra.ExactArgs(2),
		RunE:  compareBackends,
	}
	compareCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	compareCmd.Flags().StringVar(&preset, "preset", "", "use a preset configuration")

	materialsCmd := &cobra.Command{
		Use:   "materials",
		Short: "tabulate the optical coefficients of the known materials",
		RunE:  printMaterials,
	}

	legacyCmd := &cobra.Command{
		Use:   "legacy [input_file]",
		Short: "run a legacy single-grain input file",
		Args:  cobra.ExactArgs(1),
		RunE:  runLegacy,
	}
	legacyCmd.Flags().StringVar(&outFile, "out", "", "output file (default stdout)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the radius trace of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&particle, "particle", 0, "particle index")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
			return nil
		},
	}

	backendsCmd := &cobra.Command{
		Use:   "backends",
		Short: "list compute backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tAVAILABLE")
			for _, b := range compute.Backends() {
				fmt.Fprintf(w, "%s\t%v\n", b.Name(), b.Available())
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, compareCmd, materialsCmd, legacyCmd, listCmd, plotCmd, presetsCmd, backendsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the preset and config file flags into one run
// configuration; CLI flags override both.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("steps") {
		cfg.Steps = steps
	}
	if cmd.Flags().Changed("substeps") {
		cfg.Substeps = substeps
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = backend
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, initial, err := cfg.Build()
	if err != nil {
		return err
	}

	fmt.Printf("running %s with %d particles...\n", cfg.Model, len(initial))
	start := time.Now()

	res, err := sim.Run(context.Background(), sim.Config{
		Model:   model,
		Initial: initial,
		Grid:    cfg.Grid(),
		Backend: cfg.Backend,
	})
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("backend: %s\n", res.Backend)
	fmt.Printf("status: %s\n", res.Status)
	for _, i := range res.Boundary {
		fmt.Printf("particle %d crossed the ionopause after step %d\n", i, res.ValidLen[i])
	}

	if saveRun {
		st := store.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg.Model, cfg.Grid(), res)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, initial, err := cfg.Build()
	if err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(model, initial, cfg.Grid(), frameRate))
	_, err = p.Run()
	return err
}

func compareBackends(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	model, initial, err := cfg.Build()
	if err != nil {
		return err
	}

	results := make([]*dust.Result, 2)
	for i, name := range args {
		b, err := compute.Select(name)
		if err != nil {
			return err
		}
		res, err := b.Run(context.Background(), model, initial, cfg.Grid().Normalize())
		if err != nil {
			return err
		}
		results[i] = res
	}

	a, b := results[0], results[1]
	var diffs []float64
	for i := 0; i < len(initial); i++ {
		if a.ValidLen[i] != b.ValidLen[i] {
			return fmt.Errorf("backends disagree on particle %d: %d vs %d valid steps", i, a.ValidLen[i], b.ValidLen[i])
		}
		for k := 0; k <= a.ValidLen[i]; k++ {
			sa, sb := a.Traj.At(k, i), b.Traj.At(k, i)
			for j := range sa {
				scale := math.Max(1, math.Max(math.Abs(sa[j]), math.Abs(sb[j])))
				diffs = append(diffs, math.Abs(sa[j]-sb[j])/scale)
			}
		}
	}

	fmt.Printf("compared %s vs %s over %d particles\n", args[0], args[1], len(initial))
	fmt.Printf("max relative deviation: %.3e\n", floats.Max(diffs))
	return nil
}

func printMaterials(cmd *cobra.Command, args []string) error {
	diameters := []float64{0.02e-6, 0.05e-6, 0.1e-6, 0.2e-6, 0.5e-6, 1e-6}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MATERIAL\tDIAMETER\tQPR\tCHI")
	for _, m := range []grain.Material{grain.Olivine, grain.Magnetite} {
		for _, d := range diameters {
			qpr, chi, err := grain.Coefficients(m, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%.2e\t%.4f\t%.4f\n", m, d, qpr, chi)
		}
	}
	return w.Flush()
}

func runLegacy(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	in, err := legacy.Read(f)
	if err != nil {
		return err
	}

	model, err := in.Model()
	if err != nil {
		return err
	}

	res, err := sim.Run(context.Background(), sim.Config{
		Model:   model,
		Initial: []dust.State{in.State},
		Grid:    in.Grid(),
		Backend: "scalar",
	})
	if err != nil {
		return err
	}

	out := os.Stdout
	if outFile != "" {
		out, err = os.Create(outFile)
		if err != nil {
			return err
		}
		defer out.Close()
	}
	return legacy.Write(out, in, res)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tBACKEND\tTIME\tDT\tSTEPS\tPARTICLES\tSTATUS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.4g\t%d\t%d\t%s\n",
			run.ID, run.Model, run.Backend,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Dt, run.Steps, run.Particles, run.Status,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := store.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	rows, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	if particle < 0 || particle >= meta.Particles {
		return fmt.Errorf("run has %d particles, asked for %d", meta.Particles, particle)
	}

	radii := store.ParticleRadii(rows, particle)
	if len(radii) < 2 {
		return fmt.Errorf("not enough data to plot")
	}

	fmt.Printf("run: %s\nmodel: %s\nsamples: %d\n\n", meta.ID, meta.Model, len(radii))
	fmt.Println(asciigraph.Plot(radii,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("radius, particle %d", particle)),
	))
	return nil
}
