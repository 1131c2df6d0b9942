package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/vqelab/internal/analysis"
	"github.com/san-kum/vqelab/internal/config"
	"github.com/san-kum/vqelab/internal/experiment"
	"github.com/san-kum/vqelab/internal/metrics"
	"github.com/san-kum/vqelab/internal/plot"
	"github.com/san-kum/vqelab/internal/storage"
	"github.com/san-kum/vqelab/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	verbose bool

	configFile string
	preset     string

	molecule    string
	basis       string
	bondLength  float64
	rMin        float64
	rMax        float64
	rStep       float64
	freezeCore  bool
	active      string
	mapping     string
	ansatzName  string
	backend     string
	optimizer   string
	outPath     string
	seed        int64
	jobs        int
	total       bool
	exactMode   string
	noArchive   bool
	description string

	// Sampling and noise
	shots        int
	restarts     int
	noiseModel   string
	p1           float64
	p2           float64
	trajectories int

	plotWidth  int
	plotHeight int
	tracePath  string
)

// main registers the vqelab commands and exits with status 1 when a
// command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "vqelab",
		Short:         "VQE potential-energy curves for H2 and LiH",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".vqelab", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "compute a potential-energy curve",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	problemFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&rMin, "r-min", 0, "first bond length (Å)")
	sweepCmd.Flags().Float64Var(&rMax, "r-max", 0, "last bond length (Å)")
	sweepCmd.Flags().Float64Var(&rStep, "r-step", config.DefaultRStep, "bond length step (Å)")
	sweepCmd.Flags().BoolVar(&freezeCore, "freeze-core", false, "freeze core orbitals")
	sweepCmd.Flags().StringVar(&active, "active", "", "active space, e.g. 2e2o")
	sweepCmd.Flags().StringVar(&ansatzName, "ansatz", config.DefaultAnsatz, "ansatz")
	sweepCmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "backend: ideal, shots or noisy")
	sweepCmd.Flags().StringVar(&optimizer, "optimizer", config.DefaultOptimizer, "optimizer")
	sweepCmd.Flags().StringVar(&outPath, "out", "", "output CSV (required)")
	sweepCmd.Flags().IntVar(&jobs, "jobs", config.DefaultJobs, "bond lengths solved in parallel")
	sweepCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive the run in the data directory")
	sweepCmd.Flags().StringVar(&description, "desc", "", "run description")
	reportFlags(sweepCmd)
	samplingFlags(sweepCmd)

	noisyCmd := &cobra.Command{
		Use:   "noisy",
		Short: "noisy shot-based VQE with restarts at one bond length",
		Args:  cobra.NoArgs,
		RunE:  runNoisy,
	}
	problemFlags(noisyCmd)
	noisyCmd.Flags().StringVar(&optimizer, "optimizer", "SPSA", "optimizer")
	noisyCmd.Flags().IntVar(&restarts, "restarts", config.DefaultRestarts, "number of restarts")
	noisyCmd.Flags().StringVar(&outPath, "out", "", "restart CSV")
	noisyCmd.Flags().BoolVar(&noArchive, "no-archive", false, "do not archive the run in the data directory")
	reportFlags(noisyCmd)
	samplingFlags(noisyCmd)

	plotCmd := &cobra.Command{
		Use:   "plot [csv]",
		Short: "plot a curve CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlot,
	}
	plotCmd.Flags().StringVar(&outPath, "out", "", "image file (png, svg, pdf); terminal plot when empty")
	plotCmd.Flags().IntVar(&plotWidth, "width", 70, "terminal plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 15, "terminal plot height")

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "show problem, qubit operator and ansatz sizes",
		Args:  cobra.NoArgs,
		RunE:  runInfo,
	}
	problemFlags(infoCmd)
	infoCmd.Flags().BoolVar(&freezeCore, "freeze-core", false, "freeze core orbitals")
	infoCmd.Flags().StringVar(&active, "active", "", "active space, e.g. 2e2o")
	infoCmd.Flags().StringVar(&ansatzName, "ansatz", config.DefaultAnsatz, "ansatz")
	reportFlags(infoCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch one VQE optimisation converge",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	problemFlags(liveCmd)
	liveCmd.Flags().BoolVar(&freezeCore, "freeze-core", false, "freeze core orbitals")
	liveCmd.Flags().StringVar(&active, "active", "", "active space, e.g. 2e2o")
	liveCmd.Flags().StringVar(&ansatzName, "ansatz", config.DefaultAnsatz, "ansatz")
	liveCmd.Flags().StringVar(&backend, "backend", config.DefaultBackend, "backend: ideal, shots or noisy")
	liveCmd.Flags().StringVar(&optimizer, "optimizer", config.DefaultOptimizer, "optimizer")
	liveCmd.Flags().StringVar(&tracePath, "trace", "", "write the convergence trace plot to this file")
	reportFlags(liveCmd)
	samplingFlags(liveCmd)

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list archived runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show an archived run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outPath, "out", "", "output file (stdout when empty)")

	summaryCmd := &cobra.Command{
		Use:   "summary [csv]",
		Short: "equilibrium, vibrational frequency and accuracy of a curve",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummary,
	}
	summaryCmd.Flags().StringVar(&molecule, "molecule", "", "molecule for the reduced mass (H2 or LiH)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	rootCmd.AddCommand(sweepCmd, noisyCmd, plotCmd, infoCmd, liveCmd, runsCmd, showCmd, exportJSONCmd, summaryCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func problemFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&molecule, "molecule", "", "H2 or LiH")
	cmd.Flags().StringVar(&basis, "basis", config.DefaultBasis, "basis set")
	cmd.Flags().Float64Var(&bondLength, "r", 0, "bond length (Å)")
	cmd.Flags().StringVar(&mapping, "mapping", config.DefaultMapping, "fermion-to-qubit mapping: jw or parity")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
}

func reportFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&total, "total", false, "add nuclear repulsion and inactive energy to reported energies")
	cmd.Flags().StringVar(&exactMode, "exact-mode", experiment.ExactFull, "exact reference: full or sector")
}

func samplingFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&shots, "shots", config.DefaultShots, "shots per measured group")
	cmd.Flags().StringVar(&noiseModel, "noise", config.DefaultNoiseModel, "noise model: generic or none")
	cmd.Flags().Float64Var(&p1, "p1", config.DefaultP1, "one-qubit depolarizing and readout error")
	cmd.Flags().Float64Var(&p2, "p2", config.DefaultP2, "two-qubit depolarizing error")
	cmd.Flags().IntVar(&trajectories, "trajectories", config.DefaultTrajectories, "noise trajectories per estimate")
}

// loadConfig merges, in order of precedence, explicitly set flags, the
// config file and the preset over the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}
	if changed("molecule") {
		cfg.Molecule = molecule
	}
	if changed("basis") {
		cfg.Basis = basis
	}
	if changed("r-min") {
		cfg.RMin = config.Float(rMin)
		cfg.R = nil
	}
	if changed("r-max") {
		cfg.RMax = config.Float(rMax)
		cfg.R = nil
	}
	if changed("r") {
		cfg.R = config.Float(bondLength)
	}
	if changed("r-step") {
		cfg.RStep = rStep
	}
	if changed("freeze-core") {
		cfg.FreezeCore = freezeCore
	}
	if changed("active") {
		cfg.Active = active
	}
	if changed("mapping") {
		cfg.Mapping = mapping
	}
	if changed("ansatz") {
		cfg.Ansatz = ansatzName
	}
	if changed("backend") {
		cfg.Backend = backend
	}
	if changed("optimizer") {
		cfg.Optimizer = optimizer
	}
	if changed("seed") {
		cfg.Seed = seed
	}
	if changed("jobs") {
		cfg.Jobs = jobs
	}
	if changed("total") {
		cfg.Total = total
	}
	if changed("exact-mode") {
		cfg.ExactMode = exactMode
	}
	if changed("shots") {
		cfg.Noise.Shots = shots
	}
	if changed("noise") {
		cfg.Noise.Model = noiseModel
	}
	if changed("p1") {
		cfg.Noise.P1 = p1
	}
	if changed("p2") {
		cfg.Noise.P2 = p2
	}
	if changed("trajectories") {
		cfg.Noise.Trajectories = trajectories
	}
	if changed("restarts") {
		cfg.Noise.Restarts = restarts
	}
	if cfg.Molecule == "" {
		return nil, errors.New("--molecule is required")
	}
	return cfg, nil
}

func backendConfig(cfg *config.Config) experiment.BackendConfig {
	return experiment.BackendConfig{
		Shots:        cfg.Noise.Shots,
		Trajectories: cfg.Noise.Trajectories,
		Noise:        cfg.Noise.Model,
		P1:           cfg.Noise.P1,
		P2:           cfg.Noise.P2,
		Seed:         cfg.Seed,
	}
}

func newExperiment(cfg *config.Config, rs []float64) (*experiment.Experiment, error) {
	act, err := experiment.ParseActive(cfg.Active)
	if err != nil {
		return nil, err
	}
	return experiment.New(experiment.Config{
		Molecule:    cfg.Molecule,
		Basis:       cfg.Basis,
		BondLengths: rs,
		FreezeCore:  cfg.FreezeCore,
		Active:      act,
		Mapping:     cfg.Mapping,
		Ansatz:      cfg.Ansatz,
		Optimizer:   cfg.Optimizer,
		Backend:     cfg.Backend,
		Backends:    backendConfig(cfg),
		ExactMode:   cfg.ExactMode,
		Total:       cfg.Total,
		Jobs:        cfg.Jobs,
		Seed:        cfg.Seed,
		Logger:      slog.Default(),
	}, experiment.NewRegistry())
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if outPath == "" {
		return errors.New("--out is required")
	}
	rs, err := experiment.BondLengths(cfg.R, cfg.RMin, cfg.RMax, cfg.RStep)
	if err != nil {
		return err
	}
	exp, err := newExperiment(cfg, rs)
	if err != nil {
		return err
	}

	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	points, err := exp.Run(ctx, func(p experiment.Point) {
		fmt.Println(p)
	})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	rows := make([]storage.CurveRow, len(points))
	for i, p := range points {
		rows[i] = storage.CurveRow{R: p.R, VQE: p.VQE, Exact: p.Exact, HasExact: true}
	}
	if err := storage.WriteCurve(outPath, rows); err != nil {
		return err
	}
	slog.Info("curve written", "path", outPath, "points", len(rows), "elapsed", elapsed)

	results := metrics.Evaluate(experiment.NewRegistry().DefaultMetrics(), experiment.Samples(points))
	if !noArchive {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		ec := exp.Config()
		runID, err := st.Save(&storage.RunMetadata{
			Molecule:    ec.Molecule,
			Basis:       ec.Basis,
			Mapping:     ec.Mapping,
			Ansatz:      ec.Ansatz,
			Optimizer:   ec.Optimizer,
			Backend:     ec.Backend,
			FreezeCore:  ec.FreezeCore,
			Active:      cfg.Active,
			Seed:        ec.Seed,
			Output:      outPath,
			WallTime:    elapsed.Seconds(),
			Metrics:     results,
			Description: description,
		}, rows)
		if err != nil {
			return err
		}
		fmt.Printf("\nrun id: %s\n", runID)
	}
	printMetrics(results)
	return nil
}

func printMetrics(results map[string]float64) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Println("\nmetrics:")
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, results[name])
	}
}

func runNoisy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.R == nil {
		return errors.New("--r is required")
	}
	ncfg := experiment.NoisyConfig{
		Molecule:  cfg.Molecule,
		Basis:     cfg.Basis,
		R:         *cfg.R,
		Mapping:   cfg.Mapping,
		Optimizer: cfg.Optimizer,
		Restarts:  cfg.Noise.Restarts,
		ExactMode: cfg.ExactMode,
		Total:     cfg.Total,
		Backend:   backendConfig(cfg),
		Seed:      cfg.Seed,
		Logger:    slog.Default(),
	}
	if ncfg.Restarts < 1 {
		return fmt.Errorf("--restarts must be positive, got %d", ncfg.Restarts)
	}

	ctx, stop := interruptible()
	defer stop()

	start := time.Now()
	res, err := experiment.RunNoisy(ctx, ncfg, experiment.NewRegistry(), func(r experiment.Restart) {
		fmt.Printf("[restart %d/%d] %s\n", r.Index, ncfg.Restarts, r)
	})
	if err != nil {
		return err
	}
	best := res.BestRestart()
	fmt.Printf("=== Best === restart %d: %s, exact = %.6f Ha, Δ = %.6f Ha\n", best.Index, best, best.Exact, best.Delta)

	rows := make([]storage.NoisyRow, len(res.Restarts))
	for i, r := range res.Restarts {
		rows[i] = storage.NoisyRow{Restart: r.Index, R: r.R, Shots: r.Shots, Energy: r.Energy, Exact: r.Exact, WallTime: r.WallTime}
	}
	if outPath != "" {
		if err := storage.WriteNoisy(outPath, rows); err != nil {
			return err
		}
		slog.Info("restarts written", "path", outPath)
	}
	if noArchive {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.SaveNoisy(&storage.RunMetadata{
		Molecule:   res.Meta.Molecule,
		Basis:      res.Meta.Basis,
		Mapping:    ncfg.Mapping,
		Ansatz:     config.DefaultAnsatz,
		Optimizer:  res.Optimizer,
		Backend:    experiment.BackendNoisy,
		FreezeCore: res.Meta.FreezeCore,
		Active:     fmt.Sprintf("%de%do", experiment.NoisyActive.Electrons, experiment.NoisyActive.Orbitals),
		Seed:       ncfg.Seed,
		Shots:      ncfg.Backend.Shots,
		Noise:      ncfg.Backend.Noise,
		Output:     outPath,
		WallTime:   time.Since(start).Seconds(),
		Metrics: map[string]float64{
			"best_energy_ha": best.Energy,
			"best_delta_ha":  best.Delta,
		},
	}, rows)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	rows, err := storage.ReadCurve(args[0])
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := plot.SaveCurve(rows, outPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", outPath)
		return nil
	}
	fmt.Println(plot.ASCII(rows, plotWidth, plotHeight))
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.R == nil {
		return errors.New("--r is required")
	}
	exp, err := newExperiment(cfg, []float64{*cfg.R})
	if err != nil {
		return err
	}
	s, err := exp.Prepare(*cfg.R)
	if err != nil {
		return err
	}
	ex, err := exp.ExactEnergy(s)
	if err != nil {
		return err
	}

	meta := s.Problem.Meta
	activeStr := "-"
	if meta.Active != nil {
		activeStr = fmt.Sprintf("%de%do", meta.Active.Electrons, meta.Active.Orbitals)
	}
	shift := s.Shift(exp.Config().Total)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "molecule\t%s\n", meta.Molecule)
	fmt.Fprintf(w, "geometry\t%s\n", meta.Geometry)
	fmt.Fprintf(w, "basis\t%s\n", meta.Basis)
	fmt.Fprintf(w, "freeze core\t%v\n", meta.FreezeCore)
	fmt.Fprintf(w, "active space\t%s\n", activeStr)
	fmt.Fprintf(w, "particles (α, β)\t(%d, %d)\n", meta.NumParticles[0], meta.NumParticles[1])
	fmt.Fprintf(w, "spatial orbitals\t%d\n", meta.NumSpatialOrbitals)
	fmt.Fprintf(w, "spin orbitals\t%d\n", meta.NumSpinOrbitals)
	fmt.Fprintf(w, "scf iterations\t%d\n", meta.SCFIterations)
	fmt.Fprintf(w, "nuclear repulsion\t%.10f Ha\n", meta.NuclearRepulsion)
	fmt.Fprintf(w, "inactive energy\t%.10f Ha\n", meta.InactiveEnergy)
	fmt.Fprintf(w, "HF energy\t%.10f Ha\n", meta.HFEnergy)
	fmt.Fprintf(w, "exact energy (%s)\t%.10f Ha\n", exp.Config().ExactMode, ex+shift)
	fmt.Fprintf(w, "mapping\t%s\n", s.Mapper.Name())
	fmt.Fprintf(w, "qubits\t%d\n", s.Operator.NumQubits)
	fmt.Fprintf(w, "pauli terms\t%d\n", s.Operator.Len())
	fmt.Fprintf(w, "ansatz parameters\t%d\n", s.Ansatz.NumParameters())
	return w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.R == nil {
		return errors.New("--r is required")
	}
	r := *cfg.R
	exp, err := newExperiment(cfg, []float64{r})
	if err != nil {
		return err
	}
	s, err := exp.Prepare(r)
	if err != nil {
		return err
	}
	ex, err := exp.ExactEnergy(s)
	if err != nil {
		return err
	}
	shift := s.Shift(exp.Config().Total)

	ctx, stop := interruptible()
	defer stop()

	var trace []float64
	title := fmt.Sprintf("%s  R=%.3f Å  %s/%s  %s", exp.Config().Molecule, r, exp.Config().Mapping, exp.Config().Optimizer, exp.Config().Backend)
	energy, err := viz.Watch(ctx, title, ex+shift, true, exp.EvaluationBudget(s),
		func(ctx context.Context, emit func(int, float64)) (float64, error) {
			pt, err := exp.Solve(ctx, 0, r, func(eval int, _ []float64, e float64) {
				trace = append(trace, e+shift)
				emit(eval, e+shift)
			})
			return pt.VQE, err
		})
	if err != nil {
		return err
	}
	fmt.Printf("R=%5.3f Å | VQE=%.6f Ha | Exact=%.6f Ha | Δ=%.6f Ha\n", r, energy, ex+shift, energy-ex-shift)

	if tracePath != "" {
		if err := plot.SaveTrace(trace, ex+shift, true, tracePath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", tracePath)
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tMOLECULE\tMAPPING\tOPTIMIZER\tBACKEND\tPOINTS\tTIMESTAMP")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			run.ID, run.Kind, run.Molecule, run.Mapping, run.Optimizer, run.Backend, run.Points,
			run.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.HeaderStyle.Render("run " + meta.ID))
	fmt.Printf("kind: %s\n", meta.Kind)
	fmt.Printf("molecule: %s (%s, %s mapping)\n", meta.Molecule, meta.Basis, meta.Mapping)
	fmt.Printf("optimizer: %s  backend: %s\n", meta.Optimizer, meta.Backend)
	if meta.Description != "" {
		fmt.Printf("description: %s\n", meta.Description)
	}
	printMetrics(meta.Metrics)
	fmt.Println()

	if meta.Kind == storage.KindNoisy {
		rows, err := st.LoadNoisy(meta.ID)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "RESTART\tR (Å)\tSHOTS\tENERGY (Ha)\tΔ (Ha)\tWALL")
		for _, r := range rows {
			fmt.Fprintf(w, "%d\t%.3f\t%d\t%.6f\t%.6f\t%.1fs\n", r.Restart, r.R, r.Shots, r.Energy, r.Delta(), r.WallTime.Seconds())
		}
		return w.Flush()
	}

	rows, err := st.LoadCurve(meta.ID)
	if err != nil {
		return err
	}
	fmt.Println(plot.ASCII(rows, 70, 12))
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if outPath == "" {
		return storage.ExportJSONStdout(data)
	}
	if err := storage.ExportJSON(outPath, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", outPath)
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	rows, err := storage.ReadCurve(args[0])
	if err != nil {
		return err
	}
	rs := make([]float64, len(rows))
	es := make([]float64, len(rows))
	samples := make([]metrics.Sample, len(rows))
	for i, r := range rows {
		rs[i], es[i] = r.R, r.VQE
		samples[i] = metrics.Sample{R: r.R, VQE: r.VQE, Exact: r.Exact, HasExact: r.HasExact}
	}

	s, err := analysis.Summarize(molecule, rs, es)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "points\t%d\n", s.Points)
	fmt.Fprintf(w, "equilibrium r0\t%.4f Å\n", s.Equilibrium.R)
	fmt.Fprintf(w, "equilibrium energy\t%.6f Ha\n", s.Equilibrium.Energy)
	if s.Frequency > 0 {
		fmt.Fprintf(w, "harmonic frequency\t%.1f cm⁻¹\n", s.Frequency)
	}
	fmt.Fprintf(w, "dissociation (E(r_max) - E_min)\t%.6f Ha\n", s.Dissociation)
	if err := w.Flush(); err != nil {
		return err
	}
	if s.Warning != "" {
		fmt.Printf("warning: %s\n", s.Warning)
	}
	if len(rows) > 0 && rows[0].HasExact {
		printMetrics(metrics.Evaluate(metrics.Defaults(), samples))
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tMOLECULE\tGEOMETRY\tMAPPING\tOPTIMIZER\tBACKEND")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n", name, p.Molecule, describeRange(p), p.Mapping, p.Optimizer, p.Backend)
	}
	return w.Flush()
}

func describeRange(c *config.Config) string {
	var b strings.Builder
	switch {
	case c.R != nil:
		fmt.Fprintf(&b, "R=%.3f", *c.R)
	case c.RMin != nil && c.RMax != nil:
		fmt.Fprintf(&b, "%.2f-%.2f step %.2f", *c.RMin, *c.RMax, c.RStep)
	}
	if c.FreezeCore {
		b.WriteString(" fc")
	}
	if c.Active != "" {
		b.WriteString(" " + c.Active)
	}
	return b.String()
}
