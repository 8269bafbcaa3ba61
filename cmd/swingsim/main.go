package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/swingsim/internal/api"
	"github.com/san-kum/swingsim/internal/automation"
	"github.com/san-kum/swingsim/internal/config"
	"github.com/san-kum/swingsim/internal/experiment"
	"github.com/san-kum/swingsim/internal/optim"
	"github.com/san-kum/swingsim/internal/report"
	"github.com/san-kum/swingsim/internal/sim"
	"github.com/san-kum/swingsim/internal/storage"
)

var (
	env    *config.Env
	logger *zap.Logger

	dataDir    string
	configFile string
	preset     string
	integrator string
	name       string
	noSave     bool

	speed      float64
	angleY     float64
	angleZ     float64
	seam       float64
	restitute  float64
	friction   float64
	dt         float64
	addr       string
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	aimSteps   int
)

func main() {
	env = config.LoadEnv()

	var err error
	logger, err = newLogger(env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:          "swingsim",
		Short:        "cricket ball swing and bounce simulator",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", env.DataDir, "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate one delivery",
		Args:  cobra.NoArgs,
		RunE:  runDelivery,
	}
	addDeliveryFlags(runCmd)
	runCmd.Flags().StringVar(&name, "name", "", "run name (defaults to the preset)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show the summary of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a run's trajectory log to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list delivery presets",
		RunE:  listPresets,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [integrators...]",
		Short: "bowl the same delivery with several integrators",
		RunE:  compareIntegrators,
	}
	addDeliveryFlags(compareCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure integration speed across timesteps",
		RunE:  benchDelivery,
	}
	benchCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")

	aimCmd := &cobra.Command{
		Use:   "aim",
		Short: "search line and seam for the delivery closest to middle stump",
		RunE:  aimDelivery,
	}
	addDeliveryFlags(aimCmd)
	aimCmd.Flags().IntVar(&aimSteps, "steps", 21, "grid points per parameter")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one delivery parameter and tabulate the outcome",
		RunE:  sweepDelivery,
	}
	addDeliveryFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", sim.KeySeamAngle, "parameter to vary")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", -40, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 40, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 9, "number of values")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of deliveries",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", env.Addr, "listen address")
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, exportCSVCmd, exportJSONCmd, presetsCmd,
		compareCmd, benchCmd, aimCmd, sweepCmd, scenarioCmd, serveCmd)

	os.Exit(execute(rootCmd, logger))
}

// execute runs the command tree and flushes the logger before the process
// exits, since os.Exit skips deferred calls.
func execute(cmd *cobra.Command, log *zap.Logger) int {
	defer log.Sync()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func addDeliveryFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset delivery")
	f.StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	f.Float64Var(&speed, "speed", 35, "release speed (m/s)")
	f.Float64Var(&angleY, "angle-y", -7.5, "vertical release angle (deg)")
	f.Float64Var(&angleZ, "angle-z", 0, "horizontal release angle (deg)")
	f.Float64Var(&seam, "seam", 0, "seam angle (deg)")
	f.Float64Var(&restitute, "e", 0.7, "coefficient of restitution")
	f.Float64Var(&friction, "mu", 0.8, "bounce friction")
	f.Float64Var(&dt, "dt", 0.001, "timestep (s)")
}

// loadConfig layers the config file, the preset and explicitly set flags,
// in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Delivery = p
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Simulation.Dt = dt
	}
	if flags.Changed("speed") {
		cfg.Delivery.Speed = speed
	}
	if flags.Changed("angle-y") {
		cfg.Delivery.VerticalAngle = angleY
	}
	if flags.Changed("angle-z") {
		cfg.Delivery.HorizontalAngle = angleZ
	}
	if flags.Changed("seam") {
		cfg.Delivery.SeamAngle = seam
	}
	if flags.Changed("e") {
		cfg.Delivery.Restitution = restitute
	}
	if flags.Changed("mu") {
		cfg.Delivery.Friction = friction
	}

	return cfg, nil
}

func experimentConfig(cfg *config.Config, runName string) experiment.Config {
	return experiment.Config{
		Name:       runName,
		Integrator: cfg.Integrator,
		Params:     cfg.Delivery,
		Sim:        cfg.SimConfig(),
		Ball:       cfg.Ball(),
	}
}

func runDelivery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	runName := name
	if runName == "" {
		runName = preset
	}
	if runName == "" {
		runName = "delivery"
	}

	for _, w := range config.CheckLimits(cfg.Delivery) {
		logger.Warn("unrealistic delivery parameter", zap.String("detail", w))
	}

	start := time.Now()
	rep, err := experiment.New(experimentConfig(cfg, runName), nil).Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := report.Write(os.Stdout, rep); err != nil {
		return err
	}
	fmt.Printf("\ncompleted in %v\n", elapsed)

	if noSave || !rep.Result.Valid() {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(rep)
	if err != nil {
		return err
	}
	logger.Info("saved run", zap.String("run_id", runID), zap.String("dir", dataDir))
	fmt.Printf("run id: %s\n", runID)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tINTEG\tV0\tSEAM\tFINAL Z\tSTUMPS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.1f\t%.1f\t%.3f\t%v\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			run.Params.Speed,
			run.Params.SeamAngle,
			run.Summary.FinalZ,
			run.Summary.HitStumps,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	summary := meta.Summary
	rep := &experiment.Report{
		Name:       meta.Name,
		Integrator: meta.Integrator,
		Params:     meta.Params,
		Result: &sim.Result{
			Outcome: sim.OutcomeValid,
			Reason:  meta.Reason,
			Steps:   meta.Samples - 1,
			Metrics: meta.Metrics,
		},
		Summary: &summary,
	}
	return report.Write(os.Stdout, rep)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	values, traj, err := st.LoadLog(args[0])
	if err != nil {
		return err
	}
	if traj.Len() == 0 {
		return fmt.Errorf("no data to export")
	}
	p, err := sim.ParamsFromValues(values)
	if err != nil {
		return err
	}
	return storage.WriteLog(os.Stdout, p, traj)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	_, traj, err := st.LoadLog(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, storage.FromRun(meta, traj))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tV0\tANGLE Y\tANGLE Z\tSEAM\tE\tMU")
	for _, n := range config.ListPresets() {
		p, _ := config.GetPreset(n)
		fmt.Fprintf(w, "%s\t%.1f\t%.1f\t%.1f\t%.1f\t%.2f\t%.2f\n",
			n, p.Speed, p.VerticalAngle, p.HorizontalAngle, p.SeamAngle, p.Restitution, p.Friction)
	}
	return w.Flush()
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	names := args
	if len(names) == 0 {
		names = registry.ListIntegrators()
	}

	fmt.Printf("comparing integrators (dt=%.4f)\n", cfg.Simulation.Dt)
	fmt.Println(report.Params(cfg.Delivery))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tBOUNCE X\tFINAL X\tFINAL Y\tFINAL Z\tSTUMPS\tTIME")

	for _, n := range names {
		cfg.Integrator = n
		start := time.Now()
		rep, err := experiment.New(experimentConfig(cfg, n), registry).Run(cmd.Context())
		elapsed := time.Since(start)
		if err != nil {
			fmt.Fprintf(w, "%s\terror: %v\n", n, err)
			continue
		}
		if rep.Summary == nil {
			fmt.Fprintf(w, "%s\tinvalid (%s)\n", n, rep.Result.Reason)
			continue
		}
		s := rep.Summary
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%v\t%v\n",
			n, s.BounceX, s.FinalX, s.FinalY, s.FinalZ, s.HitStumps, elapsed)
	}

	return w.Flush()
}

func benchDelivery(cmd *cobra.Command, args []string) error {
	registry := experiment.NewRegistry()
	base, _ := config.GetPreset(config.DefaultPreset)
	ball := config.DefaultConfig().Ball()

	fmt.Printf("benchmarking %s\n\n", integrator)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, step := range []float64{0.0001, 0.0005, 0.001, 0.005} {
		integ, err := registry.GetIntegrator(integrator)
		if err != nil {
			return err
		}
		simCfg := sim.DefaultConfig()
		simCfg.Dt = step

		start := time.Now()
		result, err := sim.New(ball, integ, simCfg).Run(base)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		stepsPerSec := float64(result.Steps) / elapsed.Seconds()
		fmt.Fprintf(w, "%.4fs\t%d\t%v\t%.0f\n", step, result.Steps, elapsed, stepsPerSec)
	}

	return w.Flush()
}

func aimDelivery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	if _, err := registry.GetIntegrator(cfg.Integrator); err != nil {
		return err
	}
	newSim := func() *sim.Simulator {
		integ, _ := registry.GetIntegrator(cfg.Integrator)
		return sim.New(cfg.Ball(), integ, cfg.SimConfig())
	}

	lz := config.Limits[sim.KeyHorizontalAngle]
	ls := config.Limits[sim.KeySeamAngle]
	grid := optim.NewGridSearch(
		[]string{sim.KeyHorizontalAngle, sim.KeySeamAngle},
		[][]float64{optim.Linspace(lz.Min, lz.Max, aimSteps), optim.Linspace(ls.Min, ls.Max, aimSteps)},
	)

	logger.Info("grid search", zap.Int("points", grid.Size()))
	best, err := grid.Search(cmd.Context(), optim.Aim(cfg.Delivery, newSim))
	if err != nil {
		return err
	}

	p, err := best.Apply(cfg.Delivery)
	if err != nil {
		return err
	}
	cfg.Delivery = p

	rep, err := experiment.New(experimentConfig(cfg, "aim"), registry).Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("best of %d points: miss %.4f m\n\n", grid.Size(), best.Score)
	return report.Write(os.Stdout, rep)
}

func sweepDelivery(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg.Delivery,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, &automation.Runner{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tBOUNCE X\tFINAL Z\tSWING\tSTUMPS\tHALFWAY\n", sweepParam)
	for _, r := range results {
		if !r.Valid {
			fmt.Fprintf(w, "%g\tinvalid\n", r.Value)
			continue
		}
		s := r.Summary
		fmt.Fprintf(w, "%g\t%.3f\t%.3f\t%+.3f\t%v\t%v\n",
			r.Value, s.BounceX, s.FinalZ, s.SwingDistance, s.HitStumps, r.ReachesHalfway)
	}
	return w.Flush()
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	outcomes, err := automation.RunScenario(cmd.Context(), scenario, &automation.Runner{
		Config:   cfg,
		Registry: experiment.NewRegistry(),
		Store:    st,
		Logger:   logger,
	})
	for _, o := range outcomes {
		if err := report.Write(os.Stdout, o.Report); err != nil {
			return err
		}
		if o.RunID != "" {
			fmt.Printf("run id: %s\n", o.RunID)
		}
		fmt.Println()
	}
	return err
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if env.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewServer(cfg, experiment.NewRegistry(), st, logger))

	srv := &http.Server{Addr: addr, Handler: router}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", addr), zap.String("data", dataDir))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
