package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/rlund/airsusp/internal/body"
	"github.com/rlund/airsusp/internal/bus"
	"github.com/rlund/airsusp/internal/config"
	"github.com/rlund/airsusp/internal/dynamo"
	"github.com/rlund/airsusp/internal/integrators"
	"github.com/rlund/airsusp/internal/loop"
	"github.com/rlund/airsusp/internal/road"
	"github.com/rlund/airsusp/internal/storage"
	"github.com/rlund/airsusp/internal/strut"
	"github.com/rlund/airsusp/internal/tui"
)

var (
	dataDir     string
	configFile  string
	preset      string
	stepperName string
	profileName string
	dt          float64
	tick        float64
	duration    float64
	maxSteps    int
	angleLimit  float64
	faultPolicy string
	amplitude   float64
	frequency   float64
	frameRate   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "airsusp",
		Short: "real-time pneumatic suspension rig simulator",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".airsusp", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless fixed-duration simulation",
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run in real time with a live view",
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 60, "view frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the steppers",
		RunE:  benchSteppers,
	}
	addSimFlags(benchCmd)

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "preset configuration (smooth, highway, pothole, sweep)")
	cmd.Flags().StringVar(&stepperName, "stepper", "", "stepper (trbdf2, rk4)")
	cmd.Flags().StringVar(&profileName, "road", "", "road profile (flat, sine, bump, chirp)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "physics timestep [s]")
	cmd.Flags().Float64Var(&tick, "tick", 0, "wall-clock tick interval [s]")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration [s]")
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "max physics steps per tick")
	cmd.Flags().Float64Var(&angleLimit, "angle-limit", 0, "roll/pitch validation limit [rad]")
	cmd.Flags().StringVar(&faultPolicy, "fault-policy", "", "fault policy (halt, reset)")
	cmd.Flags().Float64Var(&amplitude, "amplitude", 0, "road amplitude [m]")
	cmd.Flags().Float64Var(&frequency, "frequency", 0, "road frequency [Hz]")
}

// buildConfig layers file, preset and explicit flags over defaults.
func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (have %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if stepperName != "" {
		cfg.Stepper = stepperName
	}
	if profileName != "" {
		cfg.Road.Name = profileName
	}
	if dt > 0 {
		cfg.Dt = dt
	}
	if tick > 0 {
		cfg.TickInterval = tick
	}
	if duration > 0 {
		cfg.Duration = duration
	}
	if maxSteps > 0 {
		cfg.MaxStepsPerTick = maxSteps
	}
	if angleLimit > 0 {
		cfg.AngleLimit = angleLimit
	}
	if faultPolicy != "" {
		cfg.FaultPolicy = faultPolicy
	}
	if amplitude > 0 {
		cfg.Road.Amplitude = amplitude
	}
	if frequency > 0 {
		cfg.Road.Frequency = frequency
	}
	return cfg, nil
}

func buildRoad(cfg *config.Config) (body.Excitation, error) {
	r := cfg.Road
	switch r.Name {
	case "flat", "":
		return road.Flat{}, nil
	case "sine":
		return road.Sine{
			Amplitude:      r.Amplitude,
			Frequency:      r.Frequency,
			LeftRightPhase: r.Phase,
			AxleLag:        r.AxleLag,
		}, nil
	case "bump":
		return road.Bump{
			Height:   r.Amplitude,
			Start:    r.Start,
			Duration: r.Length,
			AxleLag:  r.AxleLag,
		}, nil
	case "chirp":
		return road.Chirp{
			Amplitude: r.Amplitude,
			StartFreq: r.Frequency,
			EndFreq:   r.EndFreq,
			Duration:  cfg.Duration,
		}, nil
	default:
		return nil, fmt.Errorf("unknown road profile %q", r.Name)
	}
}

func buildStepper(name string) (integrators.Stepper, error) {
	switch name {
	case "trbdf2", "":
		return integrators.NewTRBDF2(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	default:
		return nil, fmt.Errorf("unknown stepper %q", name)
	}
}

func buildLoop(cfg *config.Config) (*loop.Loop, error) {
	params := body.NewParams(cfg.Body.Mass, cfg.Body.RollInertia, cfg.Body.PitchInertia,
		cfg.Body.Wheelbase, cfg.Body.Track, cfg.Body.FrontBias)

	struts := strut.NewPneumatic(params, cfg.Body.Gravity)
	struts.Area = cfg.Strut.PistonArea
	struts.Volume = cfg.Strut.GasVolume
	struts.Polytropic = cfg.Strut.Polytropic
	struts.Damping = cfg.Strut.Damping
	// Area/volume changes shift the preload; rebuild it so the rig
	// starts at static equilibrium.
	for _, c := range body.Corners {
		struts.Pressure[c] = strut.AtmosphericPressure + params.StaticCornerLoad(cfg.Body.Gravity)/struts.Area
	}
	if err := struts.Validate(); err != nil {
		return nil, err
	}

	excitation, err := buildRoad(cfg)
	if err != nil {
		return nil, err
	}

	model, err := body.NewModel(params, struts, excitation)
	if err != nil {
		return nil, err
	}
	model.SetGravity(cfg.Body.Gravity)

	stepper, err := buildStepper(cfg.Stepper)
	if err != nil {
		return nil, err
	}

	return loop.New(model, stepper, loop.Config{
		Dt:              cfg.Dt,
		MaxStepsPerTick: cfg.MaxStepsPerTick,
		AngleLimit:      cfg.AngleLimit,
	})
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	lp, err := buildLoop(cfg)
	if err != nil {
		return err
	}
	policy, err := loop.ParseFaultPolicy(cfg.FaultPolicy)
	if err != nil {
		return err
	}

	var snaps []dynamo.Snapshot
	lp.OnSnapshot(func(s dynamo.Snapshot) { snaps = append(snaps, s) })

	ticks := int(cfg.Duration / cfg.TickInterval)
	var lastErr error
	for i := 0; i < ticks; i++ {
		res := lp.Tick(cfg.TickInterval)
		if res.Err != nil {
			lastErr = res.Err
			if policy == loop.FaultHalt {
				break
			}
			lp.ResetToLastValid()
		}
	}

	store := storage.New(dataDir)
	if err := store.Init(); err != nil {
		return err
	}
	rep := lp.Timer().Report()
	id, err := store.Save(storage.RunMetadata{
		Profile:    cfg.Road.Name,
		Stepper:    cfg.Stepper,
		Dt:         cfg.Dt,
		Duration:   lp.SimTime(),
		Steps:      rep.Steps,
		Overruns:   rep.Overruns,
		Faults:     rep.Faults,
		Drops:      lp.Queue().Stats().Drops,
		Efficiency: lp.Queue().Stats().Efficiency(),
	}, snaps)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "run\t%s\n", id)
	fmt.Fprintf(w, "sim time\t%.3f s\n", lp.SimTime())
	fmt.Fprintf(w, "steps\t%d\n", rep.Steps)
	fmt.Fprintf(w, "mean step\t%.1f µs\n", lp.Timer().MeanStepTime()*1e6)
	fmt.Fprintf(w, "overruns\t%d\n", rep.Overruns)
	fmt.Fprintf(w, "faults\t%d\n", rep.Faults)
	w.Flush()

	if lastErr != nil && policy == loop.FaultHalt {
		return fmt.Errorf("simulation halted: %w", lastErr)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	lp, err := buildLoop(cfg)
	if err != nil {
		return err
	}
	policy, err := loop.ParseFaultPolicy(cfg.FaultPolicy)
	if err != nil {
		return err
	}

	interval := time.Duration(cfg.TickInterval * float64(time.Second))
	runner := loop.NewRunner(lp, interval, policy)
	runner.Go(context.Background())
	defer runner.Close()
	lp.Signals().Send(bus.Start)

	model := tui.NewModel(lp.Queue(), lp.Signals(), lp.Timer(), frameRate, runner.LastFault)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPROFILE\tSTEPPER\tDT\tSTEPS\tOVERRUNS\tFAULTS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.4f\t%d\t%d\t%d\n",
			r.ID, r.Profile, r.Stepper, r.Dt, r.Steps, r.Overruns, r.Faults)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir)
	snaps, err := store.LoadSnapshots(args[0])
	if err != nil {
		return err
	}
	if len(snaps) < 2 {
		return fmt.Errorf("run %s has no data", args[0])
	}

	const points = 300
	heave := make([]float64, 0, points)
	roll := make([]float64, 0, points)
	pitch := make([]float64, 0, points)
	stride := len(snaps) / points
	if stride < 1 {
		stride = 1
	}
	for i := 0; i < len(snaps); i += stride {
		heave = append(heave, snaps[i].Frame.Heave*1000)
		roll = append(roll, snaps[i].Frame.Roll*1000)
		pitch = append(pitch, snaps[i].Frame.Pitch*1000)
	}

	for _, s := range []struct {
		data    []float64
		caption string
	}{
		{heave, "heave [mm]"},
		{roll, "roll [mrad]"},
		{pitch, "pitch [mrad]"},
	} {
		fmt.Println(asciigraph.Plot(s.data,
			asciigraph.Height(8), asciigraph.Width(100), asciigraph.Caption(s.caption)))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).LoadMetadata(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func benchSteppers(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	const steps = 20000
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STEPPER\tNS/STEP\tSTEPS/S\tERRORS")

	for _, name := range []string{"trbdf2", "rk4"} {
		cfg.Stepper = name
		lp, err := buildLoop(cfg)
		if err != nil {
			return err
		}
		errs := 0
		begin := time.Now()
		for i := 0; i < steps; i++ {
			if res := lp.Tick(cfg.Dt); res.Err != nil {
				errs++
				lp.ResetToLastValid()
			}
		}
		elapsed := time.Since(begin)
		perStep := float64(elapsed.Nanoseconds()) / steps
		fmt.Fprintf(w, "%s\t%.0f\t%.0f\t%d\n", name, perStep, 1e9/perStep, errs)
	}
	return w.Flush()
}
