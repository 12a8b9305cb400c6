package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/biomech/internal/analysis"
	"github.com/san-kum/biomech/internal/biomodel"
	"github.com/san-kum/biomech/internal/config"
	"github.com/san-kum/biomech/internal/control"
	"github.com/san-kum/biomech/internal/integrators"
	"github.com/san-kum/biomech/internal/metrics"
	"github.com/san-kum/biomech/internal/sim"
	"github.com/san-kum/biomech/internal/storage"
	"github.com/san-kum/biomech/internal/tui"
	"github.com/san-kum/biomech/internal/viz"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	integrator string
	controller string
	q0Flag     string
	qdot0Flag  string
	tauFlag    string
	targetFlag string
	kp         float64
	kd         float64
	contacts   bool
	configFile string
	frameRate  int
	maxPlots   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "biomech",
		Short: "biomechanical model simulation toolkit",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".biomech", "data directory")

	infoCmd := &cobra.Command{
		Use:   "info [model.yaml]",
		Short: "show model descriptors",
		Args:  cobra.ExactArgs(1),
		RunE:  showInfo,
	}

	runCmd := &cobra.Command{
		Use:   "run [model.yaml]",
		Short: "run a simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max-plots", 6, "maximum state variables to plot")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	watchCmd := &cobra.Command{
		Use:   "watch [model.yaml]",
		Short: "run with live terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  watchSimulation,
	}
	addRunFlags(watchCmd)
	watchCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	rootCmd.AddCommand(infoCmd, runCmd, listCmd, plotCmd, exportCmd, watchCmd, analyzeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator (euler, rk4)")
	cmd.Flags().StringVar(&controller, "controller", "none", "controller (none, constant, pd, muscle)")
	cmd.Flags().StringVar(&q0Flag, "q0", "", "initial coordinates, comma separated")
	cmd.Flags().StringVar(&qdot0Flag, "qdot0", "", "initial velocities, comma separated")
	cmd.Flags().StringVar(&tauFlag, "tau", "", "constant torques, comma separated")
	cmd.Flags().StringVar(&targetFlag, "target", "", "pd target posture, comma separated")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pd proportional gain")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pd derivative gain")
	cmd.Flags().BoolVar(&contacts, "contacts", false, "hold rigid contacts as constraints")
	cmd.Flags().StringVar(&configFile, "config", "", "run config file (yaml)")
}

func showInfo(cmd *cobra.Command, args []string) error {
	model, err := biomodel.New(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Header.Render(model.Name()))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "mass\t%.3f kg\n", model.Mass())
	fmt.Fprintf(w, "coordinates\t%d (%d root)\n", model.NbQ(), model.NbRoot())
	fmt.Fprintf(w, "segments\t%s\n", strings.Join(model.SegmentNames(), ", "))
	fmt.Fprintf(w, "dofs\t%s\n", strings.Join(model.NameDof(), ", "))
	if model.NbMarkers() > 0 {
		fmt.Fprintf(w, "markers\t%s\n", strings.Join(model.MarkerNames(), ", "))
	}
	if model.NbMuscles() > 0 {
		fmt.Fprintf(w, "muscles\t%s\n", strings.Join(model.MuscleNames(), ", "))
	}
	if model.NbRigidContacts() > 0 {
		fmt.Fprintf(w, "rigid contacts\t%s (%d axes)\n",
			strings.Join(model.ContactNames(), ", "), model.NbContacts())
	}
	if model.NbSoftContacts() > 0 {
		fmt.Fprintf(w, "soft contacts\t%s\n", strings.Join(model.SoftContactNames(), ", "))
	}
	return w.Flush()
}

// setup assembles the model, dynamics, integrator and controller for a run
// command invocation.
func setup(cmd *cobra.Command, modelPath string) (*biomodel.Model, sim.Dynamics, sim.Integrator, sim.Controller, []float64, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		applyConfig(cmd, cfg)
	}

	model, err := biomodel.New(modelPath)
	if err != nil {
		return nil, nil, nil, nil, nil, err
	}
	nq := model.NbQ()

	var dyn sim.Dynamics
	if controller == "muscle" {
		dyn = sim.NewMuscleDrivenDynamics(model)
	} else {
		dyn = sim.NewJointTorqueDynamics(model, contacts)
	}

	var integ sim.Integrator
	switch integrator {
	case "euler":
		integ = integrators.NewEuler()
	case "rk4":
		integ = integrators.NewRK4()
	default:
		return nil, nil, nil, nil, nil, fmt.Errorf("unknown integrator: %s", integrator)
	}

	var ctrl sim.Controller
	switch controller {
	case "none":
		ctrl = control.NewNone(dyn.ControlDim())
	case "constant", "muscle":
		u := parseFloats(tauFlag)
		if len(u) == 0 {
			u = cfg.Control.Tau
		}
		ctrl = control.NewConstant(pad(u, dyn.ControlDim()))
	case "pd":
		target := parseFloats(targetFlag)
		if len(target) == 0 {
			target = cfg.Control.Target
		}
		ctrl = control.NewPD(pad(target, nq), kp, kd)
	default:
		return nil, nil, nil, nil, nil, fmt.Errorf("unknown controller: %s", controller)
	}

	x0 := make([]float64, dyn.StateDim())
	copy(x0[:nq], pad(firstNonEmpty(parseFloats(q0Flag), cfg.InitState.Q), nq))
	copy(x0[nq:2*nq], pad(firstNonEmpty(parseFloats(qdot0Flag), cfg.InitState.Qdot), nq))
	if controller == "muscle" {
		copy(x0[2*nq:], pad(cfg.InitState.Activations, model.NbMuscles()))
	}

	return model, dyn, integ, ctrl, x0, nil
}

// applyConfig fills in config values for flags the user did not set.
func applyConfig(cmd *cobra.Command, cfg *config.Config) {
	if !cmd.Flags().Changed("dt") {
		dt = cfg.Dt
	}
	if !cmd.Flags().Changed("time") {
		duration = cfg.Duration
	}
	if !cmd.Flags().Changed("integrator") && cfg.Integrator != "" {
		integrator = cfg.Integrator
	}
	if !cmd.Flags().Changed("controller") && cfg.Controller != "" {
		controller = cfg.Controller
	}
	if !cmd.Flags().Changed("kp") && cfg.Control.Kp != 0 {
		kp = cfg.Control.Kp
	}
	if !cmd.Flags().Changed("kd") && cfg.Control.Kd != 0 {
		kd = cfg.Control.Kd
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	model, dyn, integ, ctrl, x0, err := setup(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(dyn, integ, ctrl)
	s.AddMetric(metrics.NewControlEffort())
	s.AddMetric(metrics.NewEnergyDrift(dyn))

	fmt.Printf("running %s...\n", model.Name())
	start := time.Now()
	result, err := s.Run(context.Background(), x0, sim.Config{Dt: dt, Duration: duration})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunMetadata{
		Model:      model.Name(),
		ModelPath:  model.Path(),
		Dt:         dt,
		Duration:   duration,
		Integrator: integrator,
		Controller: controller,
		StateNames: stateNames(model, len(x0)),
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("energy drift: %.3e\n", result.EnergyDrift)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func watchSimulation(cmd *cobra.Command, args []string) error {
	model, dyn, integ, ctrl, x0, err := setup(cmd, args[0])
	if err != nil {
		return err
	}

	m := tui.NewModel(dyn, integ, ctrl, x0, dt, model.Name(), stateNames(model, len(x0)), frameRate)
	_, err = tea.NewProgram(m).Run()
	return err
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
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDURATION\tDT\tINTEG\tCTRL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(states))
	fmt.Print(viz.PlotStates(states, meta.StateNames, maxPlots))
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 || len(states[0]) == 0 {
		return fmt.Errorf("no data")
	}

	data := make([]float64, len(states))
	for i := range states {
		data[i] = states[i][0]
	}
	name := "x0"
	if len(meta.StateNames) > 0 {
		name = meta.StateNames[0]
	}

	fmt.Printf("frequency analysis: %s (%s)\n\n", meta.ID, name)
	ps := analysis.PowerSpectrum(data)
	fmt.Println(viz.PlotSeries(ps[:len(ps)/4], "power spectrum"))

	freq, _ := analysis.DominantFrequency(data, meta.Dt)
	fmt.Printf("\ndominant frequency: %.3f hz\n", freq)
	if freq > 0 {
		fmt.Printf("period: %.3f s\n", 1.0/freq)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

// stateNames labels the state vector: dof names, their derivatives, and
// muscle activations for muscle-driven runs.
func stateNames(model *biomodel.Model, stateDim int) []string {
	names := make([]string, 0, stateDim)
	names = append(names, model.NameDof()...)
	for _, n := range model.NameDof() {
		names = append(names, n+"_dot")
	}
	if stateDim > len(names) {
		for _, n := range model.MuscleNames() {
			names = append(names, n+"_act")
		}
	}
	return names
}

func parseFloats(s string) []float64 {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func pad(v []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, v)
	return out
}

func firstNonEmpty(a, b []float64) []float64 {
	if len(a) > 0 {
		return a
	}
	return b
}
