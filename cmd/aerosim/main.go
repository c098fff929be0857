package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	// case selection, shared by the commands that evaluate a case
	configFile string
	preset     string
	chainName  string
	setValues  []string
	numNodes   int
	gravity    float64
	noSave     bool
	validate   bool

	// reynolds
	altitude, velocity, length             float64
	altitudeUnit, velocityUnit, lengthUnit string

	// sweep
	sweepFrom, sweepTo float64
	sweepSteps         int
	sweepUnit          string
	outputName         string
	svgFile            string

	// check
	fdStep, relTol float64
	checkOnly      string

	// mesh
	numX, numY        int
	span, chord       float64
	meshUnit          string
	symmetry          bool
	spanCos, chordCos float64

	// aero
	alpha float64

	// optimize
	params   []string
	maximize bool
	limit    int

	// export
	outFile string
)

// main registers the commands and runs the root command, exiting with
// status 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "aerosim",
		Short:         "aerodynamic analysis components for design studies",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			log.SetOutput(os.Stderr)
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".aerosim", "run directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	reynoldsCmd := &cobra.Command{
		Use:   "reynolds",
		Short: "Reynolds number and air properties at one flight condition",
		Args:  cobra.NoArgs,
		RunE:  runReynolds,
	}
	reynoldsCmd.Flags().Float64Var(&altitude, "altitude", 400, "altitude")
	reynoldsCmd.Flags().StringVar(&altitudeUnit, "altitude-unit", "ft", "altitude unit")
	reynoldsCmd.Flags().Float64Var(&velocity, "velocity", 90, "true airspeed")
	reynoldsCmd.Flags().StringVar(&velocityUnit, "velocity-unit", "ft/s", "velocity unit")
	reynoldsCmd.Flags().Float64Var(&length, "length", 1.5, "characteristic length")
	reynoldsCmd.Flags().StringVar(&lengthUnit, "length-unit", "m", "length unit")

	evalCmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate the component chain for a case",
		Args:  cobra.NoArgs,
		RunE:  runEval,
	}
	addCaseFlags(evalCmd)
	evalCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	evalCmd.Flags().BoolVar(&validate, "validate", false, "fail on NaN or Inf outputs")

	sweepCmd := &cobra.Command{
		Use:   "sweep [velocity|altitude]",
		Short: "evaluate a linear range of one input as a node batch",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addCaseFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 60, "first value")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 140, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 33, "number of nodes")
	sweepCmd.Flags().StringVar(&sweepUnit, "unit", "", "unit of the swept input (default ft/s or ft)")
	sweepCmd.Flags().StringVar(&outputName, "output", "CL", "output to plot")
	sweepCmd.Flags().StringVar(&svgFile, "svg", "", "also write the curve to an SVG file")
	sweepCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "compare analytic partials against central differences",
		Args:  cobra.NoArgs,
		RunE:  runCheck,
	}
	checkCmd.Flags().Float64Var(&fdStep, "step", 1e-6, "relative finite-difference step")
	checkCmd.Flags().Float64Var(&relTol, "rtol", 1e-4, "relative tolerance")
	checkCmd.Flags().StringVar(&checkOnly, "component", "", "check a single component")

	meshCmd := &cobra.Command{
		Use:   "mesh",
		Short: "generate a rectangular wing mesh",
		Args:  cobra.NoArgs,
		RunE:  runMesh,
	}
	meshCmd.Flags().IntVar(&numX, "num-x", 2, "chordwise stations")
	meshCmd.Flags().IntVar(&numY, "num-y", 5, "spanwise stations over the full span (odd)")
	meshCmd.Flags().Float64Var(&span, "span", 3, "full span")
	meshCmd.Flags().Float64Var(&chord, "chord", 1.57, "root chord")
	meshCmd.Flags().StringVar(&meshUnit, "unit", "ft", "length unit")
	meshCmd.Flags().BoolVar(&symmetry, "symmetry", true, "keep only the left half")
	meshCmd.Flags().Float64Var(&spanCos, "span-cos-spacing", 0, "spanwise cosine spacing weight")
	meshCmd.Flags().Float64Var(&chordCos, "chord-cos-spacing", 0, "chordwise cosine spacing weight")
	meshCmd.Flags().StringVar(&svgFile, "svg", "", "write the planform to an SVG file")

	aeroCmd := &cobra.Command{
		Use:   "aero",
		Short: "wing CL and CD from the aerostructural adapter",
		Args:  cobra.NoArgs,
		RunE:  runAero,
	}
	addCaseFlags(aeroCmd)
	aeroCmd.Flags().Float64Var(&alpha, "alpha", 5, "angle of attack [deg]")
	aeroCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [output]",
		Short: "grid search over one or two inputs for the best output",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	addCaseFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&params, "param", nil, "searched input as name:unit:from:to:steps (repeat for two)")
	optimizeCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")
	optimizeCmd.Flags().IntVar(&limit, "jobs", 0, "concurrent evaluations (default GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.csv)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default <run_id>.json)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available cases",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	exploreCmd := &cobra.Command{
		Use:   "explore",
		Short: "interactive flight-condition explorer",
		Args:  cobra.NoArgs,
		RunE:  runExplore,
	}
	addCaseFlags(exploreCmd)

	rootCmd.AddCommand(reynoldsCmd, evalCmd, sweepCmd, checkCmd, meshCmd, aeroCmd, optimizeCmd,
		listCmd, showCmd, exportCSVCmd, exportJSONCmd, presetsCmd, exploreCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addCaseFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "case file (yaml or ini)")
	cmd.Flags().StringVar(&preset, "preset", "", "use a preset case (default unsw-m2)")
	cmd.Flags().StringVar(&chainName, "chain", "standard", "component chain (standard, power-law)")
	cmd.Flags().StringArrayVar(&setValues, "set", nil, `override an input, e.g. --set velocity="85 ft/s"`)
	cmd.Flags().IntVar(&numNodes, "nodes", 1, "number of nodes")
	cmd.Flags().Float64Var(&gravity, "gravity", 9.81, "gravitational acceleration [m/s**2]")
}
