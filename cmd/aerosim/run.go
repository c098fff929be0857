package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/aerosim/internal/aero"
	"github.com/san-kum/aerosim/internal/aerostruct"
	"github.com/san-kum/aerosim/internal/check"
	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/experiment"
	"github.com/san-kum/aerosim/internal/export"
	"github.com/san-kum/aerosim/internal/mesh"
	"github.com/san-kum/aerosim/internal/optim"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
	"github.com/san-kum/aerosim/internal/viz"
)

func runReynolds(cmd *cobra.Command, args []string) error {
	p := sim.New(1)
	p.Add(aero.NewReynoldsNumber())
	if err := p.Setup(); err != nil {
		return err
	}
	if err := p.SetVal(quantity.Altitude, altitudeUnit, altitude); err != nil {
		return err
	}
	if err := p.SetVal(quantity.Velocity, velocityUnit, velocity); err != nil {
		return err
	}
	if err := p.SetVal(quantity.WingCharacteristicLength, lengthUnit, length); err != nil {
		return err
	}
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("altitude %g %s, velocity %g %s, length %g %s\n\n",
		altitude, altitudeUnit, velocity, velocityUnit, length, lengthUnit)
	v := p.Vars()
	for _, n := range []quantity.Name{
		quantity.Temperature,
		quantity.Density,
		quantity.DynamicViscosity,
		quantity.KinematicViscosity,
		quantity.ReynoldsNumber,
	} {
		fmt.Printf("  %-22s %.6g\n", heading(n), v[n][0])
	}
	return nil
}

func runEval(cmd *cobra.Command, args []string) error {
	c, err := loadCase(cmd)
	if err != nil {
		return err
	}

	opts := sim.DefaultOptions()
	opts.ValidateOutputs = validate

	start := time.Now()
	result, err := runCase(cmd, c, opts)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s (%s chain)", c.Name, result.Chain)))
	fmt.Printf("evaluated %d nodes in %v\n\n", result.NumNodes, time.Since(start))

	cols := []quantity.Name{
		quantity.Velocity,
		quantity.ReynoldsNumber,
		quantity.DynamicPressure,
		quantity.LiftCoefficient,
		quantity.Lift,
		quantity.SkinFrictionDrag,
	}
	if err := printNodes(result.Vars, cols, result.NumNodes); err != nil {
		return err
	}
	summary := result.Summary()
	printSummary(summary)

	return saveRun("eval", c, result.Inputs, summary, result.Vars, result.NumNodes)
}

func runSweep(cmd *cobra.Command, args []string) error {
	var name quantity.Name
	switch args[0] {
	case "velocity":
		name = quantity.Velocity
		if sweepUnit == "" {
			sweepUnit = "ft/s"
		}
	case "altitude":
		name = quantity.Altitude
		if sweepUnit == "" {
			sweepUnit = "ft"
		}
	default:
		return fmt.Errorf("cannot sweep %q (velocity, altitude)", args[0])
	}
	out, err := quantity.Lookup(outputName)
	if err != nil {
		return err
	}
	if sweepSteps < 2 {
		return fmt.Errorf("--steps must be at least 2")
	}

	c, err := loadCase(cmd)
	if err != nil {
		return err
	}
	collapse(c, name)
	c.NumNodes = sweepSteps
	xs := optim.Linspace(sweepFrom, sweepTo, sweepSteps)
	c.Set(name, sweepUnit, xs...)

	result, err := runCase(cmd, c, sim.DefaultOptions())
	if err != nil {
		return err
	}
	ys, ok := result.Vars[out]
	if !ok {
		return fmt.Errorf("%w: %s is not computed by the %s chain", sim.ErrUnknownVariable, out, result.Chain)
	}

	caption := fmt.Sprintf("%s vs %s %g..%g %s", heading(out), name, sweepFrom, sweepTo, sweepUnit)
	fmt.Println(asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	))

	if svgFile != "" {
		svg := export.CurveToSVG(export.Curve{
			X:      xs,
			Y:      ys,
			XLabel: fmt.Sprintf("%s [%s]", name, sweepUnit),
			YLabel: heading(out),
		}, 640, 400)
		if err := os.WriteFile(svgFile, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}

	return saveRun("sweep", c, result.Inputs, result.Summary(), result.Vars, result.NumNodes)
}

func runCheck(cmd *cobra.Command, args []string) error {
	reg := experiment.NewRegistry()
	opts := check.DefaultOptions()
	opts.Step, opts.RelTol = fdStep, relTol

	names := reg.Differentiable()
	if checkOnly != "" {
		names = []string{checkOnly}
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COMPONENT\tCASE\tOF\tWRT\tPATTERN\tANALYTIC\tFD\tREL ERR\tOK")

	failed := 0
	for _, name := range names {
		c, err := reg.GetComponent(name, 0)
		if err != nil {
			return err
		}
		d, ok := c.(sim.Differentiable)
		if !ok {
			return fmt.Errorf("%s has no analytic partials", name)
		}
		cases, err := reg.CheckCases(name)
		if err != nil {
			return err
		}

		for i, in := range cases {
			report, err := check.Partials(d, experiment.CheckNodes, in, opts)
			if err != nil {
				return err
			}
			for _, row := range report.Rows {
				mark := "ok"
				if !row.OK {
					mark = "FAIL"
					failed++
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%.6g\t%.6g\t%.2e\t%s\n",
					row.Component, i, row.Of, row.Wrt, row.Pattern, row.Analytic, row.FD, row.RelErr, mark)
			}
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d partial checks failed", failed)
	}
	fmt.Println("\nall partials match")
	return nil
}

func runMesh(cmd *cobra.Command, args []string) error {
	s, err := quantity.ConvertScalar(span, meshUnit, "m")
	if err != nil {
		return err
	}
	ch, err := quantity.ConvertScalar(chord, meshUnit, "m")
	if err != nil {
		return err
	}

	m, err := mesh.Rect(mesh.Options{
		NumX:            numX,
		NumY:            numY,
		Span:            s,
		Chord:           ch,
		Symmetry:        symmetry,
		SpanCosSpacing:  spanCos,
		ChordCosSpacing: chordCos,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "I\tJ\tX [m]\tY [m]\tZ [m]")
	for i := 0; i < m.NumX; i++ {
		for j := 0; j < m.NumY; j++ {
			p := m.At(i, j)
			fmt.Fprintf(w, "%d\t%d\t%.4f\t%.4f\t%.4f\n", i, j, p.X, p.Y, p.Z)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nwetted area:    %.6g m**2\n", m.Area(symmetry))
	fmt.Printf("projected area: %.6g m**2\n", m.ProjectedArea(symmetry))
	fmt.Printf("span:           %.6g m\n", m.SpanLength(symmetry))
	fmt.Printf("aspect ratio:   %.4g\n\n", m.AspectRatio(symmetry))

	canvas := viz.Planform(m, symmetry, 60, 8)
	fmt.Print(canvas.String())

	if svgFile != "" {
		if err := os.WriteFile(svgFile, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgFile)
	}
	return nil
}

func runAero(cmd *cobra.Command, args []string) error {
	c, err := loadCase(cmd)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	values, err := c.ToValues()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("alpha") {
		if err := values.Set(quantity.AngleOfAttack, "deg", alpha); err != nil {
			return err
		}
	}

	b := aerostruct.NewBuilder()
	b.Options = c.AdapterOptions()
	adapter, err := b.Build(values, c.NumNodes)
	if err != nil {
		return err
	}
	res, err := adapter.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s: %s surface, S_ref %.4g m**2", c.Name, adapter.Surface.Name, res.SRef)))
	for i := range res.CL {
		if len(res.CL) > 1 {
			fmt.Printf("node %d\n", i)
		}
		fmt.Printf("CL = %.6f\n", res.CL[i])
		fmt.Printf("CD = %.6f\n", res.CD[i])
	}

	vars := sim.Vars{
		quantity.WingReynoldsNumber: res.Reynolds,
		quantity.MachNumber:         res.Mach,
		quantity.LiftCoefficient:    res.CL,
		quantity.DragCoefficient:    res.CD,
		quantity.InducedDrag:        res.CDi,
		quantity.ViscousDrag:        res.CDv,
	}
	summary := map[string]float64{
		string(quantity.LiftCoefficient): res.CL[0],
		string(quantity.DragCoefficient): res.CD[0],
		"s_ref":                          res.SRef,
	}
	inputs := make(map[string]string, len(c.Values))
	for k, v := range c.Values {
		inputs[k] = v.String()
	}
	return saveRun("aero", c, inputs, summary, vars, c.NumNodes)
}

// parseAxis reads name:unit:from:to:steps.
func parseAxis(s string) (optim.Axis, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 5 {
		return optim.Axis{}, fmt.Errorf("--param %q: want name:unit:from:to:steps", s)
	}
	// Names may themselves contain colons.
	n := len(parts)
	name, err := quantity.Lookup(strings.Join(parts[:n-4], ":"))
	if err != nil {
		return optim.Axis{}, err
	}
	from, err := strconv.ParseFloat(parts[n-3], 64)
	if err != nil {
		return optim.Axis{}, fmt.Errorf("--param %s from: %w", name, err)
	}
	to, err := strconv.ParseFloat(parts[n-2], 64)
	if err != nil {
		return optim.Axis{}, fmt.Errorf("--param %s to: %w", name, err)
	}
	steps, err := strconv.Atoi(parts[n-1])
	if err != nil {
		return optim.Axis{}, fmt.Errorf("--param %s steps: %w", name, err)
	}
	return optim.Axis{Name: name, Unit: parts[n-4], Values: optim.Linspace(from, to, steps)}, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	metric, err := quantity.Lookup(args[0])
	if err != nil {
		return err
	}
	if len(params) == 0 {
		params = []string{"velocity:ft/s:60:140:17"}
	}
	axes := make([]optim.Axis, 0, len(params))
	for _, s := range params {
		a, err := parseAxis(s)
		if err != nil {
			return err
		}
		axes = append(axes, a)
	}

	c, err := loadCase(cmd)
	if err != nil {
		return err
	}
	c.NumNodes = 1
	collapse(c, "")

	g, err := optim.NewGridSearch(axes...)
	if err != nil {
		return err
	}
	g.Maximize, g.Limit = maximize, limit

	best, val, evals, err := g.Search(cmd.Context(), g.CaseObjective(c, chain(), metric, metric.Unit()))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, a := range axes {
		fmt.Fprintf(w, "%s [%s]\t", a.Name, a.Unit)
	}
	fmt.Fprintln(w, heading(metric))
	for _, e := range evals {
		for _, a := range axes {
			fmt.Fprintf(w, "%.6g\t", e.Params[a.Name])
		}
		if e.Err != nil {
			fmt.Fprintf(w, "error: %v\n", e.Err)
			continue
		}
		fmt.Fprintf(w, "%.6g\n", e.Objective)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	goal := "minimum"
	if maximize {
		goal = "maximum"
	}
	fmt.Println()
	fmt.Println(viz.Header.Render(fmt.Sprintf("%s %s = %.6g", goal, metric, val)))
	for _, a := range axes {
		fmt.Printf("  %s = %.6g %s\n", a.Name, best[a.Name], a.Unit)
	}
	return nil
}

func runExplore(cmd *cobra.Command, args []string) error {
	c, err := loadCase(cmd)
	if err != nil {
		return err
	}
	// log lines would tear the alt screen
	log.SetOutput(io.Discard)
	defer log.SetOutput(os.Stderr)
	return viz.Explore(c, chain())
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tNODES\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, p.NumNodes, p.Description)
	}
	return w.Flush()
}
