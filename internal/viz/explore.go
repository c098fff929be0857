package viz

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/aerosim/internal/atmosphere"
	"github.com/san-kum/aerosim/internal/config"
	"github.com/san-kum/aerosim/internal/experiment"
	"github.com/san-kum/aerosim/internal/quantity"
)

const (
	velocityUnit = "ft/s"
	altitudeUnit = "ft"
	historyLen   = 40
)

var steps = []struct{ velocity, altitude float64 }{
	{1, 50},
	{5, 250},
	{20, 1000},
}

type readout struct {
	name quantity.Name
	unit string
	fmt  string
}

var readouts = []readout{
	{quantity.Temperature, "K", "%.2f"},
	{quantity.Density, "kg/m**3", "%.5f"},
	{quantity.ReynoldsNumber, "unitless", "%.4g"},
	{quantity.DynamicPressure, "N/m**2", "%.2f"},
	{quantity.LiftCoefficient, "unitless", "%.4f"},
	{quantity.Lift, "N", "%.2f"},
	{quantity.SkinFrictionDrag, "N", "%.4f"},
}

// Explorer is the interactive flight-condition view. Velocity and altitude
// are broadcast to every node; readouts show node 0.
type Explorer struct {
	base     *config.Case
	chain    experiment.Chain
	reg      *experiment.Registry
	exp      *experiment.Experiment
	velocity float64
	altitude float64
	step     int
	result   *experiment.Result
	err      error
	history  []float64
	width    int
}

func NewExplorer(c *config.Case, chain experiment.Chain) (*Explorer, error) {
	e := &Explorer{base: c, chain: chain, reg: experiment.NewRegistry(), step: 1, width: 80}
	if err := e.reset(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Explorer) reset() error {
	exp := experiment.New(experiment.Config{Case: e.base.Clone(), Chain: e.chain})
	if err := exp.Setup(e.reg); err != nil {
		return err
	}
	p := exp.Problem()
	v, err := p.Val(quantity.Velocity, velocityUnit)
	if err != nil {
		return err
	}
	h, err := p.Val(quantity.Altitude, altitudeUnit)
	if err != nil {
		return err
	}
	e.exp, e.velocity, e.altitude = exp, v[0], h[0]
	e.history = e.history[:0]
	e.recompute()
	return nil
}

func (e *Explorer) recompute() {
	p := e.exp.Problem()
	if e.err = p.SetVal(quantity.Velocity, velocityUnit, e.velocity); e.err != nil {
		return
	}
	if e.err = p.SetVal(quantity.Altitude, altitudeUnit, e.altitude); e.err != nil {
		return
	}
	e.result, e.err = e.exp.Run(context.Background())
	if e.err != nil {
		return
	}
	if ld, ok := e.result.Summary()["lift_to_drag"]; ok {
		e.history = append(e.history, ld)
		if len(e.history) > historyLen {
			e.history = e.history[len(e.history)-historyLen:]
		}
	}
}

// Velocity and Altitude return the current condition in ft/s and ft.
func (e *Explorer) Velocity() float64 { return e.velocity }
func (e *Explorer) Altitude() float64 { return e.altitude }

func (e *Explorer) Result() *experiment.Result { return e.result }

func (e *Explorer) Chain() experiment.Chain { return e.chain }

func (e *Explorer) Init() tea.Cmd { return nil }

func (e *Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.WindowSizeMsg:
		e.width = msg.Width
	}
	return e, nil
}

func (e *Explorer) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := steps[e.step]
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return e, tea.Quit
	case "right", "l":
		e.velocity += st.velocity
	case "left", "h":
		e.velocity = max(e.velocity-st.velocity, 0)
	case "up", "k":
		e.altitude += st.altitude
	case "down", "j":
		e.altitude -= st.altitude
	case "+", "=":
		e.step = min(e.step+1, len(steps)-1)
		return e, nil
	case "-", "_":
		e.step = max(e.step-1, 0)
		return e, nil
	case "c":
		if e.chain == experiment.ChainStandard {
			e.chain = experiment.ChainPowerLaw
		} else {
			e.chain = experiment.ChainStandard
		}
		v, h := e.velocity, e.altitude
		if e.err = e.reset(); e.err == nil {
			e.velocity, e.altitude = v, h
			e.recompute()
		}
		return e, nil
	case "r":
		e.err = e.reset()
		return e, nil
	default:
		return e, nil
	}

	lo, _ := quantity.ConvertScalar(atmosphere.MinAltitude, "m", altitudeUnit)
	hi, _ := quantity.ConvertScalar(atmosphere.MaxAltitude, "m", altitudeUnit)
	e.altitude = max(lo, min(e.altitude, hi))
	e.recompute()
	return e, nil
}

func (e *Explorer) View() string {
	var b strings.Builder

	b.WriteString(Title.Render(fmt.Sprintf("aerosim explore  %s", e.base.Name)))
	b.WriteString("  " + Subtle.Render(string(e.chain)+" chain") + "\n\n")

	st := steps[e.step]
	cond := lipgloss.JoinHorizontal(lipgloss.Top,
		MetricLabel.Render("velocity ")+Selected.Render(fmt.Sprintf("%.1f %s", e.velocity, velocityUnit)),
		"   ",
		MetricLabel.Render("altitude ")+Selected.Render(fmt.Sprintf("%.0f %s", e.altitude, altitudeUnit)),
		"   ",
		Subtle.Render(fmt.Sprintf("step %g %s / %g %s", st.velocity, velocityUnit, st.altitude, altitudeUnit)),
	)
	b.WriteString(cond + "\n")

	var body strings.Builder
	body.WriteString(Header.Render("outputs") + "\n")
	if e.err != nil {
		body.WriteString(ErrorText.Render(e.err.Error()) + "\n")
	} else if e.result != nil {
		for _, r := range readouts {
			vals, ok := e.result.Vars[r.name]
			if !ok {
				continue
			}
			conv, err := quantity.ConvertScalar(vals[0], r.name.Unit(), r.unit)
			if err != nil {
				continue
			}
			unit := r.unit
			if unit == "unitless" {
				unit = ""
			}
			fmt.Fprintf(&body, "%s %s %s\n",
				MetricLabel.Render(fmt.Sprintf("%-20s", r.name)),
				MetricValue.Render(fmt.Sprintf(r.fmt, conv)),
				Subtle.Render(unit))
		}
		body.WriteString("\n" + MetricLabel.Render("L/D  ") + Sparkline(e.history, historyLen))
		if n := len(e.history); n > 0 {
			body.WriteString(" " + MetricValue.Render(fmt.Sprintf("%.1f", e.history[n-1])))
		}
	}
	b.WriteString(Panel.Render(body.String()) + "\n")

	b.WriteString(Separator(min(e.width, 60)) + "\n")
	b.WriteString(KeyHint.Render("←/→ velocity  ↑/↓ altitude  +/- step  c chain  r reset  q quit"))
	return b.String()
}

// Explore runs the explorer on the terminal until the user quits.
func Explore(c *config.Case, chain experiment.Chain) error {
	e, err := NewExplorer(c, chain)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(e, tea.WithAltScreen()).Run()
	return err
}
