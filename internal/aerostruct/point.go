package aerostruct

import (
	"context"
	"fmt"

	"github.com/san-kum/aerosim/internal/atmosphere"
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

// AeroPoint runs the solver at every node of the batch.
type AeroPoint struct {
	Surface Surface
	Solver  Solver
}

func NewAeroPoint(s Surface, solver Solver) *AeroPoint {
	return &AeroPoint{Surface: s, Solver: solver}
}

func (a *AeroPoint) Name() string { return "aero_point" }

func (a *AeroPoint) Setup(nn int) sim.Declaration {
	return sim.Declaration{
		Inputs: []sim.Var{
			sim.In(quantity.AngleOfAttack, nn),
			sim.In(quantity.Velocity, nn),
			sim.In(quantity.Density, nn),
			sim.In(quantity.Temperature, nn),
			sim.In(quantity.WingReynoldsNumber, nn),
		},
		Outputs: []sim.Var{
			sim.Out(quantity.LiftCoefficient, nn),
			sim.Out(quantity.DragCoefficient, nn),
			sim.Out(quantity.InducedDrag, nn),
			sim.Out(quantity.ViscousDrag, nn),
			sim.Out(quantity.MachNumber, nn),
		},
	}
}

// nodesPerWorker is the smallest slice of the batch solved on its own
// goroutine.
const nodesPerWorker = 16

// Compute has no context of its own; Problem.Run checks cancellation
// between components. Nodes are independent, so large batches are split
// across workers and the first failing node's error is returned.
func (a *AeroPoint) Compute(in, out sim.Vars) error {
	errs := make([]error, len(in[quantity.Velocity]))
	sim.ParallelFor(len(errs), nodesPerWorker, func(start, end int) {
		for i := start; i < end; i++ {
			if errs[i] = a.solveNode(in, out, i); errs[i] != nil {
				return
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *AeroPoint) solveNode(in, out sim.Vars, i int) error {
	v := in[quantity.Velocity][i]
	mach := v / atmosphere.SpeedOfSound(in[quantity.Temperature][i])
	c, err := a.Solver.Solve(context.Background(), a.Surface, Condition{
		Alpha:    in[quantity.AngleOfAttack][i],
		Velocity: v,
		Density:  in[quantity.Density][i],
		Reynolds: in[quantity.WingReynoldsNumber][i],
		Mach:     mach,
	})
	if err != nil {
		return fmt.Errorf("node %d: %w", i, err)
	}
	out[quantity.LiftCoefficient][i] = c.CL
	out[quantity.DragCoefficient][i] = c.CD
	out[quantity.InducedDrag][i] = c.CDi
	out[quantity.ViscousDrag][i] = c.CDv
	out[quantity.MachNumber][i] = mach
	return nil
}
