package aero

import (
	"github.com/san-kum/aerosim/internal/quantity"
	"github.com/san-kum/aerosim/internal/sim"
)

type block struct {
	of, wrt quantity.Name
	values  []float64
}

func setAll(jac *sim.Jacobian, blocks []block) error {
	for _, b := range blocks {
		if err := jac.Set(b.of, b.wrt, b.values); err != nil {
			return err
		}
	}
	return nil
}
