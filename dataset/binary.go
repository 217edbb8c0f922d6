// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"errors"
	"fmt"

	"github.com/sgostarter/i/l"
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/odr"
	"github.com/curioloop/estimator/quantity"
)

// bubblePressure returns the bubble point pressure at liquid composition x.
// y is an optional guess of the vapor composition.
func bubblePressure(model eos.Model, t, p quantity.Quantity, x float64, y []float64) (quantity.Quantity, error) {
	vle, err := model.BubblePoint(t, eos.Binary(x), eos.Guess{Pressure: &p, Molefracs: y})
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("bubble point at T = %v, x = %g: %w", t, x, errs.Model(err))
	}
	return vle.Vapor.Pressure(eos.Total), nil
}

// dewPressure returns the dew point pressure at vapor composition y.
// x is an optional guess of the liquid composition.
func dewPressure(model eos.Model, t, p quantity.Quantity, y float64, x []float64) (quantity.Quantity, error) {
	vle, err := model.DewPoint(t, eos.Binary(y), eos.Guess{Pressure: &p, Molefracs: x})
	if err != nil {
		return quantity.Quantity{}, fmt.Errorf("dew point at T = %v, y = %g: %w", t, y, errs.Model(err))
	}
	return vle.Vapor.Pressure(eos.Total), nil
}

// predictPressure returns the bubble point pressures for BinaryTPx, the dew
// point pressures for BinaryTPy and both, stacked, for BinaryTPxy.
func (d *DataSet) predictPressure(model eos.Model) (quantity.Array, error) {
	n := d.datapoints
	pred := quantity.NaN(d.Len(), quantity.Pascal)
	for i := 0; i < n; i++ {
		t, p := d.temperature.At(i), d.target.At(i)
		switch d.kind {
		case BinaryTPx:
			pb, err := bubblePressure(model, t, p, d.liquid[i], nil)
			if err != nil {
				return quantity.Array{}, err
			}
			if err = pred.Set(i, pb); err != nil {
				return quantity.Array{}, err
			}
		case BinaryTPy:
			pd, err := dewPressure(model, t, p, d.vapor[i], nil)
			if err != nil {
				return quantity.Array{}, err
			}
			if err = pred.Set(i, pd); err != nil {
				return quantity.Array{}, err
			}
		case BinaryTPxy:
			x, y := d.liquid[i], d.vapor[i]
			pb, err := bubblePressure(model, t, p, x, eos.Binary(y))
			if err != nil {
				return quantity.Array{}, err
			}
			pd, err := dewPressure(model, t, p, y, eos.Binary(x))
			if err != nil {
				return quantity.Array{}, err
			}
			if err = pred.Set(i, pb); err != nil {
				return quantity.Array{}, err
			}
			if err = pred.Set(n+i, pd); err != nil {
				return quantity.Array{}, err
			}
		}
	}
	return pred, nil
}

// pressureCost returns (pᵉˣᵖ - pᵐᵒᵈᵉˡ)/pᵉˣᵖ. For BinaryTPxy the bubble point
// residuals are followed by the dew point residuals.
func (d *DataSet) pressureCost(model eos.Model) ([]float64, error) {
	pred, err := d.predictPressure(model)
	if err != nil {
		return nil, err
	}
	cost := make([]float64, pred.Len())
	for i := range cost {
		target := d.target.At(i % d.datapoints)
		if cost[i], err = deviation(target, pred.At(i), target); err != nil {
			return nil, err
		}
	}
	return cost, nil
}

// chemicalPotentialCost returns ‖µᴸ - µⱽ‖ of liquid and vapor states built
// independently at the measured temperature, pressure and compositions.
// The second half of the vector is zero.
func (d *DataSet) chemicalPotentialCost(model eos.Model) ([]float64, error) {
	cost := make([]float64, d.Len())
	for i := 0; i < d.datapoints; i++ {
		t, p := d.temperature.At(i), d.target.At(i)
		liquid, err := model.NewState(t, p, eos.Binary(d.liquid[i]), eos.Liquid)
		if err != nil {
			return nil, fmt.Errorf("liquid state at T = %v, p = %v: %w", t, p, errs.Model(err))
		}
		vapor, err := model.NewState(t, p, eos.Binary(d.vapor[i]), eos.Vapor)
		if err != nil {
			return nil, fmt.Errorf("vapor state at T = %v, p = %v: %w", t, p, errs.Model(err))
		}
		muL, err := liquid.ChemicalPotential(eos.Total).ToReduced(quantity.JoulePerMol)
		if err != nil {
			return nil, err
		}
		muV, err := vapor.ChemicalPotential(eos.Total).ToReduced(quantity.JoulePerMol)
		if err != nil {
			return nil, err
		}
		if len(muL) != len(muV) {
			return nil, fmt.Errorf("%w: %d liquid and %d vapor chemical potentials", errs.ErrShape, len(muL), len(muV))
		}
		cost[i] = floats.Distance(muL, muV, 2)
	}
	return cost, nil
}

// distanceCost returns the distance of each point to the bubble point curve
// (BinaryTPx, BinaryTPxy) or dew point curve (BinaryTPy) at the measured
// temperature. Only the liquid side of BinaryTPxy is fitted, its second half is zero.
func (d *DataSet) distanceCost(model eos.Model) ([]float64, error) {
	cost := make([]float64, d.Len())
	for i := 0; i < d.datapoints; i++ {
		t, p := d.temperature.At(i), d.target.At(i)
		pexp, err := p.ToReduced(quantity.Pascal)
		if err != nil {
			return nil, err
		}

		var curve odr.Curve
		var z float64
		switch d.kind {
		case BinaryTPy:
			z = d.vapor[i]
			curve = func(y float64) (float64, error) {
				pd, err := dewPressure(model, t, p, y, nil)
				if err != nil {
					return 0, err
				}
				return pd.ToReduced(quantity.Pascal)
			}
		default:
			z = d.liquid[i]
			var hint []float64
			if d.vapor != nil {
				hint = eos.Binary(d.vapor[i])
			}
			curve = func(x float64) (float64, error) {
				pb, err := bubblePressure(model, t, p, x, hint)
				if err != nil {
					return 0, err
				}
				return pb.ToReduced(quantity.Pascal)
			}
		}

		r := odr.Solve(curve, z, pexp, d.distance)
		if r.Failed {
			if errors.Is(r.Err, errs.ErrQuantity) {
				return nil, r.Err
			}
			d.logger.WithFields(l.IntField("point", i), l.IntField("iteration", r.Iterations),
				l.ErrorField(r.Err)).Debug("distance regression failed, penalty assigned")
		} else if !r.Converged {
			d.logger.WithFields(l.IntField("point", i), l.IntField("iteration", r.Iterations)).
				Debug("distance regression reached iteration limit")
		}
		cost[i] = r.Residual
	}
	return cost, nil
}
