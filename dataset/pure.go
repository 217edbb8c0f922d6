// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"fmt"
	"math"

	"github.com/sgostarter/i/l"

	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

// supercriticalPenalty scales the distance to the critical temperature
// assigned to vapor pressures measured above it.
const supercriticalPenalty = 5.0

func (d *DataSet) criticalPoint(model eos.Model) (eos.State, error) {
	cp, err := model.CriticalPoint(d.maxTemperature)
	if err != nil {
		return nil, fmt.Errorf("critical point: %w", errs.Model(err))
	}
	return cp, nil
}

// vaporPressureCost returns (pᵉˣᵖ - pᵐᵒᵈᵉˡ)/pᵉˣᵖ. Points above the critical
// temperature of the model get 5·(T - T_c)/K without an equilibrium query.
func (d *DataSet) vaporPressureCost(model eos.Model) ([]float64, error) {
	cp, err := d.criticalPoint(model)
	if err != nil {
		return nil, err
	}
	tc := cp.Temperature()

	cost := make([]float64, d.datapoints)
	for i := range cost {
		t := d.temperature.At(i)
		if tc.Less(t) {
			dt, err := t.Sub(tc)
			if err != nil {
				return nil, err
			}
			r, err := dt.ToReduced(quantity.Kelvin)
			if err != nil {
				return nil, err
			}
			cost[i] = supercriticalPenalty * r
			d.logger.WithFields(l.IntField("point", i), l.StringField("temperature", t.String()),
				l.StringField("critical temperature", tc.String())).Debug("temperature above critical point, penalty assigned")
			continue
		}
		vle, err := model.PurePhaseEquilibrium(t, eos.Guess{})
		if err != nil {
			return nil, fmt.Errorf("phase equilibrium at T = %v: %w", t, errs.Model(err))
		}
		target := d.target.At(i)
		if cost[i], err = deviation(target, vle.Vapor.Pressure(eos.Total), target); err != nil {
			return nil, err
		}
	}
	return cost, nil
}

// predictVaporPressure returns the model vapor pressure, NaN above the critical temperature.
func (d *DataSet) predictVaporPressure(model eos.Model) (quantity.Array, error) {
	cp, err := d.criticalPoint(model)
	if err != nil {
		return quantity.Array{}, err
	}
	tc := cp.Temperature()

	pred := quantity.NaN(d.datapoints, quantity.Pascal)
	for i := 0; i < d.datapoints; i++ {
		t := d.temperature.At(i)
		if tc.Less(t) {
			continue
		}
		vle, err := model.PurePhaseEquilibrium(t, eos.Guess{})
		if err != nil {
			return quantity.Array{}, fmt.Errorf("phase equilibrium at T = %v: %w", t, errs.Model(err))
		}
		if err = pred.Set(i, vle.Vapor.Pressure(eos.Total)); err != nil {
			return quantity.Array{}, err
		}
	}
	return pred, nil
}

// densityCost returns (ρᵐᵒᵈᵉˡ - ρᵉˣᵖ)/ρᵉˣᵖ.
func (d *DataSet) densityCost(model eos.Model) ([]float64, error) {
	pred, err := d.predictDensity(model)
	if err != nil {
		return nil, err
	}
	cost := make([]float64, d.datapoints)
	for i := range cost {
		target := d.target.At(i)
		if cost[i], err = deviation(pred.At(i), target, target); err != nil {
			return nil, err
		}
	}
	return cost, nil
}

func (d *DataSet) predictDensity(model eos.Model) (quantity.Array, error) {
	if d.kind == LiquidDensity {
		return d.predictLiquidDensity(model)
	}
	return d.predictEquilibriumLiquidDensity(model)
}

func (d *DataSet) predictLiquidDensity(model eos.Model) (quantity.Array, error) {
	pred := quantity.NaN(d.datapoints, quantity.KilogramPerCubicMeter)
	for i := 0; i < d.datapoints; i++ {
		t, p := d.temperature.At(i), d.pressure.At(i)
		state, err := model.NewState(t, p, []float64{1}, eos.Liquid)
		if err != nil {
			return quantity.Array{}, fmt.Errorf("liquid state at T = %v, p = %v: %w", t, p, errs.Model(err))
		}
		if err = pred.Set(i, state.MassDensity()); err != nil {
			return quantity.Array{}, err
		}
	}
	return pred, nil
}

// predictEquilibriumLiquidDensity returns the density of the saturated liquid.
//
// Where the model has no phase equilibrium the density is extrapolated from
// the critical point with t_r = T/T_c - 1:
//
//	ρ = ρ_c (1 + t_r ln t_r)  if t_r < 1/e
//	ρ = 0.62 ρ_c              otherwise
//
// or NaN if extrapolation is disabled.
func (d *DataSet) predictEquilibriumLiquidDensity(model eos.Model) (quantity.Array, error) {
	var cp eos.State

	pred := quantity.NaN(d.datapoints, quantity.KilogramPerCubicMeter)
	for i := 0; i < d.datapoints; i++ {
		t := d.temperature.At(i)
		vle, err := model.PurePhaseEquilibrium(t, eos.Guess{})
		if err == nil {
			if err = pred.Set(i, vle.Liquid.MassDensity()); err != nil {
				return quantity.Array{}, err
			}
			continue
		}

		logger := d.logger.WithFields(l.IntField("point", i), l.StringField("temperature", t.String()), l.ErrorField(err))
		if !d.extrapolate {
			logger.Debug("no phase equilibrium, density set to NaN")
			continue
		}

		if cp == nil {
			if cp, err = d.criticalPoint(model); err != nil {
				return quantity.Array{}, err
			}
		}
		tr, err := t.ToReduced(cp.Temperature())
		if err != nil {
			return quantity.Array{}, err
		}
		tr -= 1
		rhoc := cp.MassDensity()
		rho := rhoc.Scale(0.62)
		if tr < math.Exp(-1) {
			rho = rhoc.Scale(1 + tr*math.Log(tr))
		}
		if err = pred.Set(i, rho); err != nil {
			return quantity.Array{}, err
		}
		logger.Debug("no phase equilibrium, density extrapolated from critical point")
	}
	return pred, nil
}
