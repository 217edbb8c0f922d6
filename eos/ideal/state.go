// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ideal

import (
	"math"

	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

// State is a single-phase state of the ideal model. Values are stored in SI units.
type State struct {
	t, p      float64
	z         []float64
	rho       float64 // molar density
	molarMass float64
	psat      []float64
	phase     eos.DensityInitialization
}

// Temperature implements eos.State.
func (s *State) Temperature() quantity.Quantity {
	return quantity.New(s.t, quantity.Kelvin)
}

// Pressure implements eos.State.
func (s *State) Pressure(c eos.Contributions) quantity.Quantity {
	ideal := s.rho * gasConstant * s.t
	switch c {
	case eos.IdealGas:
		return quantity.New(ideal, quantity.Pascal)
	case eos.Residual:
		return quantity.New(s.p-ideal, quantity.Pascal)
	default:
		return quantity.New(s.p, quantity.Pascal)
	}
}

// MassDensity implements eos.State.
func (s *State) MassDensity() quantity.Quantity {
	return quantity.New(s.rho*s.molarMass, quantity.KilogramPerCubicMeter)
}

// ChemicalPotential implements eos.State.
//
// Both phases share the reference state of the pure ideal gas at 1 Pa:
// µᵢ = RT ln(yᵢ p) in the vapor and µᵢ = RT ln(xᵢ pˢᵃᵗᵢ) in the liquid.
func (s *State) ChemicalPotential(c eos.Contributions) quantity.Array {
	rt := gasConstant * s.t
	mu := make([]float64, len(s.z))
	for i, zi := range s.z {
		ig := rt * math.Log(zi*s.rho*rt)
		total := rt * math.Log(zi*s.p)
		if s.phase == eos.Liquid {
			total = rt * math.Log(zi*s.psat[i])
		}
		switch c {
		case eos.IdealGas:
			mu[i] = ig
		case eos.Residual:
			mu[i] = total - ig
		default:
			mu[i] = total
		}
	}
	return quantity.NewArray(mu, quantity.JoulePerMol)
}

// Molefracs returns a copy of the composition of the phase.
func (s *State) Molefracs() []float64 {
	return append([]float64(nil), s.z...)
}
