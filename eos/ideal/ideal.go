// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ideal implements eos.Model for an ideal solution in equilibrium
// with an ideal gas (Raoult's law) with Antoine vapor pressures.
//
// The vapor pressure of component i reads
//
//	ln(pˢᵃᵗᵢ / Pa) = Aᵢ - Bᵢ / (T/K + Cᵢ)
//
// The liquid is incompressible with a constant molar volume per component.
// Critical properties are parameters, not predictions.
package ideal

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

// ErrSupercritical reports a phase equilibrium query above the critical temperature.
var ErrSupercritical = errors.New("temperature above critical temperature")

// Component holds the pure component parameters.
type Component struct {
	A, B, C             float64 // Antoine coefficients for pressure in Pa and temperature in K
	MolarMass           float64 // kg/mol
	LiquidMolarVolume   float64 // m³/mol
	CriticalTemperature float64 // K
	CriticalDensity     float64 // kg/m³
}

var gasConstant, _ = quantity.GasConstant.ToReduced(quantity.JoulePerMol.Div(quantity.Kelvin))

// ParameterCount is the number of adjustable parameters per component.
const ParameterCount = 3

// Model is a Raoult's law mixture of up to two components.
type Model struct {
	components []Component
}

// New returns a model of the given components.
func New(components ...Component) (*Model, error) {
	switch {
	case len(components) == 0:
		return nil, errors.New("at least one component is required")
	case len(components) > 2:
		return nil, errors.New("at most two components are supported")
	}
	for i, c := range components {
		if c.MolarMass <= 0 || c.LiquidMolarVolume <= 0 {
			return nil, fmt.Errorf("component %d: molar mass and molar volume must be positive", i)
		}
	}
	return &Model{append([]Component(nil), components...)}, nil
}

// FromParameters returns a copy of template whose Antoine coefficients are
// replaced by params, laid out as [A₀ B₀ C₀ A₁ B₁ C₁ ...].
func FromParameters(template []Component, params []float64) (*Model, error) {
	if len(params) != ParameterCount*len(template) {
		return nil, fmt.Errorf("expected %d parameters, got %d", ParameterCount*len(template), len(params))
	}
	cs := append([]Component(nil), template...)
	for i := range cs {
		p := params[ParameterCount*i:]
		cs[i].A, cs[i].B, cs[i].C = p[0], p[1], p[2]
	}
	return New(cs...)
}

// Components implements eos.Model.
func (m *Model) Components() int { return len(m.components) }

// VaporPressure returns the saturation pressure of component i in Pa.
func (m *Model) VaporPressure(i int, t float64) float64 {
	c := m.components[i]
	return math.Exp(c.A - c.B/(t+c.C))
}

func (m *Model) kelvin(t quantity.Quantity) (float64, error) {
	v, err := t.ToReduced(quantity.Kelvin)
	if err != nil {
		return 0, err
	}
	if !(v > 0) {
		return 0, fmt.Errorf("invalid temperature %g K", v)
	}
	return v, nil
}

func (m *Model) molefracs(z []float64) error {
	if len(z) != len(m.components) {
		return fmt.Errorf("expected %d mole fractions, got %d", len(m.components), len(z))
	}
	for _, v := range z {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("mole fraction %g outside [0, 1]", v)
		}
	}
	if math.Abs(floats.Sum(z)-1) > 1e-10 {
		return fmt.Errorf("mole fractions sum to %g", floats.Sum(z))
	}
	return nil
}

func (m *Model) subcritical(t float64) error {
	for i, c := range m.components {
		if t >= c.CriticalTemperature {
			return fmt.Errorf("%w: component %d, T = %g K", ErrSupercritical, i, t)
		}
	}
	return nil
}

func (m *Model) saturation(t float64) ([]float64, error) {
	ps := make([]float64, len(m.components))
	for i := range ps {
		ps[i] = m.VaporPressure(i, t)
		if math.IsNaN(ps[i]) || math.IsInf(ps[i], 0) || ps[i] <= 0 {
			return nil, fmt.Errorf("vapor pressure of component %d is not finite at T = %g K", i, t)
		}
	}
	return ps, nil
}

// BubblePoint implements eos.Model.
func (m *Model) BubblePoint(t quantity.Quantity, x []float64, _ eos.Guess) (*eos.PhaseEquilibrium, error) {
	tk, err := m.kelvin(t)
	if err != nil {
		return nil, err
	}
	if err = m.molefracs(x); err != nil {
		return nil, err
	}
	if err = m.subcritical(tk); err != nil {
		return nil, err
	}
	ps, err := m.saturation(tk)
	if err != nil {
		return nil, err
	}
	y := make([]float64, len(x))
	floats.MulTo(y, x, ps)
	p := floats.Sum(y)
	floats.Scale(1/p, y)
	return m.equilibrium(tk, p, x, y, ps), nil
}

// DewPoint implements eos.Model.
func (m *Model) DewPoint(t quantity.Quantity, y []float64, _ eos.Guess) (*eos.PhaseEquilibrium, error) {
	tk, err := m.kelvin(t)
	if err != nil {
		return nil, err
	}
	if err = m.molefracs(y); err != nil {
		return nil, err
	}
	if err = m.subcritical(tk); err != nil {
		return nil, err
	}
	ps, err := m.saturation(tk)
	if err != nil {
		return nil, err
	}
	x := make([]float64, len(y))
	floats.DivTo(x, y, ps)
	p := 1 / floats.Sum(x)
	floats.Scale(p, x)
	return m.equilibrium(tk, p, x, y, ps), nil
}

// PurePhaseEquilibrium implements eos.Model.
func (m *Model) PurePhaseEquilibrium(t quantity.Quantity, guess eos.Guess) (*eos.PhaseEquilibrium, error) {
	if len(m.components) != 1 {
		return nil, errors.New("pure phase equilibrium requires a single component")
	}
	return m.BubblePoint(t, []float64{1}, guess)
}

// CriticalPoint implements eos.Model. The critical point is a parameter of
// the model so maxTemperature is not needed.
func (m *Model) CriticalPoint(_ quantity.Quantity) (eos.State, error) {
	if len(m.components) != 1 {
		return nil, errors.New("critical point requires a single component")
	}
	c := m.components[0]
	if !(c.CriticalTemperature > 0 && c.CriticalDensity > 0) {
		return nil, errors.New("critical point parameters are not set")
	}
	tc := c.CriticalTemperature
	return &State{
		t:         tc,
		p:         m.VaporPressure(0, tc),
		z:         []float64{1},
		rho:       c.CriticalDensity / c.MolarMass,
		molarMass: c.MolarMass,
		psat:      []float64{m.VaporPressure(0, tc)},
		phase:     eos.Vapor,
	}, nil
}

// NewState implements eos.Model.
func (m *Model) NewState(t, p quantity.Quantity, z []float64, init eos.DensityInitialization) (eos.State, error) {
	tk, err := m.kelvin(t)
	if err != nil {
		return nil, err
	}
	pa, err := p.ToReduced(quantity.Pascal)
	if err != nil {
		return nil, err
	}
	if !(pa > 0) {
		return nil, fmt.Errorf("invalid pressure %g Pa", pa)
	}
	if err = m.molefracs(z); err != nil {
		return nil, err
	}
	ps, err := m.saturation(tk)
	if err != nil {
		return nil, err
	}
	return m.state(tk, pa, z, ps, init), nil
}

func (m *Model) equilibrium(t, p float64, x, y, ps []float64) *eos.PhaseEquilibrium {
	return &eos.PhaseEquilibrium{
		Liquid: m.state(t, p, x, ps, eos.Liquid),
		Vapor:  m.state(t, p, y, ps, eos.Vapor),
	}
}

func (m *Model) state(t, p float64, z, ps []float64, phase eos.DensityInitialization) *State {
	var mw, v float64
	for i, c := range m.components {
		mw += z[i] * c.MolarMass
		v += z[i] * c.LiquidMolarVolume
	}
	rho := p / (gasConstant * t)
	if phase == eos.Liquid {
		rho = 1 / v
	}
	return &State{
		t:         t,
		p:         p,
		z:         append([]float64(nil), z...),
		rho:       rho,
		molarMass: mw,
		psat:      ps,
		phase:     phase,
	}
}
