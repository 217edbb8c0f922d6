// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"errors"

	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

var errNoConvergence = errors.New("solver did not converge")

type fakeState struct {
	t, p, rho float64
	mu        []float64
}

func (s *fakeState) Temperature() quantity.Quantity { return quantity.New(s.t, quantity.Kelvin) }

func (s *fakeState) Pressure(eos.Contributions) quantity.Quantity {
	return quantity.New(s.p, quantity.Pascal)
}

func (s *fakeState) MassDensity() quantity.Quantity {
	return quantity.New(s.rho, quantity.KilogramPerCubicMeter)
}

func (s *fakeState) ChemicalPotential(eos.Contributions) quantity.Array {
	return quantity.NewArray(s.mu, quantity.JoulePerMol)
}

// fakeModel answers every query with the configured closures and counts calls.
type fakeModel struct {
	tc, rhoc float64
	critErr  error

	pure   func(t float64) (p, rho float64, err error)
	bubble func(t, x float64) (float64, error)
	dew    func(t, y float64) (float64, error)
	state  func(t, p float64, z []float64, init eos.DensityInitialization) (*fakeState, error)

	calls map[string]int
}

func (m *fakeModel) count(name string) {
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
}

func kelvin(t quantity.Quantity) float64 {
	v, _ := t.ToReduced(quantity.Kelvin)
	return v
}

func (m *fakeModel) Components() int { return 2 }

func (m *fakeModel) BubblePoint(t quantity.Quantity, x []float64, _ eos.Guess) (*eos.PhaseEquilibrium, error) {
	m.count("bubble")
	p, err := m.bubble(kelvin(t), x[0])
	if err != nil {
		return nil, err
	}
	return &eos.PhaseEquilibrium{Liquid: &fakeState{t: kelvin(t), p: p}, Vapor: &fakeState{t: kelvin(t), p: p}}, nil
}

func (m *fakeModel) DewPoint(t quantity.Quantity, y []float64, _ eos.Guess) (*eos.PhaseEquilibrium, error) {
	m.count("dew")
	p, err := m.dew(kelvin(t), y[0])
	if err != nil {
		return nil, err
	}
	return &eos.PhaseEquilibrium{Liquid: &fakeState{t: kelvin(t), p: p}, Vapor: &fakeState{t: kelvin(t), p: p}}, nil
}

func (m *fakeModel) PurePhaseEquilibrium(t quantity.Quantity, _ eos.Guess) (*eos.PhaseEquilibrium, error) {
	m.count("pure")
	p, rho, err := m.pure(kelvin(t))
	if err != nil {
		return nil, err
	}
	return &eos.PhaseEquilibrium{
		Liquid: &fakeState{t: kelvin(t), p: p, rho: rho},
		Vapor:  &fakeState{t: kelvin(t), p: p, rho: rho / 100},
	}, nil
}

func (m *fakeModel) CriticalPoint(quantity.Quantity) (eos.State, error) {
	m.count("critical")
	if m.critErr != nil {
		return nil, m.critErr
	}
	return &fakeState{t: m.tc, rho: m.rhoc}, nil
}

func (m *fakeModel) NewState(t, p quantity.Quantity, z []float64, init eos.DensityInitialization) (eos.State, error) {
	m.count("state")
	pa, _ := p.ToReduced(quantity.Pascal)
	return m.state(kelvin(t), pa, z, init)
}

// linearModel has the bubble and dew point curve p(x) = a - b·x and a
// saturated liquid density below tc.
func linearModel(a, b float64) *fakeModel {
	curve := func(_, x float64) (float64, error) { return a - b*x, nil }
	return &fakeModel{
		tc:     300,
		rhoc:   200,
		bubble: curve,
		dew:    curve,
		pure: func(t float64) (float64, float64, error) {
			if t > 300 {
				return 0, 0, errNoConvergence
			}
			return 1000 * t, 600, nil
		},
		state: func(t, p float64, z []float64, init eos.DensityInitialization) (*fakeState, error) {
			return &fakeState{t: t, p: p, rho: 700, mu: []float64{1, 2}}, nil
		},
	}
}

func failingModel() *fakeModel {
	fail := func(float64, float64) (float64, error) { return 0, errNoConvergence }
	return &fakeModel{
		tc:     300,
		rhoc:   200,
		bubble: fail,
		dew:    fail,
		pure: func(float64) (float64, float64, error) {
			return 0, 0, errNoConvergence
		},
		state: func(float64, float64, []float64, eos.DensityInitialization) (*fakeState, error) {
			return nil, errNoConvergence
		},
	}
}
