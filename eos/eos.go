// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eos describes the thermodynamic model consumed by the estimator.
//
// The estimator never solves phase equilibria itself. It only issues the
// queries below and treats any returned error as a model failure. A Model
// that is queried from several goroutines must be safe for concurrent
// read-only use.
package eos

import (
	"github.com/curioloop/estimator/quantity"
)

// Contributions selects which physical effects enter a derived property.
type Contributions int

const (
	// Total includes the ideal gas and residual parts.
	Total Contributions = iota
	// Residual excludes the ideal gas part.
	Residual
	// IdealGas only includes the ideal gas part.
	IdealGas
)

func (c Contributions) String() string {
	switch c {
	case Total:
		return "total"
	case Residual:
		return "residual"
	case IdealGas:
		return "ideal gas"
	default:
		return "unknown"
	}
}

// DensityInitialization is the phase hint used to construct a single-phase state.
type DensityInitialization int

const (
	// Liquid starts the density iteration on the liquid branch.
	Liquid DensityInitialization = iota
	// Vapor starts the density iteration on the vapor branch.
	Vapor
)

func (d DensityInitialization) String() string {
	if d == Vapor {
		return "vapor"
	}
	return "liquid"
}

// Guess carries optional starting values for a phase equilibrium solver.
type Guess struct {
	Pressure  *quantity.Quantity // initial pressure, nil if unknown
	Molefracs []float64          // composition of the conjugate phase, nil if unknown
}

// State is a single-phase thermodynamic state.
type State interface {
	Temperature() quantity.Quantity
	Pressure(c Contributions) quantity.Quantity
	MassDensity() quantity.Quantity
	// ChemicalPotential returns the molar chemical potential of each component.
	ChemicalPotential(c Contributions) quantity.Array
}

// PhaseEquilibrium is a pair of coexisting phases.
type PhaseEquilibrium struct {
	Liquid State
	Vapor  State
}

// Model is the parameterized equation of state under evaluation.
type Model interface {
	// Components returns the number of components.
	Components() int
	// BubblePoint returns the equilibrium of a liquid of composition x at temperature t.
	BubblePoint(t quantity.Quantity, x []float64, guess Guess) (*PhaseEquilibrium, error)
	// DewPoint returns the equilibrium of a vapor of composition y at temperature t.
	DewPoint(t quantity.Quantity, y []float64, guess Guess) (*PhaseEquilibrium, error)
	// PurePhaseEquilibrium returns the vapor-liquid equilibrium of a pure component at temperature t.
	PurePhaseEquilibrium(t quantity.Quantity, guess Guess) (*PhaseEquilibrium, error)
	// CriticalPoint returns the critical state of a pure component.
	// maxTemperature bounds the search from above.
	CriticalPoint(maxTemperature quantity.Quantity) (State, error)
	// NewState returns the single-phase state at temperature t and pressure p.
	NewState(t, p quantity.Quantity, molefracs []float64, init DensityInitialization) (State, error)
}

// Binary returns the mole fractions of a binary mixture given the fraction of the first component.
func Binary(x1 float64) []float64 {
	return []float64{x1, 1 - x1}
}
