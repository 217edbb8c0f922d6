// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ideal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

var (
	hexane  = Component{A: 20.72, B: 2697.55, C: -48.78, MolarMass: 0.086, LiquidMolarVolume: 1.31e-4, CriticalTemperature: 507.6, CriticalDensity: 233}
	heptane = Component{A: 20.76, B: 2911.32, C: -56.51, MolarMass: 0.1, LiquidMolarVolume: 1.47e-4, CriticalTemperature: 540.2, CriticalDensity: 232}
)

func kelvin(t float64) quantity.Quantity { return quantity.New(t, quantity.Kelvin) }

func TestNew(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
	_, err = New(hexane, heptane, hexane)
	assert.Error(t, err)
	_, err = New(Component{A: 1, B: 1})
	assert.Error(t, err)

	m, err := FromParameters([]Component{hexane, heptane}, []float64{21, 2700, -50, 21, 2900, -55})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Components())
	assert.InDelta(t, math.Exp(21-2700/(350-50.0)), m.VaporPressure(0, 350), 1e-9)

	_, err = FromParameters([]Component{hexane}, []float64{1, 2})
	assert.Error(t, err)
}

func TestBubbleDew(t *testing.T) {
	m, err := New(hexane, heptane)
	require.NoError(t, err)

	x := eos.Binary(0.3)
	bubble, err := m.BubblePoint(kelvin(340), x, eos.Guess{})
	require.NoError(t, err)
	p := bubble.Vapor.Pressure(eos.Total)
	y := bubble.Vapor.(*State).Molefracs()
	assert.Greater(t, y[0], x[0])
	assert.InDelta(t, 1, y[0]+y[1], 1e-12)

	dew, err := m.DewPoint(kelvin(340), y, eos.Guess{})
	require.NoError(t, err)
	pd, err := dew.Vapor.Pressure(eos.Total).ToReduced(p)
	require.NoError(t, err)
	assert.InDelta(t, 1, pd, 1e-12)
	assert.InDeltaSlice(t, x, dew.Liquid.(*State).Molefracs(), 1e-12)

	// phases in equilibrium share the chemical potential
	muL, err := bubble.Liquid.ChemicalPotential(eos.Total).ToReduced(quantity.JoulePerMol)
	require.NoError(t, err)
	muV, err := bubble.Vapor.ChemicalPotential(eos.Total).ToReduced(quantity.JoulePerMol)
	require.NoError(t, err)
	assert.InDeltaSlice(t, muL, muV, 1e-8)

	_, err = m.BubblePoint(kelvin(520), x, eos.Guess{})
	assert.ErrorIs(t, err, ErrSupercritical)
	_, err = m.BubblePoint(kelvin(340), []float64{0.3, 0.3}, eos.Guess{})
	assert.Error(t, err)
	_, err = m.DewPoint(quantity.New(340, quantity.Pascal), y, eos.Guess{})
	assert.Error(t, err)
	_, err = m.PurePhaseEquilibrium(kelvin(340), eos.Guess{})
	assert.Error(t, err)
	_, err = m.CriticalPoint(kelvin(600))
	assert.Error(t, err)
}

func TestPure(t *testing.T) {
	m, err := New(hexane)
	require.NoError(t, err)

	vle, err := m.PurePhaseEquilibrium(kelvin(341.88), eos.Guess{})
	require.NoError(t, err)
	p, err := vle.Vapor.Pressure(eos.Total).ToReduced(quantity.Pascal)
	require.NoError(t, err)
	assert.InDelta(t, m.VaporPressure(0, 341.88), p, 1e-9)

	rho, err := vle.Liquid.MassDensity().ToReduced(quantity.KilogramPerCubicMeter)
	require.NoError(t, err)
	assert.InDelta(t, hexane.MolarMass/hexane.LiquidMolarVolume, rho, 1e-9)

	cp, err := m.CriticalPoint(kelvin(600))
	require.NoError(t, err)
	assert.Equal(t, kelvin(507.6), cp.Temperature())
	rhoc, err := cp.MassDensity().ToReduced(quantity.KilogramPerCubicMeter)
	require.NoError(t, err)
	assert.InDelta(t, 233, rhoc, 1e-9)
}

func TestState(t *testing.T) {
	m, err := New(hexane)
	require.NoError(t, err)

	p := quantity.New(1, quantity.Bar)
	vapor, err := m.NewState(kelvin(400), p, []float64{1}, eos.Vapor)
	require.NoError(t, err)
	res, err := vapor.Pressure(eos.Residual).ToReduced(quantity.Pascal)
	require.NoError(t, err)
	assert.InDelta(t, 0, res, 1e-9)

	mu, err := vapor.ChemicalPotential(eos.Residual).ToReduced(quantity.JoulePerMol)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0}, mu, 1e-9)

	_, err = m.NewState(kelvin(400), quantity.New(-1, quantity.Pascal), []float64{1}, eos.Liquid)
	assert.Error(t, err)
	_, err = m.NewState(kelvin(-3), p, []float64{1}, eos.Liquid)
	assert.Error(t, err)
	_, err = m.NewState(kelvin(400), p, []float64{0.5, 0.5}, eos.Liquid)
	assert.Error(t, err)
}
