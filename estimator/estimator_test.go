// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package estimator

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/estimator/dataset"
	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/eos/ideal"
	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/loss"
	"github.com/curioloop/estimator/numdiff"
	"github.com/curioloop/estimator/quantity"
)

var mixture = []ideal.Component{
	{A: 20.77, B: 2788.5, C: -52.36, MolarMass: 0.078, LiquidMolarVolume: 8.9e-5, CriticalTemperature: 562, CriticalDensity: 305},
	{A: 20.9, B: 3096.5, C: -53.67, MolarMass: 0.092, LiquidMolarVolume: 1.07e-4, CriticalTemperature: 592, CriticalDensity: 292},
}

const (
	temperature = 350.0
	bias        = 1.1
)

var liquid = []float64{0.2, 0.6}

type fixture struct {
	model    *ideal.Model
	tpx, tpy *dataset.DataSet
	vapor    []float64 // equilibrium vapor composition
	measured []float64 // biased pressures in Pa
}

// newFixture builds TPx and TPy data sets from bubble points of the ideal
// mixture with pressures biased by a factor of 1.1.
func newFixture(t *testing.T) fixture {
	model, err := ideal.New(mixture...)
	require.NoError(t, err)

	f := fixture{model: model}
	for _, x := range liquid {
		vle, err := model.BubblePoint(quantity.New(temperature, quantity.Kelvin), eos.Binary(x), eos.Guess{})
		require.NoError(t, err)
		p, err := vle.Vapor.Pressure(eos.Total).ToReduced(quantity.Pascal)
		require.NoError(t, err)
		f.measured = append(f.measured, bias*p)
		f.vapor = append(f.vapor, vle.Vapor.(*ideal.State).Molefracs()[0])
	}

	temp := quantity.Filled(len(liquid), quantity.New(temperature, quantity.Kelvin))
	pres := quantity.NewArray(f.measured, quantity.Pascal)
	f.tpx, err = dataset.NewBinaryTPx(temp, pres, liquid, dataset.Pressure)
	require.NoError(t, err)
	f.tpy, err = dataset.NewBinaryTPy(temp, pres, f.vapor, dataset.Pressure)
	require.NoError(t, err)
	return f
}

func TestCost(t *testing.T) {
	f := newFixture(t)
	lin := loss.NewLinear()
	est, err := New([]*dataset.DataSet{f.tpx, f.tpy}, []float64{2, 2}, []loss.Loss{lin, lin})
	require.NoError(t, err)
	assert.Equal(t, 4, est.Len())

	cx, err := f.tpx.Cost(f.model, lin)
	require.NoError(t, err)
	cy, err := f.tpy.Cost(f.model, lin)
	require.NoError(t, err)

	// equal weights average the data sets
	cost, err := est.Cost(f.model)
	require.NoError(t, err)
	want := append(append([]float64(nil), cx...), cy...)
	floats.Scale(0.5, want)
	assert.InDeltaSlice(t, want, cost, 1e-15)
	for _, c := range cost {
		assert.InDelta(t, (1-1/bias)/4, c, 1e-12)
	}

	// normalization follows the current weights
	require.NoError(t, est.SetWeight(1, 6))
	cost, err = est.Cost(f.model)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{cx[0] / 4, cx[1] / 4, 3 * cy[0] / 4, 3 * cy[1] / 4}, cost, 1e-15)
	assert.Equal(t, []float64{2, 6}, est.Weights())

	require.NoError(t, est.AddData(f.tpx, 8, loss.NewHuber(0.01)))
	cost, err = est.Cost(f.model)
	require.NoError(t, err)
	require.Len(t, cost, 6)
	assert.InDelta(t, cx[0]/8, cost[0], 1e-15)
	huber := 0.5 * (2*(1-1/bias)/0.01 - 1)
	assert.InDelta(t, huber/2, cost[4], 1e-9)
	assert.Len(t, est.Datasets(), 3)
	assert.Equal(t, loss.NewHuber(0.01), est.Losses()[2])
}

func TestCostFailure(t *testing.T) {
	f := newFixture(t)
	lin := loss.NewLinear()

	// the pure component model cannot evaluate binary data
	pure, err := ideal.New(mixture[0])
	require.NoError(t, err)
	est, err := New([]*dataset.DataSet{f.tpx, f.tpy}, []float64{1, 1}, []loss.Loss{lin, lin})
	require.NoError(t, err)
	_, err = est.Cost(pure)
	assert.ErrorIs(t, err, errs.ErrModel)

	require.NoError(t, est.SetWeight(0, 0))
	require.NoError(t, est.SetWeight(1, 0))
	_, err = est.Cost(f.model)
	assert.ErrorIs(t, err, errs.ErrIncompatibleInput)

	empty, err := New(nil, nil, nil)
	require.NoError(t, err)
	_, err = empty.Cost(f.model)
	assert.ErrorIs(t, err, errs.ErrMissingInput)
}

func TestNew(t *testing.T) {
	f := newFixture(t)
	lin := loss.NewLinear()

	_, err := New([]*dataset.DataSet{f.tpx}, []float64{1, 1}, []loss.Loss{lin})
	assert.ErrorIs(t, err, errs.ErrIncompatibleInput)
	_, err = New([]*dataset.DataSet{f.tpx}, []float64{1}, nil)
	assert.ErrorIs(t, err, errs.ErrIncompatibleInput)
	_, err = New([]*dataset.DataSet{f.tpx}, []float64{-1}, []loss.Loss{lin})
	assert.ErrorIs(t, err, errs.ErrIncompatibleInput)
	_, err = New([]*dataset.DataSet{nil}, []float64{1}, []loss.Loss{lin})
	assert.ErrorIs(t, err, errs.ErrMissingInput)

	est, err := New([]*dataset.DataSet{f.tpx}, []float64{1}, []loss.Loss{lin})
	require.NoError(t, err)
	assert.ErrorIs(t, est.SetWeight(1, 1), errs.ErrIncompatibleInput)
	assert.ErrorIs(t, est.SetWeight(0, math.NaN()), errs.ErrIncompatibleInput)
	assert.ErrorIs(t, est.AddData(nil, 1, lin), errs.ErrMissingInput)
	assert.ErrorIs(t, est.AddData(f.tpy, math.Inf(1), lin), errs.ErrIncompatibleInput)
	assert.Len(t, est.Datasets(), 1)
}

func TestMetrics(t *testing.T) {
	f := newFixture(t)
	lin := loss.NewLinear()
	est, err := New([]*dataset.DataSet{f.tpx, f.tpy}, []float64{1, 1}, []loss.Loss{lin, lin})
	require.NoError(t, err)

	pred, err := est.Predict(f.model)
	require.NoError(t, err)
	require.Len(t, pred, 2)
	p, err := pred[0].ToReduced(quantity.Pascal)
	require.NoError(t, err)
	assert.InDelta(t, f.measured[0]/bias, p[0], 1e-6)

	rd, err := est.RelativeDifference(f.model)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1/bias - 1, 1/bias - 1}, rd[1], 1e-12)

	mard, err := est.MeanAbsoluteRelativeDifference(f.model)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1 - 1/bias, 1 - 1/bias}, mard, 1e-12)

	assert.Contains(t, est.String(), "weight=1, loss=linear")
	md := est.Markdown()
	assert.Contains(t, md, "|0|binary vle (T, p, x)|pressure|pressure|2|1|linear|")
	assert.Contains(t, md, "|1|binary vle (T, p, y)|pressure|pressure|2|1|linear|")
}

func TestJacobian(t *testing.T) {
	f := newFixture(t)
	lin := loss.NewLinear()
	est, err := New([]*dataset.DataSet{f.tpx, f.tpy}, []float64{1, 1}, []loss.Loss{lin, lin})
	require.NoError(t, err)

	params := make([]float64, 0, 2*ideal.ParameterCount)
	for _, c := range mixture {
		params = append(params, c.A, c.B, c.C)
	}
	build := func(p []float64) (eos.Model, error) { return ideal.FromParameters(mixture, p) }

	jac, err := est.Jacobian(build, params, numdiff.Spec{Method: numdiff.Central})
	require.NoError(t, err)
	rows, cols := jac.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 6, cols)

	// d/dA₀ of the weighted pressure deviations, w = 1/2 and N = 2
	ps0 := f.model.VaporPressure(0, temperature)
	for i, x := range liquid {
		bubble := -0.25 * x * ps0 / f.measured[i]
		assert.InEpsilon(t, bubble, jac.At(i, 0), 1e-6)

		pd := f.measured[i] / bias
		dew := -0.25 * pd * pd * f.vapor[i] / ps0 / f.measured[i]
		assert.InEpsilon(t, dew, jac.At(2+i, 0), 1e-6)
	}

	failure := errors.New("invalid parameters")
	_, err = est.Jacobian(func([]float64) (eos.Model, error) { return nil, failure }, params, numdiff.Spec{})
	assert.ErrorIs(t, err, failure)
	assert.ErrorIs(t, err, errs.ErrModel)
	_, err = est.Jacobian(nil, params, numdiff.Spec{})
	assert.ErrorIs(t, err, errs.ErrMissingInput)
}
