// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import (
	"math"

	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/quantity"
)

// Predict returns the target property as computed by model.
//
// Points without a prediction are NaN: vapor pressures above the critical
// temperature and equilibrium liquid densities without phase equilibrium when
// extrapolation is disabled. For BinaryTPxy the bubble point pressures are
// followed by the dew point pressures.
func (d *DataSet) Predict(model eos.Model) (quantity.Array, error) {
	switch d.kind {
	case VaporPressure:
		return d.predictVaporPressure(model)
	case LiquidDensity, EquilibriumLiquidDensity:
		return d.predictDensity(model)
	default:
		return d.predictPressure(model)
	}
}

// RelativeDifference returns (prediction - target)/target for each entry of Predict.
func (d *DataSet) RelativeDifference(model eos.Model) ([]float64, error) {
	pred, err := d.Predict(model)
	if err != nil {
		return nil, err
	}
	rd := make([]float64, pred.Len())
	for i := range rd {
		target := d.target.At(i % d.datapoints)
		if rd[i], err = deviation(pred.At(i), target, target); err != nil {
			return nil, err
		}
	}
	return rd, nil
}

// MeanAbsoluteRelativeDifference returns the mean of |RelativeDifference|.
// NaN entries are skipped; the result is NaN if no entry is left.
func (d *DataSet) MeanAbsoluteRelativeDifference(model eos.Model) (float64, error) {
	rd, err := d.RelativeDifference(model)
	if err != nil {
		return math.NaN(), err
	}
	return meanAbs(rd), nil
}

func meanAbs(v []float64) float64 {
	var sum float64
	var n int
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		sum += math.Abs(x)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
