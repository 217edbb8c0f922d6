// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package odr measures the distance between an experimental point and a
// model curve p(x) at fixed temperature.
//
// Instead of the vertical pressure deviation, the residual is the distance
// to the closest point of the curve in (composition, p/pᵉˣᵖ) space. This is
// robust where the curve is nearly flat in pressure over a composition range.
//
// The closest point is found by a damped fixed-point iteration: the local
// tangent is estimated by a one-sided finite difference, and the trial
// composition is moved along it until the step falls below a tolerance.
package odr

import (
	"errors"
	"math"
)

// Curve returns the model pressure at composition x. The pressure must be
// expressed in the same unit as the experimental pressure handed to Solve.
type Curve func(x float64) (float64, error)

// Options controls the iteration.
type Options struct {
	// Finite difference step in composition used to estimate the tangent.
	Step float64 `yaml:"step"`
	// The iteration stops once the composition step satisfies |shift| ≤ Tolerance.
	Tolerance float64 `yaml:"tolerance"`
	// Hard limit on iterations; each iteration queries the curve twice.
	MaxIterations int `yaml:"max_iterations"`
	// Residual assigned when the curve cannot be evaluated.
	Penalty float64 `yaml:"penalty"`
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		Step:          1e-4,
		Tolerance:     1e-9,
		MaxIterations: 60,
		Penalty:       10,
	}
}

// Check validates the options.
func (o Options) Check() (err error) {
	switch {
	case !(o.Step > 0 && o.Step < 0.5):
		err = errors.New("finite difference step must lie in (0, 0.5)")
	case !(o.Tolerance > 0):
		err = errors.New("tolerance must be positive")
	case o.MaxIterations <= 0:
		err = errors.New("max iterations must be positive")
	case math.IsNaN(o.Penalty):
		err = errors.New("penalty must be a number")
	}
	return
}

// Result summarizes the iteration for one experimental point.
type Result struct {
	Residual    float64 // distance to the curve, or Penalty if Failed
	X           float64 // last trial composition
	Iterations  int     // number of started iterations
	Evaluations int     // number of curve queries
	Converged   bool    // |shift| ≤ Tolerance was reached
	Failed      bool    // a curve query failed
	Err         error   // the failing query's error
}

// damping returns the step factor of iteration k given the previous shift.
func damping(k int, shift float64) float64 {
	switch {
	case k <= 2:
		return 0.75
	case k > 8 && math.Abs(shift) < 1e-5:
		return 0.5
	case k > 25:
		return 0.25
	default:
		return 1
	}
}

// clamp restricts shift to [-bound, bound].
func clamp(shift, bound float64) float64 {
	if shift < -bound {
		return -bound
	}
	if shift > bound {
		return bound
	}
	return shift
}

// Solve returns the distance between (x, p) and the curve.
//
// The curve is queried at most 2·MaxIterations times. If a query fails the
// residual is Options.Penalty and the iteration stops. If MaxIterations is
// reached without convergence, the distance of the last iterate is returned.
func Solve(curve Curve, x, p float64, opts Options) (r Result) {

	dx := opts.Step
	if x >= 0.5 {
		dx = -dx
	}

	fail := func(err error) Result {
		r.Residual, r.Failed, r.Err = opts.Penalty, true, err
		return r
	}

	var shift float64
	for k := 0; k < opts.MaxIterations; k++ {
		r.Iterations = k + 1

		xf := x + shift*damping(k, shift)
		r.X = xf

		r.Evaluations++
		pc, err := curve(xf)
		if err != nil {
			return fail(err)
		}

		if xf > 1-dx {
			dx = -dx
		}

		r.Evaluations++
		pn, err := curve(xf + dx)
		if err != nil {
			return fail(err)
		}

		// unit tangent in (x, p/pᵉˣᵖ)
		tx, tp := dx, (pn-pc)/p
		n := math.Hypot(tx, tp)
		tx, tp = tx/n, tp/n

		// offset from the curve point to the experimental point
		ox, op := x-xf, (p-pc)/p
		r.Residual = math.Hypot(ox, op)

		// a point behind the tangent, or on the curve within rounding, takes no step
		dot := tx*ox + tp*op
		if !(dot > 0) {
			dot = 0
		}
		shift = clamp(tx*math.Sqrt(dot), xf)
		if math.Abs(shift) <= opts.Tolerance {
			r.Converged = true
			break
		}
	}
	return
}
