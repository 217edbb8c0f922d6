// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff approximates the Jacobian of a vector valued function by
// finite differences.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
package numdiff

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/estimator/errs"
)

var (
	sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
	cubeEps = math.Cbrt(math.Nextafter(1, 2) - 1)
)

type Method int

const (
	// Forward uses the first order forward difference.
	Forward Method = iota
	// Central uses the central difference in the interior and the second
	// order one-sided difference next to a bound.
	Central
)

func (m Method) String() string {
	switch m {
	case Forward:
		return "forward"
	case Central:
		return "central"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod is the inverse of Method.String.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "":
		return Forward, nil
	case "central":
		return Central, nil
	default:
		return 0, fmt.Errorf("%w: difference method '%s'", errs.ErrUnknownKey, s)
	}
}

// Bound is the closed interval [lower, upper] of a variable. NaN means unbounded.
type Bound [2]float64

// Func evaluates a function at x and stores the result in y.
// An error aborts the approximation.
type Func func(x, y []float64) error

// Spec configures the approximation.
type Spec struct {
	Method Method
	// Bounds limit the points at which the function is evaluated. Nil means unbounded.
	Bounds []Bound
	// RelStep gives the step h = RelStep·sign(x)·|x|. When neither RelStep
	// nor AbsStep is set h = ε·sign(x)·max(1, |x|) with ε chosen by Method.
	RelStep float64
	// AbsStep overrides RelStep. It may be shrunk or flipped to fit the bounds.
	AbsStep float64
}

func (s Spec) bounds(n int) ([]Bound, error) {
	b := make([]Bound, n)
	if s.Bounds == nil {
		for i := range b {
			b[i] = Bound{math.Inf(-1), math.Inf(1)}
		}
		return b, nil
	}
	if len(s.Bounds) != n {
		return nil, errs.Incompatible("%d bounds for %d variables", len(s.Bounds), n)
	}
	for i, v := range s.Bounds {
		lo, up := v[0], v[1]
		if math.IsNaN(lo) {
			lo = math.Inf(-1)
		}
		if math.IsNaN(up) {
			up = math.Inf(1)
		}
		if lo > up {
			return nil, errs.Incompatible("bound %d is empty: [%g, %g]", i, lo, up)
		}
		b[i] = Bound{lo, up}
	}
	return b, nil
}

// steps returns the signed step of each variable before bound adjustment.
func (s Spec) steps(x0 []float64) []float64 {
	eps := sqrtEps
	if s.Method == Central {
		eps = cubeEps
	}
	auto := func(v float64) float64 {
		return math.Copysign(eps, v) * math.Max(1, math.Abs(v))
	}

	h := make([]float64, len(x0))
	for i, v := range x0 {
		switch {
		case s.AbsStep != 0:
			h[i] = s.AbsStep
		case s.RelStep != 0:
			h[i] = math.Copysign(s.RelStep, v) * math.Abs(v)
		default:
			h[i] = auto(v)
			continue
		}
		if (v+h[i])-v == 0 {
			h[i] = auto(v)
		}
	}
	return h
}

// fit adjusts the steps so that every evaluation stays within the bounds.
// For Central it also reports the variables that need a one-sided difference.
func (s Spec) fit(x0, h []float64, b []Bound) (oneSided []bool) {
	if s.Method == Forward {
		for i, x := range x0 {
			below, above := x-b[i][0], b[i][1]-x
			fits := math.Abs(h[i]) <= math.Max(below, above)
			switch {
			case !fits && above >= below:
				h[i] = above
			case !fits:
				h[i] = -below
			case x+h[i] < b[i][0] || x+h[i] > b[i][1]:
				h[i] = -h[i]
			}
		}
		return nil
	}

	oneSided = make([]bool, len(x0))
	for i, x := range x0 {
		below, above := x-b[i][0], b[i][1]-x
		h[i] = math.Abs(h[i])
		if below >= h[i] && above >= h[i] {
			continue
		}
		if above >= below {
			h[i] = math.Min(h[i], 0.5*above)
		} else {
			h[i] = -math.Min(h[i], 0.5*below)
		}
		oneSided[i] = true
		if room := math.Min(above, below); math.Abs(h[i]) <= room {
			h[i], oneSided[i] = room, false
		}
	}
	return oneSided
}

// Jacobian returns the m×n matrix J[j][i] = ∂fⱼ/∂xᵢ at x0. x0 is not modified.
func (s Spec) Jacobian(f Func, x0 []float64, m int) (*mat.Dense, error) {
	n := len(x0)
	switch {
	case f == nil:
		return nil, fmt.Errorf("%w: function is required", errs.ErrMissingInput)
	case n == 0 || m <= 0:
		return nil, errs.Incompatible("invalid jacobian dimensions %d×%d", m, n)
	case s.Method != Forward && s.Method != Central:
		return nil, fmt.Errorf("%w: difference method %d", errs.ErrUnknownKey, int(s.Method))
	}
	b, err := s.bounds(n)
	if err != nil {
		return nil, err
	}
	for i, v := range x0 {
		if v < b[i][0] || v > b[i][1] {
			return nil, errs.Incompatible("x[%d] = %g violates bound [%g, %g]", i, v, b[i][0], b[i][1])
		}
	}

	h := s.steps(x0)
	oneSided := s.fit(x0, h, b)

	x := append([]float64(nil), x0...)
	f0, f1, f2 := make([]float64, m), make([]float64, m), make([]float64, m)
	eval := func(i int, at float64, y []float64) error {
		x[i] = at
		defer func() { x[i] = x0[i] }()
		if err := f(x, y); err != nil {
			return fmt.Errorf("evaluation with x[%d] = %g: %w", i, at, err)
		}
		return nil
	}
	if err = f(x, f0); err != nil {
		return nil, fmt.Errorf("evaluation at x0: %w", err)
	}

	jac := mat.NewDense(m, n, nil)
	for i, hi := range h {
		xi := x0[i]
		switch {
		case s.Method == Forward:
			if err = eval(i, xi+hi, f1); err != nil {
				return nil, err
			}
			for j := range f0 {
				jac.Set(j, i, (f1[j]-f0[j])/hi)
			}
		case oneSided[i]:
			if err = eval(i, xi+hi, f1); err != nil {
				return nil, err
			}
			if err = eval(i, xi+2*hi, f2); err != nil {
				return nil, err
			}
			for j := range f0 {
				jac.Set(j, i, (4*f1[j]-3*f0[j]-f2[j])/(2*hi))
			}
		default:
			if err = eval(i, xi-hi, f1); err != nil {
				return nil, err
			}
			if err = eval(i, xi+hi, f2); err != nil {
				return nil, err
			}
			for j := range f0 {
				jac.Set(j, i, (f2[j]-f1[j])/(2*hi))
			}
		}
	}
	return jac, nil
}
