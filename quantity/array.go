// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package quantity

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/estimator/errs"
)

// Array is a one dimensional array of quantities sharing a dimension.
type Array struct {
	values []float64
	dim    Dimension
}

// NewArray returns values expressed in unit. The input slice is copied.
func NewArray(values []float64, unit Quantity) Array {
	v := slices.Clone(values)
	floats.Scale(unit.value, v)
	return Array{v, unit.dim}
}

// FromQuantities collects scalars of a common dimension into an Array.
func FromQuantities(qs []Quantity) (Array, error) {
	if len(qs) == 0 {
		return Array{}, nil
	}
	a := Array{make([]float64, len(qs)), qs[0].dim}
	for i, q := range qs {
		if q.dim != a.dim {
			return Array{}, mismatch("collect", a.dim, q.dim)
		}
		a.values[i] = q.value
	}
	return a, nil
}

// Len returns the number of elements.
func (a Array) Len() int { return len(a.values) }

// Dim returns the dimension shared by all elements.
func (a Array) Dim() Dimension { return a.dim }

// At returns the i-th element.
func (a Array) At(i int) Quantity {
	return Quantity{a.values[i], a.dim}
}

// Max returns the largest element. It panics on an empty array.
func (a Array) Max() Quantity {
	return Quantity{floats.Max(a.values), a.dim}
}

// ToReduced returns the elements expressed in multiples of ref.
func (a Array) ToReduced(ref Quantity) ([]float64, error) {
	if a.dim != ref.dim {
		return nil, mismatch("reduce", a.dim, ref.dim)
	}
	r := make([]float64, len(a.values))
	for i, v := range a.values {
		r[i] = v / ref.value
	}
	return r, nil
}

// Check returns an error unless a has the dimension of unit.
func (a Array) Check(name string, unit Quantity) error {
	if a.dim != unit.dim {
		return fmt.Errorf("%w: %s has dimension [%s], expected [%s]", errs.ErrQuantity, name, a.dim, unit.dim)
	}
	return nil
}

func (a Array) String() string {
	if a.dim.Dimensionless() {
		return fmt.Sprintf("%v", a.values)
	}
	return fmt.Sprintf("%v %s", a.values, a.dim)
}

// Filled returns an array of n copies of q.
func Filled(n int, q Quantity) Array {
	v := make([]float64, n)
	for i := range v {
		v[i] = q.value
	}
	return Array{v, q.dim}
}

// NaN returns an array of n NaN values with the dimension of unit.
func NaN(n int, unit Quantity) Array {
	return Filled(n, Quantity{math.NaN(), unit.dim})
}

// Set assigns q to the i-th element.
func (a Array) Set(i int, q Quantity) error {
	if q.dim != a.dim {
		return mismatch("assign", a.dim, q.dim)
	}
	a.values[i] = q.value
	return nil
}

// Concat joins arrays of equal dimension.
func Concat(arrays ...Array) (Array, error) {
	if len(arrays) == 0 {
		return Array{}, nil
	}
	out := Array{dim: arrays[0].dim}
	for _, a := range arrays {
		if a.dim != out.dim {
			return Array{}, mismatch("concatenate", out.dim, a.dim)
		}
		out.values = append(out.values, a.values...)
	}
	return out, nil
}

// Clone returns a deep copy of a.
func (a Array) Clone() Array {
	return Array{slices.Clone(a.values), a.dim}
}
