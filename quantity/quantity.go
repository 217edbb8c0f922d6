// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package quantity provides dimensioned scalars and arrays in SI base units.
//
// Arithmetic that combines dimensions (Mul, Div) never fails. Operations that
// require equal dimensions (Add, Sub, ToReduced) or a dimensionless result
// (Value) return an error wrapping errs.ErrQuantity.
package quantity

import (
	"fmt"
	"math"
	"strings"

	"github.com/curioloop/estimator/errs"
)

// Dimension holds the exponents of the SI base units
// metre, kilogram, second, ampere, kelvin, mole and candela.
type Dimension [7]int8

var baseSymbols = [7]string{"m", "kg", "s", "A", "K", "mol", "cd"}

func (d Dimension) add(o Dimension) (r Dimension) {
	for i := range d {
		r[i] = d[i] + o[i]
	}
	return
}

func (d Dimension) sub(o Dimension) (r Dimension) {
	for i := range d {
		r[i] = d[i] - o[i]
	}
	return
}

// Dimensionless reports whether all exponents are zero.
func (d Dimension) Dimensionless() bool {
	return d == Dimension{}
}

func (d Dimension) String() string {
	if d.Dimensionless() {
		return "1"
	}
	var parts []string
	for i, e := range d {
		switch {
		case e == 0:
		case e == 1:
			parts = append(parts, baseSymbols[i])
		default:
			parts = append(parts, fmt.Sprintf("%s^%d", baseSymbols[i], e))
		}
	}
	return strings.Join(parts, " ")
}

// Quantity is a scalar value with a physical dimension. The value is stored in SI units.
type Quantity struct {
	value float64
	dim   Dimension
}

// Units and reference quantities used by the estimator.
var (
	Dimensionless = Quantity{1, Dimension{}}
	Meter         = Quantity{1, Dimension{1, 0, 0, 0, 0, 0, 0}}
	Kilogram      = Quantity{1, Dimension{0, 1, 0, 0, 0, 0, 0}}
	Second        = Quantity{1, Dimension{0, 0, 1, 0, 0, 0, 0}}
	Kelvin        = Quantity{1, Dimension{0, 0, 0, 0, 1, 0, 0}}
	Mol           = Quantity{1, Dimension{0, 0, 0, 0, 0, 1, 0}}
	Joule         = Quantity{1, Dimension{2, 1, -2, 0, 0, 0, 0}}
	Pascal        = Quantity{1, Dimension{-1, 1, -2, 0, 0, 0, 0}}

	KiloPascal            = Pascal.Scale(1e3)
	Bar                   = Pascal.Scale(1e5)
	JoulePerMol           = Joule.Div(Mol)
	KilogramPerCubicMeter = Kilogram.Div(Meter.Mul(Meter).Mul(Meter))
	KilogramPerMol        = Kilogram.Div(Mol)
	CubicMeterPerMol      = Meter.Mul(Meter).Mul(Meter).Div(Mol)
	GasConstant           = Joule.Div(Mol).Div(Kelvin).Scale(8.314462618)
)

// New returns value expressed in unit.
func New(value float64, unit Quantity) Quantity {
	return Quantity{value * unit.value, unit.dim}
}

// Dim returns the dimension of q.
func (q Quantity) Dim() Dimension { return q.dim }

// SameDim reports whether q and o share a dimension.
func (q Quantity) SameDim(o Quantity) bool { return q.dim == o.dim }

// Scale multiplies q by a plain number.
func (q Quantity) Scale(f float64) Quantity {
	return Quantity{q.value * f, q.dim}
}

// Mul returns q·o.
func (q Quantity) Mul(o Quantity) Quantity {
	return Quantity{q.value * o.value, q.dim.add(o.dim)}
}

// Div returns q/o. Dividing quantities of equal dimension yields a dimensionless ratio.
func (q Quantity) Div(o Quantity) Quantity {
	return Quantity{q.value / o.value, q.dim.sub(o.dim)}
}

// Add returns q+o.
func (q Quantity) Add(o Quantity) (Quantity, error) {
	if q.dim != o.dim {
		return Quantity{}, mismatch("add", q.dim, o.dim)
	}
	return Quantity{q.value + o.value, q.dim}, nil
}

// Sub returns q-o.
func (q Quantity) Sub(o Quantity) (Quantity, error) {
	if q.dim != o.dim {
		return Quantity{}, mismatch("subtract", q.dim, o.dim)
	}
	return Quantity{q.value - o.value, q.dim}, nil
}

// Less reports q < o. Quantities of different dimension are never ordered.
func (q Quantity) Less(o Quantity) bool {
	return q.dim == o.dim && q.value < o.value
}

// Value returns the plain number of a dimensionless quantity.
func (q Quantity) Value() (float64, error) {
	if !q.dim.Dimensionless() {
		return math.NaN(), fmt.Errorf("%w: expected dimensionless quantity, got %s", errs.ErrQuantity, q.dim)
	}
	return q.value, nil
}

// ToReduced returns q expressed in multiples of ref.
func (q Quantity) ToReduced(ref Quantity) (float64, error) {
	if q.dim != ref.dim {
		return math.NaN(), mismatch("reduce", q.dim, ref.dim)
	}
	return q.value / ref.value, nil
}

// IsNaN reports whether the stored value is NaN.
func (q Quantity) IsNaN() bool { return math.IsNaN(q.value) }

func (q Quantity) String() string {
	if q.dim.Dimensionless() {
		return fmt.Sprintf("%g", q.value)
	}
	return fmt.Sprintf("%g %s", q.value, q.dim)
}

func mismatch(op string, a, b Dimension) error {
	return fmt.Errorf("%w: cannot %s [%s] and [%s]", errs.ErrQuantity, op, a, b)
}
