// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dataset compares experimental data to an equation of state.
//
// A DataSet stores one experimental series and turns it into a residual
// vector for a given model. The set of variants is closed:
//
//   - VaporPressure: pure component vapor pressure p(T)
//   - LiquidDensity: pure component liquid density ρ(T, p)
//   - EquilibriumLiquidDensity: saturated liquid density ρ(T)
//   - BinaryTPx: bubble points (T, p, x) of a binary mixture
//   - BinaryTPy: dew points (T, p, y) of a binary mixture
//   - BinaryTPxy: vapor-liquid equilibria (T, p, x, y) of a binary mixture
//
// A DataSet is immutable after construction and holds no model dependent
// state, so one instance may be shared by several estimators.
package dataset

import (
	"fmt"
	"math"
	"strings"

	"github.com/sgostarter/i/l"
	"gonum.org/v1/gonum/floats"

	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/loss"
	"github.com/curioloop/estimator/odr"
	"github.com/curioloop/estimator/quantity"
)

// Kind identifies the variant of a DataSet.
type Kind int

// Variants of DataSet.
const (
	VaporPressure Kind = iota
	LiquidDensity
	EquilibriumLiquidDensity
	BinaryTPx
	BinaryTPy
	BinaryTPxy
)

func (k Kind) String() string {
	switch k {
	case VaporPressure:
		return "vapor pressure"
	case LiquidDensity:
		return "liquid density"
	case EquilibriumLiquidDensity:
		return "equilibrium liquid density"
	case BinaryTPx:
		return "binary vle (T, p, x)"
	case BinaryTPy:
		return "binary vle (T, p, y)"
	case BinaryTPxy:
		return "binary vle (T, p, x, y)"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// CostFunction selects how binary phase equilibrium data are compared to the model.
type CostFunction int

const (
	// Pressure compares measured and predicted pressure at the measured composition.
	Pressure CostFunction = iota
	// ChemicalPotential compares the chemical potentials of both measured phases.
	// It needs both compositions and is only valid for BinaryTPxy.
	ChemicalPotential
	// Distance measures the distance of the data point to the predicted phase boundary.
	Distance
)

func (c CostFunction) String() string {
	switch c {
	case Pressure:
		return "pressure"
	case ChemicalPotential:
		return "chemical potential"
	case Distance:
		return "distance"
	default:
		return fmt.Sprintf("cost(%d)", int(c))
	}
}

// ParseCostFunction reads a cost function from its name.
func ParseCostFunction(s string) (CostFunction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pressure", "":
		return Pressure, nil
	case "chemical potential", "chemical_potential", "chemicalpotential":
		return ChemicalPotential, nil
	case "distance":
		return Distance, nil
	default:
		return 0, fmt.Errorf("%w: cost function '%s', try 'pressure', 'chemical potential' or 'distance'", errs.ErrUnknownKey, s)
	}
}

// DataSet is one series of experimental data.
type DataSet struct {
	kind Kind
	cost CostFunction

	target      quantity.Array // measured pressure or density
	temperature quantity.Array
	pressure    quantity.Array // LiquidDensity only
	liquid      []float64      // mole fraction of the first component in the liquid
	vapor       []float64      // mole fraction of the first component in the vapor

	maxTemperature quantity.Quantity
	stdParameters  []float64
	extrapolate    bool
	datapoints     int

	distance odr.Options
	logger   l.Wrapper
}

// Option configures optional behavior of a DataSet.
type Option func(*DataSet)

// WithLogger sets the logger used to report fallbacks.
func WithLogger(logger l.Wrapper) Option {
	return func(d *DataSet) {
		d.logger = logger
	}
}

// WithDistanceOptions sets the options of the distance regression used by CostFunction Distance.
func WithDistanceOptions(opts odr.Options) Option {
	return func(d *DataSet) {
		d.distance = opts
	}
}

func build(d *DataSet, opts []Option) (*DataSet, error) {
	d.distance = odr.DefaultOptions()
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = l.NewNopLoggerWrapper()
	}
	d.logger = d.logger.WithFields(l.StringField(l.ClsKey, "DataSet"), l.StringField("kind", d.kind.String()))
	if err := d.distance.Check(); err != nil {
		return nil, errs.Incompatible("distance options: %v", err)
	}
	return d, nil
}

func checkLengths(n int, names []string, lengths ...int) error {
	if n == 0 {
		return errs.Incompatible("%s is empty", names[0])
	}
	for i, m := range lengths {
		if m != n {
			return errs.Incompatible("%s has %d entries, %s has %d", names[i+1], m, names[0], n)
		}
	}
	return nil
}

func checkMolefracs(name string, z []float64) error {
	for i, v := range z {
		if !(v >= 0 && v <= 1) {
			return errs.Incompatible("%s[%d] = %g is outside [0, 1]", name, i, v)
		}
	}
	return nil
}

func clone(z []float64) []float64 {
	return append([]float64(nil), z...)
}

// NewVaporPressure returns a data set of pure component vapor pressures.
//
// stdParameters describe the temperature dependence of the experimental
// standard deviation, σ = exp(-p₀ T/T_c + p₁) + p₂. They are stored for the
// caller and default to zeros.
func NewVaporPressure(target, temperature quantity.Array, stdParameters []float64, opts ...Option) (*DataSet, error) {
	n := target.Len()
	if err := checkLengths(n, []string{"vapor pressure", "temperature"}, temperature.Len()); err != nil {
		return nil, err
	}
	if err := target.Check("vapor pressure", quantity.Pascal); err != nil {
		return nil, err
	}
	if err := temperature.Check("temperature", quantity.Kelvin); err != nil {
		return nil, err
	}
	switch len(stdParameters) {
	case 0:
		stdParameters = []float64{0, 0, 0}
	case 3:
	default:
		return nil, errs.Incompatible("expected 3 standard deviation parameters, got %d", len(stdParameters))
	}
	return build(&DataSet{
		kind:           VaporPressure,
		target:         target.Clone(),
		temperature:    temperature.Clone(),
		maxTemperature: temperature.Max(),
		stdParameters:  clone(stdParameters),
		datapoints:     n,
	}, opts)
}

// NewLiquidDensity returns a data set of liquid densities at given temperature and pressure.
func NewLiquidDensity(target, temperature, pressure quantity.Array, opts ...Option) (*DataSet, error) {
	n := target.Len()
	if err := checkLengths(n, []string{"liquid density", "temperature", "pressure"}, temperature.Len(), pressure.Len()); err != nil {
		return nil, err
	}
	if err := target.Check("liquid density", quantity.KilogramPerCubicMeter); err != nil {
		return nil, err
	}
	if err := temperature.Check("temperature", quantity.Kelvin); err != nil {
		return nil, err
	}
	if err := pressure.Check("pressure", quantity.Pascal); err != nil {
		return nil, err
	}
	return build(&DataSet{
		kind:        LiquidDensity,
		target:      target.Clone(),
		temperature: temperature.Clone(),
		pressure:    pressure.Clone(),
		datapoints:  n,
	}, opts)
}

// NewEquilibriumLiquidDensity returns a data set of saturated liquid densities.
//
// If extrapolate is set, points where the model has no phase equilibrium are
// compared to an extrapolation from the critical point instead of NaN.
func NewEquilibriumLiquidDensity(target, temperature quantity.Array, extrapolate bool, opts ...Option) (*DataSet, error) {
	n := target.Len()
	if err := checkLengths(n, []string{"liquid density", "temperature"}, temperature.Len()); err != nil {
		return nil, err
	}
	if err := target.Check("liquid density", quantity.KilogramPerCubicMeter); err != nil {
		return nil, err
	}
	if err := temperature.Check("temperature", quantity.Kelvin); err != nil {
		return nil, err
	}
	return build(&DataSet{
		kind:           EquilibriumLiquidDensity,
		target:         target.Clone(),
		temperature:    temperature.Clone(),
		maxTemperature: temperature.Max(),
		extrapolate:    extrapolate,
		datapoints:     n,
	}, opts)
}

func newBinary(kind Kind, temperature, pressure quantity.Array, x, y []float64, cost CostFunction, opts []Option) (*DataSet, error) {
	switch cost {
	case Pressure, Distance:
	case ChemicalPotential:
		if kind != BinaryTPxy {
			return nil, errs.Incompatible("cost function '%s' requires liquid and vapor compositions", cost)
		}
	default:
		return nil, errs.Incompatible("unknown cost function %d", int(cost))
	}

	n := temperature.Len()
	names := []string{"temperature", "pressure"}
	lengths := []int{pressure.Len()}
	if x != nil {
		names, lengths = append(names, "liquid molefracs"), append(lengths, len(x))
	}
	if y != nil {
		names, lengths = append(names, "vapor molefracs"), append(lengths, len(y))
	}
	if err := checkLengths(n, names, lengths...); err != nil {
		return nil, err
	}
	if err := temperature.Check("temperature", quantity.Kelvin); err != nil {
		return nil, err
	}
	if err := pressure.Check("pressure", quantity.Pascal); err != nil {
		return nil, err
	}
	if err := checkMolefracs("liquid molefracs", x); err != nil {
		return nil, err
	}
	if err := checkMolefracs("vapor molefracs", y); err != nil {
		return nil, err
	}
	return build(&DataSet{
		kind:        kind,
		cost:        cost,
		target:      pressure.Clone(),
		temperature: temperature.Clone(),
		liquid:      clone(x),
		vapor:       clone(y),
		datapoints:  n,
	}, opts)
}

// NewBinaryTPx returns a data set of bubble points of a binary mixture.
// x is the liquid mole fraction of the first component.
func NewBinaryTPx(temperature, pressure quantity.Array, x []float64, cost CostFunction, opts ...Option) (*DataSet, error) {
	if x == nil {
		return nil, errs.Missing("liquid molefracs", BinaryTPx.String())
	}
	return newBinary(BinaryTPx, temperature, pressure, x, nil, cost, opts)
}

// NewBinaryTPy returns a data set of dew points of a binary mixture.
// y is the vapor mole fraction of the first component.
func NewBinaryTPy(temperature, pressure quantity.Array, y []float64, cost CostFunction, opts ...Option) (*DataSet, error) {
	if y == nil {
		return nil, errs.Missing("vapor molefracs", BinaryTPy.String())
	}
	return newBinary(BinaryTPy, temperature, pressure, nil, y, cost, opts)
}

// NewBinaryTPxy returns a data set of vapor-liquid equilibria of a binary mixture.
func NewBinaryTPxy(temperature, pressure quantity.Array, x, y []float64, cost CostFunction, opts ...Option) (*DataSet, error) {
	switch {
	case x == nil:
		return nil, errs.Missing("liquid molefracs", BinaryTPxy.String())
	case y == nil:
		return nil, errs.Missing("vapor molefracs", BinaryTPxy.String())
	}
	return newBinary(BinaryTPxy, temperature, pressure, x, y, cost, opts)
}

// Kind returns the variant of d.
func (d *DataSet) Kind() Kind { return d.kind }

// CostFunction returns the cost function of a binary data set.
func (d *DataSet) CostFunction() CostFunction { return d.cost }

// Datapoints returns the number of experimental data points.
func (d *DataSet) Datapoints() int { return d.datapoints }

// Len returns the length of the residual vector returned by Cost.
func (d *DataSet) Len() int {
	if d.kind == BinaryTPxy {
		return 2 * d.datapoints
	}
	return d.datapoints
}

// MaxTemperature returns the largest temperature of the data set.
// It is computed once at construction.
func (d *DataSet) MaxTemperature() quantity.Quantity {
	switch d.kind {
	case VaporPressure, EquilibriumLiquidDensity:
		return d.maxTemperature
	default:
		return d.temperature.Max()
	}
}

// StdParameters returns the parameters of the vapor pressure standard deviation.
func (d *DataSet) StdParameters() []float64 { return clone(d.stdParameters) }

// Extrapolate reports whether missing equilibrium densities are extrapolated.
func (d *DataSet) Extrapolate() bool { return d.extrapolate }

// Target returns the measured property.
func (d *DataSet) Target() quantity.Array { return d.target.Clone() }

// TargetName returns the name of the measured property.
func (d *DataSet) TargetName() string {
	switch d.kind {
	case VaporPressure:
		return "vapor pressure"
	case LiquidDensity, EquilibriumLiquidDensity:
		return "liquid density"
	default:
		return "pressure"
	}
}

// InputNames returns the names of the independent variables.
func (d *DataSet) InputNames() []string {
	switch d.kind {
	case LiquidDensity:
		return []string{"temperature", "pressure"}
	case BinaryTPx:
		return []string{"temperature", "liquid molefracs"}
	case BinaryTPy:
		return []string{"temperature", "vapor molefracs"}
	case BinaryTPxy:
		return []string{"temperature", "liquid molefracs", "vapor molefracs"}
	default:
		return []string{"temperature"}
	}
}

// Input returns the independent variables by name.
func (d *DataSet) Input() map[string]quantity.Array {
	m := make(map[string]quantity.Array, 3)
	m["temperature"] = d.temperature.Clone()
	if d.kind == LiquidDensity {
		m["pressure"] = d.pressure.Clone()
	}
	if d.liquid != nil {
		m["liquid molefracs"] = quantity.NewArray(d.liquid, quantity.Dimensionless)
	}
	if d.vapor != nil {
		m["vapor molefracs"] = quantity.NewArray(d.vapor, quantity.Dimensionless)
	}
	return m
}

func (d *DataSet) String() string {
	switch d.kind {
	case BinaryTPx, BinaryTPy, BinaryTPxy:
		return fmt.Sprintf("DataSet(%s, cost=%s, datapoints=%d)", d.kind, d.cost, d.datapoints)
	case EquilibriumLiquidDensity:
		return fmt.Sprintf("DataSet(%s, extrapolate=%t, datapoints=%d)", d.kind, d.extrapolate, d.datapoints)
	default:
		return fmt.Sprintf("DataSet(%s, datapoints=%d)", d.kind, d.datapoints)
	}
}

// Cost returns the residual vector of d for model.
//
// Residuals are computed per data point, transformed by lss and divided by
// the number of data points. The result has Len() entries. Model failures
// are returned wrapped in errs.ErrModel unless the variant defines a fallback.
func (d *DataSet) Cost(model eos.Model, lss loss.Loss) ([]float64, error) {
	res, err := d.residuals(model)
	if err != nil {
		return nil, err
	}
	if len(res) != d.Len() {
		return nil, fmt.Errorf("%w: %s produced %d residuals, expected %d", errs.ErrShape, d.kind, len(res), d.Len())
	}
	lss.Apply(res)
	floats.Scale(1/float64(d.datapoints), res)
	return res, nil
}

func (d *DataSet) residuals(model eos.Model) ([]float64, error) {
	switch d.kind {
	case VaporPressure:
		return d.vaporPressureCost(model)
	case LiquidDensity, EquilibriumLiquidDensity:
		return d.densityCost(model)
	case BinaryTPx, BinaryTPy, BinaryTPxy:
		switch d.cost {
		case Pressure:
			return d.pressureCost(model)
		case ChemicalPotential:
			return d.chemicalPotentialCost(model)
		case Distance:
			return d.distanceCost(model)
		}
	}
	return nil, errs.Incompatible("%s with cost function '%s' cannot be evaluated", d.kind, d.cost)
}

// deviation returns (a - b) / ref as a plain number.
func deviation(a, b, ref quantity.Quantity) (float64, error) {
	diff, err := a.Sub(b)
	if err != nil {
		return math.NaN(), err
	}
	return diff.Div(ref).Value()
}
