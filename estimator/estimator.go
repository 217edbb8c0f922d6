// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package estimator combines several data sets into the residual vector of a
// least-squares parameter fit.
package estimator

import (
	"fmt"
	"math"
	"strings"

	"github.com/sgostarter/i/l"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/estimator/dataset"
	"github.com/curioloop/estimator/eos"
	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/loss"
	"github.com/curioloop/estimator/numdiff"
	"github.com/curioloop/estimator/quantity"
)

// Estimator holds data sets with their weights and losses.
//
// Weights are normalized to unit sum on every evaluation, so changing a
// weight or adding a data set affects the next call. An Estimator must not be
// modified while it is evaluated.
type Estimator struct {
	data    []*dataset.DataSet
	weights []float64
	losses  []loss.Loss
	logger  l.Wrapper
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithLogger sets the logger.
func WithLogger(logger l.Wrapper) Option {
	return func(e *Estimator) {
		e.logger = logger
	}
}

func checkWeight(i int, w float64) error {
	if !(w >= 0) || math.IsInf(w, 1) {
		return errs.Incompatible("weight %d must be finite and non-negative, got %g", i, w)
	}
	return nil
}

// New returns an Estimator of data. weights and losses are matched to data by position.
func New(data []*dataset.DataSet, weights []float64, losses []loss.Loss, opts ...Option) (*Estimator, error) {
	if len(weights) != len(data) || len(losses) != len(data) {
		return nil, errs.Incompatible("%d data sets, %d weights and %d losses", len(data), len(weights), len(losses))
	}
	for i, d := range data {
		if d == nil {
			return nil, fmt.Errorf("%w: data set %d is nil", errs.ErrMissingInput, i)
		}
		if err := checkWeight(i, weights[i]); err != nil {
			return nil, err
		}
	}

	e := &Estimator{
		data:    append([]*dataset.DataSet(nil), data...),
		weights: append([]float64(nil), weights...),
		losses:  append([]loss.Loss(nil), losses...),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = l.NewNopLoggerWrapper()
	}
	e.logger = e.logger.WithFields(l.StringField(l.ClsKey, "Estimator"))
	return e, nil
}

// AddData appends d with its weight and loss.
func (e *Estimator) AddData(d *dataset.DataSet, weight float64, lss loss.Loss) error {
	if d == nil {
		return fmt.Errorf("%w: data set is nil", errs.ErrMissingInput)
	}
	if err := checkWeight(len(e.data), weight); err != nil {
		return err
	}
	e.data = append(e.data, d)
	e.weights = append(e.weights, weight)
	e.losses = append(e.losses, lss)
	return nil
}

// SetWeight replaces the weight of data set i.
func (e *Estimator) SetWeight(i int, weight float64) error {
	if i < 0 || i >= len(e.data) {
		return errs.Incompatible("data set %d out of range [0, %d)", i, len(e.data))
	}
	if err := checkWeight(i, weight); err != nil {
		return err
	}
	e.weights[i] = weight
	return nil
}

// Datasets returns the data sets in insertion order.
func (e *Estimator) Datasets() []*dataset.DataSet { return append([]*dataset.DataSet(nil), e.data...) }

// Weights returns the raw, unnormalized weights.
func (e *Estimator) Weights() []float64 { return append([]float64(nil), e.weights...) }

// Losses returns the loss of each data set.
func (e *Estimator) Losses() []loss.Loss { return append([]loss.Loss(nil), e.losses...) }

// Len returns the length of the residual vector.
func (e *Estimator) Len() (n int) {
	for _, d := range e.data {
		n += d.Len()
	}
	return
}

func (e *Estimator) normalized() ([]float64, error) {
	sum := floats.Sum(e.weights)
	if !(sum > 0) || math.IsInf(sum, 0) {
		return nil, errs.Incompatible("sum of weights is %g", sum)
	}
	w := append([]float64(nil), e.weights...)
	floats.Scale(1/sum, w)
	return w, nil
}

// Cost returns the weighted costs of all data sets concatenated in insertion order.
// The cost of data set i is scaled by wᵢ/Σw. Any failure aborts the evaluation.
func (e *Estimator) Cost(model eos.Model) ([]float64, error) {
	if len(e.data) == 0 {
		return nil, fmt.Errorf("%w: no data sets", errs.ErrMissingInput)
	}
	w, err := e.normalized()
	if err != nil {
		return nil, err
	}

	res := make([]float64, 0, e.Len())
	for i, d := range e.data {
		cost, err := d.Cost(model, e.losses[i])
		if err != nil {
			e.logger.WithFields(l.IntField("dataset", i), l.ErrorField(err)).Debug("cost evaluation failed")
			return nil, fmt.Errorf("data set %d (%s): %w", i, d.Kind(), err)
		}
		if len(cost) != d.Len() {
			return nil, fmt.Errorf("%w: data set %d produced %d residuals, expected %d", errs.ErrShape, i, len(cost), d.Len())
		}
		floats.Scale(w[i], cost)
		res = append(res, cost...)
	}
	e.logger.WithFields(l.IntField("residuals", len(res))).Debug("cost evaluated")
	return res, nil
}

// Jacobian returns the derivative of Cost with respect to params, with one
// row per residual and one column per parameter. build maps a parameter
// vector onto a model; its failures are reported as model errors.
func (e *Estimator) Jacobian(build func(params []float64) (eos.Model, error), params []float64, spec numdiff.Spec) (*mat.Dense, error) {
	if build == nil {
		return nil, fmt.Errorf("%w: model builder is required", errs.ErrMissingInput)
	}
	m := e.Len()
	f := func(x, y []float64) error {
		model, err := build(x)
		if err != nil {
			return errs.Model(err)
		}
		cost, err := e.Cost(model)
		if err != nil {
			return err
		}
		if len(cost) != len(y) {
			return fmt.Errorf("%w: %d residuals, expected %d", errs.ErrShape, len(cost), len(y))
		}
		copy(y, cost)
		return nil
	}
	return spec.Jacobian(f, params, m)
}

// Predict returns the prediction of every data set.
func (e *Estimator) Predict(model eos.Model) ([]quantity.Array, error) {
	pred := make([]quantity.Array, len(e.data))
	for i, d := range e.data {
		var err error
		if pred[i], err = d.Predict(model); err != nil {
			return nil, fmt.Errorf("data set %d (%s): %w", i, d.Kind(), err)
		}
	}
	return pred, nil
}

// RelativeDifference returns the relative difference of every data set.
func (e *Estimator) RelativeDifference(model eos.Model) ([][]float64, error) {
	rd := make([][]float64, len(e.data))
	for i, d := range e.data {
		var err error
		if rd[i], err = d.RelativeDifference(model); err != nil {
			return nil, fmt.Errorf("data set %d (%s): %w", i, d.Kind(), err)
		}
	}
	return rd, nil
}

// MeanAbsoluteRelativeDifference returns the MARD of every data set.
func (e *Estimator) MeanAbsoluteRelativeDifference(model eos.Model) ([]float64, error) {
	mard := make([]float64, len(e.data))
	for i, d := range e.data {
		var err error
		if mard[i], err = d.MeanAbsoluteRelativeDifference(model); err != nil {
			return nil, fmt.Errorf("data set %d (%s): %w", i, d.Kind(), err)
		}
	}
	return mard, nil
}

func (e *Estimator) String() string {
	var sb strings.Builder
	sb.WriteString("Estimator(")
	for i, d := range e.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: weight=%g, loss=%s", d, e.weights[i], e.losses[i])
	}
	sb.WriteString(")")
	return sb.String()
}

// Markdown renders the data sets as a markdown table.
func (e *Estimator) Markdown() string {
	var sb strings.Builder
	sb.WriteString("| | data set | target | cost function | datapoints | weight | loss |\n")
	sb.WriteString("|-|-|-|-|-|-|-|\n")
	for i, d := range e.data {
		cost := "-"
		switch d.Kind() {
		case dataset.BinaryTPx, dataset.BinaryTPy, dataset.BinaryTPxy:
			cost = d.CostFunction().String()
		}
		fmt.Fprintf(&sb, "|%d|%s|%s|%s|%d|%g|%s|\n", i, d.Kind(), d.TargetName(), cost, d.Datapoints(), e.weights[i], e.losses[i])
	}
	return sb.String()
}
