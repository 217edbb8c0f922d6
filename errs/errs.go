// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the sentinel errors shared by the estimator packages.
//
// Errors returned by this module wrap one of the sentinels below, so callers
// classify failures with errors.Is rather than by message.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrIncompatibleInput reports array length mismatches or an invalid
	// pairing of cost function and data set variant.
	ErrIncompatibleInput = errors.New("incompatible input")
	// ErrMissingInput reports an input required to evaluate a property.
	ErrMissingInput = errors.New("missing input")
	// ErrUnknownKey reports an unrecognized keyword.
	ErrUnknownKey = errors.New("unknown keyword")
	// ErrShape reports a residual vector of unexpected size.
	ErrShape = errors.New("shape mismatch")
	// ErrParse reports a malformed numeric literal.
	ErrParse = errors.New("parse error")
	// ErrQuantity reports a dimension mismatch between quantities.
	ErrQuantity = errors.New("quantity error")
	// ErrModel wraps any failure of the thermodynamic model.
	ErrModel = errors.New("model error")
)

// Model wraps a failure surfaced by the thermodynamic model so that both
// ErrModel and the original cause match errors.Is.
func Model(err error) error {
	if err == nil || errors.Is(err, ErrModel) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrModel, err)
}

// Incompatible returns ErrIncompatibleInput annotated with a formatted reason.
func Incompatible(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompatibleInput, fmt.Sprintf(format, a...))
}

// Missing returns ErrMissingInput naming the input and the evaluated property.
func Missing(needed, toEvaluate string) error {
	return fmt.Errorf("%w: need '%s' to evaluate '%s'", ErrMissingInput, needed, toEvaluate)
}
