// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package loss provides robust loss functions applied to residual vectors.
//
// A loss is written as loss = s² ρ(f²/s²) for a residual f and scale s, with
//   - Linear: ρ(z) = z, s = 1
//   - Huber:  ρ(z) = z if z ≤ 1 else 2√z - 1
//
// Apply transforms residuals in place so that their squares follow ρ.
package loss

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/curioloop/estimator/errs"
)

// Kind identifies a loss function.
type Kind int

const (
	// Linear leaves residuals unchanged.
	Linear Kind = iota
	// Huber damps residuals larger than the scale.
	Huber
)

// Loss is a stateless loss selection. The zero value is the linear loss.
type Loss struct {
	Kind  Kind
	Scale float64
}

// NewLinear returns the linear loss.
func NewLinear() Loss { return Loss{Kind: Linear} }

// NewHuber returns Huber's loss with the given scaling factor.
func NewHuber(scale float64) Loss { return Loss{Kind: Huber, Scale: scale} }

// Apply transforms res in place.
//
// Residuals above the Huber scale are replaced by 2|r|/s - 1, which is never
// negative: the sign of outliers is not preserved.
func (l Loss) Apply(res []float64) {
	switch l.Kind {
	case Huber:
		s2inv := 1 / (l.Scale * l.Scale)
		for i, r := range res {
			z := r * r * s2inv
			if z > 1 {
				res[i] = 2*math.Sqrt(z) - 1
			}
		}
	}
}

func (l Loss) String() string {
	switch l.Kind {
	case Linear:
		return "linear"
	case Huber:
		return "huber:" + cast.ToString(l.Scale)
	default:
		return fmt.Sprintf("loss(%d)", l.Kind)
	}
}

// Parse reads a loss from its textual form, "linear" or "huber:<scale>".
func Parse(s string) (Loss, error) {
	name, arg, hasArg := strings.Cut(strings.TrimSpace(s), ":")
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "linear", "":
		if hasArg {
			return Loss{}, fmt.Errorf("%w: linear loss takes no argument, got %q", errs.ErrParse, s)
		}
		return NewLinear(), nil
	case "huber":
		if !hasArg {
			return Loss{}, errs.Missing("scaling factor", "huber loss")
		}
		scale, err := cast.ToFloat64E(strings.TrimSpace(arg))
		if err != nil {
			return Loss{}, fmt.Errorf("%w: huber scaling factor %q: %v", errs.ErrParse, arg, err)
		}
		if !(scale > 0) {
			return Loss{}, errs.Incompatible("huber scaling factor must be positive, got %g", scale)
		}
		return NewHuber(scale), nil
	default:
		return Loss{}, fmt.Errorf("%w: loss '%s', try 'linear' or 'huber:<scale>'", errs.ErrUnknownKey, name)
	}
}

// ParseAll parses a list of loss strings.
func ParseAll(ss []string) ([]Loss, error) {
	ls := make([]Loss, len(ss))
	for i, s := range ss {
		l, err := Parse(s)
		if err != nil {
			return nil, fmt.Errorf("loss %d: %w", i, err)
		}
		ls[i] = l
	}
	return ls, nil
}

// MarshalText implements encoding.TextMarshaler.
func (l Loss) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *Loss) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
