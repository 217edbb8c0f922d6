// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curioloop/estimator/errs"
	"github.com/curioloop/estimator/loss"
	"github.com/curioloop/estimator/numdiff"
	"github.com/curioloop/estimator/odr"
)

func TestDefault(t *testing.T) {
	c, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	spec, err := c.DiffSpec()
	require.NoError(t, err)
	assert.Equal(t, numdiff.Spec{Method: numdiff.Forward}, spec)
	losses, err := c.ParseLosses()
	require.NoError(t, err)
	assert.Empty(t, losses)
	assert.NotNil(t, c.Logger())
	assert.Len(t, c.DataSetOptions(), 2)
	assert.Len(t, c.EstimatorOptions(), 1)
}

func TestParse(t *testing.T) {
	c, err := Parse([]byte(`
log: console
distance:
  max_iterations: 100
  penalty: 4
losses: [linear, "huber:0.05"]
jacobian:
  method: central
  rel_step: 1.0e-6
`))
	require.NoError(t, err)
	assert.Equal(t, LogConsole, c.Log)
	want := odr.DefaultOptions()
	want.MaxIterations, want.Penalty = 100, 4
	assert.Equal(t, want, c.Distance)

	losses, err := c.ParseLosses()
	require.NoError(t, err)
	assert.Equal(t, []loss.Loss{loss.NewLinear(), loss.NewHuber(0.05)}, losses)

	spec, err := c.DiffSpec()
	require.NoError(t, err)
	assert.Equal(t, numdiff.Spec{Method: numdiff.Central, RelStep: 1e-6}, spec)

	b, err := c.Marshal()
	require.NoError(t, err)
	again, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, c, again)
}

func TestInvalid(t *testing.T) {
	for doc, target := range map[string]error{
		"log: syslog":                   errs.ErrUnknownKey,
		"distance: {step: 0.7}":         errs.ErrIncompatibleInput,
		"distance: {max_iterations: 0}": errs.ErrIncompatibleInput,
		"losses: [cauchy]":              errs.ErrUnknownKey,
		"losses: ['huber:x']":           errs.ErrParse,
		"jacobian: {method: backward}":  errs.ErrUnknownKey,
		"jacobian: {rel_step: -1}":      errs.ErrIncompatibleInput,
		"distance: {penalty: [1, 2]}":   errs.ErrParse,
		"losses: [linear":               errs.ErrParse,
	} {
		_, err := Parse([]byte(doc))
		assert.ErrorIs(t, err, target, doc)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("losses: ['huber:1']\n"), 0o600))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"huber:1"}, c.Losses)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
