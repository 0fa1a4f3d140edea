package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/meshspan/internal/config"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunConfigShow(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runConfig(&buf, config.Default(), "show"))
	assert.Contains(t, buf.String(), "convert:")
}

func TestRunConfigWriteError(t *testing.T) {
	err := runConfig(failingWriter{}, config.Default(), "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRunConfigUnknownAction(t *testing.T) {
	var buf bytes.Buffer
	err := runConfig(&buf, config.Default(), "reset")
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
