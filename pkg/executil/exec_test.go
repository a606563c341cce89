package executil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShell_Recording(t *testing.T) {
	rec := &RecordingExecutor{}

	require.NoError(t, Shell(context.Background(), rec, "echo hi"))
	assert.Equal(t, []string{"echo hi"}, rec.Lines())
}

func TestShell_ErrorIncludesOutput(t *testing.T) {
	rec := &RecordingExecutor{
		Outputs: map[string][]byte{"sh": []byte("no such package\n")},
		Errors:  map[string]error{"sh": errors.New("exit status 1")},
	}

	err := Shell(context.Background(), rec, "false")
	assert.EqualError(t, err, "exit status 1: no such package")
}

func TestShell_Real(t *testing.T) {
	e := &RealExecutor{}

	require.NoError(t, Shell(context.Background(), e, "true"))

	err := Shell(context.Background(), e, "echo boom >&2; exit 3")
	assert.ErrorContains(t, err, "boom")
}
