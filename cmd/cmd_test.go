package cmd

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/cottand/tyck/tyck"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/golden"
)

func TestCheckOutput(t *testing.T) {
	units, err := tyck.CheckAll(context.Background(), os.DirFS("testdata"), []string{"poly.yaml", "errors.yaml"}, 2)
	require.NoError(t, err)

	var out bytes.Buffer
	problems, err := writeCheck(&out, units, false)
	require.NoError(t, err)
	assert.Equal(t, 3, problems)
	golden.Assert(t, out.String(), "check.golden")
}

func TestCheckCommandShowsTypes(t *testing.T) {
	var out bytes.Buffer
	CheckCmd.SetOut(&out)
	CheckCmd.SetArgs([]string{"--show-types", "testdata/poly.yaml", "testdata/recursion.yaml"})
	require.NoError(t, CheckCmd.Execute())
	golden.Assert(t, out.String(), "check_types.golden")
}

func TestCheckCommandFailsOnProblems(t *testing.T) {
	var out, stderr bytes.Buffer
	CheckCmd.SetOut(&out)
	CheckCmd.SetErr(&stderr)
	CheckCmd.SetArgs([]string{"testdata/errors.yaml"})
	assert.EqualError(t, CheckCmd.Execute(), "found 3 problems")
	assert.Contains(t, out.String(), "testdata/errors.yaml:5:16: (E001) binding 'missing' not found")

	CheckCmd.SetArgs([]string{"testdata/nope.yaml"})
	assert.ErrorContains(t, CheckCmd.Execute(), "read testdata/nope.yaml")
}

func TestDepsCommand(t *testing.T) {
	var out bytes.Buffer
	DepsCmd.SetOut(&out)
	DepsCmd.SetArgs([]string{"testdata/poly.yaml", "testdata/recursion.yaml"})
	require.NoError(t, DepsCmd.Execute())
	golden.Assert(t, out.String(), "deps.golden")
}
