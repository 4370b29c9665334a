package cli

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/benchmark"
	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/pkg/errors"
)

const benchInput = "CCO\nc1ccccc1\nCC(=O)O\nN#N\nC1CCCCC1\nO=C=O\n"

func TestBenchCmd_JSON(t *testing.T) {
	out, err := runCLI(t, benchInput, "-o", "json", "bench",
		"--type", "morgan", "--type", "maccs", "--splits", "2", "--repeats", "1", "--cores", "1,2")
	require.NoError(t, err)

	var report benchmark.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 6, report.Molecules)
	assert.Equal(t, []int{1, 2}, report.Cores)

	// morgan runs in both count modes, maccs too.
	require.Len(t, report.Cases, 4)
	for _, c := range report.Cases {
		assert.Equal(t, []int{3, 6}, c.Sizes)
		assert.Len(t, c.Sequential, 2)
		assert.Len(t, c.Parallel[1], 2)
		assert.Len(t, c.Parallel[2], 2)
	}
}

func TestBenchCmd_TableAndLimit(t *testing.T) {
	out, err := runCLI(t, benchInput, "-o", "table", "bench",
		"--type", "layered", "--splits", "1", "--repeats", "1", "--cores", "2", "--limit", "4")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, separator, one sequential row and one parallel row.
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "CASE"))
	assert.Contains(t, lines[2], "seq")
	assert.Contains(t, lines[3], "layered")
}

func TestBenchCmd_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		exit  int
	}{
		{"empty input", "", nil, ExitUsage},
		{"unknown type", benchInput, []string{"--type", "nope"}, ExitUsage},
		{"bad splits", benchInput, []string{"--splits", "0"}, ExitUsage},
		{"bad cores", benchInput, []string{"--cores", "0"}, ExitUsage},
		{"parse failure", "CCO\nC1CC(\n", []string{"--type", "maccs", "--splits", "1", "--repeats", "1", "--cores", "1"}, ExitParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.stdin, append([]string{"bench"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, ExitCode(err), err.Error())
		})
	}
}

func TestBenchCases(t *testing.T) {
	cases, err := benchCases(nil)
	require.NoError(t, err)
	assert.Nil(t, cases)

	cases, err = benchCases([]string{"ECFP", "morgan", "atompair"})
	require.NoError(t, err)
	require.Len(t, cases, 2)
	assert.Equal(t, fingerprint.Morgan, cases[0].Type)
	assert.Equal(t, fingerprint.AtomPair, cases[1].Type)

	_, err = benchCases([]string{"unknown"})
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintTypeUnsupported))
}

func TestBenchView_Rows(t *testing.T) {
	ms := time.Millisecond
	v := BenchView{Report: &benchmark.Report{
		Molecules: 10,
		Cores:     []int{2},
		Cases: []benchmark.CaseReport{{
			Name:       "maccs",
			Sizes:      []int{10},
			Sequential: []benchmark.Timing{{Size: 10, Mean: 4 * ms}},
			Parallel:   map[int][]benchmark.Timing{2: {{Size: 10, Mean: 2 * ms}}},
		}},
	}}

	rows := v.TableRows()
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"maccs", "false", "seq", "10", "4ms", "0s", "1.00"}, rows[0])
	assert.Equal(t, []string{"maccs", "false", "2", "10", "2ms", "0s", "2.00"}, rows[1])
	assert.Contains(t, v.String(), "benchmark over 10 molecules")
}

func TestTypesCmd(t *testing.T) {
	out, err := runCLI(t, "", "-o", "json", "types")
	require.NoError(t, err)

	var list TypeList
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, len(fingerprint.Types()))
	for _, ti := range list {
		assert.NotEmpty(t, ti.Params, ti.Type)
	}

	out, err = runCLI(t, "", "types")
	require.NoError(t, err)
	assert.Contains(t, out, "layered\n")
	assert.Contains(t, out, "max_path")
}
