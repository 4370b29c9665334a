package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

const smiFile = `# test set
CCO ethanol
c1ccccc1 benzene

CC(=O)O	acetic acid
N#N
`

func writeSMILES(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mols.smi")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func decodeSummary(t *testing.T, out string) TransformSummary {
	t.Helper()
	var s TransformSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s
}

func TestReadSMILES(t *testing.T) {
	got, err := ReadSMILES(strings.NewReader(smiFile))
	require.NoError(t, err)
	assert.Equal(t, []string{"CCO", "c1ccccc1", "CC(=O)O", "N#N"}, got)

	got, err = ReadSMILES(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseParams(t *testing.T) {
	p, err := parseParams([]string{"radius=3", " fp_size = 1024", "count=true"})
	require.NoError(t, err)
	assert.Equal(t, fingerprint.Params{"radius": "3", "fp_size": "1024", "count": "true"}, p)

	for _, bad := range []string{"radius", "=3"} {
		_, err := parseParams([]string{bad})
		assert.True(t, errors.IsCode(err, errors.CodeInvalidParam), bad)
	}
}

func TestTransformCmd_File(t *testing.T) {
	path := writeSMILES(t, smiFile)

	out, err := runCLI(t, "", "-o", "json", "transform",
		"--type", "morgan", "--input", path, "--param", "fp_size=512", "--n-jobs", "2", "--batch-size", "1")
	require.NoError(t, err)

	s := decodeSummary(t, out)
	assert.Equal(t, "morgan", s.Type)
	assert.Equal(t, 4, s.Rows)
	assert.Equal(t, 512, s.Cols)
	assert.Equal(t, "uint8", s.DType)
	assert.False(t, s.Sparse)
	assert.Equal(t, 4, s.Chunks)
	assert.Equal(t, 2, s.Workers)
	assert.Positive(t, s.NNZ)
	assert.NotEmpty(t, s.RunID)
}

func TestTransformCmd_StdinSparse(t *testing.T) {
	out, err := runCLI(t, "CCO\nc1ccccc1\n", "-o", "json", "transform", "--type", "maccs", "--sparse")
	require.NoError(t, err)

	s := decodeSummary(t, out)
	assert.Equal(t, 2, s.Rows)
	assert.Equal(t, fingerprint.MACCSSize, s.Cols)
	assert.True(t, s.Sparse)
}

func TestTransformCmd_TextAndTable(t *testing.T) {
	out, err := runCLI(t, "CCO\n", "transform", "--type", "atom-pair")
	require.NoError(t, err)
	assert.Contains(t, out, "type:      atom_pair")
	assert.Contains(t, out, "shape:     1 x 2048")

	out, err = runCLI(t, "CCO\n", "-o", "table", "transform", "--type", "layered")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "FIELD"))
	assert.Contains(t, out, "dtype")
}

func TestTransformCmd_SkipPolicy(t *testing.T) {
	out, err := runCLI(t, "CCO\nC1CC(\nN#N\n", "-o", "json", "transform",
		"--type", "morgan", "--on-parse-error", "skip")
	require.NoError(t, err)

	s := decodeSummary(t, out)
	assert.Equal(t, 3, s.Rows)
	assert.Equal(t, []uint32{1}, s.Skipped)
}

func TestTransformCmd_Errors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		exit  int
	}{
		{"unknown type", "CCO\n", []string{"--type", "ecfp9"}, ExitUsage},
		{"bad param", "CCO\n", []string{"--param", "radius"}, ExitUsage},
		{"invalid param value", "CCO\n", []string{"--param", "radius=-1"}, ExitUsage},
		{"relation", "CCO\n", []string{"--type", "layered", "--param", "min_path=5", "--param", "max_path=2"}, ExitUsage},
		{"zero jobs", "CCO\n", []string{"--n-jobs", "0"}, ExitUsage},
		{"bad policy", "CCO\n", []string{"--on-parse-error", "ignore"}, ExitUsage},
		{"parse error", "CCO\nC1CC(\n", nil, ExitParse},
		{"missing file", "", []string{"--input", "/nonexistent/mols.smi"}, ExitUsage},
		{"upload without storage", "CCO\n", []string{"--upload"}, ExitUsage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.stdin, append([]string{"transform"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, tt.exit, ExitCode(err), err.Error())
		})
	}
}

func TestTransformCmd_ParseErrorIndex(t *testing.T) {
	_, err := runCLI(t, "CCO\nc1ccccc1\nC1CC(\n", "transform", "--n-jobs", "2")
	var perr *errors.MoleculeParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Index)
}

func TestTransformCmd_WritesNPY(t *testing.T) {
	npyPath := filepath.Join(t.TempDir(), "out.npy")

	out, err := runCLI(t, "CCO\nc1ccccc1\nN#N\n", "-o", "json", "transform",
		"--type", "maccs", "--sparse", "--npy", npyPath)
	require.NoError(t, err)
	s := decodeSummary(t, out)
	assert.Equal(t, npyPath, s.NPYPath)

	data, err := os.ReadFile(npyPath)
	require.NoError(t, err)
	back, err := matrix.ReadNPY(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, matrix.Uint8, back.DType())
	assert.Equal(t, 3, back.Rows())
	assert.Equal(t, fingerprint.MACCSSize, back.Cols())
	assert.Equal(t, s.NNZ, back.NNZ())
}

func TestTransformCmd_ConfigDefaults(t *testing.T) {
	cfgPath := writeConfig(t, "log:\n  level: error\ntransform:\n  sparse: true\n  batch_size: 1\n  n_jobs: 2\n")

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetIn(strings.NewReader("CCO\nN#N\nc1ccccc1\n"))
	root.SetArgs([]string{"--config", cfgPath, "-o", "json", "transform", "--type", "maccs"})
	require.NoError(t, root.Execute())

	s := decodeSummary(t, out.String())
	assert.True(t, s.Sparse)
	assert.Equal(t, 3, s.Chunks)
	assert.Equal(t, 2, s.Workers)
}

func TestTransformSummary_Density(t *testing.T) {
	s := TransformSummary{Rows: 2, Cols: 4, NNZ: 2}
	assert.InDelta(t, 0.25, s.Density(), 1e-9)
	assert.Zero(t, TransformSummary{}.Density())
}
