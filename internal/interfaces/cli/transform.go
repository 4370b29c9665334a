package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/transform"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// artifactName is the object name of uploaded matrices under the run prefix.
const artifactName = "fingerprints.npy"

type transformOptions struct {
	Type         string
	Input        string
	Params       []string
	NJobs        int
	BatchSize    int
	Sparse       bool
	OnParseError string
	NPYPath      string
	Upload       bool
}

// NewTransformCmd creates the transform command.
func NewTransformCmd() *cobra.Command {
	o := &transformOptions{}

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Compute a fingerprint matrix for a SMILES file",
		Long: "Reads one SMILES per line (use - for stdin), computes the selected\n" +
			"fingerprint on a worker pool and prints a summary of the matrix.\n" +
			"Transform defaults come from the transform section of the config file.",
		Example: `  molprint transform --type morgan --input mols.smi --param radius=3 --n-jobs -1
  molprint transform --type layered --input mols.smi --sparse --npy out.npy
  cat mols.smi | molprint transform --type maccs -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.Type, "type", "t", string(fingerprint.Morgan), "fingerprint type (see 'molprint types')")
	f.StringVarP(&o.Input, "input", "i", "-", "SMILES file, one molecule per line")
	f.StringArrayVarP(&o.Params, "param", "p", nil, "fingerprint parameter as key=value (repeatable)")
	f.IntVarP(&o.NJobs, "n-jobs", "j", 0, "worker count; negative counts back from the CPU count")
	f.IntVar(&o.BatchSize, "batch-size", 0, "molecules per chunk (0 splits evenly across workers)")
	f.BoolVar(&o.Sparse, "sparse", false, "assemble a CSR matrix")
	f.StringVar(&o.OnParseError, "on-parse-error", transform.OnParseErrorRaise, "raise or skip unparseable molecules")
	f.StringVar(&o.NPYPath, "npy", "", "write the matrix to this .npy file")
	f.BoolVar(&o.Upload, "upload", false, "upload the matrix as .npy to the configured bucket")

	return cmd
}

func runTransform(cmd *cobra.Command, o *transformOptions) (err error) {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	log := cliCtx.Logger.Named("transform")

	fpType, err := fingerprint.ParseType(o.Type)
	if err != nil {
		return err
	}
	p, err := parseParams(o.Params)
	if err != nil {
		return err
	}
	opts := transformOptionsFromFlags(cmd, cliCtx, o)

	smiles, err := readInput(cmd, o.Input)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	infra, err := infrastructure.Open(ctx, cliCtx.Config, log)
	if err != nil {
		return err
	}
	defer multierr.AppendInvoke(&err, multierr.Close(infra))
	if o.Upload && infra.Artifacts == nil {
		return errors.InvalidParam("--upload requires storage.enabled in the configuration")
	}

	tr, err := transform.New(fpType, p, opts,
		transform.WithLogger(log),
		transform.WithCache(infra.Cache()))
	if err != nil {
		return err
	}
	res, err := tr.Transform(ctx, molecule.FromStrings(smiles))
	if err != nil {
		return err
	}

	summary := newTransformSummary(fpType, res)
	if o.NPYPath != "" {
		if err := writeNPYFile(o.NPYPath, res.Matrix); err != nil {
			return err
		}
		summary.NPYPath = o.NPYPath
		log.Info("matrix written", logging.String("path", o.NPYPath))
	}
	if o.Upload {
		art, err := infra.Artifacts.PutMatrix(ctx, res.RunID, artifactName, res.Matrix,
			map[string]string{"fingerprint": string(fpType)})
		if err != nil {
			return err
		}
		summary.Object = art.Bucket + "/" + art.Key
	}
	return PrintResult(cmd, summary)
}

// transformOptionsFromFlags overlays explicitly set flags on the configured
// defaults.
func transformOptionsFromFlags(cmd *cobra.Command, cliCtx *CLIContext, o *transformOptions) transform.Options {
	opts := cliCtx.Config.Transform.Options()
	f := cmd.Flags()
	if f.Changed("n-jobs") {
		opts.NJobs = transform.Jobs(o.NJobs)
	}
	if f.Changed("batch-size") {
		opts.BatchSize = o.BatchSize
	}
	if f.Changed("sparse") {
		opts.Sparse = o.Sparse
	}
	if f.Changed("on-parse-error") || opts.OnParseError == "" {
		opts.OnParseError = o.OnParseError
	}
	if cliCtx.Verbose {
		opts.Verbose = max(opts.Verbose, 1)
	}
	return opts
}

// parseParams turns key=value flags into fingerprint parameters. Values stay
// strings; the parameter validator accepts numeric and boolean spellings.
func parseParams(raw []string) (fingerprint.Params, error) {
	p := fingerprint.Params{}
	for _, kv := range raw {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.InvalidParam("parameter must be key=value").WithDetail(kv)
		}
		p[k] = strings.TrimSpace(v)
	}
	return p, nil
}

func writeNPYFile(path string, m matrix.Matrix) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorageError, "cannot create npy file").WithDetail(path)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return matrix.WriteNPY(f, m)
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

// TransformSummary describes a computed matrix without its contents.
type TransformSummary struct {
	RunID     string   `json:"run_id"`
	Type      string   `json:"type"`
	Rows      int      `json:"rows"`
	Cols      int      `json:"cols"`
	DType     string   `json:"dtype"`
	Sparse    bool     `json:"sparse"`
	NNZ       int      `json:"nnz"`
	Skipped   []uint32 `json:"skipped,omitempty"`
	Workers   int      `json:"workers"`
	Chunks    int      `json:"chunks"`
	ElapsedMS float64  `json:"elapsed_ms"`
	NPYPath   string   `json:"npy_path,omitempty"`
	Object    string   `json:"object,omitempty"`
}

func newTransformSummary(t fingerprint.Type, res *transform.Result) TransformSummary {
	s := TransformSummary{
		RunID:     res.RunID,
		Type:      string(t),
		Rows:      res.Matrix.Rows(),
		Cols:      res.Matrix.Cols(),
		DType:     res.Matrix.DType().String(),
		Sparse:    res.Matrix.IsSparse(),
		NNZ:       res.Matrix.NNZ(),
		Workers:   res.Workers,
		Chunks:    res.Chunks,
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1000,
	}
	if res.Skipped != nil && !res.Skipped.IsEmpty() {
		s.Skipped = res.Skipped.ToArray()
	}
	return s
}

// Density is the fraction of non-zero cells.
func (s TransformSummary) Density() float64 {
	if s.Rows == 0 || s.Cols == 0 {
		return 0
	}
	return float64(s.NNZ) / float64(s.Rows*s.Cols)
}

func (s TransformSummary) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (s TransformSummary) TableRows() [][]string {
	rows := [][]string{
		{"run_id", s.RunID},
		{"type", s.Type},
		{"shape", fmt.Sprintf("%d x %d", s.Rows, s.Cols)},
		{"dtype", s.DType},
		{"sparse", strconv.FormatBool(s.Sparse)},
		{"nnz", strconv.Itoa(s.NNZ)},
		{"density", strconv.FormatFloat(s.Density(), 'f', 4, 64)},
		{"skipped", strconv.Itoa(len(s.Skipped))},
		{"workers", strconv.Itoa(s.Workers)},
		{"chunks", strconv.Itoa(s.Chunks)},
		{"elapsed_ms", strconv.FormatFloat(s.ElapsedMS, 'f', 3, 64)},
	}
	if s.NPYPath != "" {
		rows = append(rows, []string{"npy", s.NPYPath})
	}
	if s.Object != "" {
		rows = append(rows, []string{"object", s.Object})
	}
	return rows
}

func (s TransformSummary) String() string {
	var sb strings.Builder
	for _, r := range s.TableRows() {
		fmt.Fprintf(&sb, "%-10s %s\n", r[0]+":", r[1])
	}
	return strings.TrimRight(sb.String(), "\n")
}
