package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/transform"
	"github.com/turtacn/molprint/pkg/matrix"
)

type similarityOptions struct {
	Query        string
	Input        string
	Type         string
	Params       []string
	Metric       string
	Threshold    float64
	Top          int
	NJobs        int
	OnParseError string
}

// NewSimilarityCmd creates the similarity command.
func NewSimilarityCmd() *cobra.Command {
	o := &similarityOptions{}

	cmd := &cobra.Command{
		Use:   "similarity",
		Short: "Rank a SMILES file by fingerprint similarity to a query",
		Long: "Computes the selected fingerprint for the query and for every input\n" +
			"molecule, then lists the input rows scoring at or above --threshold,\n" +
			"best first. Count fingerprints use the generalized min/max forms.",
		Example: `  molprint similarity --query c1ccccc1O --input mols.smi --top 10
  molprint similarity -q CCO --input mols.smi --type maccs --metric dice --threshold 0.5 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimilarity(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.Query, "query", "q", "", "query SMILES")
	f.StringVarP(&o.Input, "input", "i", "-", "SMILES file, one molecule per line")
	f.StringVarP(&o.Type, "type", "t", string(fingerprint.Morgan), "fingerprint type (see 'molprint types')")
	f.StringArrayVarP(&o.Params, "param", "p", nil, "fingerprint parameter as key=value (repeatable)")
	f.StringVarP(&o.Metric, "metric", "m", string(fingerprint.MetricTanimoto), "similarity metric (tanimoto, dice, cosine)")
	f.Float64Var(&o.Threshold, "threshold", 0, "minimum score to report")
	f.IntVar(&o.Top, "top", 0, "report at most N hits (0 reports all)")
	f.IntVarP(&o.NJobs, "n-jobs", "j", 0, "worker count; negative counts back from the CPU count")
	f.StringVar(&o.OnParseError, "on-parse-error", transform.OnParseErrorRaise, "raise or skip unparseable input molecules")
	_ = cmd.MarkFlagRequired("query")

	return cmd
}

func runSimilarity(cmd *cobra.Command, o *similarityOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	log := cliCtx.Logger.Named("similarity")

	metric, err := fingerprint.ParseSimilarityMetric(o.Metric)
	if err != nil {
		return err
	}
	fpType, err := fingerprint.ParseType(o.Type)
	if err != nil {
		return err
	}
	p, err := parseParams(o.Params)
	if err != nil {
		return err
	}

	opts := cliCtx.Config.Transform.Options()
	f := cmd.Flags()
	if f.Changed("n-jobs") {
		opts.NJobs = transform.Jobs(o.NJobs)
	}
	if f.Changed("on-parse-error") || opts.OnParseError == "" {
		opts.OnParseError = o.OnParseError
	}
	// Rank reads rows by index; dense rows avoid CSR lookups.
	opts.Sparse = false

	smiles, err := readInput(cmd, o.Input)
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	tr, err := transform.New(fpType, p, opts, transform.WithLogger(log))
	if err != nil {
		return err
	}
	// The query always raises: a skipped query has nothing to compare.
	qt, err := transform.NewFromVariant(tr.Variant(), transform.Options{}, transform.WithLogger(log))
	if err != nil {
		return err
	}
	qm, err := qt.TransformSMILES(ctx, []string{o.Query})
	if err != nil {
		return err
	}
	res, err := tr.Transform(ctx, molecule.FromStrings(smiles))
	if err != nil {
		return err
	}

	hits, err := fingerprint.Rank(metric, res.Matrix, matrix.RowValues(qm, 0), o.Threshold, 0)
	if err != nil {
		return err
	}
	if res.Skipped != nil && !res.Skipped.IsEmpty() {
		hits = lo.Reject(hits, func(h fingerprint.Hit, _ int) bool {
			return res.Skipped.Contains(uint32(h.Index))
		})
	}
	if o.Top > 0 && len(hits) > o.Top {
		hits = hits[:o.Top]
	}
	log.Debug("similarity ranked",
		logging.String("metric", string(metric)),
		logging.Int("rows", res.Matrix.Rows()),
		logging.Int("hits", len(hits)))

	return PrintResult(cmd, newSimilarityReport(o.Query, fpType, metric, smiles, hits))
}

// ─────────────────────────────────────────────────────────────────────────────
// Output
// ─────────────────────────────────────────────────────────────────────────────

// SimilarityHit is one reported row.
type SimilarityHit struct {
	Rank   int     `json:"rank"`
	Index  int     `json:"index"`
	SMILES string  `json:"smiles"`
	Score  float64 `json:"score"`
	Class  string  `json:"class"`
}

// SimilarityReport lists the hits of one query.
type SimilarityReport struct {
	Query  string          `json:"query"`
	Type   string          `json:"type"`
	Metric string          `json:"metric"`
	Hits   []SimilarityHit `json:"hits"`
}

func newSimilarityReport(query string, t fingerprint.Type, metric fingerprint.SimilarityMetric, smiles []string, hits []fingerprint.Hit) SimilarityReport {
	return SimilarityReport{
		Query:  query,
		Type:   string(t),
		Metric: string(metric),
		Hits: lo.Map(hits, func(h fingerprint.Hit, i int) SimilarityHit {
			return SimilarityHit{
				Rank:   i + 1,
				Index:  h.Index,
				SMILES: smiles[h.Index],
				Score:  h.Score,
				Class:  fingerprint.ClassifySimilarity(h.Score),
			}
		}),
	}
}

func (r SimilarityReport) TableHeaders() []string {
	return []string{"RANK", "INDEX", "SMILES", "SCORE", "CLASS"}
}

func (r SimilarityReport) TableRows() [][]string {
	return lo.Map(r.Hits, func(h SimilarityHit, _ int) []string {
		return []string{
			strconv.Itoa(h.Rank),
			strconv.Itoa(h.Index),
			h.SMILES,
			strconv.FormatFloat(h.Score, 'f', 4, 64),
			h.Class,
		}
	})
}

func (r SimilarityReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "query %s (%s, %s): %d hits", r.Query, r.Type, r.Metric, len(r.Hits))
	for _, h := range r.Hits {
		fmt.Fprintf(&sb, "\n%3d. [%d] %s  %.4f %s", h.Rank, h.Index, h.SMILES, h.Score, h.Class)
	}
	return sb.String()
}
