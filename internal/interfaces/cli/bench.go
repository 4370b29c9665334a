package cli

import (
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/turtacn/molprint/internal/benchmark"
	"github.com/turtacn/molprint/internal/domain/fingerprint"
)

type benchOptions struct {
	Input   string
	Types   []string
	Splits  int
	Repeats int
	Cores   []int
	Sparse  bool
	Limit   int
}

// NewBenchCmd creates the bench command.
func NewBenchCmd() *cobra.Command {
	o := &benchOptions{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark parallel transforms against a sequential baseline",
		Long: "Times every fingerprint type (or the ones selected with --type) on\n" +
			"growing fractions of the input, for each core count and for a naive\n" +
			"sequential loop. Types with a count parameter run in both modes.",
		Example: `  molprint bench --input mols.smi
  molprint bench --input mols.smi --type morgan --cores 1,2,4 --repeats 3 -o table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(cmd, o)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&o.Input, "input", "i", "-", "SMILES file, one molecule per line")
	f.StringSliceVarP(&o.Types, "type", "t", nil, "fingerprint types to run (default: all)")
	f.IntVar(&o.Splits, "splits", 5, "number of dataset fractions")
	f.IntVar(&o.Repeats, "repeats", 5, "runs averaged per measurement")
	f.IntSliceVar(&o.Cores, "cores", nil, "core counts to run (default: powers of two up to the CPU count)")
	f.BoolVar(&o.Sparse, "sparse", false, "assemble CSR matrices in the parallel runs")
	f.IntVar(&o.Limit, "limit", 0, "use only the first N molecules (0 uses all)")

	return cmd
}

func runBench(cmd *cobra.Command, o *benchOptions) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}

	cases, err := benchCases(o.Types)
	if err != nil {
		return err
	}
	smiles, err := readInput(cmd, o.Input)
	if err != nil {
		return err
	}
	if o.Limit > 0 && len(smiles) > o.Limit {
		smiles = smiles[:o.Limit]
	}

	cfg := cliCtx.Config.Benchmark.Harness(runtime.NumCPU())
	f := cmd.Flags()
	if f.Changed("splits") {
		cfg.Splits = o.Splits
	}
	if f.Changed("repeats") {
		cfg.Repeats = o.Repeats
	}
	if f.Changed("cores") {
		cfg.Cores = o.Cores
	}
	if f.Changed("sparse") {
		cfg.Sparse = o.Sparse
	}

	runner, err := benchmark.NewRunner(cfg, benchmark.WithLogger(cliCtx.Logger.Named("bench")))
	if err != nil {
		return err
	}

	ctx, cancel := commandContext(cmd, cliCtx)
	defer cancel()

	report, err := runner.Run(ctx, smiles, cases)
	if err != nil {
		return err
	}
	return PrintResult(cmd, BenchView{Report: report})
}

// benchCases maps type names to cases with default parameters. No names
// selects every type.
func benchCases(names []string) ([]benchmark.Case, error) {
	if len(names) == 0 {
		return nil, nil
	}
	types := make([]fingerprint.Type, 0, len(names))
	for _, n := range names {
		t, err := fingerprint.ParseType(n)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return lo.Map(lo.Uniq(types), func(t fingerprint.Type, _ int) benchmark.Case {
		return benchmark.Case{Name: string(t), Type: t}
	}), nil
}

// BenchView renders a benchmark report. It marshals to JSON as the report.
type BenchView struct {
	*benchmark.Report
}

func (v BenchView) TableHeaders() []string {
	return []string{"CASE", "COUNT", "N_JOBS", "SIZE", "MEAN", "STDDEV", "SPEEDUP"}
}

func (v BenchView) TableRows() [][]string {
	var rows [][]string
	for _, c := range v.Cases {
		count := strconv.FormatBool(c.Count)
		for _, t := range c.Sequential {
			rows = append(rows, []string{c.Name, count, "seq", strconv.Itoa(t.Size),
				fmtDuration(t.Mean), fmtDuration(t.StdDev), "1.00"})
		}
		for _, cores := range v.Cores {
			timings, ok := c.Parallel[cores]
			if !ok {
				continue
			}
			speedup := c.Speedup(cores)
			for i, t := range timings {
				rows = append(rows, []string{c.Name, count, strconv.Itoa(cores), strconv.Itoa(t.Size),
					fmtDuration(t.Mean), fmtDuration(t.StdDev), strconv.FormatFloat(speedup[i], 'f', 2, 64)})
			}
		}
	}
	return rows
}

func (v BenchView) String() string {
	return fmt.Sprintf("benchmark over %d molecules, cores %v\n%s",
		v.Molecules, v.Cores, FormatTable(v.TableHeaders(), v.TableRows()))
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
