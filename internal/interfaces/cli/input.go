package cli

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/turtacn/molprint/pkg/errors"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 16 << 20

// ReadSMILES reads one molecule per line. Blank lines and lines starting with
// '#' are skipped. Only the first whitespace-separated column is kept, so
// "SMILES name" files are accepted as is.
func ReadSMILES(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var out []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if i := strings.IndexAny(line, " \t"); i >= 0 {
			line = line[:i]
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "failed to read input")
	}
	return out, nil
}

// readInput reads SMILES from path, or from the command's stdin for "-".
func readInput(cmd *cobra.Command, path string) (smiles []string, err error) {
	if path == "" || path == "-" {
		return ReadSMILES(cmd.InOrStdin())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidParam, "cannot open input").WithDetail(path)
	}
	defer multierr.AppendInvoke(&err, multierr.Close(f))
	return ReadSMILES(f)
}
