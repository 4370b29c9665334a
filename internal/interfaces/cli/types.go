package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
)

// TypeInfo describes one fingerprint type and its parameters.
type TypeInfo struct {
	Type   string   `json:"type"`
	Params []string `json:"params"`
}

// TypeList is the output of the types command.
type TypeList []TypeInfo

// NewTypesCmd creates the types command.
func NewTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List fingerprint types and their parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := ListTypes()
			if err != nil {
				return err
			}
			return PrintResult(cmd, list)
		},
	}
}

// ListTypes describes every supported fingerprint type.
func ListTypes() (TypeList, error) {
	types := fingerprint.Types()
	out := make(TypeList, 0, len(types))
	for _, t := range types {
		s, err := fingerprint.SchemaFor(t)
		if err != nil {
			return nil, err
		}
		out = append(out, TypeInfo{Type: string(t), Params: s.Describe()})
	}
	return out, nil
}

func (l TypeList) TableHeaders() []string { return []string{"TYPE", "PARAMETER"} }

func (l TypeList) TableRows() [][]string {
	var rows [][]string
	for _, ti := range l {
		for i, p := range ti.Params {
			name := ""
			if i == 0 {
				name = ti.Type
			}
			rows = append(rows, []string{name, p})
		}
	}
	return rows
}

func (l TypeList) String() string {
	var sb strings.Builder
	for _, ti := range l {
		sb.WriteString(ti.Type)
		sb.WriteString("\n")
		for _, p := range ti.Params {
			sb.WriteString("  ")
			sb.WriteString(p)
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
