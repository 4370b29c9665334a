// Package benchmark compares the batched parallel transformer against a naive
// one-molecule-at-a-time loop over growing prefixes of a dataset.
package benchmark

import (
	"errors"
	"fmt"
	"math/bits"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	"github.com/turtacn/molprint/internal/domain/fingerprint"
	apperrors "github.com/turtacn/molprint/pkg/errors"
)

// Config controls one benchmark run.
type Config struct {
	// Splits is the number of dataset fractions: 1/Splits, 2/Splits ... 1.
	Splits int `mapstructure:"splits" validate:"gte=1"`
	// Repeats is the number of timed runs averaged per point.
	Repeats int `mapstructure:"repeats" validate:"gte=1"`
	// Cores are the n_jobs values tried for the parallel transformer.
	Cores []int `mapstructure:"cores" validate:"required,dive,gte=1"`
	// CountModes lists the count settings tried for variants that have one.
	CountModes []bool `mapstructure:"count_modes" validate:"required"`
	// Sparse selects CSR output for the parallel transformer.
	Sparse bool `mapstructure:"sparse"`
}

// DefaultCores returns the powers of two not above cpu, plus cpu itself when
// it is not a power of two.
func DefaultCores(cpu int) []int {
	if cpu < 1 {
		cpu = 1
	}
	n := bits.Len(uint(cpu))
	cores := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		cores = append(cores, 1<<i)
	}
	if cores[len(cores)-1] != cpu {
		cores = append(cores, cpu)
	}
	return cores
}

// DefaultConfig mirrors the reference benchmark: five splits, five repeats,
// both count modes and dense output.
func DefaultConfig(cpu int) Config {
	return Config{
		Splits:     5,
		Repeats:    5,
		Cores:      DefaultCores(cpu),
		CountModes: []bool{false, true},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate returns a *errors.ConfigurationError naming the first bad field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperrors.Wrap(err, apperrors.CodeConfiguration, "invalid benchmark config")
	}
	fe := verrs[0]
	constraint := fe.Tag()
	if fe.Param() != "" {
		constraint = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
	}
	return apperrors.NewConfigurationError("benchmark", fe.Field(), constraint, fe.Value())
}

// normalized returns a copy with sorted unique cores.
func (c Config) normalized() Config {
	c.Cores = lo.Uniq(c.Cores)
	sort.Ints(c.Cores)
	c.CountModes = lo.Uniq(c.CountModes)
	return c
}

// Case is one fingerprint configuration to benchmark.
type Case struct {
	Name   string
	Type   fingerprint.Type
	Params fingerprint.Params
}

// hasCount reports whether the case's schema exposes a count parameter.
func (c Case) hasCount() bool {
	s, err := fingerprint.SchemaFor(c.Type)
	if err != nil {
		return false
	}
	_, ok := s.Fields["count"]
	return ok
}

// DefaultCases benchmarks every fingerprint type with default parameters.
func DefaultCases() []Case {
	return lo.Map(fingerprint.Types(), func(t fingerprint.Type, _ int) Case {
		return Case{Name: string(t), Type: t}
	})
}
