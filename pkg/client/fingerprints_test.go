package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/molprint/internal/config"
	httpapi "github.com/turtacn/molprint/internal/interfaces/http"
	"github.com/turtacn/molprint/internal/interfaces/http/handlers"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/types/common"
	fptypes "github.com/turtacn/molprint/pkg/types/fingerprint"
)

type failingChecker struct{}

func (failingChecker) Name() string                  { return "redis" }
func (failingChecker) Check(_ context.Context) error { return errors.New(errors.CodeCacheError, "dial tcp: refused") }

func newAPIClient(t *testing.T, checkers ...handlers.HealthChecker) *Client {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		FingerprintHandler: handlers.NewFingerprintHandler(
			config.TransformConfig{OnParseError: "raise", MaxItems: 100}, nil),
		HealthHandler: handlers.NewHealthHandler("test", checkers...),
		MaxBodySize:   1 << 20,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL, WithRetryMax(0))
	require.NoError(t, err)
	return c
}

func TestFingerprints_ComputeDenseAndSparse(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()
	smiles := []string{"CCO", "c1ccccc1", "CC(=O)O"}

	dense, err := c.Fingerprints().Compute(ctx, &fptypes.TransformRequest{
		Type:   "morgan",
		Params: map[string]interface{}{"fp_size": 256},
		SMILES: smiles,
	})
	require.NoError(t, err)
	assert.Equal(t, [2]int{3, 256}, dense.Shape)
	assert.Nil(t, dense.CSR)

	sparse := true
	jobs := 2
	csr, err := c.Fingerprints().Compute(ctx, &fptypes.TransformRequest{
		Type:   "morgan",
		Params: map[string]interface{}{"fp_size": 256},
		SMILES: smiles,
		Sparse: &sparse,
		NJobs:  &jobs,
	})
	require.NoError(t, err)
	require.NotNil(t, csr.CSR)
	assert.Equal(t, dense.NNZ, csr.NNZ)
	assert.Equal(t, Rows(dense), Rows(csr), "both layouts carry the same matrix")
}

func TestFingerprints_ComputeErrors(t *testing.T) {
	c := newAPIClient(t)
	ctx := context.Background()

	_, err := c.Fingerprints().Compute(ctx, &fptypes.TransformRequest{Type: "maccs", SMILES: []string{"CCO", "C1CC("}})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsInvalidInput())
	assert.Equal(t, errors.CodeMoleculeParse, errors.GetCode(err))
	assert.Equal(t, float64(1), apiErr.Details["index"])

	_, err = c.Fingerprints().Compute(ctx, &fptypes.TransformRequest{Type: "nope", SMILES: []string{"C"}})
	assert.True(t, errors.IsCode(err, errors.CodeFingerprintTypeUnsupported))
}

func TestFingerprints_Types(t *testing.T) {
	c := newAPIClient(t)
	types, err := c.Fingerprints().Types(context.Background())
	require.NoError(t, err)
	names := make([]string, len(types))
	for i, ts := range types {
		names[i] = ts.Type
	}
	assert.ElementsMatch(t, []string{"morgan", "maccs", "layered", "atom_pair"}, names)
}

func TestClient_HealthAndReady(t *testing.T) {
	c := newAPIClient(t)
	report, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HealthUp, report.Status)

	report, err = c.Ready(context.Background())
	require.NoError(t, err)
	assert.Equal(t, common.HealthUp, report.Status)
}

func TestClient_ReadyDegraded(t *testing.T) {
	c := newAPIClient(t, failingChecker{})
	report, err := c.Ready(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
	require.NotNil(t, report)
	assert.Equal(t, common.HealthDown, report.Status)
	assert.Equal(t, common.HealthDown, report.Components["redis"].Status)
}

func TestRows_CSR(t *testing.T) {
	resp := &fptypes.TransformResponse{
		Shape: [2]int{2, 4},
		CSR:   &fptypes.CSR{Indptr: []int{0, 1, 3}, Indices: []int{2, 0, 3}, Data: []uint32{1, 5, 7}},
	}
	assert.Equal(t, [][]uint32{{0, 0, 1, 0}, {5, 0, 0, 7}}, Rows(resp))
}
