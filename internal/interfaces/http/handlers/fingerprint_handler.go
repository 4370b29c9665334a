package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/atomic"

	"github.com/turtacn/molprint/internal/config"
	"github.com/turtacn/molprint/internal/domain/fingerprint"
	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/internal/infrastructure/storage/minio"
	"github.com/turtacn/molprint/internal/transform"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
	fptypes "github.com/turtacn/molprint/pkg/types/fingerprint"
)

// artifactName is the object name of uploaded matrices under the run prefix.
const artifactName = "fingerprints.npy"

// ArtifactUploader stores computed matrices. *minio.ArtifactStore
// implements it.
type ArtifactUploader interface {
	PutMatrix(ctx context.Context, runID, name string, m matrix.Matrix, extra map[string]string) (*minio.Artifact, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// FingerprintHandler serves the /api/v1/fingerprints endpoints.
type FingerprintHandler struct {
	defaults  *atomic.Pointer[config.TransformConfig]
	cache     transform.RowCache
	metrics   transform.Metrics
	artifacts ArtifactUploader
	logger    logging.Logger
}

// FingerprintOption configures a FingerprintHandler.
type FingerprintOption func(*FingerprintHandler)

// WithRowCache shares a row cache between requests.
func WithRowCache(c transform.RowCache) FingerprintOption {
	return func(h *FingerprintHandler) { h.cache = c }
}

// WithTransformMetrics records every transform on m.
func WithTransformMetrics(m transform.Metrics) FingerprintOption {
	return func(h *FingerprintHandler) { h.metrics = m }
}

// WithArtifacts enables the upload flag of compute requests.
func WithArtifacts(a ArtifactUploader) FingerprintOption {
	return func(h *FingerprintHandler) { h.artifacts = a }
}

// NewFingerprintHandler creates a handler whose requests fall back to
// defaults for every option they leave unset.
func NewFingerprintHandler(defaults config.TransformConfig, logger logging.Logger, opts ...FingerprintOption) *FingerprintHandler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	h := &FingerprintHandler{
		defaults: atomic.NewPointer(&defaults),
		logger:   logger,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// SetDefaults swaps the transform defaults. Requests already running keep
// the defaults they started with.
func (h *FingerprintHandler) SetDefaults(d config.TransformConfig) {
	h.defaults.Store(&d)
	h.logger.Info("transform defaults updated",
		logging.Int("n_jobs", d.NJobs),
		logging.Int("batch_size", d.BatchSize),
		logging.Int("max_items", d.MaxItems))
}

// Defaults returns the current transform defaults.
func (h *FingerprintHandler) Defaults() config.TransformConfig {
	return *h.defaults.Load()
}

// Compute handles POST /api/v1/fingerprints.
func (h *FingerprintHandler) Compute(c *gin.Context) {
	var req fptypes.TransformRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, h.logger, bindError(err))
		return
	}

	defaults := h.Defaults()
	if defaults.MaxItems > 0 && len(req.SMILES) > defaults.MaxItems {
		respondError(c, h.logger, errors.Newf(errors.ErrCodePayloadTooLarge,
			"request carries %d molecules, the limit is %d", len(req.SMILES), defaults.MaxItems))
		return
	}
	if req.Upload && h.artifacts == nil {
		respondError(c, h.logger, errors.InvalidParam("upload requested but artifact storage is not configured"))
		return
	}

	fpType, err := fingerprint.ParseType(req.Type)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	options := []transform.Option{transform.WithLogger(h.logger), transform.WithCache(h.cache)}
	if h.metrics != nil {
		options = append(options, transform.WithMetrics(h.metrics))
	}
	tr, err := transform.New(fpType, fingerprint.Params(req.Params), requestOptions(defaults, &req), options...)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx := c.Request.Context()
	res, err := tr.Transform(ctx, molecule.FromStrings(req.SMILES))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	resp := newTransformResponse(fpType, res)
	if req.Upload {
		art, err := h.upload(ctx, fpType, res)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		resp.Artifact = art
	}
	respondOK(c, resp)
}

func (h *FingerprintHandler) upload(ctx context.Context, fpType fingerprint.Type, res *transform.Result) (*fptypes.Artifact, error) {
	art, err := h.artifacts.PutMatrix(ctx, res.RunID, artifactName, res.Matrix,
		map[string]string{"fingerprint": string(fpType)})
	if err != nil {
		return nil, err
	}
	out := &fptypes.Artifact{Bucket: art.Bucket, Key: art.Key, Size: art.Size}
	// A missing link is not fatal: the object is stored and addressable.
	if url, err := h.artifacts.PresignedURL(ctx, art.Key, 0); err != nil {
		h.logger.Warn("presign failed", logging.String("key", art.Key), logging.Err(err))
	} else {
		out.URL = url
	}
	return out, nil
}

// Types handles GET /api/v1/fingerprints/types.
func (h *FingerprintHandler) Types(c *gin.Context) {
	resp := fptypes.TypesResponse{}
	for _, t := range fingerprint.Types() {
		schema, err := fingerprint.SchemaFor(t)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		resp.Types = append(resp.Types, fptypes.TypeSchema{
			Type:     string(t),
			Params:   schema.Describe(),
			Defaults: schema.Defaults,
		})
	}
	respondOK(c, resp)
}

// requestOptions overlays the fields a request sets on the defaults.
func requestOptions(d config.TransformConfig, req *fptypes.TransformRequest) transform.Options {
	opts := d.Options()
	// Progress ticks are for terminals.
	opts.Verbose = 0
	if req.NJobs != nil {
		opts.NJobs = transform.Jobs(*req.NJobs)
	}
	if req.BatchSize != nil {
		opts.BatchSize = *req.BatchSize
	}
	if req.Sparse != nil {
		opts.Sparse = *req.Sparse
	}
	if req.OnParseError != "" {
		opts.OnParseError = req.OnParseError
	}
	return opts
}

// ─────────────────────────────────────────────────────────────────────────────
// Response assembly
// ─────────────────────────────────────────────────────────────────────────────

func newTransformResponse(fpType fingerprint.Type, res *transform.Result) fptypes.TransformResponse {
	m := res.Matrix
	resp := fptypes.TransformResponse{
		RunID:     res.RunID,
		Type:      string(fpType),
		Shape:     [2]int{m.Rows(), m.Cols()},
		DType:     m.DType().String(),
		NNZ:       m.NNZ(),
		Skipped:   []uint32{},
		ElapsedMS: float64(res.Elapsed.Microseconds()) / 1e3,
	}
	if res.Skipped != nil && !res.Skipped.IsEmpty() {
		resp.Skipped = res.Skipped.ToArray()
	}

	switch sm := m.(type) {
	case *matrix.CSR[uint8]:
		resp.CSR = csrBody(sm)
	case *matrix.CSR[uint16]:
		resp.CSR = csrBody(sm)
	case *matrix.CSR[uint32]:
		resp.CSR = csrBody(sm)
	default:
		resp.Dense = make([][]uint32, m.Rows())
		for i := range resp.Dense {
			resp.Dense[i] = matrix.RowValues(m, i)
		}
	}
	return resp
}

func csrBody[T matrix.Element](m *matrix.CSR[T]) *fptypes.CSR {
	data := make([]uint32, len(m.Data))
	for i, v := range m.Data {
		data[i] = uint32(v)
	}
	return &fptypes.CSR{Indptr: m.Indptr, Indices: m.Indices, Data: data}
}
