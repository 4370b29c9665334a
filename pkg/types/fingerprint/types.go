// Package fingerprint holds the request and response bodies of the
// /api/v1/fingerprints endpoints.
package fingerprint

// TransformRequest asks for one fingerprint matrix. Unset options fall back
// to the server's transform defaults.
type TransformRequest struct {
	Type         string                 `json:"type" binding:"required"`
	Params       map[string]interface{} `json:"params,omitempty"`
	SMILES       []string               `json:"smiles" binding:"required"`
	Sparse       *bool                  `json:"sparse,omitempty"`
	NJobs        *int                   `json:"n_jobs,omitempty"`
	BatchSize    *int                   `json:"batch_size,omitempty" binding:"omitempty,gte=0"`
	OnParseError string                 `json:"on_parse_error,omitempty" binding:"omitempty,oneof=raise skip"`
	// Upload stores the matrix as .npy in the artifact bucket.
	Upload bool `json:"upload,omitempty"`
}

// CSR is a compressed sparse row matrix body.
type CSR struct {
	Indptr  []int    `json:"indptr"`
	Indices []int    `json:"indices"`
	Data    []uint32 `json:"data"`
}

// Artifact locates an uploaded matrix.
type Artifact struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
	URL    string `json:"url,omitempty"`
}

// TransformResponse carries the matrix in exactly one of Dense or CSR.
type TransformResponse struct {
	RunID     string     `json:"run_id"`
	Type      string     `json:"type"`
	Shape     [2]int     `json:"shape"`
	DType     string     `json:"dtype"`
	NNZ       int        `json:"nnz"`
	Skipped   []uint32   `json:"skipped"`
	Dense     [][]uint32 `json:"dense,omitempty"`
	CSR       *CSR       `json:"csr,omitempty"`
	ElapsedMS float64    `json:"elapsed_ms"`
	Artifact  *Artifact  `json:"artifact,omitempty"`
}

// TypeSchema describes one fingerprint type.
type TypeSchema struct {
	Type     string                 `json:"type"`
	Params   []string               `json:"params"`
	Defaults map[string]interface{} `json:"defaults"`
}

// TypesResponse lists every fingerprint type.
type TypesResponse struct {
	Types []TypeSchema `json:"types"`
}
