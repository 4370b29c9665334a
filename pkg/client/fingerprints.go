package client

import (
	"context"

	fptypes "github.com/turtacn/molprint/pkg/types/fingerprint"
)

// FingerprintsClient calls the /api/v1/fingerprints endpoints.
type FingerprintsClient struct {
	client *Client
}

// Compute asks the server for one fingerprint matrix.
func (f *FingerprintsClient) Compute(ctx context.Context, req *fptypes.TransformRequest) (*fptypes.TransformResponse, error) {
	var resp fptypes.TransformResponse
	if err := f.client.post(ctx, "/api/v1/fingerprints", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Types lists the fingerprint types the server supports.
func (f *FingerprintsClient) Types(ctx context.Context) ([]fptypes.TypeSchema, error) {
	var resp fptypes.TypesResponse
	if err := f.client.get(ctx, "/api/v1/fingerprints/types", &resp); err != nil {
		return nil, err
	}
	return resp.Types, nil
}

// Rows expands a response into dense rows whichever layout the server chose.
func Rows(resp *fptypes.TransformResponse) [][]uint32 {
	if resp.CSR == nil {
		return resp.Dense
	}
	rows := make([][]uint32, resp.Shape[0])
	for i := range rows {
		row := make([]uint32, resp.Shape[1])
		for k := resp.CSR.Indptr[i]; k < resp.CSR.Indptr[i+1]; k++ {
			row[resp.CSR.Indices[k]] = resp.CSR.Data[k]
		}
		rows[i] = row
	}
	return rows
}
