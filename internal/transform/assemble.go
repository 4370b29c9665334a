package transform

import (
	"context"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/pkg/errors"
	"github.com/turtacn/molprint/pkg/matrix"
)

// block is the output of one chunk: a dense or CSR slab plus the global
// indices of rows replaced by sentinel zero rows.
type block[B any] struct {
	rows    B
	skipped []uint32
}

// call holds the read-only state of one Transform call shared by workers.
type call struct {
	t        *Transformer
	opts     Options
	runID    string
	progress *progress
}

// fillChunk normalises and computes every item of c, handing converted rows
// to put and sentinel rows to zero. It returns the skipped global indices.
func fillChunk[T matrix.Element](ctx context.Context, k *call, c Chunk, put func(i int, row []T), zero func(i int)) ([]uint32, error) {
	size := k.t.variant.Size()
	fpType := string(k.t.variant.Type())
	scratch := make([]T, size)
	var skipped []uint32

	for i, item := range c.Items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		idx := c.Offset + i

		mol, err := molecule.EnsureMol(idx, item)
		if err != nil {
			if k.opts.parsePolicy() != OnParseErrorSkip {
				return nil, err
			}
			if !k.opts.SuppressWarnings {
				k.t.logger.Warn("skipping unparsable molecule", logging.RunID(k.runID), logging.Int("index", idx), logging.Err(err))
			}
			skipped = append(skipped, uint32(idx))
			zero(i)
			k.progress.add()
			continue
		}
		if !k.opts.SuppressWarnings {
			for _, w := range mol.Warnings() {
				k.t.logger.Warn("molecule warning", logging.RunID(k.runID), logging.Int("index", idx), logging.String("warning", w))
			}
		}

		vec, err := k.t.cachedCompute(ctx, mol)
		if err != nil {
			return nil, &errors.FingerprintComputationError{Index: idx, Fingerprint: fpType, Cause: err}
		}
		if len(vec) != size {
			return nil, &errors.FingerprintComputationError{
				Index:       idx,
				Fingerprint: fpType,
				Cause:       fmt.Errorf("routine returned %d elements, want %d", len(vec), size),
			}
		}
		for j, v := range vec {
			e, ok := matrix.Convert[T](v)
			if !ok {
				return nil, &errors.FingerprintComputationError{
					Index:       idx,
					Fingerprint: fpType,
					Cause:       fmt.Errorf("value %d at column %d overflows %s", v, j, matrix.DTypeOf[T]()),
				}
			}
			scratch[j] = e
		}
		put(i, scratch)
		k.progress.add()
	}
	return skipped, nil
}

// assemble dispatches chunks and stacks their blocks in chunk order.
func assemble[T matrix.Element](ctx context.Context, k *call, chunks []Chunk, workers int) (matrix.Matrix, *roaring.Bitmap, error) {
	size := k.t.variant.Size()
	skipped := roaring.New()

	if k.opts.Sparse {
		blocks, err := Dispatch[block[*matrix.CSR[T]]](ctx, chunks, workers, func(ctx context.Context, c Chunk) (block[*matrix.CSR[T]], error) {
			csr := matrix.NewCSR[T](size)
			sk, err := fillChunk[T](ctx, k, c,
				func(_ int, row []T) { csr.AppendRow(row) },
				func(int) { csr.AppendZeroRow() })
			return block[*matrix.CSR[T]]{rows: csr, skipped: sk}, err
		}, OnWorkerStart(k.t.workerStarted))
		if err != nil {
			return nil, nil, err
		}
		slabs := make([]*matrix.CSR[T], len(blocks))
		for i, b := range blocks {
			slabs[i] = b.rows
			skipped.AddMany(b.skipped)
		}
		return matrix.VStackCSR(size, slabs), skipped, nil
	}

	blocks, err := Dispatch[block[*matrix.Dense[T]]](ctx, chunks, workers, func(ctx context.Context, c Chunk) (block[*matrix.Dense[T]], error) {
		dense := matrix.NewDense[T](len(c.Items), size)
		sk, err := fillChunk[T](ctx, k, c,
			func(i int, row []T) { copy(dense.Row(i), row) },
			func(int) {})
		return block[*matrix.Dense[T]]{rows: dense, skipped: sk}, err
	}, OnWorkerStart(k.t.workerStarted))
	if err != nil {
		return nil, nil, err
	}
	slabs := make([]*matrix.Dense[T], len(blocks))
	for i, b := range blocks {
		slabs[i] = b.rows
		skipped.AddMany(b.skipped)
	}
	return matrix.VStackDense(size, slabs), skipped, nil
}
