package transform

import (
	"context"

	"github.com/turtacn/molprint/internal/domain/molecule"
	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
)

// RowCache stores computed fingerprint rows by key. Implementations must be
// safe for concurrent use. A miss is (nil, false, nil).
type RowCache interface {
	Get(ctx context.Context, key string) ([]uint32, bool, error)
	Set(ctx context.Context, key string, row []uint32) error
}

// cachedCompute wraps compute with a read-through cache. Cache failures are
// logged and never fail the item.
func (t *Transformer) cachedCompute(ctx context.Context, m *molecule.Mol) ([]uint32, error) {
	if t.cache == nil || m.Source() == "" {
		return t.computeRow(m)
	}
	fpType := string(t.variant.Type())
	key := t.variant.CacheKey() + "|" + m.Source()

	row, ok, err := t.cache.Get(ctx, key)
	if err != nil {
		t.logger.Debug("row cache get failed", logging.String("type", fpType), logging.Err(err))
	}
	if ok && len(row) == t.variant.Size() {
		t.metrics.CacheHit(fpType)
		return row, nil
	}
	t.metrics.CacheMiss(fpType)

	row, err = t.computeRow(m)
	if err != nil {
		return nil, err
	}
	if err := t.cache.Set(ctx, key, row); err != nil {
		t.logger.Debug("row cache set failed", logging.String("type", fpType), logging.Err(err))
	}
	return row, nil
}
