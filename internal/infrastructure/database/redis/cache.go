package redis

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/molprint/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/molprint/pkg/errors"
)

// rowFormat versions the encoded row layout.
const rowFormat byte = 1

// RowCache stores fingerprint rows under "<prefix><key>". Rows are stored
// sparsely: format byte, uvarint width, uvarint nnz, then (delta index,
// value) uvarint pairs.
type RowCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
	jitter float64
}

// CacheOption configures a RowCache.
type CacheOption func(*RowCache)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) CacheOption {
	return func(c *RowCache) { c.prefix = prefix }
}

// WithTTL sets the entry TTL. Zero means no expiry.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *RowCache) { c.ttl = ttl }
}

// WithJitter spreads expiries by ±fraction of the TTL. Zero disables it.
func WithJitter(fraction float64) CacheOption {
	return func(c *RowCache) { c.jitter = fraction }
}

// NewRowCache returns a cache over client.
func NewRowCache(client *Client, log logging.Logger, opts ...CacheOption) *RowCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &RowCache{
		client: client,
		logger: log,
		prefix: "molprint:fp:",
		ttl:    24 * time.Hour,
		jitter: 0.1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RowCache) fullKey(key string) string {
	return c.prefix + key
}

func (c *RowCache) expiry() time.Duration {
	if c.ttl <= 0 || c.jitter <= 0 {
		return max(c.ttl, 0)
	}
	j := float64(c.ttl) * c.jitter * (rand.Float64()*2 - 1)
	return c.ttl + time.Duration(j)
}

// Get returns the cached row. A missing key is (nil, false, nil); a corrupt
// entry is reported as an error and treated as a miss by callers.
func (c *RowCache) Get(ctx context.Context, key string) ([]uint32, bool, error) {
	if c.client.isClosed() {
		return nil, false, ErrClientClosed
	}
	data, err := c.client.rdb.Get(ctx, c.fullKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "failed to get row from cache")
	}
	row, err := DecodeRow(data)
	if err != nil {
		return nil, false, err
	}
	return row, true, nil
}

// Set stores row with the configured TTL.
func (c *RowCache) Set(ctx context.Context, key string, row []uint32) error {
	if c.client.isClosed() {
		return ErrClientClosed
	}
	if err := c.client.rdb.Set(ctx, c.fullKey(key), EncodeRow(row), c.expiry()).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to set row in cache")
	}
	return nil
}

// Delete removes keys.
func (c *RowCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.fullKey(k)
	}
	if err := c.client.rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "failed to delete rows")
	}
	return nil
}

// Ping checks the backing connection.
func (c *RowCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx)
}

// EncodeRow serialises a row, storing only non-zero elements.
func EncodeRow(row []uint32) []byte {
	nnz := 0
	for _, v := range row {
		if v != 0 {
			nnz++
		}
	}
	buf := make([]byte, 0, 1+2*binary.MaxVarintLen32+nnz*2*binary.MaxVarintLen32)
	buf = append(buf, rowFormat)
	buf = binary.AppendUvarint(buf, uint64(len(row)))
	buf = binary.AppendUvarint(buf, uint64(nnz))
	prev := 0
	for j, v := range row {
		if v == 0 {
			continue
		}
		buf = binary.AppendUvarint(buf, uint64(j-prev))
		buf = binary.AppendUvarint(buf, uint64(v))
		prev = j
	}
	return buf
}

// DecodeRow reverses EncodeRow.
func DecodeRow(data []byte) ([]uint32, error) {
	corrupt := func(why string) error {
		return errors.New(errors.ErrCodeSerialization, "corrupt cached row").WithDetail(why)
	}
	if len(data) == 0 || data[0] != rowFormat {
		return nil, corrupt("unknown format")
	}
	pos := 1
	next := func() (uint64, bool) {
		v, n := binary.Uvarint(data[pos:])
		if n <= 0 {
			return 0, false
		}
		pos += n
		return v, true
	}
	width, ok := next()
	if !ok || width > 1<<24 {
		return nil, corrupt("bad width")
	}
	nnz, ok := next()
	if !ok || nnz > width {
		return nil, corrupt("bad nnz")
	}
	row := make([]uint32, width)
	j := uint64(0)
	for k := uint64(0); k < nnz; k++ {
		delta, ok1 := next()
		v, ok2 := next()
		if !ok1 || !ok2 || v > uint64(^uint32(0)) {
			return nil, corrupt(fmt.Sprintf("bad entry %d", k))
		}
		j += delta
		if j >= width || (k > 0 && delta == 0) {
			return nil, corrupt(fmt.Sprintf("index %d out of order", j))
		}
		row[j] = uint32(v)
	}
	if pos != len(data) {
		return nil, corrupt("trailing bytes")
	}
	return row, nil
}
