package transform

// Span is the half-open index range [Start, End) of one chunk.
type Span struct {
	Start, End int
}

// Len is the number of items in the span.
func (s Span) Len() int { return s.End - s.Start }

// Chunk is a contiguous slice of the input together with its position.
// Index is the chunk's rank in the partition and Offset the global index
// of Items[0].
type Chunk struct {
	Index  int
	Offset int
	Items  []any
}

// Partition splits [0, n) into contiguous spans. With batchSize > 0 every
// span holds batchSize items except possibly the last. Otherwise the range
// is cut into min(workers, n) spans whose sizes differ by at most one.
func Partition(n, workers, batchSize int) []Span {
	if n <= 0 {
		return nil
	}
	if batchSize > 0 {
		spans := make([]Span, 0, (n+batchSize-1)/batchSize)
		for start := 0; start < n; start += batchSize {
			spans = append(spans, Span{Start: start, End: min(start+batchSize, n)})
		}
		return spans
	}
	k := min(max(workers, 1), n)
	size, extra := n/k, n%k
	spans := make([]Span, k)
	start := 0
	for i := range spans {
		end := start + size
		if i < extra {
			end++
		}
		spans[i] = Span{Start: start, End: end}
		start = end
	}
	return spans
}

// Split materialises spans over items. Chunks alias items; nothing is copied.
func Split(items []any, spans []Span) []Chunk {
	chunks := make([]Chunk, len(spans))
	for i, s := range spans {
		chunks[i] = Chunk{Index: i, Offset: s.Start, Items: items[s.Start:s.End]}
	}
	return chunks
}
