package analyzer

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"runtime"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// LSHConfig holds configuration parameters for LSH
type LSHConfig struct {
	NumHashes int      // Number of MinHash functions (default: 128)
	NumBands  int      // Number of bands; must divide NumHashes (default: 32)
	Workers   int      // Build parallelism; <= 0 uses GOMAXPROCS
	Salts     []uint64 // Optional explicit salt sequence of length NumHashes
}

// DefaultLSHConfig returns 128 hash functions split into 32 bands of 4 rows.
func DefaultLSHConfig() LSHConfig {
	return LSHConfig{
		NumHashes: 128,
		NumBands:  32,
	}
}

// Validate checks the structural preconditions for banding.
func (c LSHConfig) Validate() error {
	if c.NumHashes < 1 {
		return fmt.Errorf("%w: num_hashes must be >= 1, got %d", ErrConfiguration, c.NumHashes)
	}
	if c.NumBands < 1 {
		return fmt.Errorf("%w: num_bands must be >= 1, got %d", ErrConfiguration, c.NumBands)
	}
	if c.NumHashes%c.NumBands != 0 {
		return fmt.Errorf("%w: num_bands (%d) must evenly divide num_hashes (%d)",
			ErrConfiguration, c.NumBands, c.NumHashes)
	}
	if c.Salts != nil && len(c.Salts) != c.NumHashes {
		return fmt.Errorf("%w: got %d salts for %d hash functions", ErrConfiguration, len(c.Salts), c.NumHashes)
	}
	return nil
}

// RowsPerBand returns NumHashes / NumBands.
func (c LSHConfig) RowsPerBand() int {
	if c.NumBands == 0 {
		return 0
	}
	return c.NumHashes / c.NumBands
}

// bandTable maps a band key to the ascending indices of the documents sharing it.
type bandTable map[string][]uint32

// IndexBuilder turns a fixed corpus into an immutable LSHIndex.
type IndexBuilder struct {
	config  LSHConfig
	hasher  *MinHasher
	workers int
}

// NewIndexBuilder validates config and prepares a builder.
func NewIndexBuilder(config LSHConfig) (*IndexBuilder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var opts []MinHasherOption
	if config.Salts != nil {
		opts = append(opts, WithSalts(config.Salts))
	}
	hasher, err := NewMinHasher(config.NumHashes, opts...)
	if err != nil {
		return nil, err
	}

	workers := config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &IndexBuilder{config: config, hasher: hasher, workers: workers}, nil
}

// Hasher returns the MinHasher used for signatures.
func (b *IndexBuilder) Hasher() *MinHasher { return b.hasher }

// Build computes signatures for docs, buckets them band by band and derives the
// candidate sets. It either returns a complete index or an error; a document
// without shingles fails the whole build with ErrEmptyDocument.
func (b *IndexBuilder) Build(ctx context.Context, docs []Document) (*LSHIndex, error) {
	if err := checkCorpusSize(len(docs)); err != nil {
		return nil, err
	}

	signatures := make([]Signature, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sig, err := b.hasher.ComputeSignature(docs[i])
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			signatures[i] = sig
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return b.assemble(ctx, docs, signatures, nil)
}

// BuildFromSignatures builds an index from precomputed signatures, which must
// have been produced with this builder's hash configuration.
func (b *IndexBuilder) BuildFromSignatures(ctx context.Context, docs []Document, signatures []Signature) (*LSHIndex, error) {
	if err := checkCorpusSize(len(docs)); err != nil {
		return nil, err
	}
	if len(signatures) != len(docs) {
		return nil, fmt.Errorf("%w: %d signatures for %d documents", ErrSignatureMismatch, len(signatures), len(docs))
	}
	for i, sig := range signatures {
		if sig.Len() != b.config.NumHashes {
			return nil, fmt.Errorf("%w: signature %d has %d hashes, want %d",
				ErrSignatureMismatch, i, sig.Len(), b.config.NumHashes)
		}
	}
	return b.assemble(ctx, docs, signatures, nil)
}

// assemble runs the banding and candidate extraction phases and freezes the result.
// Non-nil candidates are adopted as-is instead of being extracted from the buckets.
func (b *IndexBuilder) assemble(ctx context.Context, docs []Document, signatures []Signature, candidates []*roaring.Bitmap) (*LSHIndex, error) {
	idx := &LSHIndex{
		numHashes:  b.config.NumHashes,
		numBands:   b.config.NumBands,
		rows:       b.config.RowsPerBand(),
		salts:      b.hasher.Salts(),
		docs:       docs,
		sets:       make([]Set[Shingle], len(docs)),
		signatures: signatures,
		bands:      make([]bandTable, b.config.NumBands),
		candidates: candidates,
	}
	extract := candidates == nil
	if extract {
		idx.candidates = make([]*roaring.Bitmap, len(docs))
	}

	// Each band table has exactly one writer
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for band := range idx.bands {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			table := make(bandTable)
			for doc, sig := range signatures {
				key := idx.bandKey(sig, band)
				table[key] = append(table[key], uint32(doc))
			}
			idx.bands[band] = table
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Each candidate set has exactly one writer: the goroutine for its document
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if extract {
				idx.candidates[doc] = idx.collectCandidates(doc)
			}
			idx.sets[doc] = docs[doc].ShingleSet()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	idx.built = true
	return idx, nil
}

// LSHIndex is a frozen MinHash/LSH index over a fixed corpus. It is created by
// IndexBuilder and is safe for concurrent reads.
type LSHIndex struct {
	numHashes int
	numBands  int
	rows      int
	salts     []uint64

	docs       []Document
	sets       []Set[Shingle]
	signatures []Signature
	bands      []bandTable
	candidates []*roaring.Bitmap

	built bool
}

// collectCandidates unions every multi-member bucket doc belongs to, minus doc itself.
func (idx *LSHIndex) collectCandidates(doc int) *roaring.Bitmap {
	bm := roaring.New()
	sig := idx.signatures[doc]
	for band, table := range idx.bands {
		members := table[idx.bandKey(sig, band)]
		if len(members) >= 2 {
			bm.AddMany(members)
		}
	}
	bm.Remove(uint32(doc))
	bm.RunOptimize()
	return bm
}

// bandKey encodes the rows of sig that fall in band as a comparable key.
func (idx *LSHIndex) bandKey(sig Signature, band int) string {
	start := band * idx.rows
	buf := make([]byte, 0, idx.rows*8)
	for _, v := range sig[start : start+idx.rows] {
		buf = binary.BigEndian.AppendUint64(buf, v)
	}
	return string(buf)
}

// Size returns the number of documents in the index.
func (idx *LSHIndex) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.docs)
}

// Config returns the hash configuration the index was built with.
func (idx *LSHIndex) Config() LSHConfig {
	return LSHConfig{
		NumHashes: idx.numHashes,
		NumBands:  idx.numBands,
		Salts:     append([]uint64(nil), idx.salts...),
	}
}

// Signature returns the signature of document docIdx.
func (idx *LSHIndex) Signature(docIdx int) (Signature, error) {
	if err := idx.checkDoc(docIdx); err != nil {
		return nil, err
	}
	return append(Signature(nil), idx.signatures[docIdx]...), nil
}

// Candidates returns the candidate set of document docIdx in ascending order.
func (idx *LSHIndex) Candidates(docIdx int) ([]int, error) {
	if err := idx.checkDoc(docIdx); err != nil {
		return nil, err
	}
	out := make([]int, 0, idx.candidates[docIdx].GetCardinality())
	it := idx.candidates[docIdx].Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out, nil
}

// checkDoc verifies the index is built and docIdx is within the corpus.
func (idx *LSHIndex) checkDoc(docIdx int) error {
	if idx == nil || !idx.built {
		return ErrNotBuilt
	}
	if docIdx < 0 || docIdx >= len(idx.docs) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, docIdx, len(idx.docs))
	}
	return nil
}

func checkCorpusSize(n int) error {
	if uint64(n) > math.MaxUint32 {
		return fmt.Errorf("%w: corpus of %d documents exceeds %d", ErrConfiguration, n, uint64(math.MaxUint32))
	}
	return nil
}
