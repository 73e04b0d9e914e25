package analyzer

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Signature is a MinHash signature: one minimum hash value per hash function.
type Signature []uint64

// Len returns the number of hash functions in the signature.
func (s Signature) Len() int {
	return len(s)
}

// MinHasherOption configures a MinHasher.
type MinHasherOption func(*MinHasher) error

// WithSalts sets an explicit salt sequence. Its length must equal the hash count.
func WithSalts(salts []uint64) MinHasherOption {
	return func(m *MinHasher) error {
		if len(salts) != m.numHashes {
			return fmt.Errorf("%w: got %d salts for %d hash functions", ErrConfiguration, len(salts), m.numHashes)
		}
		m.salts = append([]uint64(nil), salts...)
		return nil
	}
}

// WithSeededSalts derives the salt sequence from seed using splitmix64, giving an
// independent family of hash functions per seed.
func WithSeededSalts(seed uint64) MinHasherOption {
	return func(m *MinHasher) error {
		m.salts = SeededSalts(seed, m.numHashes)
		return nil
	}
}

// MinHasher computes MinHash signatures for documents.
//
// The i-th hash function is xxHash64 over the shingle bytes followed by the
// big-endian encoding of salt i. Results are deterministic across runs and processes.
type MinHasher struct {
	numHashes int
	salts     []uint64
}

// NewMinHasher creates a MinHasher with numHashes functions salted 0..numHashes-1
// unless an option supplies other salts.
func NewMinHasher(numHashes int, opts ...MinHasherOption) (*MinHasher, error) {
	if numHashes < 1 {
		return nil, fmt.Errorf("%w: hash count must be >= 1, got %d", ErrConfiguration, numHashes)
	}

	m := &MinHasher{numHashes: numHashes, salts: DefaultSalts(numHashes)}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NumHashes returns the number of hash functions.
func (m *MinHasher) NumHashes() int { return m.numHashes }

// Salts returns a copy of the salt sequence.
func (m *MinHasher) Salts() []uint64 {
	return append([]uint64(nil), m.salts...)
}

// ComputeSignature computes the MinHash signature of doc.
func (m *MinHasher) ComputeSignature(doc Document) (Signature, error) {
	if len(doc) == 0 {
		return nil, ErrEmptyDocument
	}

	sig := make(Signature, m.numHashes)
	for i := range sig {
		sig[i] = math.MaxUint64
	}

	var d xxhash.Digest
	buf := make([]byte, 0, 64)
	seen := make(map[Shingle]struct{}, len(doc))

	for _, s := range doc {
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}

		for i, salt := range m.salts {
			buf = saltedKey(buf[:0], s, salt)
			d.Reset()
			_, _ = d.Write(buf)
			if h := d.Sum64(); h < sig[i] {
				sig[i] = h
			}
		}
	}

	return sig, nil
}

// EstimateSimilarity returns the fraction of positions at which the two signatures agree.
func EstimateSimilarity(a, b Signature) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrSignatureMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("%w: empty signatures", ErrSignatureMismatch)
	}

	match := 0
	for i := range a {
		if a[i] == b[i] {
			match++
		}
	}
	return float64(match) / float64(len(a)), nil
}

// DefaultSalts returns the salt sequence 0..n-1.
func DefaultSalts(n int) []uint64 {
	salts := make([]uint64, n)
	for i := range salts {
		salts[i] = uint64(i)
	}
	return salts
}

// SeededSalts returns n salts drawn from the splitmix64 sequence starting at seed.
func SeededSalts(seed uint64, n int) []uint64 {
	salts := make([]uint64, n)
	state := seed
	for i := range salts {
		state += 0x9e3779b97f4a7c15
		z := state
		z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
		z = (z ^ (z >> 27)) * 0x94d049bb133111eb
		salts[i] = z ^ (z >> 31)
	}
	return salts
}

// saltedKey appends the serialized shingle, a zero separator byte and the salt.
func saltedKey(dst []byte, s Shingle, salt uint64) []byte {
	dst = append(dst, s...)
	dst = append(dst, 0)
	return binary.BigEndian.AppendUint64(dst, salt)
}
