package analyzer

import "errors"

// Errors reported by the similarity index. Callers should match them with errors.Is;
// returned errors wrap these sentinels with call-specific context.
var (
	// ErrConfiguration is returned when the hash or band counts are structurally invalid,
	// most commonly when the band count does not evenly divide the hash count.
	ErrConfiguration = errors.New("invalid LSH configuration")

	// ErrEmptyDocument is returned when a signature is requested for a document without shingles.
	ErrEmptyDocument = errors.New("document has no shingles")

	// ErrEmptySet is returned when Jaccard similarity is requested over two empty sets.
	ErrEmptySet = errors.New("jaccard similarity of two empty sets is undefined")

	// ErrIndexOutOfRange is returned when a query references a document outside the corpus.
	ErrIndexOutOfRange = errors.New("document index out of range")

	// ErrInvalidThreshold is returned when a similarity threshold is outside [0, 1].
	ErrInvalidThreshold = errors.New("threshold must be between 0.0 and 1.0")

	// ErrNotBuilt is returned when an index is queried before a build has completed.
	ErrNotBuilt = errors.New("index has not been built")

	// ErrSignatureMismatch is returned when signatures of different lengths are compared.
	ErrSignatureMismatch = errors.New("signature lengths do not match")

	// ErrInvalidSnapshot is returned when snapshot data cannot be decoded.
	ErrInvalidSnapshot = errors.New("invalid index snapshot")

	// ErrSnapshotMismatch is returned when a snapshot does not fit the supplied corpus.
	ErrSnapshotMismatch = errors.New("snapshot does not match corpus")
)
