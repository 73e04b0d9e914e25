package analyzer

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/klauspost/compress/zstd"
)

const (
	snapshotMagic   = "DSIM"
	snapshotVersion = uint16(1)

	// Upper bounds for sizes read from a snapshot
	maxSnapshotHashes = 1 << 16
	maxSnapshotBitmap = 1 << 30
)

// Snapshot layout (big-endian, zstd-compressed):
//
//	magic "DSIM" | version u16 | k u32 | b u32 | n u32
//	k salts u64 | n*k signature values u64
//	n * (len u32 | roaring candidate set)
//
// Documents are not stored; they are re-derived from the corpus on load.

// WriteSnapshot serializes the signatures and candidate sets of the index to w.
func (idx *LSHIndex) WriteSnapshot(w io.Writer) error {
	if idx == nil || !idx.built {
		return ErrNotBuilt
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return fmt.Errorf("create snapshot encoder: %w", err)
	}
	bw := bufio.NewWriter(enc)

	header := make([]byte, 0, len(snapshotMagic)+2+12)
	header = append(header, snapshotMagic...)
	header = binary.BigEndian.AppendUint16(header, snapshotVersion)
	header = binary.BigEndian.AppendUint32(header, uint32(idx.numHashes))
	header = binary.BigEndian.AppendUint32(header, uint32(idx.numBands))
	header = binary.BigEndian.AppendUint32(header, uint32(len(idx.docs)))
	if _, err := bw.Write(header); err != nil {
		return fmt.Errorf("write snapshot header: %w", err)
	}

	buf := make([]byte, 8)
	writeU64 := func(v uint64) error {
		binary.BigEndian.PutUint64(buf, v)
		_, err := bw.Write(buf)
		return err
	}

	for _, salt := range idx.salts {
		if err := writeU64(salt); err != nil {
			return fmt.Errorf("write snapshot salts: %w", err)
		}
	}
	for i, sig := range idx.signatures {
		for _, v := range sig {
			if err := writeU64(v); err != nil {
				return fmt.Errorf("write signature %d: %w", i, err)
			}
		}
	}

	for i, bm := range idx.candidates {
		data, err := bm.ToBytes()
		if err != nil {
			return fmt.Errorf("encode candidates of document %d: %w", i, err)
		}
		binary.BigEndian.PutUint32(buf[:4], uint32(len(data)))
		if _, err := bw.Write(buf[:4]); err != nil {
			return fmt.Errorf("write candidates of document %d: %w", i, err)
		}
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("write candidates of document %d: %w", i, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush snapshot: %w", err)
	}
	return enc.Close()
}

// LoadSnapshot restores an index from r, attaching docs as the corpus. docs must be
// the same corpus, in the same order, the snapshot was written from.
func LoadSnapshot(ctx context.Context, r io.Reader, docs []Document) (*LSHIndex, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	defer dec.Close()
	br := bufio.NewReader(dec)

	header := make([]byte, len(snapshotMagic)+2+12)
	if _, err := io.ReadFull(br, header); err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrInvalidSnapshot, err)
	}
	if string(header[:4]) != snapshotMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidSnapshot, header[:4])
	}
	if v := binary.BigEndian.Uint16(header[4:6]); v != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidSnapshot, v)
	}
	numHashes := int(binary.BigEndian.Uint32(header[6:10]))
	numBands := int(binary.BigEndian.Uint32(header[10:14]))
	numDocs := int(binary.BigEndian.Uint32(header[14:18]))

	if numDocs != len(docs) {
		return nil, fmt.Errorf("%w: snapshot has %d documents, corpus has %d", ErrSnapshotMismatch, numDocs, len(docs))
	}

	buf := make([]byte, 8)
	readU64 := func() (uint64, error) {
		if _, err := io.ReadFull(br, buf); err != nil {
			return 0, err
		}
		return binary.BigEndian.Uint64(buf), nil
	}

	if numHashes > maxSnapshotHashes {
		return nil, fmt.Errorf("%w: %d hash functions exceeds %d", ErrInvalidSnapshot, numHashes, maxSnapshotHashes)
	}
	if err := (LSHConfig{NumHashes: numHashes, NumBands: numBands}).Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	salts := make([]uint64, numHashes)
	for i := range salts {
		if salts[i], err = readU64(); err != nil {
			return nil, fmt.Errorf("%w: read salts: %v", ErrInvalidSnapshot, err)
		}
	}

	signatures := make([]Signature, numDocs)
	for i := range signatures {
		sig := make(Signature, numHashes)
		for j := range sig {
			if sig[j], err = readU64(); err != nil {
				return nil, fmt.Errorf("%w: read signature %d: %v", ErrInvalidSnapshot, i, err)
			}
		}
		signatures[i] = sig
	}

	candidates := make([]*roaring.Bitmap, numDocs)
	for i := range candidates {
		if _, err := io.ReadFull(br, buf[:4]); err != nil {
			return nil, fmt.Errorf("%w: read candidates of document %d: %v", ErrInvalidSnapshot, i, err)
		}
		size := binary.BigEndian.Uint32(buf[:4])
		if size > maxSnapshotBitmap {
			return nil, fmt.Errorf("%w: candidate set %d too large (%d bytes)", ErrInvalidSnapshot, i, size)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(br, data); err != nil {
			return nil, fmt.Errorf("%w: read candidates of document %d: %v", ErrInvalidSnapshot, i, err)
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(data); err != nil {
			return nil, fmt.Errorf("%w: decode candidates of document %d: %v", ErrInvalidSnapshot, i, err)
		}
		if !bm.IsEmpty() && int(bm.Maximum()) >= numDocs {
			return nil, fmt.Errorf("%w: candidate %d of document %d out of range", ErrInvalidSnapshot, bm.Maximum(), i)
		}
		candidates[i] = bm
	}

	builder, err := NewIndexBuilder(LSHConfig{NumHashes: numHashes, NumBands: numBands, Salts: salts})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return builder.restore(ctx, docs, signatures, candidates)
}

// restore rebuilds the band tables from stored signatures and adopts the stored
// candidate sets instead of re-extracting them.
func (b *IndexBuilder) restore(ctx context.Context, docs []Document, signatures []Signature, candidates []*roaring.Bitmap) (*LSHIndex, error) {
	if err := checkCorpusSize(len(docs)); err != nil {
		return nil, err
	}
	for i, doc := range docs {
		if len(doc) == 0 {
			return nil, fmt.Errorf("document %d: %w", i, ErrEmptyDocument)
		}
	}
	return b.assemble(ctx, docs, signatures, candidates)
}
