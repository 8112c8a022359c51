package quality

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
)

// DefaultWindow is the sliding-window length in normalized lines. A window
// whose hash occurs at more than one position marks all its lines as
// duplicated.
const DefaultWindow = 5

// FileLines is one file prepared for duplication analysis: per-line hashes
// of normalized content plus a whole-file digest for the identical-file
// fast path.
type FileLines struct {
	Path   string
	Hashes []uint64
	Digest [32]byte
}

// PrepareFile normalizes content for duplication analysis: lines are
// trimmed, inner whitespace runs collapse to one space, and blank lines are
// dropped. Each surviving line is hashed individually and into the file
// digest.
func PrepareFile(path string, content []byte) FileLines {
	fl := FileLines{Path: path}
	if len(content) == 0 {
		return fl
	}
	h := blake3.New()
	sc := bufio.NewScanner(bytes.NewReader(content))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		norm := normalizeLine(sc.Text())
		if norm == "" {
			continue
		}
		fl.Hashes = append(fl.Hashes, xxhash.Sum64String(norm))
		h.Write([]byte(norm))
		h.Write([]byte{'\n'})
	}
	copy(fl.Digest[:], h.Sum(nil))
	return fl
}

func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}

// Estimator computes the tree-wide duplication percentage.
type Estimator struct {
	window int
}

// EstimatorOption is a functional option for configuring Estimator.
type EstimatorOption func(*Estimator)

// WithWindow sets the sliding-window length. Deep analysis uses a longer
// window to cut false positives.
func WithWindow(n int) EstimatorOption {
	return func(e *Estimator) {
		if n >= 2 {
			e.window = n
		}
	}
}

// NewEstimator creates a duplication estimator with the default window.
func NewEstimator(opts ...EstimatorOption) *Estimator {
	e := &Estimator{window: DefaultWindow}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type position struct {
	file int
	line int
}

// Estimate returns the percentage of normalized lines that appear inside a
// repeated window or an identical-file pair, in [0, 100].
func (e *Estimator) Estimate(files []FileLines) float64 {
	total := 0
	for _, f := range files {
		total += len(f.Hashes)
	}
	if total == 0 {
		return 0
	}

	marks := make([]*roaring.Bitmap, len(files))
	for i := range marks {
		marks[i] = roaring.New()
	}

	// Identical files duplicate each other wholesale, including files too
	// short to form a single window.
	byDigest := map[[32]byte][]int{}
	for i, f := range files {
		if len(f.Hashes) == 0 {
			continue
		}
		byDigest[f.Digest] = append(byDigest[f.Digest], i)
	}
	for _, group := range byDigest {
		if len(group) < 2 {
			continue
		}
		for _, i := range group {
			marks[i].AddRange(0, uint64(len(files[i].Hashes)))
		}
	}

	// Sliding windows across all files. Two windows with the same hash at
	// different positions mark both spans.
	index := map[uint64][]position{}
	var buf [8]byte
	for fi, f := range files {
		if len(f.Hashes) < e.window {
			continue
		}
		for li := 0; li+e.window <= len(f.Hashes); li++ {
			h := xxhash.New()
			for _, lh := range f.Hashes[li : li+e.window] {
				binary.LittleEndian.PutUint64(buf[:], lh)
				h.Write(buf[:])
			}
			sum := h.Sum64()
			index[sum] = append(index[sum], position{file: fi, line: li})
		}
	}
	for _, positions := range index {
		if len(positions) < 2 {
			continue
		}
		for _, pos := range positions {
			marks[pos.file].AddRange(uint64(pos.line), uint64(pos.line+e.window))
		}
	}

	duplicated := uint64(0)
	for _, m := range marks {
		duplicated += m.GetCardinality()
	}
	return float64(duplicated) / float64(total) * 100
}
