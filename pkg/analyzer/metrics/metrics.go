// Package metrics builds per-file records and tree-level size aggregates.
package metrics

import (
	"bytes"
	"sort"
	"unicode/utf8"

	"github.com/caliper-sh/caliper/pkg/language"
	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/source"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// LargestFilesCount is how many entries the largest-files list carries.
const LargestFilesCount = 5

// RecordFor builds the FileRecord for one file. It never fails: binary or
// undecodable content yields an empty sample, and a file whose content
// could not be read at all (nil content) degrades to unknown with zero
// lines. maxSample bounds how much text the scanners will see.
func RecordFor(f source.File, maxSample int64) models.FileRecord {
	record := models.FileRecord{
		Path:     f.Path,
		Language: string(language.Unknown),
		ByteSize: len(f.Content),
	}

	if f.Content == nil {
		return record
	}

	if language.IsBinary(f.Content) || !utf8.Valid(f.Content) {
		record.Language = string(language.Classify(f.Path, nil))
		return record
	}

	record.Language = string(language.Classify(f.Path, sampleHead(f.Content)))
	record.LineCount = countLines(f.Content)
	record.Sample = truncateSample(f.Content, maxSample)
	return record
}

// sampleHead returns the slice content heuristics may inspect.
func sampleHead(content []byte) []byte {
	const headBytes = 512
	if len(content) > headBytes {
		return content[:headBytes]
	}
	return content
}

// countLines counts lines the way an editor would: a trailing fragment
// without a newline still counts.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}

// truncateSample converts content to a scan sample, cutting at max bytes
// without splitting a rune.
func truncateSample(content []byte, max int64) string {
	if max <= 0 || int64(len(content)) <= max {
		return string(content)
	}
	cut := content[:max]
	for len(cut) > 0 && !utf8.Valid(cut) {
		cut = cut[:len(cut)-1]
	}
	return string(cut)
}

// Aggregate computes the metrics section from per-file records. The
// complexity profile is filled in by the caller once the estimator has
// run. An empty record set yields the documented zero shape.
func Aggregate(records []models.FileRecord) models.Metrics {
	m := models.ZeroMetrics()
	m.FilesCount = len(records)
	if len(records) == 0 {
		return m
	}

	totalLines := 0
	for _, r := range records {
		totalLines += r.LineCount
	}
	m.LinesOfCode = totalLines

	for _, r := range records {
		bucket := m.Languages[r.Language]
		bucket.Files++
		bucket.Lines += r.LineCount
		m.Languages[r.Language] = bucket
	}
	for lang, bucket := range m.Languages {
		if totalLines > 0 {
			bucket.Percentage = stats.Round1(float64(bucket.Lines) / float64(totalLines) * 100)
		} else {
			// All files are empty; fall back to file share so the
			// percentages still describe the tree.
			bucket.Percentage = stats.Round1(float64(bucket.Files) / float64(len(records)) * 100)
		}
		m.Languages[lang] = bucket
	}

	m.LargestFiles = largestFiles(records, LargestFilesCount)
	return m
}

// largestFiles returns the top n records by line count descending, ties
// broken by path ascending for deterministic output.
func largestFiles(records []models.FileRecord, n int) []models.LargestFile {
	sorted := make([]models.FileRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LineCount != sorted[j].LineCount {
			return sorted[i].LineCount > sorted[j].LineCount
		}
		return sorted[i].Path < sorted[j].Path
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]models.LargestFile, 0, n)
	for _, r := range sorted[:n] {
		out = append(out, models.LargestFile{
			Path:     r.Path,
			Lines:    r.LineCount,
			Language: r.Language,
		})
	}
	return out
}
