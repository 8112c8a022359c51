package patterns

import (
	"fmt"
	"sort"

	"github.com/caliper-sh/caliper/pkg/models"
	"github.com/caliper-sh/caliper/pkg/stats"
)

// Hotspot thresholds. A file is a complexity hotspot above the high bucket
// boundary, and a size hotspot when its line count reaches the tree's top
// decile; tiny trees get a floor so short files are never flagged for size.
const (
	hotspotComplexity = 10.0
	hotspotSizeFloor  = 200
)

// FileStat is the per-file input to hotspot derivation.
type FileStat struct {
	Path       string
	Lines      int
	Complexity float64
}

// Hotspots flags files whose complexity or size warrants review. A file
// meeting both criteria yields both entries, each at high severity;
// otherwise entries are medium.
func Hotspots(files []FileStat) []models.Hotspot {
	sizeThreshold := sizeCutoff(files)

	out := []models.Hotspot{}
	for _, f := range files {
		byComplexity := f.Complexity > hotspotComplexity
		bySize := f.Lines >= sizeThreshold
		if !byComplexity && !bySize {
			continue
		}
		severity := models.SeverityMedium
		if byComplexity && bySize {
			severity = models.SeverityHigh
		}
		if byComplexity {
			out = append(out, models.Hotspot{
				Type:        models.HotspotHighComplexity,
				File:        f.Path,
				Lines:       f.Lines,
				Severity:    severity,
				Description: fmt.Sprintf("Average complexity %.1f exceeds the review threshold of %.0f", f.Complexity, hotspotComplexity),
			})
		}
		if bySize {
			out = append(out, models.Hotspot{
				Type:        models.HotspotHighSize,
				File:        f.Path,
				Lines:       f.Lines,
				Severity:    severity,
				Description: fmt.Sprintf("File length of %d lines is in the top decile of the tree", f.Lines),
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Type < out[j].Type
	})
	return out
}

// sizeCutoff returns the top-decile line count, floored at hotspotSizeFloor.
func sizeCutoff(files []FileStat) int {
	values := make([]float64, 0, len(files))
	for _, f := range files {
		if f.Lines > 0 {
			values = append(values, float64(f.Lines))
		}
	}
	if len(values) == 0 {
		return hotspotSizeFloor
	}
	cutoff := int(stats.Quantile(values, 0.9))
	if cutoff < hotspotSizeFloor {
		return hotspotSizeFloor
	}
	return cutoff
}
