// Package analytics provides the secondary analytics collaborator
// named by the simulation's design notes as out-of-core-scope: outlier
// detection, clustering, and forecasting over the tabular record
// streams and derived simulation series (particle counts, collision
// rates, per-cell occupancy) the core produces. None of this feeds
// back into the deterministic core loop; it observes.
//
// Grounded on the teacher's own use of gonum.org/v1/gonum (already a
// required dependency via systems/simd_bench_test.go's blas32 use and
// cmd/optimize/main.go's gonum/optimize use) extended to gonum's stat
// and floats subpackages, which is the idiomatic way to add a second
// numerical concern on an already-adopted numerics library rather
// than reaching for an unrelated stats package.
package analytics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ZScoreOutliers returns the indices of values whose absolute z-score
// exceeds threshold. Requires len(values) >= 2; returns nil for
// shorter inputs since a standard deviation is undefined.
func ZScoreOutliers(values []float64, threshold float64) []int {
	if len(values) < 2 {
		return nil
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 {
		return nil
	}

	var outliers []int
	for i, v := range values {
		z := (v - mean) / std
		if math.Abs(z) > threshold {
			outliers = append(outliers, i)
		}
	}
	return outliers
}
