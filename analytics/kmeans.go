package analytics

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// Point is a 2-D sample for clustering, matching the shape of a
// particle position or any other (x, y)-like record pair.
type Point struct {
	X, Y float64
}

// KMeansResult holds the converged centroids and each point's cluster
// assignment.
type KMeansResult struct {
	Centroids   []Point
	Assignments []int
	Iterations  int
}

// KMeans clusters points into k groups using Lloyd's algorithm,
// seeded from rng for deterministic initial centroid selection. It
// stops after maxIters or once no assignment changes between
// iterations, whichever comes first.
func KMeans(points []Point, k int, maxIters int, rng *rand.Rand) KMeansResult {
	if k <= 0 || len(points) == 0 || k > len(points) {
		return KMeansResult{}
	}

	centroids := make([]Point, k)
	perm := rng.Perm(len(points))
	for i := 0; i < k; i++ {
		centroids[i] = points[perm[i]]
	}

	assignments := make([]int, len(points))
	iterations := 0

	for iter := 0; iter < maxIters; iter++ {
		iterations++
		changed := false

		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}

		sumX := make([]float64, k)
		sumY := make([]float64, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assignments[i]
			sumX[c] += p.X
			sumY[c] += p.Y
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			centroids[c] = Point{X: sumX[c] / float64(counts[c]), Y: sumY[c] / float64(counts[c])}
		}

		if !changed && iter > 0 {
			break
		}
	}

	return KMeansResult{Centroids: centroids, Assignments: assignments, Iterations: iterations}
}

func nearestCentroid(p Point, centroids []Point) int {
	best := 0
	bestDist := math.Inf(1)
	a := []float64{p.X, p.Y}
	for i, c := range centroids {
		b := []float64{c.X, c.Y}
		d := floats.Distance(a, b, 2)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
