package analytics

// Predicate is a named boolean test over a Point, used to build
// compound filters for analytics queries (e.g. "within the arena's
// left half AND above the mean distance from center"). This is
// deliberately plain function composition over the standard library:
// no expression-parsing library from the pack fits a two-combinator
// boolean predicate over typed Go values, and introducing one (a
// rules-engine or CEL-style evaluator) would mean parsing strings for
// a feature nothing else in the system exposes as text.
type Predicate func(Point) bool

// And returns a predicate requiring every given predicate to hold.
func And(predicates ...Predicate) Predicate {
	return func(p Point) bool {
		for _, pred := range predicates {
			if !pred(p) {
				return false
			}
		}
		return true
	}
}

// Or returns a predicate requiring at least one given predicate to
// hold.
func Or(predicates ...Predicate) Predicate {
	return func(p Point) bool {
		for _, pred := range predicates {
			if pred(p) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(pred Predicate) Predicate {
	return func(p Point) bool { return !pred(p) }
}

// Within returns a predicate matching points inside the axis-aligned
// rectangle [minX,maxX] x [minY,maxY].
func Within(minX, minY, maxX, maxY float64) Predicate {
	return func(p Point) bool {
		return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
	}
}

// Filter returns the subset of points matching pred.
func Filter(points []Point, pred Predicate) []Point {
	var out []Point
	for _, p := range points {
		if pred(p) {
			out = append(out, p)
		}
	}
	return out
}
