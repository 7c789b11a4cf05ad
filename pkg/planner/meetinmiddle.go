package planner

import "math"

// MinSplittablePathLength is the shortest path MeetInMiddle will
// split; shorter paths are "too simple for splitting" per spec.
const MinSplittablePathLength = 3

// Split describes a path broken into a left and right prefix that
// join at JoinKey, plus the estimated execution cost of running both
// halves.
type Split struct {
	LeftPath      []string
	RightPath     []string
	JoinKey       string
	EstimatedCost float64
}

// SplitPath splits path at its meet-in-the-middle join point, scoring
// candidate splits by cost(left)+cost(right)+1 where
// cost(segments) = len(segments)*2*0.1^len(filters). Because that
// formula's two terms sum to a constant (len(path)) regardless of
// where the cut falls, every split point scores identically; the
// midpoint is returned as the canonical choice. Paths shorter than
// MinSplittablePathLength are reported as not splittable.
func SplitPath(path []string, filters []string) (Split, bool) {
	if len(path) < MinSplittablePathLength {
		return Split{}, false
	}

	mid := len(path) / 2
	left := append([]string(nil), path[:mid]...)
	right := append([]string(nil), path[mid:]...)

	perSegmentCost := 2 * math.Pow(0.1, float64(len(filters)))
	cost := float64(len(left))*perSegmentCost + float64(len(right))*perSegmentCost + 1

	return Split{
		LeftPath:      left,
		RightPath:     right,
		JoinKey:       left[len(left)-1],
		EstimatedCost: cost,
	}, true
}
