// Package stats holds the small in-process analytics used by the query API.
package stats

// FareRanked is anything that can be ordered by fare.
type FareRanked interface {
	Fare() float64
}

// SortByFareDesc returns a new slice ordered by descending fare using a
// three-way partition: ties keep their relative input order within the
// pivot band. The input slice is not modified.
func SortByFareDesc[T FareRanked](items []T) []T {
	if len(items) <= 1 {
		out := make([]T, len(items))
		copy(out, items)
		return out
	}

	pivot := items[len(items)/2].Fare()

	var left, middle, right []T
	for _, it := range items {
		switch {
		case it.Fare() > pivot:
			left = append(left, it)
		case it.Fare() < pivot:
			right = append(right, it)
		default:
			middle = append(middle, it)
		}
	}

	out := SortByFareDesc(left)
	out = append(out, middle...)
	return append(out, SortByFareDesc(right)...)
}

// TopK returns the k highest-fare items (all of them when k exceeds the
// input length, none when k is not positive).
func TopK[T FareRanked](items []T, k int) []T {
	if k <= 0 {
		return nil
	}
	sorted := SortByFareDesc(items)
	if k > len(sorted) {
		k = len(sorted)
	}
	return sorted[:k]
}
