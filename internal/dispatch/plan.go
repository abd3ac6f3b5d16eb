package dispatch

// batchPlan splits a request budget into concurrency-bounded batch sizes.
// Each entry is min(limit, remaining); a zero budget yields no batches.
func batchPlan(total, limit int) []int {
	if total <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = 1
	}
	sizes := make([]int, 0, (total+limit-1)/limit)
	for remaining := total; remaining > 0; remaining -= limit {
		size := limit
		if remaining < limit {
			size = remaining
		}
		sizes = append(sizes, size)
	}
	return sizes
}
