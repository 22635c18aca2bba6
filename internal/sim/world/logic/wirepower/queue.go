package wirepower

// bucketQueue is a max-priority queue over a bounded level domain. Each
// bucket is FIFO so equal-level nodes settle in discovery order.
type bucketQueue struct {
	rng     Range
	buckets [][]int32
	heads   []int
	top     int
	size    int
}

func newBucketQueue(rng Range) *bucketQueue {
	n := rng.Levels()
	if n <= 0 {
		n = 1
	}
	return &bucketQueue{
		rng:     rng,
		buckets: make([][]int32, n),
		heads:   make([]int, n),
		top:     -1,
	}
}

func (q *bucketQueue) Len() int { return q.size }

func (q *bucketQueue) push(idx int32, priority int) {
	b := q.rng.Clamp(priority) - q.rng.Min
	q.buckets[b] = append(q.buckets[b], idx)
	q.size++
	if b > q.top {
		q.top = b
	}
}

// pop returns the oldest entry of the highest non-empty bucket.
func (q *bucketQueue) pop() (int32, bool) {
	for q.top >= 0 {
		b := q.top
		if q.heads[b] < len(q.buckets[b]) {
			idx := q.buckets[b][q.heads[b]]
			q.heads[b]++
			q.size--
			return idx, true
		}
		q.buckets[b] = q.buckets[b][:0]
		q.heads[b] = 0
		q.top--
	}
	return -1, false
}
