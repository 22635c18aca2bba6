package wirepower

import "testing"

func TestBucketQueue_HighestFirstFIFOWithin(t *testing.T) {
	q := newBucketQueue(DefaultRange)
	q.push(1, 3)
	q.push(2, 15)
	q.push(3, 3)
	q.push(4, 40) // clamped into the top bucket
	q.push(5, 0)

	var got []int32
	for {
		idx, ok := q.pop()
		if !ok {
			break
		}
		got = append(got, idx)
		if idx == 2 {
			// Pushing below the current level while draining.
			q.push(6, 7)
		}
	}
	want := []int32{2, 4, 6, 1, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("popped %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("popped %v want %v", got, want)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("len after drain: %d", q.Len())
	}
}
