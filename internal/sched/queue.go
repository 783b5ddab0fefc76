package sched

// readyQueue is one ready queue of the scheduler. A nil less function means
// FIFO; otherwise inserts keep the items ordered by less, with ties placed
// after existing items (stable).
type readyQueue struct {
	items []*Thread
	less  func(a, b *Thread) bool
}

func newReadyQueue(less func(a, b *Thread) bool) *readyQueue {
	return &readyQueue{less: less}
}

func (q *readyQueue) insert(t *Thread) {
	if q.less == nil {
		q.items = append(q.items, t)

		return
	}

	at := len(q.items)
	for i := range q.items {
		if q.less(t, q.items[i]) {
			at = i

			break
		}
	}

	q.items = append(q.items, nil)
	copy(q.items[at+1:], q.items[at:])
	q.items[at] = t
}

func (q *readyQueue) removeFront() (*Thread, bool) {
	if len(q.items) == 0 {
		return nil, false
	}

	t := q.items[0]
	q.items = q.items[1:]

	return t, true
}

func (q *readyQueue) remove(t *Thread) bool {
	for i := range q.items {
		if q.items[i] == t {
			q.items = append(q.items[:i], q.items[i+1:]...)

			return true
		}
	}

	return false
}

func (q *readyQueue) empty() bool {
	return len(q.items) == 0
}

// snapshot returns a copy of the queue's items, so callers can mutate the
// queue while iterating.
func (q *readyQueue) snapshot() []*Thread {
	items := make([]*Thread, len(q.items))
	copy(items, q.items)

	return items
}
