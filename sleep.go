package kernel

import "container/heap"

// sleepList is a min-heap of Blocked threads ordered by wakeupTick, giving
// O(1) access to the next wakeup deadline and O(log n) insert/remove in
// place of a linear unsorted scan.
type sleepList struct {
	h sleepHeap
}

func newSleepList() *sleepList {
	sl := &sleepList{}
	heap.Init(&sl.h)
	return sl
}

// add inserts t, due to wake at tick wakeupTick.
func (sl *sleepList) add(t *Thread, wakeupTick int64) {
	t.wakeupTick = wakeupTick
	heap.Push(&sl.h, t)
}

// nextWakeupTick returns the earliest pending wakeup tick and true, or
// (0, false) if nothing is sleeping.
func (sl *sleepList) nextWakeupTick() (int64, bool) {
	if sl.h.Len() == 0 {
		return 0, false
	}
	return sl.h[0].wakeupTick, true
}

// wakeSweep pops every thread whose wakeupTick has arrived (<= now) and
// returns them in wakeup order, ready for the caller to unblock.
func (sl *sleepList) wakeSweep(now int64) []*Thread {
	var woken []*Thread
	for sl.h.Len() > 0 && sl.h[0].wakeupTick <= now {
		woken = append(woken, heap.Pop(&sl.h).(*Thread))
	}
	return woken
}

// remove drops t from the sleep list before its deadline arrives, used when
// a sleeping thread is woken early for another reason (exit, signal).
func (sl *sleepList) remove(t *Thread) {
	for i, cur := range sl.h {
		if cur == t {
			heap.Remove(&sl.h, i)
			return
		}
	}
}

// sleepHeap implements container/heap.Interface over *Thread, ordered by
// wakeupTick ascending.
type sleepHeap []*Thread

func (h sleepHeap) Len() int { return len(h) }
func (h sleepHeap) Less(i, j int) bool {
	return h[i].wakeupTick < h[j].wakeupTick
}
func (h sleepHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].sleepIndex = i
	h[j].sleepIndex = j
}
func (h *sleepHeap) Push(x any) {
	t := x.(*Thread)
	t.sleepIndex = len(*h)
	*h = append(*h, t)
}
func (h *sleepHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.sleepIndex = -1
	*h = old[:n-1]
	return t
}
