package kernel

import "container/list"

// readyList holds every Ready thread, ordered by effective priority
// descending with FIFO ties. Implemented as container/list
// rather than a plain slice so that removal (on block/priority change) is
// O(1) once the *list.Element is known, instead of an O(n) slice splice.
type readyList struct {
	l *list.List
}

func newReadyList() *readyList {
	return &readyList{l: list.New()}
}

// insert places t into the list in priority order. Equal-priority threads
// keep arrival order: t is inserted just after the last thread with equal or
// greater priority.
func (r *readyList) insert(t *Thread) {
	for e := r.l.Front(); e != nil; e = e.Next() {
		cur := e.Value.(*Thread)
		if cur.effectivePriority < t.effectivePriority {
			t.listElem = r.l.InsertBefore(t, e)
			return
		}
	}
	t.listElem = r.l.PushBack(t)
}

// remove takes t out of the list. No-op if t isn't currently linked.
func (r *readyList) remove(t *Thread) {
	if t.listElem == nil {
		return
	}
	r.l.Remove(t.listElem)
	t.listElem = nil
}

// popFront removes and returns the highest-effective-priority thread, or nil
// if the list is empty.
func (r *readyList) popFront() *Thread {
	e := r.l.Front()
	if e == nil {
		return nil
	}
	t := e.Value.(*Thread)
	r.l.Remove(e)
	t.listElem = nil
	return t
}

// front returns the highest-effective-priority thread without removing it,
// or nil if the list is empty.
func (r *readyList) front() *Thread {
	e := r.l.Front()
	if e == nil {
		return nil
	}
	return e.Value.(*Thread)
}

func (r *readyList) len() int { return r.l.Len() }

// reinsert re-homes t after its effective priority has changed (donation or
// set_priority), preserving sort order.
func (r *readyList) reinsert(t *Thread) {
	r.remove(t)
	r.insert(t)
}

// each calls fn for every thread currently in the ready list, front to back.
func (r *readyList) each(fn func(*Thread)) {
	for e := r.l.Front(); e != nil; e = e.Next() {
		fn(e.Value.(*Thread))
	}
}
