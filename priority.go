package kernel

// refresh recomputes t's effective priority from its base priority and the
// current donor set, and re-homes t in the ready list if it's currently
// sitting in one. It returns true if the effective priority changed.
func refresh(rl *readyList, t *Thread) bool {
	eff := t.basePriority
	for _, d := range t.donors {
		if d.effectivePriority > eff {
			eff = d.effectivePriority
		}
	}
	if eff == t.effectivePriority {
		return false
	}
	t.effectivePriority = eff
	if t.listElem != nil {
		rl.reinsert(t)
	}
	return true
}

// addDonor registers donor as currently donating to holder (donor is
// blocked acquiring a lock holder owns) and propagates the resulting
// effective-priority change along the lock-wait chain, up to maxDepth hops,
// to cover nested donation.
func addDonor(rl *readyList, holder, donor *Thread, maxDepth int) {
	holder.donors[donor.tid] = donor
	propagateDonation(rl, holder, maxDepth)
}

// removeDonor undoes addDonor, used when donor's wait is satisfied (it
// acquired the lock, or gave up waiting).
func removeDonor(rl *readyList, holder, donor *Thread) {
	delete(holder.donors, donor.tid)
	refresh(rl, holder)
}

// propagateDonation walks the chain of lock holders starting at t, calling
// refresh at each link, and continuing only while a link's effective
// priority actually changed and it is itself blocked waiting on another
// lock. The walk is bounded by maxDepth to cap pathological lock cycles or
// chains.
func propagateDonation(rl *readyList, t *Thread, maxDepth int) {
	cur := t
	for depth := 0; depth < maxDepth; depth++ {
		changed := refresh(rl, cur)
		if !changed {
			return
		}
		lock := cur.waitingOnLock
		if lock == nil || lock.holder == nil {
			return
		}
		next := lock.holder
		next.donors[cur.tid] = cur
		cur = next
	}
}

// recomputeAfterRelease restores t's effective priority to reflect the donor
// set with one donor's entry removed, used when a lock is released and the
// donation it caused must unwind.
func recomputeAfterRelease(rl *readyList, t *Thread) {
	refresh(rl, t)
}
