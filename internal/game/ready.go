package game

// MarkReady signals that every collaborator backing the world has finished
// initialising. Work queued with WhenReady runs now, in submission order.
func (w *World) MarkReady() {
	w.mu.Lock()
	if w.ready {
		w.mu.Unlock()
		return
	}
	w.ready = true
	waiting := w.waiting
	w.waiting = nil
	w.mu.Unlock()

	for _, fn := range waiting {
		fn()
	}
}

func (w *World) Ready() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

// WhenReady runs fn immediately if the world is ready, otherwise once
// MarkReady is called.
func (w *World) WhenReady(fn func()) {
	w.mu.Lock()
	if !w.ready {
		w.waiting = append(w.waiting, fn)
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()
	fn()
}
