package drawing

// History is a bounded linear undo/redo stack of full drawing-list
// snapshots. Undo and redo replace the live list wholesale; any forward
// mutation clears the redo stack.
type History struct {
	depth int
	undo  [][]*Drawing
	redo  [][]*Drawing
}

// NewHistory creates a history keeping at most depth snapshots.
func NewHistory(depth int) *History {
	if depth <= 0 {
		depth = 50
	}
	return &History{depth: depth}
}

// Save pushes a snapshot of the pre-mutation list and clears the redo
// stack. Callers save right before applying a forward mutation.
func (h *History) Save(list []*Drawing) {
	h.undo = append(h.undo, snapshot(list))
	if len(h.undo) > h.depth {
		h.undo = h.undo[len(h.undo)-h.depth:]
	}
	h.redo = nil
}

// Undo returns the list to restore, moving the current list onto the
// redo stack. ok=false when there is nothing to undo.
func (h *History) Undo(current []*Drawing) ([]*Drawing, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	last := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, snapshot(current))
	return snapshot(last), true
}

// Redo returns the next redone list, moving the current list back onto
// the undo stack. ok=false when there is nothing to redo.
func (h *History) Redo(current []*Drawing) ([]*Drawing, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, snapshot(current))
	return snapshot(next), true
}

// CanUndo reports whether an undo snapshot exists.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether a redo snapshot exists.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

func snapshot(list []*Drawing) []*Drawing {
	out := make([]*Drawing, len(list))
	for i, d := range list {
		out[i] = d.Clone()
	}
	return out
}
