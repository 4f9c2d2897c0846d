package quiz

// Move removes the element at from and reinserts it at to in the already
// shortened sequence. This is a splice move, not a swap: moving index 0 to
// index 2 in [A B C D] yields [B C A D]. A same-index move returns the input
// slice unchanged.
func Move(questions []QuestionRecord, from, to int) ([]QuestionRecord, error) {
	n := len(questions)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, ErrIndexOutOfRange
	}
	if from == to {
		return questions, nil
	}

	out := make([]QuestionRecord, 0, n)
	out = append(out, questions[:from]...)
	out = append(out, questions[from+1:]...)
	out = append(out, QuestionRecord{})
	copy(out[to+1:], out[to:])
	out[to] = questions[from]
	return out, nil
}

// Gesture tracks one drag of a question card. Begin captures the source
// position at gesture start, Enter updates the hover target while dragging,
// and Drop commits the endpoints exactly once. A cancelled gesture leaves
// nothing to commit.
type Gesture struct {
	from   int
	to     int
	active bool
}

// Begin starts a drag from the given position. The target starts at the
// source so a drop without any Enter is a no-op move.
func (g *Gesture) Begin(from int) {
	g.from, g.to, g.active = from, from, true
}

// Enter records the position currently hovered over. Ignored when no drag is
// active.
func (g *Gesture) Enter(to int) {
	if g.active {
		g.to = to
	}
}

// Drop ends the drag and returns the captured endpoints. ok is false for a
// release without a matching Begin (cancelled or stray drop), in which case
// nothing must be mutated.
func (g *Gesture) Drop() (from, to int, ok bool) {
	if !g.active {
		return 0, 0, false
	}
	from, to = g.from, g.to
	g.active = false
	return from, to, true
}

// Cancel abandons the drag without committing anything.
func (g *Gesture) Cancel() {
	g.active = false
}
