package install

import (
	"github.com/sirupsen/logrus"
)

type undoAction struct {
	desc string
	fn   func() error
}

// UndoStack records undo actions during installation and replays them in
// reverse order when a later step fails. Undo failures are logged, not
// propagated: rollback is best-effort.
type UndoStack struct {
	actions []undoAction
}

// Push records an undo action for a completed step.
func (s *UndoStack) Push(desc string, fn func() error) {
	s.actions = append(s.actions, undoAction{desc: desc, fn: fn})
}

// Len returns the number of recorded actions.
func (s *UndoStack) Len() int {
	return len(s.actions)
}

// Rollback replays the recorded actions newest-first and clears the stack.
func (s *UndoStack) Rollback() {
	for i := len(s.actions) - 1; i >= 0; i-- {
		a := s.actions[i]
		logrus.Warnf("rolling back: %s", a.desc)
		if err := a.fn(); err != nil {
			logrus.Errorf("rollback step %q failed: %v", a.desc, err)
		}
	}
	s.actions = nil
}
