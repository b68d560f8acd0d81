package detection

// State is the stabilized detection state of one capture session.
// An empty string stands for "nothing yet".
type State struct {
	CurrentLabel  string
	LastAnnounced string
}

// Announcement is the spoken side effect of a label change.
type Announcement struct {
	Label string
	Text  string
}

// Stabilize folds one detection label into the state. An announcement is
// returned iff label is non-empty and differs from the current label; repeated
// identical labels never re-announce and an empty label leaves the state as is.
func Stabilize(state State, label string) (State, *Announcement) {
	if label == "" {
		return state, nil
	}
	if label == state.CurrentLabel {
		return state, nil
	}

	state.CurrentLabel = label
	state.LastAnnounced = label

	return state, &Announcement{
		Label: label,
		Text:  label + " detected",
	}
}
