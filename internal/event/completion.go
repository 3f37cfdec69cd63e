package event

// Completion lifecycle topics.
const (
	TopicSessionStarted   Topic = "completion.session.started"
	TopicSessionDismissed Topic = "completion.session.dismissed"
	TopicModelUpdated     Topic = "completion.model.updated"
	TopicItemCommitted    Topic = "completion.item.committed"
)

// SessionStarted is published when the controller starts a session.
type SessionStarted struct {
	SessionID string
	Trigger   string
	Caret     int
}

// SessionDismissed is published when a session ends without a commit.
type SessionDismissed struct {
	SessionID string
	Reason    string
}

// ModelUpdated is published when a new model is presented.
type ModelUpdated struct {
	SessionID     string
	Visible       int
	Total         int
	Selected      string
	HardSelection bool
	Unique        bool
}

// ItemCommitted is published after an item's edit is applied.
type ItemCommitted struct {
	SessionID   string
	DisplayText string
	// CommitChar is the typed character that committed the item, or 0.
	CommitChar rune
	// Inserted is the text written into the buffer.
	Inserted string
}
