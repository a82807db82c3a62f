package ingestion

// Status is the kind of a progress event, as sent on the wire.
type Status string

const (
	StatusSession  Status = "session"
	StatusEmbedded Status = "embedded"
	StatusSkipped  Status = "skipped"
	StatusError    Status = "error"
	StatusDone     Status = "done"
)

// Event is one progress notification. Filename is empty for events that
// are not about a single file.
type Event struct {
	Status    Status `json:"status"`
	SessionID uint   `json:"session_id,omitempty"`
	Filename  string `json:"filename,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Chunks    int    `json:"chunks,omitempty"`
}

// Terminal reports whether no further events follow e in a well-formed
// stream: done always, or an error raised before any file was looked at.
func (e Event) Terminal() bool {
	return e.Status == StatusDone || (e.Status == StatusError && e.Filename == "")
}
