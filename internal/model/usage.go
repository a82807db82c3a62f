package model

// UsageEvent records the tokens one generation round consumed for a session.
type UsageEvent struct {
	SessionID        uint   `json:"session_id"`
	Model            string `json:"model"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
}

func (e UsageEvent) Total() int64 {
	return e.PromptTokens + e.CompletionTokens
}
