package events

// JobEvent is the payload of the job lifecycle events.
type JobEvent struct {
	JobID            string   `json:"job_id"`
	Status           string   `json:"status"`
	Filename         string   `json:"filename,omitempty"`
	Language         string   `json:"language,omitempty"`
	ConversationType string   `json:"conversation_type,omitempty"`
	Error            string   `json:"error,omitempty"`
	InputTokens      int      `json:"input_tokens,omitempty"`
	OutputTokens     int      `json:"output_tokens,omitempty"`
	TotalCost        *float64 `json:"total_cost,omitempty"`
}
