package fal

// Queue status values reported by the fal queue API.
const (
	StatusInQueue    = "IN_QUEUE"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// GenerateInput is the request body sent to the MiniMax text-to-image model.
type GenerateInput struct {
	Prompt          string `json:"prompt"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	NumImages       int    `json:"num_images,omitempty"`
	PromptOptimizer *bool  `json:"prompt_optimizer,omitempty"`
	SyncMode        *bool  `json:"sync_mode,omitempty"`
}

// Image describes one generated file as returned by the model.
type Image struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type,omitempty"`
	FileName    string `json:"file_name,omitempty"`
	FileSize    *int64 `json:"file_size,omitempty"`
}

// Output is the model's result payload.
type Output struct {
	Images []Image `json:"images"`
	Seed   *int64  `json:"seed,omitempty"`
}

// Result pairs a model output with the queue request that produced it.
type Result struct {
	Output
	RequestID string `json:"request_id"`
}

// QueueHandle is returned by Submit and identifies a queued request.
type QueueHandle struct {
	RequestID   string `json:"request_id"`
	StatusURL   string `json:"status_url,omitempty"`
	ResponseURL string `json:"response_url,omitempty"`
	CancelURL   string `json:"cancel_url,omitempty"`

	// WebhookURL echoes the delivery target passed to Submit, if any.
	WebhookURL string `json:"-"`
}

// LogEntry is a single progress line emitted by the model runner.
type LogEntry struct {
	Message   string `json:"message"`
	Level     string `json:"level,omitempty"`
	Source    string `json:"source,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// QueueStatus is the state of a queued request.
type QueueStatus struct {
	Status        string     `json:"status"`
	QueuePosition *int       `json:"queue_position,omitempty"`
	ResponseURL   string     `json:"response_url,omitempty"`
	Logs          []LogEntry `json:"logs,omitempty"`
}
