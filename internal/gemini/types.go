package gemini

// GenerateRequest is a single inference request carried by a batch job.
type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Content is one conversation turn.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is either text or inline binary data, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded bytes with a MIME type.
type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// GenerationConfig tunes model output.
type GenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
}

// EstimatedSize approximates the request's wire size: the base64 payload
// plus prompt text. Used for packing requests under the job payload
// budget.
func (r *GenerateRequest) EstimatedSize() int {
	size := 0
	for _, c := range r.Contents {
		for _, p := range c.Parts {
			size += len(p.Text)
			if p.InlineData != nil {
				size += len(p.InlineData.Data)
			}
		}
	}
	return size
}

// Batch job states reported by the backend.
const (
	BatchStatePending   = "BATCH_STATE_PENDING"
	BatchStateRunning   = "BATCH_STATE_RUNNING"
	BatchStateSucceeded = "BATCH_STATE_SUCCEEDED"
	BatchStateFailed    = "BATCH_STATE_FAILED"
	BatchStateCancelled = "BATCH_STATE_CANCELLED"
	BatchStateExpired   = "BATCH_STATE_EXPIRED"
)

// BatchJob is the client-side view of an asynchronous batch job.
type BatchJob struct {
	Name  string
	Done  bool
	State string
	Error string

	// Responses holds per-request results, positionally aligned with the
	// requests the job was created from. Only populated once Done.
	Responses []InlineResponse
}

// Succeeded reports whether the job reached the successful terminal state.
func (j *BatchJob) Succeeded() bool {
	return j.Done && j.State == BatchStateSucceeded
}

// InlineResponse is one request's result within a finished job.
type InlineResponse struct {
	Text  string
	Error string
}
