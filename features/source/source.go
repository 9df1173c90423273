package source

// Processing status values for document ingestion.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Source struct {
	ID               string `json:"id"`
	NotebookID       string `json:"notebook_id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	Content          string `json:"content,omitempty"`
	FilePath         string `json:"file_path,omitempty"`
	ProcessingStatus string `json:"processing_status"`
}
