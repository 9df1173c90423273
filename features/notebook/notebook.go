package notebook

// Generation status values. Transitions only move forward, except that any
// state may drop to failed.
const (
	StatusIdle       = "idle"
	StatusGenerating = "generating"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Notebook struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Icon             string   `json:"icon"`
	Color            string   `json:"color"`
	ExampleQuestions []string `json:"example_questions"`
	GenerationStatus string   `json:"generation_status"`
}

// Generated holds the fields the generation processor returns for a
// notebook. Description stays nil when the processor omitted it.
type Generated struct {
	Title            string   `json:"title"`
	Description      *string  `json:"description"`
	Icon             string   `json:"icon"`
	Color            string   `json:"color"`
	ExampleQuestions []string `json:"example_questions"`
}
