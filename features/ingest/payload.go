package ingest

// Payload type discriminators expected by the additional-sources processor.
const (
	TypeMultipleWebsites = "multiple-websites"
	TypeCopiedText       = "copied-text"
)

type WebsitesPayload struct {
	Type       string   `json:"type"`
	NotebookID string   `json:"notebookId"`
	URLs       []string `json:"urls"`
	SourceIDs  []string `json:"sourceIds"`
	Timestamp  string   `json:"timestamp"`
}

// BuildWebsitesPayload passes urls and sourceIds through unchanged. The
// positional correspondence between the two arrays is the processor's
// contract; no length pairing is enforced here.
func BuildWebsitesPayload(notebookID string, urls, sourceIDs []string, timestamp string) WebsitesPayload {
	return WebsitesPayload{
		Type:       TypeMultipleWebsites,
		NotebookID: notebookID,
		URLs:       urls,
		SourceIDs:  sourceIDs,
		Timestamp:  timestamp,
	}
}

type CopiedTextPayload struct {
	Type       string `json:"type"`
	NotebookID string `json:"notebookId"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	SourceID   string `json:"sourceId"`
	Timestamp  string `json:"timestamp"`
}

func BuildCopiedTextPayload(notebookID, title, content, sourceID, timestamp string) CopiedTextPayload {
	return CopiedTextPayload{
		Type:       TypeCopiedText,
		NotebookID: notebookID,
		Title:      title,
		Content:    content,
		SourceID:   sourceID,
		Timestamp:  timestamp,
	}
}
