package document

import "strings"

// Payload is the exact shape the document processor expects. The dispatch
// secret never appears here; it travels only as a header.
type Payload struct {
	SourceID    string `json:"source_id"`
	FileURL     string `json:"file_url"`
	FilePath    string `json:"file_path"`
	SourceType  string `json:"source_type"`
	CallbackURL string `json:"callback_url"`
}

// BuildPayload derives the outbound payload from a validated request and the
// platform base URL. Pure and deterministic.
func BuildPayload(sourceID, filePath, sourceType, projectURL string) Payload {
	base := strings.TrimRight(projectURL, "/")
	return Payload{
		SourceID:    sourceID,
		FileURL:     base + "/storage/v1/object/public/sources/" + filePath,
		FilePath:    filePath,
		SourceType:  sourceType,
		CallbackURL: base + "/functions/v1/process-document-callback",
	}
}
