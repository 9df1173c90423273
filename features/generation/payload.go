package generation

// MaxContentLength bounds the text sent to the generation processor. It is
// a payload-size bound, not a constraint on the stored content.
const MaxContentLength = 5000

type Payload struct {
	SourceType string `json:"sourceType"`
	FilePath   string `json:"filePath,omitempty"`
	Content    string `json:"content,omitempty"`
}

func BuildFilePayload(sourceType, filePath string) Payload {
	return Payload{SourceType: sourceType, FilePath: filePath}
}

func BuildContentPayload(sourceType, content string) Payload {
	return Payload{SourceType: sourceType, Content: Truncate(content)}
}

// Truncate caps s at MaxContentLength runes. Idempotent: truncating an
// already-truncated string changes nothing.
func Truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= MaxContentLength {
		return s
	}
	return string(runes[:MaxContentLength])
}
