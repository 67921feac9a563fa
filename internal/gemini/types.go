package gemini

// Part is a fragment of generated or prompted content. Only text parts are used.
type Part struct {
	Text string `json:"text"`
}

// Content is a single message in a generateContent exchange.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// GenerateRequest is the body sent to models/{model}:generateContent.
type GenerateRequest struct {
	Contents []Content `json:"contents"`
}

// Candidate is one generated response option.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// GenerateResponse is the subset of the generateContent response we read.
type GenerateResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// UserPrompt wraps text into a single user message.
func UserPrompt(text string) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{
			Role:  "user",
			Parts: []Part{{Text: text}},
		}},
	}
}

// FirstText returns the text of the first part of the first candidate, or ""
// when any element on that path is missing.
func (r GenerateResponse) FirstText() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	c := r.Candidates[0].Content
	if c == nil || len(c.Parts) == 0 {
		return ""
	}
	return c.Parts[0].Text
}
