package openai

// Request shape we send to the Responses API.
type providerRequest struct {
	Model           string            `json:"model"`
	MaxOutputTokens int               `json:"max_output_tokens,omitempty"`
	Temperature     float32           `json:"temperature"`
	Input           []providerMessage `json:"input"`
	Text            *providerText     `json:"text,omitempty"`
}

type providerMessage struct {
	Role    string         `json:"role"`
	Content []providerPart `json:"content"`
}

// providerPart is one content item: input_text carries Text, input_image
// carries ImageURL (a data URL here) and Detail.
type providerPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// providerText requests structured output.
type providerText struct {
	Format providerTextFormat `json:"format"`
}

type providerTextFormat struct {
	Name   string         `json:"name"`
	Type   string         `json:"type"` // "json_schema"
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

// Response shape from the Responses API. output_text convenience fields only
// exist in the SDKs, so the text is reassembled from the output items.
type providerResponse struct {
	ID     string           `json:"id"`
	Model  string           `json:"model"`
	Status string           `json:"status"`
	Output []providerOutput `json:"output"`
	Usage  *providerUsage   `json:"usage,omitempty"`
}

type providerOutput struct {
	Type    string `json:"type"` // "message" carries the generated text
	Content []struct {
		Type string `json:"type"` // "output_text"
		Text string `json:"text"`
	} `json:"content"`
}

type providerUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// outputText concatenates every output_text part of the response.
func (r *providerResponse) outputText() string {
	var text string
	for _, out := range r.Output {
		if out.Type != "message" {
			continue
		}
		for _, part := range out.Content {
			if part.Type == "output_text" {
				text += part.Text
			}
		}
	}
	return text
}

type providerErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}
