package avatar

import "encoding/json"

// SessionURL finds the joinable conversation URL in a creation response.
// The provider has shipped the field under several names; each known shape is
// checked in order and the first non-empty value wins.
func SessionURL(raw json.RawMessage) (string, bool) {
	var shape struct {
		ConversationURL string `json:"conversation_url"`
		URL             string `json:"url"`
		Data            *struct {
			ConversationURL string `json:"conversation_url"`
		} `json:"data"`
		Conversation *struct {
			URL string `json:"url"`
		} `json:"conversation"`
	}
	if err := json.Unmarshal(raw, &shape); err != nil {
		return "", false
	}

	candidates := []string{shape.ConversationURL, shape.URL}
	if shape.Data != nil {
		candidates = append(candidates, shape.Data.ConversationURL)
	}
	if shape.Conversation != nil {
		candidates = append(candidates, shape.Conversation.URL)
	}
	for _, c := range candidates {
		if c != "" {
			return c, true
		}
	}
	return "", false
}

// ConversationID returns the conversation_id field when present
func ConversationID(raw json.RawMessage) string {
	var payload struct {
		ConversationID string `json:"conversation_id"`
	}
	_ = json.Unmarshal(raw, &payload)
	return payload.ConversationID
}
