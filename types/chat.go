package types

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in the conversation. The full history is
// carried by the caller on every request; the server keeps no session state.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Course   string    `json:"course"`
	Messages []Message `json:"messages"`
}

// SourceExcerpt is one retrieved excerpt as shown in the sources panel.
type SourceExcerpt struct {
	Index      int     `json:"index"`
	Filename   string  `json:"filename"`
	PageNumber int     `json:"page_number"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
}

// ChatAnswer is the grounded answer for one chat turn.
type ChatAnswer struct {
	Message        Message          `json:"message"`
	Citations      map[int]Citation `json:"citations"`
	Confidence     string           `json:"confidence"` // "high" | "medium" | "low"
	RelevanceScore float64          `json:"relevance_score"`
	Sources        []SourceExcerpt  `json:"sources"`
}

// StreamHandler receives incremental generation output.
type StreamHandler func(delta string)

const (
	TypeWebsocketPing  = "ping"
	TypeWebsocketPong  = "pong"
	TypeWebsocketChat  = "chat"
	TypeWebsocketDelta = "delta"
	TypeWebsocketError = "error"
)

type WebsocketRequest struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketResponse struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type WebSocketDeltaPayload struct {
	Delta string `json:"delta"`
}
