package model

// Speaker roles in a diary conversation transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single exchange in a diary conversation. The client owns the
// transcript and re-sends the full turn history on every call; the server
// keeps no conversation state between requests.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// EmotionScores holds the five emotion dimensions, each scored 0-100.
type EmotionScores struct {
	Joy     int `json:"joy"`
	Anger   int `json:"anger"`
	Sadness int `json:"sadness"`
	Anxiety int `json:"anxiety"`
	Relief  int `json:"relief"`
}

// EntrySummary is one row of the entry list (recency menu).
type EntrySummary struct {
	ID        int64  `json:"id"`
	EntryDate string `json:"entry_date"`
}

// EntryDetails is a full diary entry joined with its emotion scores.
type EntryDetails struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	EntryDate string        `json:"entry_date"`
	ChatLog   string        `json:"chat_log"`
	Summary   string        `json:"summary"`
	Emotions  EmotionScores `json:"emotions"`
}

// EmotionPoint is one time-series sample for the emotion chart.
type EmotionPoint struct {
	EntryDate string `json:"entry_date"`
	Joy       int    `json:"joy"`
	Anger     int    `json:"anger"`
	Sadness   int    `json:"sadness"`
	Anxiety   int    `json:"anxiety"`
	Relief    int    `json:"relief"`
}

// ChatRequest carries the full transcript so far for a conversational reply.
type ChatRequest struct {
	Turns []Turn `json:"turns"`
}

// ChatResponse carries the assistant's reply to the latest turn.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// AnalyzeRequest carries the finished transcript for summarization and scoring.
type AnalyzeRequest struct {
	Turns []Turn `json:"turns"`
}

// AnalyzeResponse is the validated analysis result.
type AnalyzeResponse struct {
	Summary  string        `json:"summary"`
	Emotions EmotionScores `json:"emotions"`
}

// SaveEntryRequest persists one analyzed diary session. Date is ISO
// yyyy-mm-dd; when empty the server uses today's date.
type SaveEntryRequest struct {
	Date     string        `json:"date"`
	Turns    []Turn        `json:"turns"`
	Summary  string        `json:"summary"`
	Emotions EmotionScores `json:"emotions"`
}

// SaveEntryResponse returns the identifier of the newly created entry.
type SaveEntryResponse struct {
	EntryID int64 `json:"entry_id"`
}
