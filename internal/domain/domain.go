package domain

import "strings"

// Article is one search hit from the news provider. PublishedAt is kept in the
// provider's own format and is never parsed.
type Article struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
}

type SentimentLabel string

const (
	SentimentPositive SentimentLabel = "Positive"
	SentimentNegative SentimentLabel = "Negative"
	SentimentNeutral  SentimentLabel = "Neutral"
)

// Is compares labels case-insensitively. Whitespace is significant.
func (l SentimentLabel) Is(other SentimentLabel) bool {
	return strings.EqualFold(string(l), string(other))
}

type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

type NoticeLevel string

const (
	NoticeSuccess NoticeLevel = "success"
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notice is an inline, user-visible message produced during a run.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Card is the rendered outcome for a single article.
type Card struct {
	Article         Article        `json:"article"`
	Summary         string         `json:"summary"`
	Sentiment       SentimentLabel `json:"sentiment"`
	Action          Action         `json:"action"`
	SummaryFailed   bool           `json:"summary_failed,omitempty"`
	SentimentFailed bool           `json:"sentiment_failed,omitempty"`
}

// Report is everything one analysis run rendered, in emission order.
type Report struct {
	Query   string   `json:"query"`
	Notices []Notice `json:"notices"`
	Cards   []Card   `json:"cards"`
}

// Actions returns the suggested action of each card in order.
func (r *Report) Actions() []Action {
	out := make([]Action, 0, len(r.Cards))
	for _, c := range r.Cards {
		out = append(out, c.Action)
	}
	return out
}

// HasLevel reports whether any notice of the given level was emitted.
func (r *Report) HasLevel(level NoticeLevel) bool {
	for _, n := range r.Notices {
		if n.Level == level {
			return true
		}
	}
	return false
}
