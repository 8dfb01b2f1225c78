package advisor

import (
	"strings"
	"unicode"

	"stock-news-analyzer/internal/domain"
)

// CleanLabel strips whitespace, quotes and trailing sentence punctuation from a
// model reply, so "Positive." and "\"Negative\"" compare as labels.
func CleanLabel(reply string) domain.SentimentLabel {
	cleaned := strings.TrimFunc(reply, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`."'!*`+"`", r)
	})
	return domain.SentimentLabel(cleaned)
}

// SuggestAction maps a sentiment label to a trading suggestion. Matching is
// case-insensitive and every other label, including "", is Hold.
func SuggestAction(label domain.SentimentLabel) domain.Action {
	switch {
	case label.Is(domain.SentimentPositive):
		return domain.ActionBuy
	case label.Is(domain.SentimentNegative):
		return domain.ActionSell
	default:
		return domain.ActionHold
	}
}
