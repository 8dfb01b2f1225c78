package advisor

const DefaultModel = "gpt-3.5-turbo"

type prompt struct {
	system      string
	maxTokens   int64
	temperature float64
}

var (
	summarizePrompt = prompt{
		system:      "Summarize the following article in 2 short sentences.",
		maxTokens:   60,
		temperature: 0.5,
	}
	classifyPrompt = prompt{
		system:      "Determine the sentiment as Positive, Negative, or Neutral.",
		maxTokens:   5,
		temperature: 0,
	}
)
