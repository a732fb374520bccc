package transcription

import (
	"fmt"
	"strconv"
)

// Pricing holds USD rates per one million tokens.
type Pricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

type Cost struct {
	Input  float64
	Output float64
	Total  float64
}

func CalculateCost(inputTokens, outputTokens int, pricing Pricing) Cost {
	in := float64(inputTokens) / 1_000_000 * pricing.InputPerMillion
	out := float64(outputTokens) / 1_000_000 * pricing.OutputPerMillion
	return Cost{Input: in, Output: out, Total: in + out}
}

// Result is the outcome of a successful transcription.
type Result struct {
	Text         string  `json:"text"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	InputCost    float64 `json:"input_cost"`
	OutputCost   float64 `json:"output_cost"`
	TotalCost    float64 `json:"total_cost"`
}

func NewResult(text string, usage Usage, pricing Pricing) Result {
	cost := CalculateCost(usage.InputTokens, usage.OutputTokens, pricing)
	return Result{
		Text:         text,
		InputTokens:  usage.InputTokens,
		OutputTokens: usage.OutputTokens,
		TotalTokens:  usage.TotalTokens,
		InputCost:    cost.Input,
		OutputCost:   cost.Output,
		TotalCost:    cost.Total,
	}
}

// FormattedStats renders e.g. "Tokens: 1,234 input / 56 output | Cost: $0.0012".
func (r Result) FormattedStats() string {
	return fmt.Sprintf("Tokens: %s input / %s output | Cost: $%.4f",
		groupThousands(r.InputTokens), groupThousands(r.OutputTokens), r.TotalCost)
}

func groupThousands(n int) string {
	s := strconv.Itoa(n)
	sign := ""
	if n < 0 {
		sign, s = "-", s[1:]
	}
	if len(s) <= 3 {
		return sign + s
	}

	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	out := s[:head]
	for i := head; i < len(s); i += 3 {
		out += "," + s[i:i+3]
	}
	return sign + out
}
