package batch

import (
	"fmt"
	"sort"
)

// Rate is a model's published price in USD per million tokens.
type Rate struct {
	Input  float64
	Output float64
}

// rates lists published per-million-token prices.
// https://docs.anthropic.com/en/docs/about-claude/pricing
var rates = map[string]Rate{
	"claude-3-haiku-20240307":    {Input: 0.25, Output: 1.25},
	"claude-3-sonnet-20240229":   {Input: 3.0, Output: 15.0},
	"claude-3-opus-20240229":     {Input: 15.0, Output: 75.0},
	"claude-3-5-haiku-20241022":  {Input: 0.8, Output: 4.0},
	"claude-3-5-sonnet-20241022": {Input: 3.0, Output: 15.0},
	"claude-3-7-sonnet-20250219": {Input: 3.0, Output: 15.0},
	"claude-sonnet-4-20250514":   {Input: 3.0, Output: 15.0},
	"claude-opus-4-20250514":     {Input: 15.0, Output: 75.0},
	"claude-opus-4-1-20250805":   {Input: 15.0, Output: 75.0},
	"claude-sonnet-4-5-20250929": {Input: 3.0, Output: 15.0},
	"claude-haiku-4-5-20251001":  {Input: 1.0, Output: 5.0},
}

// Pricing returns the rate for model, or ErrUnknownModel.
func Pricing(model string) (Rate, error) {
	r, ok := rates[model]
	if !ok {
		return Rate{}, fmt.Errorf("%w: %s", ErrUnknownModel, model)
	}
	return r, nil
}

// KnownModels returns the priced model ids in sorted order.
func KnownModels() []string {
	models := make([]string, 0, len(rates))
	for m := range rates {
		models = append(models, m)
	}
	sort.Strings(models)
	return models
}

// Cost converts token counts to USD at rate r.
func (r Rate) Cost(inputTokens, outputTokens int) (input, output float64) {
	input = float64(inputTokens) / 1_000_000 * r.Input
	output = float64(outputTokens) / 1_000_000 * r.Output
	return input, output
}
