package service

import (
	"strings"

	"github.com/praxis-legal/praxis/internal/port/llm"
)

// modelPrice is USD per million tokens.
type modelPrice struct {
	input  float64
	output float64
}

// priceTable maps model name prefixes to published per-token pricing.
// Longest prefix wins so dated model names resolve correctly.
var priceTable = map[string]modelPrice{
	"gpt-4o-mini":      {input: 0.15, output: 0.60},
	"gpt-4o":           {input: 2.50, output: 10.00},
	"gpt-4.1":          {input: 2.00, output: 8.00},
	"claude-opus-4":    {input: 15.00, output: 75.00},
	"claude-sonnet-4":  {input: 3.00, output: 15.00},
	"claude-3-5-haiku": {input: 0.80, output: 4.00},
	"gemini-2.0-flash": {input: 0.10, output: 0.40},
	"gemini-1.5-pro":   {input: 1.25, output: 5.00},
}

// estimateCost computes the USD cost of one completion from the price
// table. Unknown models cost zero rather than failing the run.
func estimateCost(model string, usage llm.Usage) float64 {
	var (
		price modelPrice
		match int
	)
	for prefix, p := range priceTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > match {
			price = p
			match = len(prefix)
		}
	}
	if match == 0 {
		return 0
	}
	return float64(usage.InputTokens)*price.input/1e6 + float64(usage.OutputTokens)*price.output/1e6
}
