package utils

import (
	"github.com/pkoukk/tiktoken-go"
)

func NumTokensFromMessages(text string) (int, error) {
	tkm, err := tiktoken.EncodingForModel("gpt-4-0613")
	if err != nil {
		return 0, err
	}

	return len(tkm.Encode(text, nil, nil)), nil
}

// CompletionBudget sizes max_completion_tokens for a response expected to be roughly
// perPage tokens for each of n pages, never below floor.
func CompletionBudget(n, perPage, floor int) int64 {
	return int64(max(n*perPage, floor))
}
