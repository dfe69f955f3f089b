package llm

import (
	"math"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// promptInflation pads token estimates to absorb tokenizer drift between
// the local estimate and the provider's own accounting.
const promptInflation = 1.05

var (
	encoderMu    sync.Mutex
	encoderCache = make(map[string]*tiktoken.Tiktoken)
)

// encodingFor picks the BPE encoding for a model family. Models we have no
// tokenizer data for fall back to cl100k_base.
func encodingFor(modelName string) string {
	switch {
	case strings.Contains(modelName, "4o"),
		strings.Contains(modelName, "4.1"),
		strings.HasPrefix(modelName, "gpt-5"),
		strings.HasPrefix(modelName, "o1"),
		strings.HasPrefix(modelName, "o3"),
		strings.HasPrefix(modelName, "o4"):
		return "o200k_base"
	default:
		return "cl100k_base"
	}
}

func encoderFor(modelName string) *tiktoken.Tiktoken {
	name := encodingFor(modelName)
	encoderMu.Lock()
	defer encoderMu.Unlock()
	if enc, ok := encoderCache[name]; ok {
		return enc
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		// Tokenizer data may be unavailable; callers fall back to the
		// character heuristic.
		encoderCache[name] = nil
		return nil
	}
	encoderCache[name] = enc
	return enc
}

// CountTokens counts the tokens in text using the tokenizer matching the
// model family. It never fails: without tokenizer data it approximates at
// four characters per token.
func CountTokens(modelName, text string) int {
	if enc := encoderFor(modelName); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

func approxTokens(text string) int {
	return (len(text) + 3) / 4
}

// EstimatePromptTokens counts the tokens in an assembled prompt and
// inflates the result by the engine's safety factor.
func EstimatePromptTokens(modelName, text string) int {
	return inflate(CountTokens(modelName, text))
}

func inflate(tokens int) int {
	return int(math.Ceil(float64(tokens) * promptInflation))
}
