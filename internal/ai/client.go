package ai

import "context"

const defaultMaxTokens = 4096

// Client sends one generation request and returns the model text and the raw provider reply.
type Client interface {
	Generate(ctx context.Context, request Request) (string, []byte, error)
}

func resolveMaxTokens(value int) int {
	if value > 0 {
		return value
	}

	return defaultMaxTokens
}
