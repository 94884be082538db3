package output

import "context"

// ProgressReporter shows the agent loop to a human. Implementations must
// not block the loop.
type ProgressReporter interface {
	ShowStep(ctx context.Context, step, maxSteps int)
	ShowThinking(ctx context.Context, content string)
	ShowToolStart(ctx context.Context, toolName, arguments string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
}
