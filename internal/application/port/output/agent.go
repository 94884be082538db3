package output

import (
	"context"

	"browser-runner/internal/domain/entity"
)

// Agent pairs a task with a model client and a browser handle. An Agent is
// built for one run and is not reused.
type Agent interface {
	Run(ctx context.Context) (*entity.AgentResult, error)
}

// AgentSpec is everything an agent is constructed from.
type AgentSpec struct {
	Task    string
	LLM     LLMPort
	Browser BrowserPort
}
