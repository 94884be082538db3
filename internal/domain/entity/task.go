package entity

import "time"

type TaskStatus string

const (
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// AgentResult is what an agent reports after its loop ends.
type AgentResult struct {
	FinalAnswer string
	Success     bool
	Steps       int
	Evaluation  *EvaluationResult
}

// RunResult is the outcome of one runner invocation.
type RunResult struct {
	Task     string
	Status   TaskStatus
	Agent    *AgentResult
	Duration time.Duration
}

// EvaluationResult is a second opinion on a finished run.
type EvaluationResult struct {
	Success     bool     `json:"success"`
	Confidence  float64  `json:"confidence"`
	Issues      []string `json:"issues"`
	Feedback    string   `json:"feedback"`
	ShouldRetry bool     `json:"should_retry"`
}

type EvaluationCriteria struct {
	TaskDescription string
	ActualResult    string
}
