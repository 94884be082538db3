package output

import (
	"context"

	"browser-runner/internal/domain/entity"
)

// ToolPort is an action the agent can take. Execute returns the
// observation shown to the model; an error is shown to the model as well
// and counts as a failed step.
type ToolPort interface {
	Name() entity.ToolName
	Description() string
	// Parameters is the JSON schema of the arguments object.
	Parameters() map[string]interface{}
	Execute(ctx context.Context, arguments string) (string, error)
}

// ImageToolPort is a tool whose observation includes an image. The text
// answers the tool call; the image reaches the model as image content.
type ImageToolPort interface {
	ToolPort
	ExecuteImage(ctx context.Context, arguments string) (string, *entity.Screenshot, error)
}

type ToolRegistry interface {
	Register(tool ToolPort)
	Get(name entity.ToolName) (ToolPort, bool)
	All() []ToolPort
	Definitions() []entity.ToolDefinition
}
