package entity

type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// Message is one entry of a chat transcript. Assistant messages may carry
// tool calls; each call is answered by a RoleTool message with the same
// ToolCallID. Images travel as separate image parts next to Content, only
// on user messages.
type Message struct {
	Role       MessageRole
	Content    string
	Images     []Screenshot
	ToolCalls  []ToolCall
	ToolCallID string
	Name       string
}

func (m Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ToolResult answers call with content.
func ToolResult(call ToolCall, content string) Message {
	return Message{
		Role:       RoleTool,
		ToolCallID: call.ID,
		Name:       call.Name,
		Content:    content,
	}
}

// ImageMessage shows the model images it asked for with a tool call.
func ImageMessage(note string, images ...Screenshot) Message {
	return Message{Role: RoleUser, Content: note, Images: images}
}

// ToolDefinition describes a tool to the model. Parameters is a JSON schema.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
