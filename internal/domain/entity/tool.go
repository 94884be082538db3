package entity

type ToolName = string

const (
	ToolNavigate    ToolName = "navigate"
	ToolClick       ToolName = "click"
	ToolFill        ToolName = "fill"
	ToolPressEnter  ToolName = "press_enter"
	ToolScroll      ToolName = "scroll"
	ToolExtractText ToolName = "extract_text"
	ToolUISummary   ToolName = "ui_summary"
	ToolScreenshot  ToolName = "screenshot"
	ToolDone        ToolName = "done"
)

// DoneArgs are the arguments of the done tool, which ends the agent loop.
type DoneArgs struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
}
