package prompts

import (
	"bytes"
	"sort"
	"strings"
	"text/template"

	"browser-runner/internal/domain/entity"
)

type ToolInfo struct {
	Name        string
	Description string
}

type SystemPromptData struct {
	Tools          []ToolInfo
	AllowedDomains []string
	UseVision      bool
}

// GenerateSystemPrompt renders baseTemplate with the agent's tools. Tools
// are listed by name so the same setup always yields the same prompt.
func GenerateSystemPrompt(baseTemplate string, tools []entity.ToolDefinition, allowedDomains []string, useVision bool) (string, error) {
	infos := make([]ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, ToolInfo{Name: t.Name, Description: t.Description})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})

	data := SystemPromptData{
		Tools:          infos,
		AllowedDomains: allowedDomains,
		UseVision:      useVision,
	}

	tmpl, err := template.New("system").Funcs(template.FuncMap{"join": strings.Join}).Parse(baseTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
