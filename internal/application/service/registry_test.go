package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/domain/entity"
)

type stubTool struct {
	name string
	desc string
}

func (s stubTool) Name() entity.ToolName { return s.name }
func (s stubTool) Description() string   { return s.desc }
func (s stubTool) Parameters() map[string]interface{} {
	return map[string]interface{}{"type": "object"}
}
func (s stubTool) Execute(context.Context, string) (string, error) { return s.name, nil }

func TestToolRegistry_SortedDefinitions(t *testing.T) {
	r := NewToolRegistry(stubTool{name: "scroll"}, stubTool{name: "click"}, stubTool{name: "navigate"})

	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "click", defs[0].Name)
	assert.Equal(t, "navigate", defs[1].Name)
	assert.Equal(t, "scroll", defs[2].Name)
}

func TestToolRegistry_RegisterReplaces(t *testing.T) {
	r := NewToolRegistry(stubTool{name: "click", desc: "old"})
	r.Register(stubTool{name: "click", desc: "new"})

	tool, ok := r.Get("click")
	require.True(t, ok)
	assert.Equal(t, "new", tool.Description())
	assert.Len(t, r.All(), 1)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
