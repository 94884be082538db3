package tool_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/adapter/tool"
	"browser-runner/internal/application/service"
	"browser-runner/internal/domain/entity"
	"browser-runner/internal/infrastructure/browser"
	"browser-runner/internal/infrastructure/logger"
)

const storeHTML = `<!DOCTYPE html>
<html>
<head><title>Blueprint Store</title></head>
<body>
	<form id="search" onsubmit="event.preventDefault(); document.getElementById('hits').textContent = 'Results for ' + document.getElementById('q').value;">
		<input id="q" name="q" type="text" aria-label="Search" />
	</form>
	<p id="hits"></p>
	<button id="add" onclick="document.getElementById('cart').textContent = 'Cart: 1 item'">Add to cart</button>
	<p id="cart">Cart: empty</p>
</body>
</html>`

func TestBrowserTools_AgainstRealBrowser(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, storeHTML)
	}))
	defer server.Close()

	ctx := context.Background()
	b, err := browser.Open(ctx, entity.BrowserConfig{
		Driver:   entity.DriverRod,
		Headless: true,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Skipf("browser not available: %v", err)
	}
	defer b.Close()

	registry := service.NewToolRegistry(tool.NewBrowserTools(b, logger.NewNop(), tool.Options{
		AllowedDomains: []string{"127.0.0.1"},
	})...)

	exec := func(name, args string) string {
		t.Helper()
		tl, ok := registry.Get(name)
		require.True(t, ok, name)
		out, err := tl.Execute(ctx, args)
		require.NoError(t, err, name)
		return out
	}

	out := exec(entity.ToolNavigate, fmt.Sprintf(`{"url":%q}`, server.URL))
	assert.True(t, strings.HasPrefix(out, "Navigated to "+server.URL))

	summary := exec(entity.ToolUISummary, "{}")
	assert.Contains(t, summary, `"aria_label": "Search"`)
	assert.Contains(t, summary, "Add to cart")

	exec(entity.ToolFill, `{"selector":"#q","text":"longevity mix"}`)
	exec(entity.ToolPressEnter, "{}")
	exec(entity.ToolClick, `{"selector":"#add"}`)

	text := exec(entity.ToolExtractText, "{}")
	assert.Contains(t, text, "Title: Blueprint Store")
	assert.Contains(t, text, "Results for longevity mix")
	assert.Contains(t, text, "Cart: 1 item")

	nav, _ := registry.Get(entity.ToolNavigate)
	_, err = nav.Execute(ctx, `{"url":"https://example.com"}`)
	assert.ErrorIs(t, err, entity.ErrDomainNotAllowed)
}
