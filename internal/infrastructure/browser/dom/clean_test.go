package dom

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/domain/entity"
)

func TestCleanHTML_RemovesScriptStyle(t *testing.T) {
	out := CleanHTML(`<body><div id="main">Hello</div><script>alert("hi")</script><style>.x {}</style></body>`, nil)

	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "<style")
	assert.Contains(t, out, `id="main"`)
}

func TestCleanHTML_RemovesComments(t *testing.T) {
	out := CleanHTML(`<body><!-- secret comment --><div>Text</div></body>`, nil)
	assert.NotContains(t, out, "secret comment")
	assert.Contains(t, out, "Text")
}

func TestCleanHTML_FiltersAttributes(t *testing.T) {
	out := CleanHTML(`<body><a href="https://example.com" class="link" data-x="1" aria-hidden="true" aria-label="Shop" onclick="go()" style="color:red">Go</a></body>`, nil)

	assert.Contains(t, out, `href="https://example.com"`)
	assert.Contains(t, out, `class="link"`)
	assert.Contains(t, out, `aria-label="Shop"`)
	assert.NotContains(t, out, "data-x")
	assert.NotContains(t, out, "aria-hidden")
	assert.NotContains(t, out, "onclick")
	assert.NotContains(t, out, "style=")
}

func TestCleanHTML_Truncates(t *testing.T) {
	cfg := DefaultCleanConfig
	cfg.MaxOutputSize = 20

	out := CleanHTML("<body><p>"+strings.Repeat("x", 200)+"</p></body>", &cfg)
	assert.True(t, strings.HasSuffix(out, "<!-- HTML truncated -->"))
}

func TestVisibleText_TruncatesOnRuneBoundary(t *testing.T) {
	text := VisibleText(`<body><p>Привет мир</p></body>`, 3)
	assert.Equal(t, "П\n... (truncated)", text)

	assert.Equal(t, "Grö<!-- cut -->", truncate("Größe", 5, "<!-- cut -->"))
	assert.Equal(t, "Gr<!-- cut -->", truncate("Größe", 3, "<!-- cut -->"))
}

func TestVisibleText(t *testing.T) {
	text := VisibleText(`<html><head><title>Shop</title></head><body>
		<h1>  Longevity   drink </h1>
		<script>var hidden = 1;</script>
		<button>Buy now</button>
	</body></html>`, 0)

	assert.Equal(t, "Longevity drink\nBuy now", text)
}

func TestParseUIElements(t *testing.T) {
	elements, err := ParseUIElements(`[{"type":"button","text":"Buy","selector":"#buy"},{"type":"link","text":"Home","selector":"body > a"}]`)
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "ui-0000", elements[0].ID)
	assert.Equal(t, "ui-0001", elements[1].ID)
	assert.Equal(t, "#buy", elements[0].Selector)

	empty, err := ParseUIElements("  ")
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = ParseUIElements("{")
	assert.Error(t, err)
}

func TestScrollScript(t *testing.T) {
	for _, dir := range []string{"up", "down", "TOP", " bottom "} {
		_, err := ScrollScript(dir)
		assert.NoError(t, err, dir)
	}

	_, err := ScrollScript("sideways")
	assert.ErrorIs(t, err, entity.ErrUnknownScrollDir)
}

func TestUIElementsJS_FillsLimit(t *testing.T) {
	assert.Contains(t, UIElementsJS(), "out.length >= 500")
}

func TestIsXPath(t *testing.T) {
	assert.True(t, IsXPath("//button[text()='Buy']"))
	assert.True(t, IsXPath("xpath=//a"))
	assert.False(t, IsXPath("button#buy"))
	assert.Equal(t, "//a", TrimXPath("xpath=//a"))
}
