package rod

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"browser-runner/internal/domain/entity"
)

const shopHTML = `<!DOCTYPE html>
<html>
<head><title>Drink Shop</title></head>
<body>
	<h1>Longevity drink</h1>
	<input id="qty" type="text" value="1" />
	<button id="buy" aria-label="Buy drink">Buy</button>
	<div id="result"></div>
	<a href="/cart" id="cart">Cart</a>
	<script>
		document.getElementById('buy').addEventListener('click', function() {
			document.getElementById('result').textContent = 'Bought ' + document.getElementById('qty').value;
		});
	</script>
</body>
</html>`

func newShopServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, shopHTML)
	}))
	t.Cleanup(server.Close)
	return server
}

// setupBrowser launches a headless browser from the launcher's own lookup
// and skips when none is available.
func setupBrowser(t *testing.T) *BrowserAdapter {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	adapter, err := NewBrowserAdapter(context.Background(), entity.BrowserConfig{
		Driver:   entity.DriverRod,
		Headless: true,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		t.Skipf("browser not available: %v", err)
	}
	t.Cleanup(func() { _ = adapter.Close() })
	return adapter
}

func TestNewLauncher_AppliesConfig(t *testing.T) {
	l := newLauncher(entity.BrowserConfig{
		ExecutablePath: "/usr/bin/google-chrome",
		ExtraArgs:      []string{"--profile-directory=Default", "--disable-gpu"},
		Headless:       true,
	})

	assert.Equal(t, "/usr/bin/google-chrome", l.Get(flags.Bin))
	assert.Equal(t, "Default", l.Get(flags.Flag("profile-directory")))
	assert.True(t, l.Has(flags.Flag("disable-gpu")))
	assert.True(t, l.Has(flags.Headless))
	assert.False(t, l.Has(flags.Flag("use-mock-keychain")))
}

func TestBrowserAdapter_Interactions(t *testing.T) {
	adapter := setupBrowser(t)
	server := newShopServer(t)
	ctx := context.Background()

	require.NoError(t, adapter.Navigate(ctx, server.URL))
	assert.Equal(t, server.URL+"/", adapter.CurrentURL())

	require.NoError(t, adapter.Fill(ctx, "#qty", "3"))
	require.NoError(t, adapter.Click(ctx, "//button[@id='buy']"))

	content, err := adapter.GetPageContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Drink Shop", content.Title)
	assert.Contains(t, content.HTML, "Bought 3")

	elements, err := adapter.GetUIElements(ctx)
	require.NoError(t, err)
	selectors := make([]string, 0, len(elements))
	for _, el := range elements {
		selectors = append(selectors, el.Selector)
	}
	assert.Contains(t, selectors, "#buy")
	assert.Contains(t, selectors, "#qty")
	assert.Contains(t, selectors, "#cart")

	require.NoError(t, adapter.Scroll(ctx, "down"))
	assert.ErrorIs(t, adapter.Scroll(ctx, "sideways"), entity.ErrUnknownScrollDir)

	shot, err := adapter.Screenshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", shot.Format)
	assert.NotEmpty(t, shot.Data)
}

func TestBrowserAdapter_ClickMissingElement(t *testing.T) {
	adapter := setupBrowser(t)
	server := newShopServer(t)
	ctx := context.Background()

	require.NoError(t, adapter.Navigate(ctx, server.URL))
	assert.Error(t, adapter.Click(ctx, "#does-not-exist"))
}

func TestBrowserAdapter_CloseIsIdempotent(t *testing.T) {
	adapter := setupBrowser(t)

	require.NoError(t, adapter.Close())
	assert.True(t, adapter.IsClosed())
	assert.NoError(t, adapter.Close())

	err := adapter.Navigate(context.Background(), "about:blank")
	assert.ErrorIs(t, err, entity.ErrBrowserClosed)
	assert.Equal(t, "", adapter.CurrentURL())
}
