package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"browser-runner/internal/domain/entity"
)

func TestOpen_UnknownDriver(t *testing.T) {
	b, err := Open(context.Background(), entity.BrowserConfig{Driver: "netscape"})
	assert.Nil(t, b)
	assert.ErrorContains(t, err, `unknown browser driver "netscape"`)
}

func TestOpen_PlaywrightHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Open(ctx, entity.BrowserConfig{Driver: entity.DriverPlaywright})
	assert.ErrorIs(t, err, context.Canceled)
}
