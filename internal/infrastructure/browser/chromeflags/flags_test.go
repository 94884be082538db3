package chromeflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in, name, value string
	}{
		{"--profile-directory=Default", "profile-directory", "Default"},
		{"--disable-gpu", "disable-gpu", ""},
		{"  -lang=de ", "lang", "de"},
		{"--window-size=1280,720", "window-size", "1280,720"},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, value := Split(tt.in)
		assert.Equal(t, tt.name, name, tt.in)
		assert.Equal(t, tt.value, value, tt.in)
	}
}

func TestParse(t *testing.T) {
	flags := Parse([]string{"--profile-directory=Default", "", "--", "--disable-gpu"})

	assert.Equal(t, []Flag{
		{Name: "profile-directory", Value: "Default"},
		{Name: "disable-gpu"},
	}, flags)
	assert.Equal(t, "--profile-directory=Default", flags[0].String())
	assert.Equal(t, "--disable-gpu", flags[1].String())
}
