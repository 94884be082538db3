package entity

import "encoding/base64"

type PageContent struct {
	URL        string
	Title      string
	HTML       string
	UIElements []UIElement
}

type UIElement struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	AriaLabel string `json:"aria_label,omitempty"`
	Role      string `json:"role,omitempty"`
	Selector  string `json:"selector"`
}

type Screenshot struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// DataURL encodes the image as a data URL, the form vision models accept
// inline.
func (s Screenshot) DataURL() string {
	format := s.Format
	if format == "" {
		format = "jpeg"
	}
	return "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(s.Data)
}
