package dom

import (
	"encoding/json"
	"fmt"
	"strings"

	"browser-runner/internal/domain/entity"
)

const MaxUIElements = 500

// UIElementsScript is evaluated in the page and returns a JSON array of
// visible interactive elements, each with a CSS selector that resolves back
// to it.
const UIElementsScript = `() => {
  const groups = [
    ["button", "button, [role='button'], [data-tooltip], [aria-label]:not([aria-label=''])"],
    ["input", "input, textarea, select"],
    ["link", "a"],
  ];
  const seen = new Set();
  const out = [];
  const cssPath = (el) => {
    if (el.id) return "#" + CSS.escape(el.id);
    const parts = [];
    while (el && el.nodeType === 1 && el !== document.body) {
      let part = el.tagName.toLowerCase();
      const parent = el.parentElement;
      if (parent) {
        const same = Array.from(parent.children).filter((c) => c.tagName === el.tagName);
        if (same.length > 1) part += ":nth-of-type(" + (same.indexOf(el) + 1) + ")";
      }
      parts.unshift(part);
      el = parent;
    }
    return "body > " + parts.join(" > ");
  };
  for (const [type, sel] of groups) {
    for (const el of document.querySelectorAll(sel)) {
      if (out.length >= %d) return JSON.stringify(out);
      const rect = el.getBoundingClientRect();
      if (rect.width === 0 || rect.height === 0) continue;
      const selector = cssPath(el);
      if (seen.has(selector)) continue;
      seen.add(selector);
      out.push({
        type: type,
        text: (el.innerText || el.value || "").trim().slice(0, 100),
        aria_label: el.getAttribute("aria-label") || "",
        role: el.getAttribute("role") || "",
        selector: selector,
      });
    }
  }
  return JSON.stringify(out);
}`

// UIElementsJS returns UIElementsScript with the element cap filled in.
func UIElementsJS() string {
	return fmt.Sprintf(UIElementsScript, MaxUIElements)
}

// ParseUIElements decodes the script result and assigns stable IDs.
func ParseUIElements(raw string) ([]entity.UIElement, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var elements []entity.UIElement
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		return nil, fmt.Errorf("decode ui elements: %w", err)
	}

	for i := range elements {
		elements[i].ID = fmt.Sprintf("ui-%04d", i)
	}
	return elements, nil
}

// ScrollScript maps a direction onto a window.scroll call.
func ScrollScript(direction string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(direction)) {
	case "down":
		return `() => window.scrollBy(0, window.innerHeight * 2)`, nil
	case "up":
		return `() => window.scrollBy(0, -window.innerHeight * 2)`, nil
	case "top":
		return `() => window.scrollTo(0, 0)`, nil
	case "bottom":
		return `() => window.scrollTo(0, document.body.scrollHeight)`, nil
	default:
		return "", fmt.Errorf("%w: %s", entity.ErrUnknownScrollDir, direction)
	}
}

// IsXPath reports whether a selector should be resolved as XPath.
func IsXPath(selector string) bool {
	return strings.HasPrefix(selector, "/") || strings.HasPrefix(selector, "xpath=")
}

// TrimXPath strips the optional "xpath=" prefix.
func TrimXPath(selector string) string {
	return strings.TrimPrefix(selector, "xpath=")
}
