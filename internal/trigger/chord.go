package trigger

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize canonicalizes a chord specification like "Ctrl+R" or
// "option+G" into the lowercase form used as the binding key, e.g.
// "ctrl+r" or "alt+g". Accepted modifiers are ctrl (control) and alt
// (option, meta); the final part must be a single letter or digit.
func Normalize(spec string) (string, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return "", fmt.Errorf("%w: empty chord", ErrBadBinding)
	}

	parts := strings.Split(spec, "+")
	keyPart := strings.ToLower(strings.TrimSpace(parts[len(parts)-1]))

	var ctrl, alt bool
	for _, p := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "ctrl", "control":
			ctrl = true
		case "alt", "option", "meta":
			alt = true
		default:
			return "", fmt.Errorf("%w: unknown modifier %q in %q", ErrBadBinding, p, spec)
		}
	}

	runes := []rune(keyPart)
	if len(runes) != 1 || (!unicode.IsLetter(runes[0]) && !unicode.IsDigit(runes[0])) {
		return "", fmt.Errorf("%w: key must be a single letter or digit, got %q", ErrBadBinding, keyPart)
	}

	var sb strings.Builder
	if ctrl {
		sb.WriteString("ctrl+")
	}
	if alt {
		sb.WriteString("alt+")
	}
	sb.WriteString(keyPart)
	return sb.String(), nil
}
