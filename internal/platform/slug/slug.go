package slug

import (
	"strings"
	"unicode"
)

const maxRunes = 48

// Make lowercases input and joins runs of letters and digits with dashes.
// Non-Latin letters are kept so category names in any script stay readable.
func Make(input string) string {
	var b strings.Builder
	count := 0
	pendingDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(input)) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingDash = count > 0
			continue
		}
		if pendingDash {
			if count+1 >= maxRunes {
				break
			}
			b.WriteRune('-')
			count++
			pendingDash = false
		}
		if count >= maxRunes {
			break
		}
		b.WriteRune(r)
		count++
	}
	if b.Len() == 0 {
		return "untitled"
	}
	return b.String()
}
