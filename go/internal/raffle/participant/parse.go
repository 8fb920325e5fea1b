package participant

import "strings"

// Parse splits raw text into trimmed, non-empty lines. Order and duplicates
// are preserved.
func Parse(text string) []string {
	lines := strings.Split(text, "\n")
	names := make([]string, 0, len(lines))
	for _, line := range lines {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
