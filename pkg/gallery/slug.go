package gallery

import (
	"strings"
	"unicode"
)

// Slugify derives a stable album slug from a folder name: lowercase ASCII
// letters and digits, hyphen-separated, no leading/trailing or doubled
// hyphens. The result is identical across runs for the same folder name.
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// TitleFromFolder turns a folder name into a display title: separators
// become spaces and each word is capitalized.
func TitleFromFolder(name string) string {
	repl := strings.NewReplacer("-", " ", "_", " ")
	words := strings.Fields(repl.Replace(name))
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}

// webPath joins path segments into a web-relative, forward-slash path
// rooted at the variant tree.
func webPath(segments ...string) string {
	return "/" + strings.Join(segments, "/")
}
