package textutil

import "strings"

// labelReplacer maps characters that are unsafe in file names.
var labelReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// LabelFileName converts a rendered record label into a file name with the
// given extension. Whitespace runs collapse to a single underscore. An empty
// label yields an empty name so callers can fall back to the artifact ID.
func LabelFileName(label, ext string) string {
	cleaned := strings.TrimSpace(labelReplacer.Replace(label))
	if cleaned == "" {
		return ""
	}
	cleaned = strings.Join(strings.Fields(cleaned), "_")
	cleaned = strings.Trim(cleaned, ".")
	if cleaned == "" {
		return ""
	}
	ext = strings.TrimSpace(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return cleaned + ext
}

// SanitizeToken lowercases value and replaces anything other than letters,
// digits, hyphens and underscores with an underscore. Used for identifiers
// derived from free text such as artifact IDs built from source paths.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-")
	if out == "" {
		return "unknown"
	}
	return out
}
