package mediafile

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// Filename patterns seen in the wild. Order matters: the first pattern whose
// captures are both non-empty wins.
var (
	titleByAuthorRE  = regexp.MustCompile(`(?i)^(.+?)\s+by\s+(.+)$`)
	titleDashRE      = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)
	titleParenRE     = regexp.MustCompile(`^(.+?)\s*\((.+)\)$`)
	trailingZlibRE   = regexp.MustCompile(`(?i)\s*\(z-?lib\.?org\)$`)
	hexIdentifierRE  = regexp.MustCompile(`^[0-9a-f-]{32,}$`)
	whitespaceRunRE  = regexp.MustCompile(`\s+`)
	separatorPairREs = []*regexp.Regexp{titleByAuthorRE, titleDashRE, titleParenRE}
)

// Marketplace decorations and duplicate-download suffixes stripped from
// otherwise unparseable stems.
var cleanupREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\s*\(z-?lib\.?org\)`),
	regexp.MustCompile(`\s*\(1\)`),
	regexp.MustCompile(`\s*\(2\)`),
	regexp.MustCompile(`(?i)\s*_z-lib\.org`),
	regexp.MustCompile(`(?i)\s*-\s*z-?lib\.?org`),
}

// ParseFilename derives a best-effort (title, author) pair from a filename.
// It never fails: when nothing recognizable is left, the cleaned stem becomes
// the title with author "Unknown". Opaque hex identifiers and stems that
// clean up to nothing produce the Unknown sentinels; the title is never empty.
func ParseFilename(filename string) (title, author string) {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))

	// Strip a trailing marketplace tag before trying separator patterns.
	name = trailingZlibRE.ReplaceAllString(name, "")

	// "Title by Author", "Title - Author", "Title (Author)".
	for _, re := range separatorPairREs {
		if m := re.FindStringSubmatch(name); m != nil {
			t := strings.TrimSpace(m[1])
			a := strings.TrimSpace(m[2])
			if t != "" && a != "" {
				return t, a
			}
		}
	}

	// "Author_Title": treat the first part as the author when it is
	// name-shaped (short, or contains an uppercase letter).
	if idx := strings.Index(name, "_"); idx > 0 && idx < len(name)-1 {
		first, rest := name[:idx], name[idx+1:]
		if len(first) < 30 || strings.ContainsFunc(first, unicode.IsUpper) {
			replacer := strings.NewReplacer("-", " ", "_", " ")
			return strings.TrimSpace(replacer.Replace(rest)), strings.TrimSpace(replacer.Replace(first))
		}
	}

	// Long hex tokens are opaque marketplace identifiers, not titles.
	if hexIdentifierRE.MatchString(strings.ToLower(name)) {
		return UnknownTitle, UnknownAuthor
	}

	for _, re := range cleanupREs {
		name = re.ReplaceAllString(name, "")
	}
	name = strings.TrimSpace(whitespaceRunRE.ReplaceAllString(name, " "))
	if name == "" {
		return UnknownTitle, UnknownAuthor
	}

	return name, "Unknown"
}
