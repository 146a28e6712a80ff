// Package links finds and validates URLs in post captions and strips
// promotional noise from them. The cleaning rules are heuristic and were
// tuned against real channel posts; changing them changes which posts
// get published.
package links

import (
	"regexp"
	"strings"

	"github.com/samber/lo"
)

var urlPattern = regexp.MustCompile(`https?://[^\s]+`)

// junkPatterns match marketing boilerplate that must not end up in the
// published post body. All matching is case-insensitive.
var junkPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)watch\s+online`),
	regexp.MustCompile(`(?i)watch\s+(?:&|and)\s+download`),
	regexp.MustCompile(`(?i)full\s+video\s*(?:👇|⬇️|⤵️)*`),
	regexp.MustCompile(`(?i)link\s+in\s+(?:bio|comments?)`),
	regexp.MustCompile(`(?i)join\s+(?:us|now|fast|@\S+)`),
	regexp.MustCompile(`(?i)subscribe\s+(?:to\s+)?@?\S*`),
	regexp.MustCompile(`(?i)shared?\s+(?:&|and)\s+support`),
	regexp.MustCompile(`(?i)backup\s+channel`),
	regexp.MustCompile(`(?i)@\w+`),
	regexp.MustCompile(`#\w+`),
	regexp.MustCompile(`[👇⬇️⤵️👉➡️🔽]+`),
}

// ExtractURLs returns every http(s) URL in text in order of first
// appearance. Duplicates are retained.
func ExtractURLs(text string) []string {
	return urlPattern.FindAllString(text, -1)
}

// FilterByAllowlist keeps URLs that contain any of the allowed domain
// fragments as a substring, preserving input order. The match is
// deliberately loose so shortener redirects and mirror paths still pass.
func FilterByAllowlist(urls []string, domains []string) []string {
	return lo.Filter(urls, func(u string, _ int) bool {
		lower := strings.ToLower(u)
		return lo.SomeBy(domains, func(d string) bool {
			return d != "" && strings.Contains(lower, d)
		})
	})
}

// CleanCaption removes URLs and junk phrases from a caption, then
// collapses it to non-empty trimmed lines. The result may be empty.
func CleanCaption(caption string) string {
	text := urlPattern.ReplaceAllString(caption, "")
	for _, p := range junkPatterns {
		text = p.ReplaceAllString(text, "")
	}

	lines := lo.FilterMap(strings.Split(text, "\n"), func(line string, _ int) (string, bool) {
		line = strings.TrimSpace(line)
		return line, line != ""
	})
	return strings.Join(lines, "\n")
}

// DeriveTitle returns the first non-empty line of a cleaned caption,
// or fallback if the caption is empty.
func DeriveTitle(cleaned, fallback string) string {
	for _, line := range strings.Split(cleaned, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return fallback
}
