package main

import (
	"regexp"
	"strings"
)

const excerptMaxWords = 40

var (
	fencedBlockPattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern  = regexp.MustCompile("`([^`]*)`")
	imagePattern       = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	linkPattern        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	punctuationPattern = regexp.MustCompile(`[#>*_~\-]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

func stripMarkdown(markdown string) string {
	plain := fencedBlockPattern.ReplaceAllString(markdown, "")
	plain = inlineCodePattern.ReplaceAllString(plain, "$1")
	plain = imagePattern.ReplaceAllString(plain, "")
	plain = linkPattern.ReplaceAllString(plain, "$1")
	plain = punctuationPattern.ReplaceAllString(plain, "")
	plain = whitespacePattern.ReplaceAllString(plain, " ")
	return strings.TrimSpace(plain)
}

// buildExcerpt derives the plain-text summary stored alongside a post.
// It is recomputed on every save so it can never go stale.
func buildExcerpt(markdown string) string {
	plain := stripMarkdown(markdown)
	if plain == "" {
		return ""
	}
	words := strings.Split(plain, " ")
	if len(words) <= excerptMaxWords {
		return plain
	}
	return strings.Join(words[:excerptMaxWords], " ") + "…"
}
