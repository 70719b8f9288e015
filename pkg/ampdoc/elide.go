package ampdoc

import (
	"regexp"
	"strings"
)

// RemovedBlockMarker replaces every optional block that was elided.
const RemovedBlockMarker = "<!-- removed optional image block -->"

// RewritePass rewrites doc with respect to one exact literal (an image URL)
// and returns the new document. Passes never mutate their input.
type RewritePass func(doc, literal string) string

// imagePattern matches a single <img> or <amp-img> whose src is exactly url.
// Tag names are case-insensitive, the url is not.
func imagePattern(url string) string {
	src := `\ssrc\s*=\s*["'](?-i:` + regexp.QuoteMeta(url) + `)["'][^>]*>`
	return `(?:<img\b[^>]*?` + src + `|<amp-img\b[^>]*?` + src + `(?:\s*</amp-img\s*>)?)`
}

// wrappedPattern matches a <tag> element whose only content is the image,
// optionally inside a single <a> element.
func wrappedPattern(tag, url string) *regexp.Regexp {
	img := imagePattern(url)
	return regexp.MustCompile(`(?i)<` + tag + `\b[^>]*>\s*(?:<a\b[^>]*>\s*` + img + `\s*</a\s*>|` + img + `)\s*</` + tag + `\s*>`)
}

// ElideContainer replaces each <div> (with an optional link wrapper) whose
// only content is the image pointing at url.
func ElideContainer(doc, url string) string {
	return wrappedPattern("div", url).ReplaceAllLiteralString(doc, RemovedBlockMarker)
}

// ElideTableCell does the same as ElideContainer for <td> cells.
func ElideTableCell(doc, url string) string {
	return wrappedPattern("td", url).ReplaceAllLiteralString(doc, RemovedBlockMarker)
}

var (
	ampImgTagPattern    = regexp.MustCompile(`(?i)<(/?)amp-img\b[^>]*>`)
	ampImgClosedPattern = regexp.MustCompile(`(?i)(?:</amp-img\s*|/)>$`)
)

// StripImage removes image tags pointing at url and leaves the surrounding
// markup alone. An <amp-img> with children (a fallback or placeholder
// element) is removed through its closing tag; when another <amp-img> opens
// before that closing tag, or the tag is self-closing, only the tag goes.
func StripImage(doc, url string) string {
	re := regexp.MustCompile(`(?i)` + imagePattern(url))
	matches := re.FindAllStringIndex(doc, -1)
	if len(matches) == 0 {
		return doc
	}

	var b strings.Builder
	last := 0
	for _, loc := range matches {
		if loc[0] < last {
			continue
		}
		b.WriteString(doc[last:loc[0]])
		last = loc[1]
		tag := doc[loc[0]:loc[1]]
		if hasPrefixFold(tag, "<amp-img") && !ampImgClosedPattern.MatchString(tag) {
			last = ampImgEnd(doc, loc[1])
		}
	}
	b.WriteString(doc[last:])
	return b.String()
}

// ampImgEnd returns the offset just past the </amp-img> closing the element
// opened before from, or from when the next amp-img tag is not a closing one.
func ampImgEnd(doc string, from int) int {
	loc := ampImgTagPattern.FindStringSubmatchIndex(doc[from:])
	if loc == nil || loc[3] == loc[2] {
		return from
	}
	return from + loc[1]
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

var emptyContainerPattern = regexp.MustCompile(`(?i)<div\b[^>]*>((?:\s|` + regexp.QuoteMeta(RemovedBlockMarker) + `)*)</div\s*>`)

// SweepEmptyContainers removes <div> elements whose body is empty or holds
// only removed-block markers. The markers are kept in place of the div.
// It repeats until nothing changes so nested empty wrappers collapse too.
//
// The sweep does not know which divs elision emptied: a div that was
// already empty in the template, such as a sized spacer, is removed as
// well. ElideWith only sweeps when a placeholder was present, so a
// document with nothing to elide keeps its empty divs.
func SweepEmptyContainers(doc string) string {
	for {
		next := emptyContainerPattern.ReplaceAllStringFunc(doc, func(m string) string {
			body := emptyContainerPattern.FindStringSubmatch(m)[1]
			return strings.Repeat(RemovedBlockMarker, strings.Count(body, RemovedBlockMarker))
		})
		if next == doc {
			return doc
		}
		doc = next
	}
}

// DefaultPasses is the order in which elision rewrites are applied to each
// placeholder url.
var DefaultPasses = []RewritePass{ElideContainer, ElideTableCell, StripImage}

// Elide removes the optional blocks that only host one of the placeholder
// urls, then sweeps containers left empty. Running it twice with the same
// placeholders yields the same document.
func Elide(doc string, placeholders []string) string {
	return ElideWith(doc, placeholders, DefaultPasses...)
}

// ElideWith is Elide with an explicit pass list.
func ElideWith(doc string, placeholders []string, passes ...RewritePass) string {
	touched := false
	for _, url := range placeholders {
		if url == "" || !strings.Contains(doc, url) {
			continue
		}
		touched = true
		for _, pass := range passes {
			doc = pass(doc, url)
		}
	}
	if !touched {
		return doc
	}
	return SweepEmptyContainers(doc)
}
