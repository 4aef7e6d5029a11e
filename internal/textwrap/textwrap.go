// Package textwrap wraps path-like strings to a fixed number of terminal
// columns, measuring per-glyph display width rather than bytes or runes.
package textwrap

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// SchemePrefix is the object URI scheme handled specially by WrapPath.
const SchemePrefix = "s3://"

// WrapPath wraps s into lines of at most maxWidth display columns. Strings
// starting with SchemePrefix are wrapped segment-by-segment so that path
// segments stay intact whenever they fit; anything else is wrapped strictly
// glyph by glyph. A string that already fits is returned as a single line.
func WrapPath(s string, maxWidth int) []string {
	if runewidth.StringWidth(s) <= maxWidth {
		return []string{s}
	}
	if strings.HasPrefix(s, SchemePrefix) {
		return wrapPrefixed(s, SchemePrefix, maxWidth)
	}
	return WrapStrict(s, maxWidth)
}

// wrapPrefixed wraps a path that begins with a known ASCII prefix so that the
// first line starts with the prefix and each line carries as many whole
// '/'-separated segments as fit. A segment wider than maxWidth falls back to
// the strict splitter. Empty segments (consecutive delimiters) are dropped.
func wrapPrefixed(s, prefix string, maxWidth int) []string {
	var lines []string
	current := prefix

	// Wrap text strictly and keep the last chunk in current so later
	// segments can still be appended to it.
	appendWrapped := func(text string) {
		chunks := WrapStrict(text, maxWidth)
		if len(chunks) == 0 {
			return
		}
		lines = append(lines, chunks[:len(chunks)-1]...)
		current = chunks[len(chunks)-1]
	}

	rest := s[len(prefix):]
	for i, segment := range strings.Split(rest, "/") {
		if segment == "" {
			continue
		}

		toAppend := segment
		if i > 0 {
			toAppend = "/" + segment
		}

		if runewidth.StringWidth(current)+runewidth.StringWidth(toAppend) <= maxWidth {
			current += toAppend
			continue
		}

		if i == 0 && current == prefix {
			// The first segment does not fit after the prefix; fill the
			// remainder of the first line instead of flushing the prefix alone.
			remain := maxWidth - runewidth.StringWidth(current)
			if remain <= 0 {
				lines = append(lines, current)
				current = ""
				appendWrapped(segment)
			} else {
				head, tail := SplitByWidth(segment, remain)
				current += head
				lines = append(lines, current)
				current = ""
				if tail != "" {
					appendWrapped(tail)
				}
			}
			continue
		}

		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		appendWrapped(toAppend)
	}

	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// WrapStrict wraps s glyph by glyph: a new line starts the instant the next
// glyph would push the running display width past maxWidth.
func WrapStrict(s string, maxWidth int) []string {
	var lines []string
	var cur strings.Builder
	count := 0
	for _, ch := range s {
		w := runewidth.RuneWidth(ch)
		if count+w > maxWidth {
			if cur.Len() > 0 {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			count = 0
		}
		cur.WriteRune(ch)
		count += w
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

// SplitByWidth splits s into a head whose display width does not exceed
// maxWidth and the remaining tail.
func SplitByWidth(s string, maxWidth int) (string, string) {
	if maxWidth <= 0 {
		return "", s
	}
	curW := 0
	for i, ch := range s {
		w := runewidth.RuneWidth(ch)
		if curW+w > maxWidth {
			return s[:i], s[i:]
		}
		curW += w
	}
	return s, ""
}
