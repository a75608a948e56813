// Package mention answers "where does this entity appear" queries over
// host-supplied document text. It reads the entity graph and never writes
// anything.
package mention

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"lector/core/internal/xray"
)

// Chapter is one entry of the host's boundary sequence. Offsets are byte
// positions into the scanned text; how they are derived (TOC or page-range
// fallback) is the host's concern.
type Chapter struct {
	ID    string `json:"id"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// Span is a matched byte range, end exclusive.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ChapterMentions holds the matches of one entity inside one chapter.
// Gated chapters lie past the reader's position: their spans are withheld
// so browsing the index cannot spoil, and Count is zero.
type ChapterMentions struct {
	ChapterID string `json:"chapter_id"`
	Gated     bool   `json:"gated,omitempty"`
	Count     int    `json:"count"`
	Spans     []Span `json:"spans,omitempty"`
}

// EntityMentions maps one entity to its per-chapter matches. Name is
// qualified by Category because canonical names are only unique within a
// category.
type EntityMentions struct {
	Category xray.Category     `json:"category"`
	Name     string            `json:"name"`
	Chapters []ChapterMentions `json:"chapters"`
}

// Options controls a scan. GateOffset is max(current reading position,
// artifact coverage) expressed as a byte offset; chapters starting past it
// are gated unless RevealAll is set.
type Options struct {
	GateOffset int
	RevealAll  bool
}

// FindMentions scans text for every entity in the graph's mergeable
// categories. Event-like categories (timeline, arguments) are skipped:
// their descriptive names are prose fragments and naive matching produces
// false positives.
//
// Matches use word-boundary semantics, case-insensitively, over the union
// of canonical name and aliases. Overlapping spans from different aliases
// of the same entity are merged before counting, so an entity is never
// double-counted where two of its names overlap in the text.
//
// Results are in category order, then entity order; entities with no
// mentions anywhere are omitted.
func FindMentions(g *xray.Graph, chapters []Chapter, text string, opts Options) []EntityMentions {
	var out []EntityMentions
	for _, c := range xray.EntityCategories() {
		for _, e := range g.Entities(c) {
			spans := entitySpans(text, e)
			perChapter := bucketSpans(spans, chapters, opts)
			if len(perChapter) == 0 {
				continue
			}
			out = append(out, EntityMentions{
				Category: c,
				Name:     e.Name,
				Chapters: perChapter,
			})
		}
	}
	return out
}

// entitySpans finds all word-boundary matches of the entity's names and
// merges overlaps.
func entitySpans(text string, e *xray.Entity) []Span {
	lower := strings.ToLower(text)

	var spans []Span
	names := append([]string{e.Name}, e.Aliases...)
	for _, name := range names {
		needle := strings.ToLower(strings.TrimSpace(name))
		if needle == "" {
			continue
		}
		spans = append(spans, wordMatches(lower, needle)...)
	}
	return mergeSpans(spans)
}

// wordMatches returns spans of needle in haystack where both ends sit on a
// word boundary. Both strings must already be lowercased.
func wordMatches(haystack, needle string) []Span {
	var spans []Span
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		end := start + len(needle)
		if boundaryBefore(haystack, start) && boundaryAfter(haystack, end) {
			spans = append(spans, Span{Start: start, End: end})
		}
		from = start + 1
	}
	return spans
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// mergeSpans sorts spans and merges any that overlap or touch.
func mergeSpans(spans []Span) []Span {
	if len(spans) < 2 {
		return spans
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})

	merged := spans[:1]
	for _, s := range spans[1:] {
		last := &merged[len(merged)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// bucketSpans distributes merged spans over the chapter sequence and
// applies spoiler gating. Chapters without matches are omitted, except
// gated chapters with matches, which appear with Count 0 so the UI can
// show that something lies ahead without saying where.
func bucketSpans(spans []Span, chapters []Chapter, opts Options) []ChapterMentions {
	var out []ChapterMentions
	for _, ch := range chapters {
		gated := !opts.RevealAll && ch.Start > opts.GateOffset

		var inside []Span
		for _, s := range spans {
			if s.Start >= ch.Start && s.Start < ch.End {
				inside = append(inside, s)
			}
		}
		if len(inside) == 0 {
			continue
		}

		if gated {
			out = append(out, ChapterMentions{ChapterID: ch.ID, Gated: true})
			continue
		}
		out = append(out, ChapterMentions{
			ChapterID: ch.ID,
			Count:     len(inside),
			Spans:     inside,
		})
	}
	return out
}
