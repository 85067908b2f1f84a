// Package names splits raw Ecuadorian full-name strings into given name and
// surname. Upstream systems return names either comma-separated
// ("surname, given") or as a flat token list; the flat form is resolved by a
// fixed per-token-count rule table where connector words ("de", "del", "la",
// ...) shift the split boundary.
package names

import (
	"strings"
	"unicode"
)

// ParsedName is the splitter output. Both fields may be empty, never the
// struct itself: callers always get a value.
type ParsedName struct {
	Nombre   string
	Apellido string
}

var joiners = map[string]struct{}{
	"de": {}, "del": {}, "la": {}, "las": {}, "los": {}, "y": {}, "e": {},
	"da": {}, "do": {}, "dos": {}, "das": {},
	"van": {}, "von": {}, "der": {}, "den": {}, "di": {}, "du": {},
	"st": {}, "san": {}, "santa": {}, "mc": {}, "mac": {},
}

func isJoiner(token string) bool {
	_, ok := joiners[strings.ToLower(token)]
	return ok
}

// join concatenates tokens a..b, 1-indexed inclusive, mirroring the rule
// table's original notation.
func join(parts []string, a, b int) string {
	return strings.TrimSpace(strings.Join(parts[a-1:b], " "))
}

// pictographs covers emoji blocks, variation selectors and the zero-width
// joiner, all of which show up in self-entered upstream name fields.
var pictographs = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x200D, Hi: 0x200D, Stride: 1},
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
		{Lo: 0x2B00, Hi: 0x2BFF, Stride: 1},
		{Lo: 0xFE0F, Hi: 0xFE0F, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F000, Hi: 0x1FAFF, Stride: 1},
	},
}

func cleanText(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.Is(pictographs, r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// ToNameCase lowercases the input and uppercases the first letter of every
// word, where a word starts at any letter following a non-letter.
func ToNameCase(s string) string {
	var b strings.Builder
	prevLetter := false
	for _, r := range strings.ToLower(s) {
		isLetter := unicode.IsLetter(r)
		if isLetter && !prevLetter {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevLetter = isLetter
	}
	return b.String()
}

func splitByRules(parts []string) ParsedName {
	n := len(parts)

	switch {
	case n == 0:
		return ParsedName{}
	case n == 1:
		return ParsedName{Nombre: parts[0]}
	case n == 2:
		return ParsedName{Nombre: parts[0], Apellido: parts[1]}
	case n == 3:
		return ParsedName{Nombre: parts[0], Apellido: join(parts, 2, 3)}
	case n == 4:
		if isJoiner(parts[2]) {
			return ParsedName{Nombre: join(parts, 1, 1), Apellido: join(parts, 2, 4)}
		}
		return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 3, 4)}
	case n == 5:
		if isJoiner(parts[1]) {
			return ParsedName{Nombre: join(parts, 1, 3), Apellido: join(parts, 4, 5)}
		}
		if isJoiner(parts[3]) {
			return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 3, 5)}
		}
		return ParsedName{Nombre: join(parts, 1, 1), Apellido: join(parts, 5, 5)}
	case n == 6:
		if isJoiner(parts[1]) && isJoiner(parts[3]) {
			return ParsedName{Nombre: join(parts, 1, 3), Apellido: join(parts, 4, 6)}
		}
		if isJoiner(parts[1]) && isJoiner(parts[2]) {
			return ParsedName{Nombre: join(parts, 1, 4), Apellido: join(parts, 5, 6)}
		}
		if isJoiner(parts[3]) && isJoiner(parts[4]) {
			return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 3, 6)}
		}
		return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 5, 6)}
	case n == 7:
		countJoiners := func(tokens []string) int {
			c := 0
			for _, t := range tokens {
				if isJoiner(t) {
					c++
				}
			}
			return c
		}
		if countJoiners(parts[3:7]) >= 3 {
			return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 3, 7)}
		}
		if countJoiners(parts[0:4]) >= 3 {
			return ParsedName{Nombre: join(parts, 1, 5), Apellido: join(parts, 6, 7)}
		}
		if isJoiner(parts[2]) {
			return ParsedName{Nombre: join(parts, 1, 4), Apellido: join(parts, 5, 7)}
		}
		if isJoiner(parts[4]) {
			return ParsedName{Nombre: join(parts, 1, 3), Apellido: join(parts, 4, 7)}
		}
		return ParsedName{Nombre: join(parts, 1, 2), Apellido: join(parts, 6, 7)}
	}

	// 8+ tokens: everything but the last two is the given name.
	return ParsedName{
		Nombre:   strings.TrimSpace(strings.Join(parts[:n-2], " ")),
		Apellido: strings.TrimSpace(strings.Join(parts[n-2:], " ")),
	}
}

// Split parses a raw full-name string. Comma-separated input is treated as
// "surname, given name"; otherwise the token-count rule table applies.
func Split(raw string) ParsedName {
	cleaned := cleanText(raw)
	if cleaned == "" {
		return ParsedName{}
	}

	if i := strings.Index(cleaned, ","); i >= 0 {
		left := strings.TrimSpace(cleaned[:i])
		right := strings.TrimSpace(cleaned[i+1:])
		// Anything past a second comma is discarded with the right side.
		if j := strings.Index(right, ","); j >= 0 {
			right = strings.TrimSpace(right[:j])
		}
		return ParsedName{
			Nombre:   ToNameCase(right),
			Apellido: ToNameCase(left),
		}
	}

	norm := ToNameCase(cleaned)
	parts := strings.Fields(norm)
	return splitByRules(parts)
}

// FormatFull title-cases a raw full name, collapsing whitespace. Returns ""
// for empty input; callers map that to null.
func FormatFull(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
