package filter

import (
	"strings"

	"github.com/nathoo/adriftcore/types"
)

// tagNames is searched in order; a name matches a tag that starts with it
// and then ends or continues with whitespace.
var tagNames = []struct {
	name string
	code types.TagCode
}{
	{"bgcolour", types.TagBgColor},
	{"bgcolor", types.TagBgColor},
	{"waitkey", types.TagWaitKey},
	{"center", types.TagCenter}, {"/center", types.TagEndCenter},
	{"centre", types.TagCenter}, {"/centre", types.TagEndCenter},
	{"right", types.TagRight}, {"/right", types.TagEndRight},
	{"font", types.TagFont}, {"/font", types.TagEndFont},
	{"wait", types.TagWait},
	{"cls", types.TagCls},
	{"i", types.TagItalics}, {"/i", types.TagEndItalics},
	{"b", types.TagBold}, {"/b", types.TagEndBold},
	{"u", types.TagUnderline}, {"/u", types.TagEndUnderline},
	{"c", types.TagColor}, {"/c", types.TagEndColor},
}

var tagMarkup = func() map[types.TagCode]string {
	m := make(map[types.TagCode]string)
	for _, t := range tagNames {
		if _, ok := m[t.code]; !ok {
			m[t.code] = t.name
		}
	}
	return m
}()

// TagName returns the markup name of a tag code, or "" for TagUnknown.
func TagName(code types.TagCode) string { return tagMarkup[code] }

// ParseTag classifies the text between < and >. Known tags return their
// code and any argument after the name; unknown tags return TagUnknown and
// the whole text.
func ParseTag(tag string) (types.TagCode, string) {
	for _, t := range tagNames {
		n := len(t.name)
		if len(tag) < n || !strings.EqualFold(tag[:n], t.name) {
			continue
		}
		if len(tag) == n || isSpace(rune(tag[n])) {
			return t.code, strings.TrimLeft(tag[n:], spaces)
		}
	}
	return types.TagUnknown, tag
}

const spaces = " \t\n\r\v\f"

func isBreak(tag string) bool {
	return strings.EqualFold(tag, "br")
}

// Emit splits filtered text into plain text and tags and sends them to out.
// <br> becomes a newline, <> is dropped, and a < with no closing > is
// printed as it stands.
func Emit(s string, out Output) {
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			emitText(s, out)
			return
		}
		emitText(s[:i], out)
		rest := s[i+1:]
		j := strings.IndexByte(rest, '>')
		switch {
		case j < 0:
			emitText("<", out)
			s = rest
		case j == 0:
			s = rest[1:]
		default:
			tag := rest[:j]
			if isBreak(tag) {
				out.PrintString("\n")
			} else {
				code, arg := ParseTag(tag)
				out.PrintTag(code, arg)
			}
			s = rest[j+1:]
		}
	}
}

func emitText(s string, out Output) {
	if s == "" {
		return
	}
	out.PrintString(UnescapeEntities(s))
}

// UnescapeEntities decodes &lt; and &gt;, ignoring case.
func UnescapeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '&' && i+4 <= len(s) {
			switch strings.ToLower(s[i : i+4]) {
			case "&lt;":
				b.WriteByte('<')
				i += 3
				continue
			case "&gt;":
				b.WriteByte('>')
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// StripTags removes every <...> from s.
func StripTags(s string) string { return stripTags(s, false) }

// StripTagsForHints removes every <...> from s except <br>, which becomes a
// newline.
func StripTagsForHints(s string) string { return stripTags(s, true) }

func stripTags(s string, breaks bool) string {
	var b strings.Builder
	for {
		i := strings.IndexByte(s, '<')
		if i < 0 {
			break
		}
		j := strings.IndexByte(s[i:], '>')
		if j < 0 {
			break
		}
		b.WriteString(s[:i])
		if breaks && isBreak(s[i+1:i+j]) {
			b.WriteByte('\n')
		}
		s = s[i+j+1:]
	}
	b.WriteString(s)
	return b.String()
}

// FilterInput applies synonyms to a player command. At each word, the first
// synonym whose original matches there, word for word, is replaced and
// scanning resumes after the replacement.
func FilterInput(s string, synonyms []Synonym) string {
	i := skipSpaces(s, 0)
	for i < len(s) {
		matched := false
		for _, syn := range synonyms {
			if n := compareWords(s[i:], syn.Original); n > 0 {
				s = s[:i] + syn.Replacement + s[i+n:]
				i += len(syn.Replacement)
				matched = true
				break
			}
		}
		if !matched {
			for i < len(s) && !isSpace(rune(s[i])) {
				i++
			}
		}
		i = skipSpaces(s, i)
	}
	return s
}

// compareWords matches words at the start of s, case-insensitively and
// with any run of whitespace between words. It returns the length of s
// matched, which must end at whitespace or the end of s, or 0.
func compareWords(s, words string) int {
	w := skipSpaces(words, 0)
	if w == len(words) {
		return 0
	}
	p := 0
	for {
		if p >= len(s) || lower(words[w]) != lower(s[p]) {
			return 0
		}
		w++
		p++
		for w < len(words) && isSpace(rune(words[w])) {
			w++
		}
		if w == len(words) {
			break
		}
		for p < len(s) && isSpace(rune(s[p])) {
			p++
		}
	}
	if p == len(s) || isSpace(rune(s[p])) {
		return p
	}
	return 0
}

func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(rune(s[i])) {
		i++
	}
	return i
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
