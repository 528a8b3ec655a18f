package tags

import (
	"regexp"
	"strings"
)

// Tag is one bracketed command found in prose.
type Tag struct {
	Name  string // as written; the registry uppercases it
	Body  string // text between the first ':' and the closing ']'
	Start int    // byte offset of '['
	End   int    // byte offset just past ']'
}

// Raw renders the tag as it appeared.
func (t Tag) Raw() string {
	if t.Body == "" {
		return "[" + t.Name + "]"
	}
	return "[" + t.Name + ": " + strings.TrimSpace(t.Body) + "]"
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isNameByte(b byte) bool {
	return isNameStart(b) || (b >= '0' && b <= '9')
}

// Extract returns every well-formed tag in text, in order. A tag is
// "[NAME]" or "[NAME: body]"; the closing bracket is matched with the same
// quote and nesting rules as ParseParams, so values may contain ']' or
// JSON. Unterminated tags are ignored.
func Extract(text string) []Tag {
	var out []Tag
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		tag, ok := scanTag(text, i)
		if !ok {
			continue
		}
		out = append(out, tag)
		i = tag.End - 1
	}
	return out
}

func scanTag(text string, start int) (Tag, bool) {
	j := start + 1
	if j >= len(text) || !isNameStart(text[j]) {
		return Tag{}, false
	}
	for j < len(text) && isNameByte(text[j]) {
		j++
	}
	name := text[start+1 : j]
	for j < len(text) && (text[j] == ' ' || text[j] == '\t') {
		j++
	}
	if j >= len(text) {
		return Tag{}, false
	}
	switch text[j] {
	case ']':
		return Tag{Name: name, Start: start, End: j + 1}, true
	case ':':
	default:
		return Tag{}, false
	}

	bodyStart := j + 1
	var sc scanner
	for k, r := range text[bodyStart:] {
		if r == ']' && sc.quote == 0 && sc.depth == 0 {
			end := bodyStart + k
			return Tag{Name: name, Body: text[bodyStart:end], Start: start, End: end + 1}, true
		}
		sc.step(r)
	}
	return Tag{}, false
}

var blankRuns = regexp.MustCompile(`[ \t]{2,}|\n{3,}`)

// Strip removes every tag from text and tidies the whitespace left behind.
func Strip(text string) string {
	found := Extract(text)
	if len(found) == 0 {
		return strings.TrimSpace(text)
	}
	var b strings.Builder
	prev := 0
	for _, t := range found {
		b.WriteString(text[prev:t.Start])
		prev = t.End
	}
	b.WriteString(text[prev:])
	out := blankRuns.ReplaceAllStringFunc(b.String(), func(m string) string {
		if strings.HasPrefix(m, "\n") {
			return "\n\n"
		}
		return " "
	})
	return strings.TrimSpace(out)
}

// Format renders a single tag, e.g. [NPC_UPDATE: name="Mo", goal="rest"].
func Format(name string, p Params) string {
	if len(p) == 0 {
		return "[" + name + "]"
	}
	return "[" + name + ": " + FormatParams(p) + "]"
}
