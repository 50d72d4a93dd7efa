// Package document locates the embedded script and style regions of a template
// document and rewrites them in place.
package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Attr is a single attribute from an opening tag.
type Attr struct {
	Name  string `json:"name"            toml:"name"            yaml:"name"`
	Value string `json:"value,omitempty" toml:"value,omitempty" yaml:"value,omitempty"`
}

// Region is an embedded '<tag attrs>content</tag>' region of a document.
//
// All offsets are byte offsets into the document the region was found in.
type Region struct {
	Tag          string `json:"tag"     toml:"tag"     yaml:"tag"`     // The tag name as written
	Attrs        string `json:"attrs"   toml:"attrs"   yaml:"attrs"`   // Raw attribute text between the name and '>'
	Content      string `json:"-"       toml:"-"       yaml:"-"`       // Everything between the opening and closing tags
	Start        int    `json:"start"   toml:"start"   yaml:"start"`   // Offset of the opening '<'
	End          int    `json:"end"     toml:"end"     yaml:"end"`     // Offset one past the closing '>'
	ContentStart int    `json:"-"       toml:"-"       yaml:"-"`       // Offset of the first content byte
	ContentEnd   int    `json:"-"       toml:"-"       yaml:"-"`       // Offset one past the last content byte
	Module       bool   `json:"module"  toml:"module"  yaml:"module"`  // Whether the region is a module context script
}

// Attributes parses the region's raw attribute text.
func (r Region) Attributes() []Attr {
	return ParseAttrs(r.Attrs)
}

// Attr returns the value of the named attribute and whether it was present at all.
func (r Region) Attr(name string) (string, bool) {
	for _, attr := range r.Attributes() {
		if strings.EqualFold(attr.Name, name) {
			return attr.Value, true
		}
	}

	return "", false
}

// Regions returns every '<tag>...</tag>' region in src, in document order.
//
// Matching of the tag name is ASCII case insensitive, attributes may not
// contain '<' or '>'. A region that is never closed is not a region.
func Regions(src, tag string) []Region {
	var regions []Region

	pos := 0

	for {
		region, next, ok := find(src, tag, pos)
		if !ok {
			return regions
		}

		regions = append(regions, region)
		pos = next
	}
}

// Replace calls transform for every region of the given tag and substitutes whatever
// it returns for the region's content. Text outside of the regions, including the
// opening and closing tags themselves, is copied over untouched.
func Replace(src, tag string, transform func(region Region) string) string {
	return Rewrite(src, Regions(src, tag), func(_ int, region Region) string {
		return transform(region)
	})
}

// Rewrite is like [Replace] but over regions already found in src, transform is
// also given the index of each region. The regions must be in document order and
// must not overlap.
func Rewrite(src string, regions []Region, transform func(i int, region Region) string) string {
	if len(regions) == 0 {
		return src
	}

	var out strings.Builder
	out.Grow(len(src))

	last := 0
	for i, region := range regions {
		out.WriteString(src[last:region.ContentStart])
		out.WriteString(transform(i, region))

		last = region.ContentEnd
	}

	out.WriteString(src[last:])

	return out.String()
}

// Scripts is shorthand for Regions(src, "script").
func Scripts(src string) []Region {
	return Regions(src, "script")
}

// find locates the first region of tag in src at or after offset from, returning
// it and the offset to continue searching from.
func find(src, tag string, from int) (region Region, next int, ok bool) {
	open := "<" + tag
	closing := "</" + tag

	for from < len(src) {
		start := indexFold(src[from:], open)
		if start == -1 {
			return Region{}, 0, false
		}

		start += from
		nameEnd := start + len(open)

		// '<scripts>' is not a script
		if nameEnd < len(src) && !isTagEnd(src[nameEnd]) {
			from = nameEnd
			continue
		}

		angle := strings.IndexAny(src[nameEnd:], "<>")
		if angle == -1 {
			return Region{}, 0, false
		}

		angle += nameEnd
		if src[angle] == '<' {
			// Attributes can't contain '<', whatever this is it's not our tag
			from = angle
			continue
		}

		contentStart := angle + 1

		contentEnd := indexFold(src[contentStart:], closing)
		if contentEnd == -1 {
			return Region{}, 0, false
		}

		contentEnd += contentStart

		end := strings.IndexByte(src[contentEnd:], '>')
		if end == -1 {
			return Region{}, 0, false
		}

		end += contentEnd + 1

		attrs := src[nameEnd:angle]

		region := Region{
			Tag:          src[start+1 : nameEnd],
			Attrs:        attrs,
			Content:      src[contentStart:contentEnd],
			Start:        start,
			End:          end,
			ContentStart: contentStart,
			ContentEnd:   contentEnd,
		}

		context, _ := region.Attr("context")
		region.Module = context == "module"

		return region, end, true
	}

	return Region{}, 0, false
}

// ParseAttrs parses raw attribute text like ` lang="ts" context=module defer` into
// its attributes, in the order they were written.
//
// Values may be double quoted, single quoted, bare or missing entirely. An unclosed
// quote runs to the end of the text.
func ParseAttrs(text string) []Attr {
	var attrs []Attr

	i := 0
	for {
		i = skipSpace(text, i)
		if i >= len(text) {
			return attrs
		}

		if text[i] == '/' {
			i++
			continue
		}

		nameStart := i
		for i < len(text) && !isSpace(text[i]) && text[i] != '=' && text[i] != '/' {
			i++
		}

		attr := Attr{Name: text[nameStart:i]}

		afterName := skipSpace(text, i)
		if afterName >= len(text) || text[afterName] != '=' {
			if attr.Name != "" {
				attrs = append(attrs, attr)
			}

			i = afterName

			continue
		}

		i = skipSpace(text, afterName+1)

		if i < len(text) && (text[i] == '"' || text[i] == '\'') {
			quote := text[i]

			end := strings.IndexByte(text[i+1:], quote)
			if end == -1 {
				attr.Value = text[i+1:]
				i = len(text)
			} else {
				attr.Value = text[i+1 : i+1+end]
				i += end + 2
			}
		} else {
			valueStart := i
			for i < len(text) && !isSpace(text[i]) {
				i++
			}

			attr.Value = text[valueStart:i]
		}

		if attr.Name != "" {
			attrs = append(attrs, attr)
		}
	}
}

// isTagEnd reports whether char may follow a tag name.
func isTagEnd(char byte) bool {
	return isSpace(char) || char == '>' || char == '/'
}

// skipSpace returns the offset of the first non space byte in text at or after i.
func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}

	return i
}

// isSpace reports whether char is ASCII whitespace.
func isSpace(char byte) bool {
	return char < utf8.RuneSelf && unicode.IsSpace(rune(char))
}

// indexFold is [strings.Index] but ASCII case insensitive.
func indexFold(s, sep string) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sep)], sep) {
			return i
		}
	}

	return -1
}
