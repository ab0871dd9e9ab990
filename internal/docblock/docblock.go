// Package docblock parses structured comment blocks into key/value sections.
// A section starts at a line whose first word is an @-prefixed key; free text
// outside sections accumulates into the description.
package docblock

import (
	"strings"

	"resolvergen/internal/diag"
)

// Section is one `@key value` entry of a docblock.
type Section struct {
	Key       string
	Value     string
	KeySpan   diag.Span
	ValueSpan diag.Span
}

// Docblock is the parsed form of one comment block.
type Docblock struct {
	Sections        []Section
	Description     string
	DescriptionSpan diag.Span
}

// Parse parses the concatenated text of a comment block. base is the span
// the text occupies in the source file, used so section and description
// spans can be mapped back to real offsets.
func Parse(text string, base diag.Span) *Docblock {
	d := &Docblock{}
	var descLines []string
	descStart, descEnd := uint32(0), uint32(0)

	offset := base.Start
	for _, line := range strings.SplitAfter(text, "\n") {
		lineStart := offset
		offset += uint32(len(line))

		content, indent := trimDecoration(strings.TrimSuffix(line, "\n"))
		if content == "" {
			continue
		}
		contentStart := lineStart + uint32(indent)

		if strings.HasPrefix(content, "@") {
			key, value, valueOffset := splitSection(content)
			section := Section{
				Key:     key,
				Value:   value,
				KeySpan: diag.NewSpan(contentStart, contentStart+uint32(len(key)+1)),
			}
			if value != "" {
				start := contentStart + uint32(valueOffset)
				section.ValueSpan = diag.NewSpan(start, start+uint32(len(value)))
			}
			d.Sections = append(d.Sections, section)
			continue
		}

		if len(descLines) == 0 {
			descStart = contentStart
		}
		descEnd = contentStart + uint32(len(content))
		descLines = append(descLines, content)
	}

	if len(descLines) > 0 {
		d.Description = strings.Join(descLines, "\n")
		d.DescriptionSpan = diag.NewSpan(descStart, descEnd)
	}
	return d
}

// Find returns the first section with the given key, or nil.
func (d *Docblock) Find(key string) *Section {
	for i := range d.Sections {
		if d.Sections[i].Key == key {
			return &d.Sections[i]
		}
	}
	return nil
}

// trimDecoration strips leading comment decoration (`*`, whitespace) from a
// line and reports how many bytes were removed from the front.
func trimDecoration(line string) (string, int) {
	trimmed := strings.TrimLeft(line, " \t")
	trimmed = strings.TrimPrefix(trimmed, "*")
	trimmed = strings.TrimLeft(trimmed, " \t")
	trimmed = strings.TrimSuffix(trimmed, "*/")
	trimmed = strings.TrimRight(trimmed, " \t")
	indent := strings.Index(line, trimmed)
	if indent < 0 {
		indent = 0
	}
	return trimmed, indent
}

// splitSection splits "@key rest of line" into key and value. The returned
// offset is the byte position of the value within the content.
func splitSection(content string) (key, value string, valueOffset int) {
	rest := content[1:]
	cut := strings.IndexAny(rest, " \t")
	if cut < 0 {
		return rest, "", 0
	}
	key = rest[:cut]
	tail := rest[cut+1:]
	trimmed := strings.TrimLeft(tail, " \t")
	valueOffset = len(content) - len(trimmed)
	return key, trimmed, valueOffset
}
