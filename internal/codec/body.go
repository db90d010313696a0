package codec

import (
	"strings"
	"unicode"
)

// Section headers in an issue body.
const (
	MetadataHeader = "### Metadata"
	LinksHeader    = "### Links"
)

// Metadata keys as they appear after normalization.
const (
	keyAssignee  = "assignee"
	keyDueDate   = "duedate"
	keyCreatedAt = "createdat"
	keyUpdatedAt = "updatedat"
)

// Placeholders written for absent metadata values.
const (
	placeholderAssignee = "Unassigned"
	placeholderDueDate  = "No due date"
	placeholderTime     = "Unknown"
)

type section int

const (
	sectionDescription section = iota
	sectionMetadata
	sectionLinks
)

// Body is the structured form of an issue body before field extraction.
type Body struct {
	Description string
	Metadata    map[string]string // normalized key -> raw value
	Links       []string
}

// placeholders maps each metadata key to the text written when its value is absent.
var placeholders = map[string]string{
	keyAssignee:  placeholderAssignee,
	keyDueDate:   placeholderDueDate,
	keyCreatedAt: placeholderTime,
	keyUpdatedAt: placeholderTime,
}

// Value returns the metadata value for a normalized key. Only the key's own
// placeholder maps to "".
func (b Body) Value(key string) string {
	v := strings.TrimSpace(b.Metadata[key])
	if p, ok := placeholders[key]; ok && strings.EqualFold(v, p) {
		return ""
	}
	return v
}

// ParseBody scans an issue body line by line. It never fails: missing sections
// leave the corresponding fields empty.
func ParseBody(text string) Body {
	b := Body{Metadata: make(map[string]string)}
	var desc []string
	current := sectionDescription

	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, MetadataHeader):
			current = sectionMetadata
			continue
		case strings.HasPrefix(trimmed, LinksHeader):
			current = sectionLinks
			continue
		}
		if trimmed == "" {
			continue
		}

		switch current {
		case sectionDescription:
			desc = append(desc, line)
		case sectionMetadata:
			key, value, ok := strings.Cut(trimmed, ":")
			if !ok {
				continue
			}
			if k := normalizeKey(key); k != "" {
				b.Metadata[k] = strings.TrimSpace(value)
			}
		case sectionLinks:
			if link := stripListMarker(trimmed); link != "" {
				b.Links = append(b.Links, link)
			}
		}
	}

	b.Description = strings.TrimSpace(strings.Join(desc, "\n"))
	return b
}

// normalizeKey lower-cases a metadata key and drops everything that is not a letter
// or digit, so "- **Due Date**" becomes "duedate".
func normalizeKey(key string) string {
	var sb strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(unicode.ToLower(r))
		}
	}
	return sb.String()
}

func stripListMarker(line string) string {
	if line == "" {
		return ""
	}
	switch line[0] {
	case '-', '*', '+':
		line = line[1:]
	}
	return strings.TrimSpace(line)
}

func renderBody(b Body, assignee, dueDate, createdAt, updatedAt string) string {
	var sb strings.Builder
	sb.WriteString(b.Description)
	sb.WriteString("\n\n")
	sb.WriteString(MetadataHeader)
	sb.WriteString("\n")
	writeMeta(&sb, "Assignee", assignee, placeholderAssignee)
	writeMeta(&sb, "Due Date", dueDate, placeholderDueDate)
	writeMeta(&sb, "Created At", createdAt, placeholderTime)
	writeMeta(&sb, "Updated At", updatedAt, placeholderTime)
	sb.WriteString("\n")
	sb.WriteString(LinksHeader)
	for _, link := range b.Links {
		sb.WriteString("\n- ")
		sb.WriteString(link)
	}
	return sb.String()
}

func writeMeta(sb *strings.Builder, key, value, placeholder string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = placeholder
	}
	sb.WriteString("- **")
	sb.WriteString(key)
	sb.WriteString("**: ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
