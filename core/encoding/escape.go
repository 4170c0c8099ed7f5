// Package encoding provides shared text escaping for the OOXML writers.
package encoding

import "strings"

// EscapeXMLText escapes only the basic XML entities for text content.
// Characters XML 1.0 forbids (most C0 controls) are dropped, and tabs,
// newlines and carriage returns are kept as written.
func EscapeXMLText(s string) string {
	s = StripInvalidXML(s)
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// EscapeXMLAttr escapes text for use in XML attributes.
// Includes quote escaping in addition to basic XML entities.
func EscapeXMLAttr(s string) string {
	s = EscapeXMLText(s)
	s = strings.ReplaceAll(s, "\"", "&quot;")
	return s
}

// StripInvalidXML removes runes that may not appear in an XML 1.0 document.
func StripInvalidXML(s string) string {
	if strings.IndexFunc(s, invalidXMLRune) < 0 {
		return s
	}
	return strings.Map(func(r rune) rune {
		if invalidXMLRune(r) {
			return -1
		}
		return r
	}, s)
}

func invalidXMLRune(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return false
	case r < 0x20:
		return true
	case r >= 0xD800 && r <= 0xDFFF, r == 0xFFFE, r == 0xFFFF:
		return true
	}
	return false
}

// SplitLines splits text into paragraphs on newlines, normalising CRLF.
// An empty string yields a single empty paragraph.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
