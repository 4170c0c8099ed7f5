package samples

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Reference is a parsed human-readable scripture reference such as
// "Genesis 12:1-3" or "1 Kings 19:11-13".
type Reference struct {
	// Book is the display name including any numeric prefix ("1 Kings").
	Book string `json:"book"`

	// Chapter is 0 for whole-book references.
	Chapter int `json:"chapter,omitempty"`

	// Verse is 0 for whole-chapter references.
	Verse int `json:"verse,omitempty"`

	// VerseEnd is set for verse ranges.
	VerseEnd int `json:"verse_end,omitempty"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type refGrammar struct {
	Prefix  *int         `@Int?`
	Words   []string     `@Ident+`
	Chapter *chapterPart `@@?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type chapterPart struct {
	Chapter int        `@Int`
	Verses  *versePart `( ":" @@ )?`
}

//nolint:govet // participle grammar tags are not standard struct tags
type versePart struct {
	Verse int  `@Int`
	End   *int `( "-" @Int )?`
}

var refLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Za-z]+`},
	{Name: "Punct", Pattern: `[:\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var refParser = participle.MustBuild[refGrammar](
	participle.Lexer(refLexer),
	participle.Elide("Whitespace"),
)

// ParseReference parses a reference string. Supported forms:
//   - "Ruth" (book only)
//   - "Psalm 23" (book and chapter)
//   - "Micah 6:8" (single verse)
//   - "Genesis 12:1-3", "1 Kings 19:11-13" (verse range)
//   - "Song of Songs 2:10-13" (multi-word book)
func ParseReference(s string) (*Reference, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty reference string")
	}

	parsed, err := refParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid reference format: %q: %w", s, err)
	}

	book := strings.Join(parsed.Words, " ")
	if parsed.Prefix != nil {
		book = strconv.Itoa(*parsed.Prefix) + " " + book
	}
	ref := &Reference{Book: book}

	if parsed.Chapter != nil {
		ref.Chapter = parsed.Chapter.Chapter
		if v := parsed.Chapter.Verses; v != nil {
			ref.Verse = v.Verse
			if v.End != nil {
				ref.VerseEnd = *v.End
			}
		}
	}

	if ref.VerseEnd > 0 && ref.VerseEnd < ref.Verse {
		return nil, fmt.Errorf("invalid reference %q: range ends before it starts", s)
	}

	return ref, nil
}

// String renders the reference in its canonical display form.
func (r *Reference) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)

	if r.Chapter > 0 {
		sb.WriteString(" ")
		sb.WriteString(strconv.Itoa(r.Chapter))

		if r.Verse > 0 {
			sb.WriteString(":")
			sb.WriteString(strconv.Itoa(r.Verse))

			if r.VerseEnd > 0 {
				sb.WriteString("-")
				sb.WriteString(strconv.Itoa(r.VerseEnd))
			}
		}
	}

	return sb.String()
}
