package samples

import "testing"

func TestParseReference(t *testing.T) {
	tests := []struct {
		input    string
		book     string
		chapter  int
		verse    int
		verseEnd int
	}{
		{"Ruth", "Ruth", 0, 0, 0},
		{"Psalm 23", "Psalm", 23, 0, 0},
		{"Micah 6:8", "Micah", 6, 8, 0},
		{"Genesis 12:1-3", "Genesis", 12, 1, 3},
		{"1 Kings 19:11-13", "1 Kings", 19, 11, 13},
		{"Song of Songs 2:10-13", "Song of Songs", 2, 10, 13},
		{"  Isaiah 40:31 ", "Isaiah", 40, 31, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			ref, err := ParseReference(tt.input)
			if err != nil {
				t.Fatalf("ParseReference(%q) error: %v", tt.input, err)
			}
			if ref.Book != tt.book {
				t.Errorf("Book = %q, want %q", ref.Book, tt.book)
			}
			if ref.Chapter != tt.chapter {
				t.Errorf("Chapter = %d, want %d", ref.Chapter, tt.chapter)
			}
			if ref.Verse != tt.verse {
				t.Errorf("Verse = %d, want %d", ref.Verse, tt.verse)
			}
			if ref.VerseEnd != tt.verseEnd {
				t.Errorf("VerseEnd = %d, want %d", ref.VerseEnd, tt.verseEnd)
			}
		})
	}
}

func TestParseReferenceErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "12:1", "Genesis 12:", "Genesis 12:5-3"} {
		if _, err := ParseReference(input); err == nil {
			t.Errorf("ParseReference(%q) expected error", input)
		}
	}
}

func TestReferenceString(t *testing.T) {
	for _, s := range []string{"Ruth", "Psalm 23", "Micah 6:8", "1 Kings 19:11-13"} {
		ref, err := ParseReference(s)
		if err != nil {
			t.Fatalf("ParseReference(%q) error: %v", s, err)
		}
		if got := ref.String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}
