package lesson

import "fmt"

// Speaker notes attached to the fixed slides.
const (
	OpeningNotes = "Welcome, frame the occasion, and read the passage aloud."
	SectionNotes = "Guide discussion; invite observations and response."
	SendingNotes = "Summarize commitments and pray a commissioning blessing."
)

// BuildSlides lays out the deck: an opening slide, one slide per section and
// a closing slide.
func BuildSlides(introduction string, sections []Section, conclusion string) []Slide {
	slides := make([]Slide, 0, len(sections)+2)
	slides = append(slides, Slide{
		Title:   "Opening Story",
		Bullets: []string{introduction},
		Notes:   OpeningNotes,
	})

	for i, sec := range sections {
		bullets := make([]string, 0, len(sec.ExegeticalNotes)+2)
		bullets = append(bullets, sec.Content)
		bullets = append(bullets, sec.ExegeticalNotes...)
		bullets = append(bullets, sec.Application)
		slides = append(slides, Slide{
			Title:   fmt.Sprintf("%d. %s", i+1, sec.Title),
			Bullets: bullets,
			Notes:   SectionNotes,
		})
	}

	slides = append(slides, Slide{
		Title:   "Sending Charge",
		Bullets: []string{conclusion},
		Notes:   SendingNotes,
	})
	return slides
}
