package lesson

import "github.com/FocuswithJustin/JuniperLessons/core/pptx"

// Deck renders the lesson's slides as a .pptx archive. Slide text is passed
// through unchanged.
func (l *Lesson) Deck() ([]byte, error) {
	d := pptx.New()
	d.SetTitle(l.Title)
	for _, s := range l.Slides {
		d.AddSlide(s.Title, s.Bullets, s.Notes)
	}
	return d.Build()
}
