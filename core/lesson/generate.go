package lesson

import (
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
)

// Generation stages reported to a ProgressFunc.
const (
	StageSample       = "sample"
	StageCalendar     = "calendar"
	StageCongregation = "congregation"
	StageNarrative    = "narrative"
	StageSlides       = "slides"
)

// ProgressFunc observes generation stages. percent is in [0, 100].
type ProgressFunc func(stage string, percent int)

// Generator runs the lesson pipeline against injected catalogs.
type Generator struct {
	samples       *samples.Catalog
	festivals     *festival.Matcher
	congregations *congregation.Resolver
}

// NewGenerator wires the pipeline. A nil matcher selects the built-in
// festival catalog.
func NewGenerator(sc *samples.Catalog, fm *festival.Matcher, cr *congregation.Resolver) *Generator {
	if fm == nil {
		fm = festival.NewMatcher(nil)
	}
	return &Generator{samples: sc, festivals: fm, congregations: cr}
}

// Generate composes a lesson for req around the reference date ref. The
// request is expected to be validated already; progress may be nil.
func (g *Generator) Generate(req Request, ref time.Time, progress ProgressFunc) *Result {
	report := func(stage string, pct int) {
		if progress != nil {
			progress(stage, pct)
		}
	}

	minutes := req.EstimatedMinutes
	if minutes == 0 {
		minutes = DefaultMinutes
	}

	sample := g.samples.Select(req.Topic, req.Passage)
	report(StageSample, 20)

	matches := g.festivals.Match(ref)
	report(StageCalendar, 40)

	congID := req.CongregationID
	if congID == "" {
		congID = congregation.DefaultID
	}
	cong := g.congregations.Resolve(congID, ref)
	report(StageCongregation, 60)

	narrative := Compose(Input{
		Sample:       sample,
		Audience:     req.Audience,
		Occasion:     req.Occasion,
		Festivals:    matches,
		Congregation: cong,
		Minutes:      minutes,
	})
	report(StageNarrative, 80)

	slides := BuildSlides(narrative.Introduction, narrative.Sections, narrative.Conclusion)
	report(StageSlides, 100)

	return &Result{
		Lesson: Lesson{
			Title:        sample.Reference + ": " + req.LessonType.Title(),
			Introduction: narrative.Introduction,
			Conclusion:   narrative.Conclusion,
			Sections:     narrative.Sections,
			Slides:       slides,
			Canvas: Canvas{
				Introduction: narrative.Introduction,
				Sections:     narrative.Sections,
				Conclusion:   narrative.Conclusion,
			},
			Reference:   sample.Reference,
			HebrewFocus: sample.HebrewFocus,
			Morphology:  sample.Morphology,
			Themes:      append([]string{}, sample.Themes...),
		},
		Festivals:      matches,
		Congregation:   cong,
		RuntimeMinutes: EstimateRuntime(minutes, req.Interpreted),
	}
}

// Samples returns the sample catalog the generator selects from.
func (g *Generator) Samples() *samples.Catalog {
	return g.samples
}
