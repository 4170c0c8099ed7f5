package lesson

import (
	"fmt"

	"github.com/FocuswithJustin/JuniperLessons/core/samples"
)

// CondenseThreshold is the duration, in minutes, below which the body is
// condensed to two sections.
const CondenseThreshold = 25

// Sections builds the lesson body for the requested duration.
func Sections(s samples.Sample, minutes int) []Section {
	horizon := Section{
		Title: "Textual Horizon",
		Content: fmt.Sprintf("%s anchors the lesson. Key Hebrew focus: %s (%s). Morphology: %s rooted in %s.",
			s.Reference, s.HebrewFocus, s.Translation, s.Morphology.PartOfSpeech, s.Morphology.Root),
		ExegeticalNotes: clone(s.ExegeticalNotes),
		Application:     "Trace the flow of the passage, inviting listeners to inhabit the narrative movement.",
	}

	if minutes < CondenseThreshold {
		return []Section{
			horizon,
			{
				Title:           "Concise Insight",
				Content:         fmt.Sprintf("In limited time, emphasize the pivot: %s propels us toward faithful obedience.", s.HebrewFocus),
				ExegeticalNotes: clone(first(s.LexicalInsights)),
				Application:     "Offer one spiritual practice and one communal action.",
			},
		}
	}

	return []Section{
		horizon,
		{
			Title:           "Linguistic Insights",
			Content:         "Lexical themes emerge, amplifying covenantal movement.",
			ExegeticalNotes: clone(s.LexicalInsights),
			Application:     "Highlight how the Hebrew terms reshape imagination and discipleship practices.",
		},
		{
			Title:   "Formation Pathways",
			Content: "Move from exegesis to embodied action.",
			ExegeticalNotes: []string{
				"Map the passage's structure to contemporary rhythms (gathering, scattering, serving).",
				"Invite testimonies or reflective prayer that echo the text's movement.",
			},
			Application: "Provide concrete steps for the congregation to live the text this week.",
		},
	}
}

func first(s []string) []string {
	if len(s) > 1 {
		return s[:1]
	}
	return s
}

// clone never returns nil so sections always encode notes as a list.
func clone(s []string) []string {
	return append([]string{}, s...)
}
