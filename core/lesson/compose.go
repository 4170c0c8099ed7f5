package lesson

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
)

// Input is everything the narrative depends on.
type Input struct {
	Sample       samples.Sample
	Audience     string
	Occasion     string
	Festivals    []festival.Match // nearest first
	Congregation congregation.Context
	Minutes      int
}

// Narrative is the prose of a lesson.
type Narrative struct {
	Introduction string
	Conclusion   string
	Sections     []Section
}

// clause contributes one fragment to the introduction. It reports false
// when its condition does not hold.
type clause func(Input) (string, bool)

// introClauses are concatenated in this order.
var introClauses = []clause{
	hookClause,
	festivalClause,
	congregationClause,
	audienceClause,
	statementClause,
	occasionClause,
}

func hookClause(in Input) (string, bool) {
	return fmt.Sprintf("Imagine standing where %s first unfolded, hearing the Hebrew cadence of %s inviting trust.",
		in.Sample.Reference, in.Sample.HebrewFocus), true
}

func festivalClause(in Input) (string, bool) {
	if len(in.Festivals) == 0 {
		return "", false
	}
	f := in.Festivals[0]
	return fmt.Sprintf(" We gather with %s approaching (%s), a season inviting %s.",
		f.Festival, f.Date, strings.ToLower(f.Emphasis)), true
}

func congregationClause(in Input) (string, bool) {
	if len(in.Congregation.NearbyEvents) == 0 {
		return "", false
	}
	e := in.Congregation.NearbyEvents[0]
	if e.Emphasis == "" {
		return fmt.Sprintf(" Our own community prepares for %s in %d days.", e.Description, e.DaysApart), true
	}
	return fmt.Sprintf(" Our own community prepares for %s in %d days, aligning hearts toward %s.",
		e.Description, e.DaysApart, strings.ToLower(e.Emphasis)), true
}

func audienceClause(in Input) (string, bool) {
	if in.Audience == "" {
		return "", false
	}
	return fmt.Sprintf(" For %s,", in.Audience), true
}

func statementClause(Input) (string, bool) {
	return " God's word speaks with precision and promise.", true
}

func occasionClause(in Input) (string, bool) {
	if in.Occasion == "" {
		return "", false
	}
	return fmt.Sprintf(" In this %s we are called to listen afresh.", strings.ToLower(in.Occasion)), true
}

// Introduction assembles the opening paragraph.
func Introduction(in Input) string {
	var sb strings.Builder
	for _, c := range introClauses {
		if s, ok := c(in); ok {
			sb.WriteString(s)
		}
	}
	return strings.TrimSpace(sb.String())
}

// Conclusion restates the focus term and gives the closing charge.
func Conclusion(s samples.Sample) string {
	return fmt.Sprintf("The same cadence that opened our time, %s, now sends us. "+
		"Let the insights we traced move from study to practice: "+
		"embrace God's invitation, embody covenantal blessing, and walk toward Christlike transformation together.",
		s.HebrewFocus)
}

// Compose builds the full narrative.
func Compose(in Input) Narrative {
	return Narrative{
		Introduction: Introduction(in),
		Conclusion:   Conclusion(in.Sample),
		Sections:     Sections(in.Sample, in.Minutes),
	}
}
