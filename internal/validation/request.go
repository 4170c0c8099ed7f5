package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/calendar"
	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/errors"
	"github.com/FocuswithJustin/JuniperLessons/core/lesson"
)

// Free-text limits.
const (
	MaxTextLength = 500
	MaxIDLength   = 64
)

// LessonInput is a lesson request as decoded from a client. EstimatedMinutes
// is a pointer so an omitted value can take the default.
type LessonInput struct {
	Audience         string `json:"audience,omitempty"`
	Occasion         string `json:"occasion,omitempty"`
	Date             string `json:"date,omitempty"`
	Topic            string `json:"topic,omitempty"`
	Passage          string `json:"passage,omitempty"`
	LessonType       string `json:"lesson_type"`
	EstimatedMinutes *int   `json:"estimated_minutes,omitempty"`
	Interpreted      bool   `json:"interpreted"`
	CongregationID   string `json:"congregation_id,omitempty"`
}

// ValidateLesson normalizes in into a core request. The reference date is
// the parsed request date, or the UTC date of now when none is given.
// Failures are *errors.ValidationError naming the offending field.
func ValidateLesson(in LessonInput, now time.Time) (lesson.Request, time.Time, error) {
	req := lesson.Request{
		Audience:       strings.TrimSpace(in.Audience),
		Occasion:       strings.TrimSpace(in.Occasion),
		Date:           strings.TrimSpace(in.Date),
		Topic:          strings.TrimSpace(in.Topic),
		Passage:        strings.TrimSpace(in.Passage),
		Interpreted:    in.Interpreted,
		CongregationID: strings.TrimSpace(in.CongregationID),
	}

	for _, f := range []struct{ name, value string }{
		{"audience", req.Audience},
		{"occasion", req.Occasion},
		{"topic", req.Topic},
		{"passage", req.Passage},
	} {
		if len(f.value) > MaxTextLength {
			return lesson.Request{}, time.Time{}, invalid(f.name, truncate(f.value), fmt.Sprintf("must be at most %d characters", MaxTextLength))
		}
	}

	if req.Topic == "" && req.Passage == "" {
		return lesson.Request{}, time.Time{}, errors.NewValidation("topic", "topic or passage required")
	}

	typ, err := lesson.ParseType(strings.TrimSpace(in.LessonType))
	if err != nil {
		return lesson.Request{}, time.Time{}, &errors.ValidationError{
			Field:   "lesson_type",
			Value:   truncate(in.LessonType),
			Message: "must be one of expository, topical, bible_study, personal",
			Err:     err,
		}
	}
	req.LessonType = typ

	req.EstimatedMinutes = lesson.DefaultMinutes
	if in.EstimatedMinutes != nil {
		req.EstimatedMinutes = *in.EstimatedMinutes
	}
	if req.EstimatedMinutes < lesson.MinMinutes || req.EstimatedMinutes > lesson.MaxMinutes {
		return lesson.Request{}, time.Time{}, invalid("estimated_minutes", fmt.Sprint(req.EstimatedMinutes),
			fmt.Sprintf("must be between %d and %d", lesson.MinMinutes, lesson.MaxMinutes))
	}

	if req.CongregationID == "" {
		req.CongregationID = congregation.DefaultID
	}
	if len(req.CongregationID) > MaxIDLength {
		return lesson.Request{}, time.Time{}, invalid("congregation_id", truncate(req.CongregationID), "too long")
	}

	ref, err := ReferenceDate(req.Date, now)
	if err != nil {
		return lesson.Request{}, time.Time{}, err
	}
	return req, ref, nil
}

// ReferenceDate parses an optional date query value. An empty value yields
// the UTC date of now.
func ReferenceDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return calendar.DateOnly(now.UTC()), nil
	}
	ref, err := calendar.ParseCivil(s)
	if err != nil {
		return time.Time{}, &errors.ValidationError{
			Field:   "date",
			Value:   truncate(s),
			Message: "invalid date format",
			Err:     err,
		}
	}
	return ref, nil
}

func invalid(field, value, message string) *errors.ValidationError {
	return &errors.ValidationError{Field: field, Value: value, Message: message}
}

func truncate(s string) string {
	const n = 40
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
