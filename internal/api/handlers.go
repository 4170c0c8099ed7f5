package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/FocuswithJustin/JuniperLessons/core/calendar"
	"github.com/FocuswithJustin/JuniperLessons/core/congregation"
	"github.com/FocuswithJustin/JuniperLessons/core/errors"
	"github.com/FocuswithJustin/JuniperLessons/core/festival"
	"github.com/FocuswithJustin/JuniperLessons/core/lesson"
	"github.com/FocuswithJustin/JuniperLessons/core/samples"
	"github.com/FocuswithJustin/JuniperLessons/core/sqlite"
	"github.com/FocuswithJustin/JuniperLessons/internal/codesearch"
	"github.com/FocuswithJustin/JuniperLessons/internal/decks"
	"github.com/FocuswithJustin/JuniperLessons/internal/logging"
	"github.com/FocuswithJustin/JuniperLessons/internal/server"
	"github.com/FocuswithJustin/JuniperLessons/internal/validation"
)

// PPTXMediaType is the content type of generated decks.
const PPTXMediaType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// maxRequestBody bounds a generate request body.
const maxRequestBody = 64 << 10

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// GenerateResponse is the payload of a successful generate call.
type GenerateResponse struct {
	*lesson.Result
	GitHubSources []codesearch.Source `json:"github_sources"`
	PPTXDownload  string              `json:"pptx_download"`
	DeckID        string              `json:"deck_id"`
}

// FestivalsResponse lists the festivals near a date.
type FestivalsResponse struct {
	Date       string           `json:"date"`
	HebrewDate string           `json:"hebrew_date"`
	Matches    []festival.Match `json:"matches"`
}

// CongregationSummary is one row of the congregation listing.
type CongregationSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// DeckInfo is a registry entry with its integrity check.
type DeckInfo struct {
	decks.Deck
	Download string `json:"download"`
	Verified bool   `json:"verified"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Uptime        string `json:"uptime"`
	Samples       int    `json:"samples"`
	Congregations int    `json:"congregations"`
	Clients       int    `json:"websocket_clients"`
	SQLiteDriver  string `json:"sqlite_driver"`
}

type pageData struct {
	Name          string
	Version       string
	Samples       []samples.Sample
	Congregations []string
}

var endpoints = []string{
	"GET /health",
	"POST /api/generate",
	"GET /api/pptx/{filename}",
	"GET /api/festivals?date=YYYY-MM-DD",
	"GET /api/congregations",
	"GET /api/congregations/{id}?date=YYYY-MM-DD",
	"GET /api/samples",
	"GET /api/decks",
	"GET /api/decks/{id}",
	"GET /api/decks/{id}/lesson",
	"WS /ws",
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := s.deps.Pages.ExecuteTemplate(w, "index.html", pageData{
			Name:          "Juniper Lessons",
			Version:       Version,
			Samples:       s.deps.Generator.Samples().All(),
			Congregations: s.deps.Congregations.IDs(),
		})
		if err != nil {
			logging.ErrorContext(r.Context(), "render page failed", "error", err)
		}
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"name":      "Juniper Lessons API",
		"version":   Version,
		"endpoints": endpoints,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	respond(w, http.StatusOK, HealthInfo{
		Status:        "healthy",
		Version:       Version,
		Uptime:        time.Since(s.started).Round(time.Second).String(),
		Samples:       s.deps.Generator.Samples().Len(),
		Congregations: len(s.deps.Congregations.IDs()),
		Clients:       s.hub.ClientCount(),
		SQLiteDriver:  sqlite.DriverType(),
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if !server.ValidateContentType(r.Header.Get("Content-Type"), []string{"application/json"}) {
		respondError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "Content-Type must be application/json")
		return
	}

	ctx := r.Context()
	requestID := logging.GetRequestID(ctx)

	var in validation.LessonInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&in); err != nil {
		parseErr := errors.NewParse("JSON", "request body", err.Error())
		respondError(w, http.StatusBadRequest, "INVALID_JSON", parseErr.Error())
		return
	}

	req, ref, err := validation.ValidateLesson(in, s.deps.Now())
	if err != nil {
		s.hub.BroadcastError(requestID, err.Error())
		respondErr(w, r, err)
		return
	}

	result := s.deps.Generator.Generate(req, ref, func(stage string, pct int) {
		s.hub.BroadcastProgress(requestID, stage, stageMessages[stage], pct)
	})

	deck, err := result.Lesson.Deck()
	if err != nil {
		s.hub.BroadcastError(requestID, "Failed to build slide deck")
		respondErr(w, r, fmt.Errorf("build deck: %w", err))
		return
	}

	lessonJSON, err := json.Marshal(result)
	if err != nil {
		respondErr(w, r, fmt.Errorf("encode lesson: %w", err))
		return
	}

	saved, err := s.deps.Decks.Save(ctx, result.Lesson.Title, deck, lessonJSON)
	if err != nil {
		s.hub.BroadcastError(requestID, "Failed to store slide deck")
		respondErr(w, r, err)
		return
	}

	query := codesearch.Query(req.Passage, req.Topic, result.Lesson.Reference)
	sources := s.deps.Search.Search(ctx, query, s.cfg.Search.Limit)

	download := "/api/pptx/" + saved.Filename
	logging.LessonGenerated(ctx, result.Lesson.Reference, string(req.LessonType),
		len(result.Lesson.Sections), len(result.Festivals), len(result.Congregation.NearbyEvents),
		"deck_id", saved.ID,
		"runtime_minutes", result.RuntimeMinutes)
	s.hub.BroadcastComplete(requestID, "Lesson ready", map[string]any{
		"deck_id":       saved.ID,
		"pptx_download": download,
	})

	respond(w, http.StatusOK, GenerateResponse{
		Result:        result,
		GitHubSources: sources,
		PPTXDownload:  download,
		DeckID:        saved.ID,
	})
}

var stageMessages = map[string]string{
	lesson.StageSample:       "Selected text sample",
	lesson.StageCalendar:     "Matched festivals",
	lesson.StageCongregation: "Resolved congregation calendar",
	lesson.StageNarrative:    "Composed narrative",
	lesson.StageSlides:       "Structured slides",
}

func (s *Server) handlePPTX(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	filename := r.PathValue("filename")
	path, err := s.deps.Decks.Path(filename)
	if err != nil {
		if isValidation(err) {
			logging.SecurityEvent("invalid_deck_filename", "api",
				"filename", filename,
				"remote_addr", r.RemoteAddr)
		}
		respondError(w, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "File not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		respondErr(w, r, errors.NewIO("stat", path, err))
		return
	}

	w.Header().Set("Content-Type", PPTXMediaType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeContent(w, r, filename, info.ModTime(), f)
}

func (s *Server) handleFestivals(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	ref, err := validation.ReferenceDate(r.URL.Query().Get("date"), s.deps.Now())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	matches := s.deps.Festivals.Match(ref)
	if matches == nil {
		matches = []festival.Match{}
	}
	respondList(w, FestivalsResponse{
		Date:       ref.Format(time.DateOnly),
		HebrewDate: calendar.FromTime(ref).String(),
		Matches:    matches,
	}, len(matches))
}

func (s *Server) handleCongregations(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	ids := s.deps.Congregations.IDs()
	out := make([]CongregationSummary, 0, len(ids))
	for _, id := range ids {
		p, _ := s.deps.Congregations.Profile(id)
		out = append(out, CongregationSummary{ID: id, Name: p.Name, Location: p.Location})
	}
	respondList(w, out, len(out))
}

func (s *Server) handleCongregation(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id := r.PathValue("id")
	if !server.ValidateIdentifier(id) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid congregation ID")
		return
	}
	if _, known := s.deps.Congregations.Profile(id); !known {
		respondErr(w, r, errors.NewNotFound("congregation", id))
		return
	}

	ref, err := validation.ReferenceDate(r.URL.Query().Get("date"), s.deps.Now())
	if err != nil {
		respondErr(w, r, err)
		return
	}

	ctx := s.deps.Resolver.Resolve(id, ref)
	if ctx.NearbyEvents == nil {
		ctx.NearbyEvents = []congregation.Event{}
	}
	respond(w, http.StatusOK, ctx)
}

func (s *Server) handleSamples(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	all := s.deps.Generator.Samples().All()
	respondList(w, all, len(all))
}

func (s *Server) handleDecks(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	list, err := s.deps.Decks.List(r.Context())
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if list == nil {
		list = []decks.Deck{}
	}
	respondList(w, list, len(list))
}

func (s *Server) handleDeck(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id, ok := deckID(w, r)
	if !ok {
		return
	}

	d, err := s.deps.Decks.Get(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	verified, err := s.deps.Decks.Verify(r.Context(), id)
	if err != nil {
		logging.WarnContext(r.Context(), "deck verification failed", "deck_id", id, "error", err)
	}
	respond(w, http.StatusOK, DeckInfo{
		Deck:     *d,
		Download: "/api/pptx/" + d.Filename,
		Verified: verified,
	})
}

func (s *Server) handleDeckLesson(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id, ok := deckID(w, r)
	if !ok {
		return
	}

	data, err := s.deps.Decks.Lesson(r.Context(), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, json.RawMessage(data))
}

func deckID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if err := validation.ValidateDeckID(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid deck ID")
		return "", false
	}
	return id, true
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only "+method+" is allowed")
	return false
}

func isValidation(err error) bool {
	var ve *errors.ValidationError
	return errors.As(err, &ve)
}

// respondErr maps a typed error to its status and code. Unexpected errors
// are logged and reported without detail.
func respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *errors.ValidationError
		nf *errors.NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", ve.Error())
	case errors.As(err, &nf):
		respondError(w, http.StatusNotFound, "NOT_FOUND", nf.Error())
	default:
		logging.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta: &APIMeta{
			Total:     total,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
		},
		Meta: &APIMeta{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("write response failed", "error", err)
	}
}
