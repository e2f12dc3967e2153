// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workspace

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/taibuivan/arcana/internal/platform/middleware"
	requestutil "github.com/taibuivan/arcana/internal/platform/request"
	"github.com/taibuivan/arcana/internal/platform/respond"
	"github.com/taibuivan/arcana/internal/platform/validate"
	"github.com/taibuivan/arcana/internal/tarot/deck"
	"github.com/taibuivan/arcana/internal/users/profile"
	"github.com/taibuivan/arcana/pkg/pagination"
)

// # Field Limits

const (
	FieldName               = "name"
	FieldBirthDate          = "birth_date"
	FieldFavoriteCategory   = "favorite_category"
	FieldRelationshipStatus = "relationship_status"
	FieldWorkStatus         = "work_status"
	FieldCategory           = "category"
	FieldCardID             = "card_id"
	FieldCardIDs            = "card_ids"
	FieldQuestion           = "question"
	FieldReading            = "reading"

	MaxNameLength     = 100
	MaxStatusLength   = 64
	MaxQuestionLength = 1000
	MaxAnswerLength   = 20000

	// BirthDateLayout is the wire format of a birth date.
	BirthDateLayout = time.DateOnly
)

// # Definitions & Constructors

// Handler implements the profile, history, session and reading endpoints.
type Handler struct {
	registry *Registry
	catalog  *deck.Catalog
	upgrader websocket.Upgrader
}

// NewHandler constructs a [Handler]. checkOrigin vets websocket upgrades; nil
// accepts same-origin requests only.
func NewHandler(registry *Registry, catalog *deck.Catalog, checkOrigin func(*http.Request) bool) *Handler {
	return &Handler{
		registry: registry,
		catalog:  catalog,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     checkOrigin,
		},
	}
}

// MeRoutes returns the routes of the signed-in user's profile and history.
//
// # Endpoints
//   - GET    /profile          : Current profile.
//   - PUT    /profile          : Edits the profile.
//   - POST   /profile/refresh  : Re-fetches the profile from the store.
//   - GET    /readings         : Paginated tarot history, newest first.
//   - POST   /readings         : Saves the completed session reading.
//   - DELETE /readings/{id}    : Deletes one reading.
//   - GET    /questions        : Paginated question history, newest first.
//   - POST   /questions        : Saves a question and its answer.
//   - DELETE /questions/{id}   : Deletes one question.
func (handler *Handler) MeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/profile", handler.getProfile)
	router.Put("/profile", handler.updateProfile)
	router.Post("/profile/refresh", handler.refreshProfile)

	router.Get("/readings", handler.listReadings)
	router.Post("/readings", handler.saveReading)
	router.Delete("/readings/{id}", handler.deleteReading)

	router.Get("/questions", handler.listQuestions)
	router.Post("/questions", handler.saveQuestion)
	router.Delete("/questions/{id}", handler.deleteQuestion)

	return router
}

// workspace returns the workspace of the authenticated session.
func (handler *Handler) workspace(request *http.Request) (*Workspace, error) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		return nil, err
	}
	return handler.registry.Acquire(request.Context(), claims.SessionID, claims.Username), nil
}

// # Request Payloads

type profileRequest struct {
	Name               string `json:"name"`
	BirthDate          string `json:"birth_date"`
	FavoriteCategory   string `json:"favorite_category"`
	RelationshipStatus string `json:"relationship_status"`
	WorkStatus         string `json:"work_status"`
}

// edits validates the payload and converts it to profile edits.
func (input profileRequest) edits() (profile.Edits, error) {
	category, categoryErr := profile.ParseCategory(input.FavoriteCategory)

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		MaxLen(FieldName, input.Name, MaxNameLength).
		Required(FieldBirthDate, input.BirthDate).
		Date(FieldBirthDate, input.BirthDate, BirthDateLayout).
		Custom(FieldFavoriteCategory, categoryErr != nil, "must be one of General, Love, Career, Health").
		Required(FieldRelationshipStatus, input.RelationshipStatus).
		MaxLen(FieldRelationshipStatus, input.RelationshipStatus, MaxStatusLength).
		Required(FieldWorkStatus, input.WorkStatus).
		MaxLen(FieldWorkStatus, input.WorkStatus, MaxStatusLength)

	if err := validator.Err(); err != nil {
		return profile.Edits{}, err
	}

	birthDate, _ := time.Parse(BirthDateLayout, input.BirthDate)
	return profile.Edits{
		Name:               input.Name,
		BirthDate:          birthDate,
		FavoriteCategory:   category,
		RelationshipStatus: input.RelationshipStatus,
		WorkStatus:         input.WorkStatus,
	}, nil
}

type questionRecordRequest struct {
	Question string `json:"question"`
	Reading  string `json:"reading"`
}

func (input questionRecordRequest) validate() error {
	validator := &validate.Validator{}
	validator.Required(FieldQuestion, input.Question).
		MaxLen(FieldQuestion, input.Question, MaxQuestionLength).
		Required(FieldReading, input.Reading).
		MaxLen(FieldReading, input.Reading, MaxAnswerLength)
	return validator.Err()
}

// # Profile

/*
GetProfile returns the signed-in user's profile.

GET /api/v1/me/profile

Response:
  - 200: profile.View
  - 428: Profile not loaded yet
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := workspace.Profile()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, current.ToView())
}

/*
UpdateProfile saves the editable profile fields.

PUT /api/v1/me/profile

Request:
  - Body: profileRequest (all five fields, birth_date as YYYY-MM-DD)

Response:
  - 200: profile.View: The profile after the store acknowledged the write
  - 400: Validation failure
  - 503: Document store unavailable; nothing changed
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	var input profileRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	edits, err := input.edits()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	updated, err := workspace.UpdateProfile(request.Context(), edits)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, updated.ToView())
}

// refreshProfile handles POST /api/v1/me/profile/refresh.
func (handler *Handler) refreshProfile(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	refreshed, err := workspace.Refresh(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, refreshed.ToView())
}

// # Tarot History

// listReadings handles GET /api/v1/me/readings?page=&limit=.
func (handler *Handler) listReadings(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := workspace.Profile()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, meta := pagination.Window(current.TarotHistory, pagination.FromRequest(request))
	respond.Paginated(writer, items, meta)
}

/*
SaveReading persists the completed reading of the current session.

POST /api/v1/me/readings

Response:
  - 201: profile.TarotReading: The saved entry, stamped with the session category
  - 428: No completed reading in the session
  - 503: Document store unavailable; the history was rolled back
*/
func (handler *Handler) saveReading(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	entry, err := workspace.SaveReading(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, entry)
}

// deleteReading handles DELETE /api/v1/me/readings/{id}.
func (handler *Handler) deleteReading(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspace.DeleteReading(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Question History

// listQuestions handles GET /api/v1/me/questions?page=&limit=.
func (handler *Handler) listQuestions(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	current, err := workspace.Profile()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	items, meta := pagination.Window(current.QuestionHistory, pagination.FromRequest(request))
	respond.Paginated(writer, items, meta)
}

/*
SaveQuestion persists a question and the answer it received.

POST /api/v1/me/questions

Request:
  - Body: questionRecordRequest (Question, Reading)

Response:
  - 201: profile.QuestionRecord
  - 400: Empty question or answer
  - 503: Document store unavailable; the history was rolled back
*/
func (handler *Handler) saveQuestion(writer http.ResponseWriter, request *http.Request) {
	var input questionRecordRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := input.validate(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	record, err := workspace.SaveQuestion(request.Context(), input.Question, input.Reading)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, record)
}

// deleteQuestion handles DELETE /api/v1/me/questions/{id}.
func (handler *Handler) deleteQuestion(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := workspace.DeleteQuestion(request.Context(), requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
