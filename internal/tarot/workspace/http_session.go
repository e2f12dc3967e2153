// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package workspace

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/arcana/internal/platform/middleware"
	requestutil "github.com/taibuivan/arcana/internal/platform/request"
	"github.com/taibuivan/arcana/internal/platform/respond"
	"github.com/taibuivan/arcana/internal/platform/validate"
	"github.com/taibuivan/arcana/internal/tarot/reading"
	"github.com/taibuivan/arcana/internal/users/profile"
)

// SessionRoutes returns the card-selection routes.
//
// # Endpoints
//   - GET  /            : Current session state.
//   - POST /reset       : Clears the selection and deals a new deck.
//   - PUT  /category    : Sets the category of the next reading.
//   - POST /cards/{id}  : Selects a card.
//   - GET  /events      : Websocket stream of session events.
func (handler *Handler) SessionRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Get("/", handler.getSession)
	router.Post("/reset", handler.resetSession)
	router.Put("/category", handler.setCategory)
	router.Post("/cards/{id}", handler.selectCard)
	router.Get("/events", handler.streamEvents)

	return router
}

// ReadingRoutes returns the standalone reading routes.
//
// # Endpoints
//   - POST /daily    : Single-card reading of the day.
//   - POST /question : Three-card answer to a question.
func (handler *Handler) ReadingRoutes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/daily", handler.dailyReading)
	router.Post("/question", handler.questionReading)

	return router
}

// CardRoutes returns the public card catalog routes.
func (handler *Handler) CardRoutes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.listCards)
	return router
}

// # Response Payloads

// ReadingResponse is the outcome of a standalone reading. When Failed is set,
// Text holds the message to show instead.
type ReadingResponse struct {
	Text   string `json:"text"`
	Failed bool   `json:"failed"`
}

func newReadingResponse(result reading.Result) ReadingResponse {
	return ReadingResponse{Text: result.Text, Failed: result.Failed()}
}

// # Session

// getSession handles GET /api/v1/session.
func (handler *Handler) getSession(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, workspace.Session().Snapshot())
}

// resetSession handles POST /api/v1/session/reset.
func (handler *Handler) resetSession(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, workspace.Reset())
}

type categoryRequest struct {
	Category string `json:"category"`
}

// setCategory handles PUT /api/v1/session/category.
func (handler *Handler) setCategory(writer http.ResponseWriter, request *http.Request) {
	var input categoryRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	category, err := profile.ParseCategory(input.Category)
	if err != nil {
		respond.Error(writer, request, validate.Field(FieldCategory, "must be one of General, Love, Career, Health"))
		return
	}

	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, workspace.SetCategory(category))
}

/*
SelectCard moves a card from the deck into the selection.

POST /api/v1/session/cards/{id}

Response:
  - 200: session.Snapshot: State after the selection. The seventh card
    leaves the session generating; the result arrives as a session event.
  - 404: Card not in the deck
  - 428: Profile not loaded yet
*/
func (handler *Handler) selectCard(writer http.ResponseWriter, request *http.Request) {
	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	snapshot, err := workspace.SelectCard(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, snapshot)
}

// # Standalone Readings

type dailyRequest struct {
	CardID string `json:"card_id"`
}

/*
DailyReading interprets one card of the session deck as the card of the day.

POST /api/v1/readings/daily

Response:
  - 200: ReadingResponse
  - 404: Card not in the deck
*/
func (handler *Handler) dailyReading(writer http.ResponseWriter, request *http.Request) {
	var input dailyRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.Required(FieldCardID, input.CardID).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := workspace.DailyReading(request.Context(), input.CardID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newReadingResponse(result))
}

type questionRequest struct {
	CardIDs  []string `json:"card_ids"`
	Question string   `json:"question"`
}

/*
QuestionReading answers a question from three cards of the session deck.

POST /api/v1/readings/question

Request:
  - Body: questionRequest (CardIDs, Question)

Response:
  - 200: ReadingResponse: Wrong card counts and empty questions come back
    as a failed reading carrying the message to show.
  - 404: Card not in the deck
*/
func (handler *Handler) questionReading(writer http.ResponseWriter, request *http.Request) {
	var input questionRequest

	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if err := validator.MaxLen(FieldQuestion, input.Question, MaxQuestionLength).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	workspace, err := handler.workspace(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := workspace.AskQuestion(request.Context(), input.CardIDs, input.Question)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newReadingResponse(result))
}

// # Catalog

// listCards handles GET /api/v1/cards.
func (handler *Handler) listCards(writer http.ResponseWriter, _ *http.Request) {
	respond.OK(writer, handler.catalog.Cards())
}
