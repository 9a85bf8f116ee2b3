package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/search"
	"github.com/amterp/qrcard/internal/service"
)

// ButtonResponse is a button together with its current position, which
// positional endpoints address.
type ButtonResponse struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Label     string `json:"label"`
	URL       string `json:"url"`
	ScanCount int    `json:"scan_count"`
}

func toButtonResponse(index int, b model.Button) ButtonResponse {
	return ButtonResponse{Index: index, ID: b.ID, Label: b.Label, URL: b.URL, ScanCount: b.ScanCount}
}

func toButtonResponses(matches []search.ButtonMatch) []ButtonResponse {
	responses := make([]ButtonResponse, len(matches))
	for i, m := range matches {
		responses[i] = toButtonResponse(m.Index, m.Button)
	}
	return responses
}

// Handler contains all HTTP handlers for the API.
//
// Single-user and single-session: every request goes through the same
// CardService and therefore the same in-memory snapshot.
type Handler struct {
	cards *service.CardService
}

// NewHandler creates a new handler with the given dependencies.
func NewHandler(cards *service.CardService) *Handler {
	return &Handler{cards: cards}
}

// RegisterRoutes sets up all API routes on the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Cards
	mux.HandleFunc("GET /api/v1/cards", h.ListCards)
	mux.HandleFunc("POST /api/v1/cards", h.CreateCard)
	mux.HandleFunc("PUT /api/v1/cards/order", h.ReorderCards)
	mux.HandleFunc("GET /api/v1/cards/{id}", h.GetCard)
	mux.HandleFunc("PATCH /api/v1/cards/{id}", h.UpdateCard)
	mux.HandleFunc("DELETE /api/v1/cards/{id}", h.DeleteCard)
	mux.HandleFunc("PATCH /api/v1/cards/{id}/move", h.MoveCard)

	// Buttons
	mux.HandleFunc("GET /api/v1/cards/{id}/buttons", h.ListButtons)
	mux.HandleFunc("POST /api/v1/cards/{id}/buttons", h.CreateButton)
	mux.HandleFunc("PUT /api/v1/cards/{id}/buttons/order", h.ReorderButtons)
	mux.HandleFunc("PATCH /api/v1/cards/{id}/buttons/{index}", h.UpdateButton)
	mux.HandleFunc("DELETE /api/v1/cards/{id}/buttons/{index}", h.DeleteButton)
	mux.HandleFunc("PATCH /api/v1/cards/{id}/buttons/{index}/move", h.MoveButton)
	mux.HandleFunc("GET /api/v1/cards/{id}/buttons/{index}/qr.png", h.ViewQR)
}

// ============================================================================
// Card Handlers
// ============================================================================

// CreateCardRequest is the request body for creating a card.
type CreateCardRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
}

// UpdateCardRequest is the request body for updating a card.
// Omitted fields are left as they are.
type UpdateCardRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Image       *string `json:"image,omitempty"`
}

// ReorderRequest is the request body for reordering cards or buttons.
type ReorderRequest struct {
	Order []string `json:"order"`
}

// MoveRequest is the request body for moving a card or button.
type MoveRequest struct {
	Delta int `json:"delta"` // -1 = up, 1 = down
}

// ListCards returns all cards, filtered by ?q= when present.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	JSON(w, http.StatusOK, h.cards.Search(r.URL.Query().Get("q")))
}

// GetCard returns a single card.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.Get(r.PathValue("id"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, card)
}

// CreateCard creates a new card.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CreateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	card, err := h.cards.AddCard(service.AddCardInput{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusCreated, card)
}

// UpdateCard edits a card's fields.
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req UpdateCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	card, err := h.cards.EditCard(service.EditCardInput{
		CardID:      r.PathValue("id"),
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
	})
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, card)
}

// DeleteCard deletes a card and its buttons.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.cards.DeleteCard(r.PathValue("id")); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderCards sets the card order.
func (h *Handler) ReorderCards(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	cards, err := h.cards.ReorderCards(req.Order)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, cards)
}

// MoveCard moves a card one position up or down.
func (h *Handler) MoveCard(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeMove(w, r)
	if !ok {
		return
	}

	cards, err := h.cards.MoveCard(r.PathValue("id"), req.Delta)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, cards)
}

// ============================================================================
// Button Handlers
// ============================================================================

// CreateButtonRequest is the request body for adding a button.
type CreateButtonRequest struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// UpdateButtonRequest is the request body for editing a button.
type UpdateButtonRequest struct {
	Label *string `json:"label,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// ListButtons returns a card's buttons, filtered by ?q= when present.
// Each entry carries its index in the unfiltered list.
func (h *Handler) ListButtons(w http.ResponseWriter, r *http.Request) {
	matches, err := h.cards.SearchButtons(r.PathValue("id"), r.URL.Query().Get("q"))
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, toButtonResponses(matches))
}

// CreateButton appends a button to a card.
func (h *Handler) CreateButton(w http.ResponseWriter, r *http.Request) {
	var req CreateButtonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	cardID := r.PathValue("id")
	button, err := h.cards.AddButton(service.AddButtonInput{CardID: cardID, Label: req.Label, URL: req.URL})
	if err != nil {
		Error(w, err)
		return
	}

	card, err := h.cards.Get(cardID)
	if err != nil {
		Error(w, err)
		return
	}
	index := len(card.Buttons) - 1
	for i, b := range card.Buttons {
		if b.ID == button.ID {
			index = i
		}
	}
	JSON(w, http.StatusCreated, toButtonResponse(index, *button))
}

// UpdateButton edits the button at {index}.
func (h *Handler) UpdateButton(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req UpdateButtonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	button, err := h.cards.EditButton(service.EditButtonInput{
		CardID: r.PathValue("id"),
		Index:  index,
		Label:  req.Label,
		URL:    req.URL,
	})
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, toButtonResponse(index, *button))
}

// DeleteButton removes the button at {index}.
func (h *Handler) DeleteButton(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	if err := h.cards.DeleteButton(r.PathValue("id"), index); err != nil {
		Error(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderButtons sets a card's button order by button id.
func (h *Handler) ReorderButtons(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return
	}

	card, err := h.cards.ReorderButtons(r.PathValue("id"), req.Order)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, card)
}

// MoveButton moves the button at {index} one position up or down.
func (h *Handler) MoveButton(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}
	req, ok := decodeMove(w, r)
	if !ok {
		return
	}

	card, err := h.cards.MoveButton(r.PathValue("id"), index, req.Delta)
	if err != nil {
		Error(w, err)
		return
	}
	JSON(w, http.StatusOK, card)
}

// ViewQR renders the button at {index} as a PNG and counts it as a scan.
func (h *Handler) ViewQR(w http.ResponseWriter, r *http.Request) {
	index, ok := pathIndex(w, r)
	if !ok {
		return
	}

	result, err := h.cards.ViewQR(r.PathValue("id"), index)
	if err != nil {
		Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store") // Every fetch is a scan
	w.Header().Set("X-Scan-Count", strconv.Itoa(result.Button.ScanCount))
	w.WriteHeader(http.StatusOK)
	w.Write(result.PNG)
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		BadRequest(w, "invalid button index")
		return 0, false
	}
	return index, true
}

func decodeMove(w http.ResponseWriter, r *http.Request) (MoveRequest, bool) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid JSON body")
		return req, false
	}
	if req.Delta == 0 {
		BadRequest(w, "delta must be -1 (up) or 1 (down)")
		return req, false
	}
	return req, true
}
