package service

import (
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"

	qcerr "github.com/amterp/qrcard/internal/errors"
	"github.com/amterp/qrcard/internal/id"
	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/search"
	"github.com/amterp/qrcard/internal/share"
	"github.com/amterp/qrcard/internal/store"
)

// maxIDAttempts bounds button id generation. flexid ids generated within the
// same tick can collide, so a few retries are expected under bursts.
const maxIDAttempts = 16

// QREncoder renders URLs as QR codes.
type QREncoder interface {
	PNG(url string, size int) ([]byte, error)
	Terminal(url string) (string, error)
}

// CardService handles card and button operations.
// Every presentation layer (shell, HTTP API) goes through it.
type CardService struct {
	store      store.CardStore
	encoder    QREncoder
	sharer     share.Sharer
	log        log.FieldLogger
	strictURLs bool
	newID      func() string
}

// NewCardService creates a new card service.
func NewCardService(cardStore store.CardStore, encoder QREncoder, sharer share.Sharer, logger log.FieldLogger) *CardService {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &CardService{
		store:   cardStore,
		encoder: encoder,
		sharer:  sharer,
		log:     logger,
		newID:   func() string { return id.Generate(id.Button) },
	}
}

// SetStrictURLs enables URL validation beyond "not empty".
// Strict URLs must be absolute http(s) URLs with a host.
func (s *CardService) SetStrictURLs(strict bool) {
	s.strictURLs = strict
}

// AddCardInput contains the input for adding a card.
type AddCardInput struct {
	Title       string
	Description string
	Image       string
}

// EditCardInput contains the input for editing a card.
// Pointer fields indicate "set this field"; nil means "don't change".
type EditCardInput struct {
	CardID      string
	Title       *string // nil = no change
	Description *string // nil = no change
	Image       *string // nil = no change, empty string = remove image
}

// AddButtonInput contains the input for adding a button.
type AddButtonInput struct {
	CardID string
	Label  string
	URL    string
}

// EditButtonInput contains the input for editing a button.
type EditButtonInput struct {
	CardID string
	Index  int
	Label  *string
	URL    *string
}

// ViewQRResult is what a scan of one button produces.
type ViewQRResult struct {
	CardID    string
	CardTitle string
	Index     int
	Button    model.Button // ScanCount already includes this view
	PNG       []byte       // Set by ViewQR
	Text      string       // Set by ViewQRText
}

// Snapshot returns the current collection.
func (s *CardService) Snapshot() model.Collection {
	return s.store.Snapshot()
}

// List returns every card in display order.
func (s *CardService) List() []model.Card {
	return s.store.Snapshot().Cards
}

// Get retrieves a card by ID.
func (s *CardService) Get(cardID string) (*model.Card, error) {
	card, ok := s.store.Snapshot().FindCard(cardID)
	if !ok {
		return nil, qcerr.CardNotFound(cardID)
	}
	return &card, nil
}

// Search returns the cards whose title or description contains query.
func (s *CardService) Search(query string) []model.Card {
	return search.FilterCards(s.List(), query)
}

// Rank returns cards fuzzy-matching query, best match first.
func (s *CardService) Rank(query string) []model.Card {
	return search.RankCards(s.List(), query)
}

// SearchButtons returns the buttons on a card whose label contains query.
func (s *CardService) SearchButtons(cardID, query string) ([]search.ButtonMatch, error) {
	card, err := s.Get(cardID)
	if err != nil {
		return nil, err
	}
	return search.FilterButtons(card.Buttons, query), nil
}

// AddCard creates a new card with no buttons.
func (s *CardService) AddCard(input AddCardInput) (*model.Card, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, qcerr.InvalidField("title", "cannot be empty")
	}

	var cardID string
	next, err := s.store.Commit("add_card", func(c model.Collection) (model.Collection, error) {
		var out model.Collection
		out, cardID = c.AddCard(title, strings.TrimSpace(input.Description), input.Image)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(log.Fields{"card_id": cardID, "title": title}).Info("card added")
	card, _ := next.FindCard(cardID)
	return &card, nil
}

// EditCard updates the given fields of a card.
func (s *CardService) EditCard(input EditCardInput) (*model.Card, error) {
	fields := model.CardFields{Description: input.Description, Image: input.Image}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, qcerr.InvalidField("title", "cannot be empty")
		}
		fields.Title = &title
	}

	next, err := s.store.Commit("edit_card", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(input.CardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(input.CardID)
		}
		return c.EditCard(input.CardID, fields), nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("card_id", input.CardID).Info("card edited")
	card, _ := next.FindCard(input.CardID)
	return &card, nil
}

// DeleteCard removes a card together with all of its buttons.
func (s *CardService) DeleteCard(cardID string) error {
	_, err := s.store.Commit("delete_card", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		return c.DeleteCard(cardID), nil
	})
	if err != nil {
		return err
	}
	s.log.WithField("card_id", cardID).Info("card deleted")
	return nil
}

// ReorderCards sets the card order. order must list every card id once.
func (s *CardService) ReorderCards(order []string) ([]model.Card, error) {
	next, err := s.store.Commit("reorder_cards", func(c model.Collection) (model.Collection, error) {
		return c.ReorderCards(order)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("order", order).Info("cards reordered")
	return next.Cards, nil
}

// MoveCard moves a card one position up (delta < 0) or down (delta > 0).
func (s *CardService) MoveCard(cardID string, delta int) ([]model.Card, error) {
	next, err := s.store.Commit("move_card", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		return c.MoveCard(cardID, delta), nil
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"card_id": cardID, "delta": delta}).Debug("card moved")
	return next.Cards, nil
}

// AddButton appends a new button to a card and assigns it a stable id.
func (s *CardService) AddButton(input AddButtonInput) (*model.Button, error) {
	label, link, err := s.validateButton(input.Label, input.URL)
	if err != nil {
		return nil, err
	}

	var button model.Button
	_, err = s.store.Commit("add_button", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(input.CardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(input.CardID)
		}
		buttonID, err := s.uniqueButtonID(c, input.CardID)
		if err != nil {
			return model.Collection{}, err
		}
		button = model.Button{ID: buttonID, Label: label, URL: link}
		return c.AddButton(input.CardID, button)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(log.Fields{"card_id": input.CardID, "button_id": button.ID, "url": link}).Info("button added")
	return &button, nil
}

// EditButton updates the button at index.
func (s *CardService) EditButton(input EditButtonInput) (*model.Button, error) {
	fields := model.ButtonFields{}
	if input.Label != nil {
		label := strings.TrimSpace(*input.Label)
		if label == "" {
			return nil, qcerr.InvalidField("label", "cannot be empty")
		}
		fields.Label = &label
	}
	if input.URL != nil {
		link, err := s.validateURL(*input.URL)
		if err != nil {
			return nil, err
		}
		fields.URL = &link
	}

	next, err := s.store.Commit("edit_button", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(input.CardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(input.CardID)
		}
		return c.EditButton(input.CardID, input.Index, fields)
	})
	if err != nil {
		return nil, err
	}

	card, _ := next.FindCard(input.CardID)
	button := card.Buttons[input.Index]
	s.log.WithFields(log.Fields{"card_id": input.CardID, "button_id": button.ID}).Info("button edited")
	return &button, nil
}

// DeleteButton removes the button at index.
func (s *CardService) DeleteButton(cardID string, index int) error {
	_, err := s.store.Commit("delete_button", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		return c.DeleteButton(cardID, index)
	})
	if err != nil {
		return err
	}
	s.log.WithFields(log.Fields{"card_id": cardID, "index": index}).Info("button deleted")
	return nil
}

// ReorderButtons sets the button order of a card by button id.
func (s *CardService) ReorderButtons(cardID string, order []string) (*model.Card, error) {
	next, err := s.store.Commit("reorder_buttons", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		return c.ReorderButtons(cardID, order)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithField("card_id", cardID).Info("buttons reordered")
	card, _ := next.FindCard(cardID)
	return &card, nil
}

// MoveButton moves the button at index one position up or down.
func (s *CardService) MoveButton(cardID string, index, delta int) (*model.Card, error) {
	next, err := s.store.Commit("move_button", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		return c.MoveButton(cardID, index, delta)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(log.Fields{"card_id": cardID, "index": index, "delta": delta}).Debug("button moved")
	card, _ := next.FindCard(cardID)
	return &card, nil
}

// ViewQR records a scan of the button at index and renders its URL as a PNG
// at the encoder's default size.
func (s *CardService) ViewQR(cardID string, index int) (*ViewQRResult, error) {
	return s.view(cardID, index, func(result *ViewQRResult) error {
		png, err := s.encoder.PNG(result.Button.URL, 0)
		result.PNG = png
		return err
	})
}

// ViewQRText records a scan of the button at index and renders its URL for
// a terminal.
func (s *CardService) ViewQRText(cardID string, index int) (*ViewQRResult, error) {
	return s.view(cardID, index, func(result *ViewQRResult) error {
		text, err := s.encoder.Terminal(result.Button.URL)
		result.Text = text
		return err
	})
}

// view encodes inside the commit so the scan count only moves when a code
// was actually produced, and exactly once per call.
func (s *CardService) view(cardID string, index int, encode func(*ViewQRResult) error) (*ViewQRResult, error) {
	var result ViewQRResult
	_, err := s.store.Commit("view_qr", func(c model.Collection) (model.Collection, error) {
		if _, ok := c.FindCard(cardID); !ok {
			return model.Collection{}, qcerr.CardNotFound(cardID)
		}
		next, err := c.IncrementScanCount(cardID, index)
		if err != nil {
			return model.Collection{}, err
		}
		card, _ := next.FindCard(cardID)
		result = ViewQRResult{
			CardID:    card.ID,
			CardTitle: card.Title,
			Index:     index,
			Button:    card.Buttons[index],
		}
		if err := encode(&result); err != nil {
			return model.Collection{}, fmt.Errorf("failed to render QR code: %w", err)
		}
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(log.Fields{
		"card_id":    cardID,
		"button_id":  result.Button.ID,
		"scan_count": result.Button.ScanCount,
	}).Info("QR code viewed")
	return &result, nil
}

// Share hands the button at index to the share boundary.
func (s *CardService) Share(cardID string, index int) error {
	card, err := s.Get(cardID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(card.Buttons) {
		return qcerr.IndexOutOfRange(cardID, index, len(card.Buttons))
	}
	button := card.Buttons[index]
	if err := s.sharer.Share(share.Payload{Label: button.Label, URL: button.URL}); err != nil {
		return fmt.Errorf("failed to share %q: %w", button.Label, err)
	}
	s.log.WithFields(log.Fields{"card_id": cardID, "button_id": button.ID}).Info("button shared")
	return nil
}

func (s *CardService) uniqueButtonID(c model.Collection, cardID string) (string, error) {
	for range maxIDAttempts {
		candidate := s.newID()
		if c.ButtonIndex(cardID, candidate) < 0 {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("failed to generate a unique button id after %d attempts", maxIDAttempts)
}

func (s *CardService) validateButton(label, link string) (string, string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", "", qcerr.InvalidField("label", "cannot be empty")
	}
	link, err := s.validateURL(link)
	if err != nil {
		return "", "", err
	}
	return label, link, nil
}

func (s *CardService) validateURL(link string) (string, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return "", qcerr.InvalidField("url", "cannot be empty")
	}
	if !s.strictURLs {
		return link, nil
	}
	u, err := url.Parse(link)
	if err != nil {
		return "", qcerr.InvalidField("url", err.Error())
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", qcerr.InvalidField("url", fmt.Sprintf("scheme must be http or https, got %q", u.Scheme))
	}
	if u.Host == "" {
		return "", qcerr.InvalidField("url", "missing host")
	}
	return link, nil
}
