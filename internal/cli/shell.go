package cli

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/amterp/ra"
	log "github.com/sirupsen/logrus"

	qcerr "github.com/amterp/qrcard/internal/errors"
	"github.com/amterp/qrcard/internal/model"
	"github.com/amterp/qrcard/internal/prompt"
	"github.com/amterp/qrcard/internal/search"
	"github.com/amterp/qrcard/internal/service"
)

func registerShell(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("shell")
	cmd.SetDescription("Browse and edit cards interactively")

	ctx.ShellUsed, _ = parent.RegisterCmd(cmd)
}

func runShell(app *App) error {
	if _, ok := app.Prompter.(*prompt.NoopPrompter); ok {
		return errors.New("shell needs an interactive terminal (drop --non-interactive)")
	}
	// Mutation logs would draw over the prompts
	if app.Logger.GetLevel() > log.WarnLevel {
		app.Logger.SetLevel(log.WarnLevel)
	}
	return NewShell(app.CardService, app.Prompter, app.Out).Run()
}

var (
	errBack = errors.New("back")
	errQuit = errors.New("quit")
)

// Shell is an interactive session over a CardService. Every screen is a
// menu that re-reads the current snapshot on each prompt.
type Shell struct {
	cards    *service.CardService
	prompter prompt.Prompter
	out      io.Writer
}

// NewShell creates a shell session.
func NewShell(cards *service.CardService, prompter prompt.Prompter, out io.Writer) *Shell {
	return &Shell{cards: cards, prompter: prompter, out: out}
}

type menuItem struct {
	label string
	run   func() error
}

// screen builds a menu from the current state. Returning errBack leaves
// the screen, e.g. when its card was deleted elsewhere.
type screen func() (title string, items []menuItem, err error)

// Run starts at the profile screen and returns when the user quits.
func (s *Shell) Run() error {
	err := s.loop(s.profileScreen())
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

// loop shows a screen until the user backs out. Esc on a menu goes back
// one screen; cancelling a prompt inside an action returns to the menu.
func (s *Shell) loop(build screen) error {
	for {
		title, items, err := build()
		if errors.Is(err, errBack) {
			return nil
		}
		if err != nil {
			return err
		}

		action, err := s.choose(title, items)
		if errors.Is(err, prompt.ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}

		err = action()
		switch {
		case err == nil, errors.Is(err, prompt.ErrAborted):
		case errors.Is(err, errBack):
			return nil
		case errors.Is(err, errQuit), errors.Is(err, prompt.ErrNonInteractive):
			return err
		default:
			FprintWarning(s.out, "%v", err)
		}
	}
}

func (s *Shell) choose(title string, items []menuItem) (func() error, error) {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.label
	}

	picked, err := s.prompter.Select(title, labels)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.label == picked {
			return item.run, nil
		}
	}
	return nil, fmt.Errorf("unknown menu option %q", picked)
}

// ============================================================================
// Profile
// ============================================================================

func (s *Shell) profileScreen() screen {
	var query string

	return func() (string, []menuItem, error) {
		cards := s.cards.Search(query)

		title := "Your cards"
		if query != "" {
			title = fmt.Sprintf("Cards matching %q (%d)", query, len(cards))
		}

		items := make([]menuItem, 0, len(cards)+7)
		for i, card := range cards {
			cardID := card.ID
			items = append(items, menuItem{cardLabel(i, card), func() error {
				return s.loop(s.cardScreen(cardID))
			}})
		}

		items = append(items, menuItem{"Search cards…", func() error {
			q, err := s.prompter.Input("Search cards", query)
			if err != nil {
				return err
			}
			query = strings.TrimSpace(q)
			return nil
		}})
		if query != "" {
			items = append(items, menuItem{"Clear search", func() error {
				query = ""
				return nil
			}})
		}
		items = append(items,
			menuItem{"Jump to card…", s.jumpToCard},
			menuItem{"Add card…", s.addCard},
			menuItem{"Manage cards…", func() error { return s.loop(s.manageScreen()) }},
			menuItem{"Export as JSON", func() error {
				return fprintJson(s.out, NewSnapshotOutput(s.cards.Snapshot()))
			}},
			menuItem{"Quit", func() error { return errQuit }},
		)
		return title, items, nil
	}
}

func (s *Shell) jumpToCard() error {
	q, err := s.prompter.Input("Jump to card (fuzzy title match)", "")
	if err != nil {
		return err
	}
	ranked := s.cards.Rank(strings.TrimSpace(q))
	if len(ranked) == 0 {
		FprintInfo(s.out, "No card matches %q", q)
		return nil
	}
	return s.loop(s.cardScreen(ranked[0].ID))
}

func (s *Shell) addCard() error {
	title, err := s.prompter.Input("Card title", "")
	if err != nil {
		return err
	}
	if strings.TrimSpace(title) == "" {
		return qcerr.InvalidField("title", "cannot be empty")
	}

	description, err := s.prompter.Input("Description (optional)", "")
	if err != nil {
		return err
	}

	var image string
	addImage, err := s.prompter.Confirm("Add an image?", false)
	if err != nil {
		return err
	}
	if addImage {
		if image, err = s.pickImage(); err != nil {
			return err
		}
	}

	card, err := s.cards.AddCard(service.AddCardInput{Title: title, Description: description, Image: image})
	if err != nil {
		return err
	}
	FprintSuccess(s.out, "Added card %s %s", RenderID(card.ID), RenderBold(card.Title))
	return nil
}

// pickImage asks for an image file. Cancelling the picker means no image.
func (s *Shell) pickImage() (string, error) {
	path, err := s.prompter.PickFile("Choose an image")
	if errors.Is(err, prompt.ErrAborted) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return imageHandle(path), nil
}

// imageHandle turns a picked file path into the opaque handle stored on a card.
func imageHandle(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// ============================================================================
// Card
// ============================================================================

func (s *Shell) cardScreen(cardID string) screen {
	var query string

	return func() (string, []menuItem, error) {
		card, err := s.cards.Get(cardID)
		if err != nil {
			FprintWarning(s.out, "Card %s no longer exists", cardID)
			return "", nil, errBack
		}
		matches, err := s.cards.SearchButtons(cardID, query)
		if err != nil {
			return "", nil, err
		}

		fmt.Fprintln(s.out)
		printCard(s.out, *card)

		title := card.Title
		if query != "" {
			title = fmt.Sprintf("%s: links matching %q", card.Title, query)
		}

		items := make([]menuItem, 0, len(matches)+6)
		for _, m := range matches {
			buttonID := m.Button.ID
			items = append(items, menuItem{buttonLabel(m.Index, m.Button), func() error {
				return s.loop(s.buttonScreen(cardID, buttonID))
			}})
		}

		items = append(items, menuItem{"Search links…", func() error {
			q, err := s.prompter.Input("Search links", query)
			if err != nil {
				return err
			}
			query = strings.TrimSpace(q)
			return nil
		}})
		if query != "" {
			items = append(items, menuItem{"Clear search", func() error {
				query = ""
				return nil
			}})
		}
		items = append(items, menuItem{"Add link…", func() error { return s.addButton(cardID) }})
		if len(card.Buttons) > 0 {
			items = append(items, menuItem{"Delete links…", func() error { return s.deleteButtons(cardID) }})
		}
		items = append(items, menuItem{"Back", func() error { return errBack }})
		return title, items, nil
	}
}

func (s *Shell) addButton(cardID string) error {
	label, err := s.prompter.Input("Link label", "")
	if err != nil {
		return err
	}
	link, err := s.prompter.Input("URL", "https://")
	if err != nil {
		return err
	}

	button, err := s.cards.AddButton(service.AddButtonInput{CardID: cardID, Label: label, URL: link})
	if err != nil {
		return err
	}
	FprintSuccess(s.out, "Added %s %s", RenderBold(button.Label), RenderURL(button.URL))
	return nil
}

func (s *Shell) deleteButtons(cardID string) error {
	card, err := s.cards.Get(cardID)
	if err != nil {
		return err
	}

	labels := make([]string, len(card.Buttons))
	byLabel := make(map[string]int, len(card.Buttons))
	for i, b := range card.Buttons {
		labels[i] = buttonLabel(i, b)
		byLabel[labels[i]] = i
	}

	picked, err := s.prompter.MultiSelect("Links to delete", labels)
	if err != nil || len(picked) == 0 {
		return err
	}
	ok, err := s.prompter.Confirm(fmt.Sprintf("Delete %d link(s)?", len(picked)), false)
	if err != nil || !ok {
		return err
	}

	// Delete from the end so earlier indices stay valid
	indices := make([]int, 0, len(picked))
	for _, label := range picked {
		indices = append(indices, byLabel[label])
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))
	for _, i := range indices {
		if err := s.cards.DeleteButton(cardID, i); err != nil {
			return err
		}
	}
	FprintSuccess(s.out, "Deleted %d link(s)", len(indices))
	return nil
}

// ============================================================================
// Link
// ============================================================================

// buttonScreen tracks its button by id, so it keeps working when the
// button's position changes underneath it.
func (s *Shell) buttonScreen(cardID, buttonID string) screen {
	return func() (string, []menuItem, error) {
		snapshot := s.cards.Snapshot()
		index := snapshot.ButtonIndex(cardID, buttonID)
		if index < 0 {
			return "", nil, errBack
		}
		card, _ := snapshot.FindCard(cardID)
		button := card.Buttons[index]

		items := []menuItem{
			{"Show QR code", func() error { return s.showQR(cardID, index) }},
			{"Save QR as PNG…", func() error { return s.saveQR(cardID, index, card.Title, button.Label) }},
			{"Share", func() error { return s.share(cardID, index) }},
			{"Edit…", func() error { return s.editButton(cardID, index, button) }},
		}
		if index > 0 {
			items = append(items, menuItem{"Move up", func() error { return s.moveButton(cardID, index, -1) }})
		}
		if index < len(card.Buttons)-1 {
			items = append(items, menuItem{"Move down", func() error { return s.moveButton(cardID, index, 1) }})
		}
		items = append(items,
			menuItem{"Delete", func() error { return s.deleteButton(cardID, index, button) }},
			menuItem{"Back", func() error { return errBack }},
		)

		title := fmt.Sprintf("%s › %s (%s)", card.Title, button.Label, scansText(button.ScanCount))
		return title, items, nil
	}
}

func (s *Shell) showQR(cardID string, index int) error {
	result, err := s.cards.ViewQRText(cardID, index)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "\n%s › %s\n", RenderBold(result.CardTitle), RenderBold(result.Button.Label))
	fmt.Fprint(s.out, result.Text)
	fmt.Fprintf(s.out, "%s  %s\n\n", RenderURL(result.Button.URL), RenderScans(result.Button.ScanCount))
	return nil
}

func (s *Shell) saveQR(cardID string, index int, cardTitle, label string) error {
	name := search.Slug(cardTitle, label)
	if name == "" {
		name = "qrcode"
	}
	path, err := s.prompter.Input("Save as", name+".png")
	if err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return qcerr.InvalidField("path", "cannot be empty")
	}

	result, err := s.cards.ViewQR(cardID, index)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, result.PNG, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	FprintSuccess(s.out, "Saved QR code for %s to %s", RenderBold(result.Button.Label), path)
	return nil
}

func (s *Shell) share(cardID string, index int) error {
	if err := s.cards.Share(cardID, index); err != nil {
		return err
	}
	FprintSuccess(s.out, "Shared")
	return nil
}

func (s *Shell) editButton(cardID string, index int, current model.Button) error {
	label, err := s.prompter.Input("Link label", current.Label)
	if err != nil {
		return err
	}
	link, err := s.prompter.Input("URL", current.URL)
	if err != nil {
		return err
	}

	input := service.EditButtonInput{CardID: cardID, Index: index}
	if label != current.Label {
		input.Label = &label
	}
	if link != current.URL {
		input.URL = &link
	}
	if input.Label == nil && input.URL == nil {
		FprintInfo(s.out, "No changes")
		return nil
	}

	if _, err := s.cards.EditButton(input); err != nil {
		return err
	}
	FprintSuccess(s.out, "Updated link")
	return nil
}

func (s *Shell) moveButton(cardID string, index, delta int) error {
	_, err := s.cards.MoveButton(cardID, index, delta)
	return err
}

func (s *Shell) deleteButton(cardID string, index int, button model.Button) error {
	ok, err := s.prompter.Confirm(fmt.Sprintf("Delete %q?", button.Label), false)
	if err != nil || !ok {
		return err
	}
	if err := s.cards.DeleteButton(cardID, index); err != nil {
		return err
	}
	FprintSuccess(s.out, "Deleted %s", RenderBold(button.Label))
	return errBack
}

// ============================================================================
// Manage
// ============================================================================

func (s *Shell) manageScreen() screen {
	return func() (string, []menuItem, error) {
		cards := s.cards.List()
		items := make([]menuItem, 0, len(cards)+1)
		for i, card := range cards {
			cardID := card.ID
			items = append(items, menuItem{cardLabel(i, card), func() error {
				return s.loop(s.manageCardScreen(cardID))
			}})
		}
		items = append(items, menuItem{"Back", func() error { return errBack }})
		return "Manage cards", items, nil
	}
}

func (s *Shell) manageCardScreen(cardID string) screen {
	return func() (string, []menuItem, error) {
		cards := s.cards.List()
		position := -1
		for i, c := range cards {
			if c.ID == cardID {
				position = i
			}
		}
		if position < 0 {
			return "", nil, errBack
		}
		card := cards[position]

		items := []menuItem{{"Edit…", func() error { return s.editCard(card) }}}
		if position > 0 {
			items = append(items, menuItem{"Move up", func() error { return s.moveCard(cardID, -1) }})
		}
		if position < len(cards)-1 {
			items = append(items, menuItem{"Move down", func() error { return s.moveCard(cardID, 1) }})
		}
		items = append(items,
			menuItem{"Delete", func() error { return s.deleteCard(card) }},
			menuItem{"Back", func() error { return errBack }},
		)
		return card.Title, items, nil
	}
}

func (s *Shell) editCard(card model.Card) error {
	title, err := s.prompter.Input("Card title", card.Title)
	if err != nil {
		return err
	}
	description, err := s.prompter.Input("Description", card.Description)
	if err != nil {
		return err
	}

	input := service.EditCardInput{CardID: card.ID}
	if title != card.Title {
		input.Title = &title
	}
	if description != card.Description {
		input.Description = &description
	}

	imageOptions := []string{"Keep image", "Choose new image…", "Remove image"}
	if !card.HasImage() {
		imageOptions = []string{"No image", "Choose image…"}
	}
	choice, err := s.prompter.Select("Image", imageOptions)
	if err != nil {
		return err
	}
	switch choice {
	case "Choose new image…", "Choose image…":
		image, err := s.pickImage()
		if err != nil {
			return err
		}
		if image != "" {
			input.Image = &image
		}
	case "Remove image":
		empty := ""
		input.Image = &empty
	}

	if input.Title == nil && input.Description == nil && input.Image == nil {
		FprintInfo(s.out, "No changes")
		return nil
	}
	if _, err := s.cards.EditCard(input); err != nil {
		return err
	}
	FprintSuccess(s.out, "Updated card %s", RenderID(card.ID))
	return nil
}

func (s *Shell) moveCard(cardID string, delta int) error {
	_, err := s.cards.MoveCard(cardID, delta)
	return err
}

func (s *Shell) deleteCard(card model.Card) error {
	ok, err := s.prompter.Confirm(fmt.Sprintf("Delete %q and its %d link(s)?", card.Title, len(card.Buttons)), false)
	if err != nil || !ok {
		return err
	}
	if err := s.cards.DeleteCard(card.ID); err != nil {
		return err
	}
	FprintSuccess(s.out, "Deleted card %s", RenderBold(card.Title))
	return errBack
}

// ============================================================================
// Labels
// ============================================================================

// Menu labels are numbered so they stay unique even when titles repeat.
func cardLabel(i int, card model.Card) string {
	links := "links"
	if len(card.Buttons) == 1 {
		links = "link"
	}
	return fmt.Sprintf("%d. %s (%d %s)", i+1, card.Title, len(card.Buttons), links)
}

func buttonLabel(i int, b model.Button) string {
	return fmt.Sprintf("%d. %s  %s", i+1, b.Label, b.URL)
}

func scansText(n int) string {
	if n == 1 {
		return "1 scan"
	}
	return fmt.Sprintf("%d scans", n)
}
