package cli

import (
	"fmt"
	"io"

	"github.com/amterp/ra"

	"github.com/amterp/qrcard/internal/model"
)

func registerShow(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("show")
	cmd.SetDescription("Display a card and its links")

	ctx.ShowCard, _ = ra.NewString("card").
		SetUsage("Card ID").
		SetCompletionFunc(completeCards).
		Register(cmd)

	ctx.ShowJson, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)

	ctx.ShowUsed, _ = parent.RegisterCmd(cmd)
}

func runShow(app *App, cardID string, jsonOutput bool) error {
	card, err := app.CardService.Get(cardID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return fprintJson(app.Out, NewCardOutput(*card))
	}
	printCard(app.Out, *card)
	return nil
}

func printCard(w io.Writer, card model.Card) {
	fmt.Fprintln(w, TitleBox(card.Title))

	const labelWidth = 12
	fmt.Fprintln(w, LabelValue("ID", RenderID(card.ID), labelWidth))
	if card.Description != "" {
		fmt.Fprintln(w, LabelValue("Description", card.Description, labelWidth))
	}
	if card.HasImage() {
		fmt.Fprintln(w, LabelValue("Image", RenderURL(card.Image), labelWidth))
	}

	if len(card.Buttons) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, RenderMuted("  No links yet"))
		return
	}

	fmt.Fprintln(w)
	for i, b := range card.Buttons {
		fmt.Fprintf(w, "  %s %s  %s  %s\n",
			RenderMuted(fmt.Sprintf("%d.", i+1)),
			RenderBold(b.Label),
			RenderURL(b.URL),
			RenderScans(b.ScanCount))
	}
}
