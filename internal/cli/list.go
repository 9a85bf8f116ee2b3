package cli

import (
	"fmt"
	"io"

	"github.com/amterp/ra"

	"github.com/amterp/qrcard/internal/model"
)

func registerList(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("list")
	cmd.SetDescription("List cards")

	ctx.ListQuery, _ = ra.NewString("query").
		SetOptional(true).
		SetUsage("Only show cards whose title or description contains this").
		Register(cmd)

	ctx.ListFuzzy, _ = ra.NewBool("fuzzy").
		SetShort("f").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Rank cards by fuzzy title match instead of filtering").
		Register(cmd)

	ctx.ListJson, _ = ra.NewBool("json").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Output as JSON").
		Register(cmd)

	ctx.ListUsed, _ = parent.RegisterCmd(cmd)
}

func runList(app *App, query string, fuzzy, jsonOutput bool) error {
	var cards []model.Card
	if fuzzy {
		cards = app.CardService.Rank(query)
	} else {
		cards = app.CardService.Search(query)
	}

	if jsonOutput {
		return fprintJson(app.Out, NewListOutput(query, cards))
	}

	if len(cards) == 0 {
		if query != "" {
			FprintInfo(app.Out, "No cards match %q", query)
		} else {
			FprintInfo(app.Out, "No cards yet")
		}
		return nil
	}

	for _, card := range cards {
		printCardLine(app.Out, card)
	}
	return nil
}

func printCardLine(w io.Writer, card model.Card) {
	links := fmt.Sprintf("(%d links)", len(card.Buttons))
	if len(card.Buttons) == 1 {
		links = "(1 link)"
	}
	fmt.Fprintf(w, "  %s  %s %s\n", RenderID(card.ID), card.Title, RenderMuted(links))
}
