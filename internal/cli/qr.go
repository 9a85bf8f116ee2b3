package cli

import (
	"fmt"
	"os"

	"github.com/amterp/ra"
)

func registerQR(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("qr")
	cmd.SetDescription("Render any URL as a QR code")

	ctx.QRURL, _ = ra.NewString("url").
		SetUsage("URL to encode").
		Register(cmd)

	ctx.QROut, _ = ra.NewString("out").
		SetShort("o").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Write a PNG to this path instead of printing to the terminal").
		Register(cmd)

	ctx.QRSize, _ = ra.NewInt("size").
		SetOptional(true).
		SetDefault(0).
		SetFlagOnly(true).
		SetUsage("PNG size in pixels (default from config)").
		Register(cmd)

	ctx.QRUsed, _ = parent.RegisterCmd(cmd)
}

// runQR renders url without touching the card store: nothing is counted.
func runQR(app *App, url, out string, size int) error {
	encoder := app.Encoder
	if out == "" {
		text, err := encoder.Terminal(url)
		if err != nil {
			return err
		}
		fmt.Fprint(app.Out, text)
		fmt.Fprintln(app.Out, RenderURL(url))
		return nil
	}

	png, err := encoder.PNG(url, size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, png, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	FprintSuccess(app.Out, "Wrote QR code for %s to %s", RenderURL(url), out)
	return nil
}
