package cli

import (
	"github.com/amterp/ra"
)

func registerExport(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("export")
	cmd.SetDescription("Print the loaded cards as a JSON snapshot")

	ctx.ExportUsed, _ = parent.RegisterCmd(cmd)
}

func runExport(app *App) error {
	return fprintJson(app.Out, NewSnapshotOutput(app.CardService.Snapshot()))
}
