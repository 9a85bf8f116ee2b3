package cli

import (
	"os"

	"github.com/amterp/ra"
)

// CommandContext holds parsed values and used flags for all commands.
type CommandContext struct {
	// Global flags
	NonInteractive *bool
	ConfigPath     *string
	SeedPath       *string

	// list command
	ListUsed  *bool
	ListQuery *string
	ListFuzzy *bool
	ListJson  *bool

	// show command
	ShowUsed *bool
	ShowCard *string
	ShowJson *bool

	// qr command
	QRUsed *bool
	QRURL  *string
	QROut  *string
	QRSize *int

	// export command
	ExportUsed *bool

	// serve command
	ServeUsed  *bool
	ServePort  *int
	ServeWatch *bool

	// shell command
	ShellUsed *bool

	// completion command
	CompletionUsed  *bool
	CompletionShell *string
}

// Run is the main entry point for the CLI.
func Run() {
	ctx := &CommandContext{}

	cmd := ra.NewCmd("qrcard")
	cmd.SetDescription("Cards of links, shown as QR codes")

	// Global flags
	ctx.NonInteractive, _ = ra.NewBool("non-interactive").
		SetShort("I").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Fail instead of prompting for input").
		Register(cmd, ra.WithGlobal(true))

	ctx.ConfigPath, _ = ra.NewString("config").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Path to config file (default ~/.config/qrcard/config.toml)").
		Register(cmd, ra.WithGlobal(true))

	ctx.SeedPath, _ = ra.NewString("seed").
		SetShort("s").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Seed file to load cards from instead of the sample cards").
		Register(cmd, ra.WithGlobal(true))

	// Register all subcommands
	registerList(cmd, ctx)
	registerShow(cmd, ctx)
	registerQR(cmd, ctx)
	registerExport(cmd, ctx)
	registerServe(cmd, ctx)
	registerShell(cmd, ctx)
	registerCompletion(cmd, ctx)

	// Parse command line
	cmd.ParseOrExit(os.Args[1:])

	if err := executeCommand(ctx, cmd); err != nil {
		Fatal(err)
	}
}

func executeCommand(ctx *CommandContext, rootCmd *ra.Cmd) error {
	// Completion scripts don't need config or cards
	if *ctx.CompletionUsed {
		return runCompletion(*ctx.CompletionShell, rootCmd)
	}

	// Only the shell prompts; everything else fails fast on missing input
	wantsShell := *ctx.ShellUsed || noCommand(ctx)
	app, err := NewApp(AppOptions{
		ConfigPath:  *ctx.ConfigPath,
		SeedPath:    *ctx.SeedPath,
		Interactive: wantsShell && !*ctx.NonInteractive,
	})
	if err != nil {
		return err
	}

	switch {
	case *ctx.ListUsed:
		return runList(app, *ctx.ListQuery, *ctx.ListFuzzy, *ctx.ListJson)

	case *ctx.ShowUsed:
		return runShow(app, *ctx.ShowCard, *ctx.ShowJson)

	case *ctx.QRUsed:
		return runQR(app, *ctx.QRURL, *ctx.QROut, *ctx.QRSize)

	case *ctx.ExportUsed:
		return runExport(app)

	case *ctx.ServeUsed:
		return runServe(app, *ctx.ServePort, *ctx.ServeWatch)

	default:
		return runShell(app)
	}
}

// noCommand reports whether qrcard was invoked without a subcommand,
// which opens the interactive shell.
func noCommand(ctx *CommandContext) bool {
	return !*ctx.ListUsed && !*ctx.ShowUsed && !*ctx.QRUsed && !*ctx.ExportUsed &&
		!*ctx.ServeUsed && !*ctx.ShellUsed && !*ctx.CompletionUsed
}
