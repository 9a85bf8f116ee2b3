package cli

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/amterp/ra"

	"github.com/amterp/qrcard/internal/config"
	"github.com/amterp/qrcard/internal/model"
)

// completionCtx provides lightweight card access for shell completion.
// Completion functions run during ParseOrExit, before NewApp() is called,
// so we can't use the full App. This loads just enough to list card ids.
type completionCtx struct {
	once  sync.Once
	cards []model.Card
}

var compCtx completionCtx

func initCompletionCtx() {
	compCtx.once.Do(func() {
		path := seedFromArgs(os.Args)
		if path == "" {
			cfg, err := config.Load(configFromArgs(os.Args))
			if err != nil {
				// Graceful degradation: fall back to the sample cards
				cfg = config.Default()
			}
			path = cfg.SeedFile
		}

		collection, err := loadInitial(path)
		if err != nil {
			return
		}
		compCtx.cards = collection.Cards
	})
}

// completeCards returns card IDs matching the given prefix.
func completeCards(toComplete string) ([]string, ra.CompletionDirective) {
	initCompletionCtx()
	return cardIDsWithPrefix(compCtx.cards, toComplete), ra.CompletionDirectiveNoFileComp
}

func cardIDsWithPrefix(cards []model.Card, prefix string) []string {
	var result []string
	for _, card := range cards {
		if strings.HasPrefix(card.ID, prefix) {
			result = append(result, card.ID)
		}
	}
	return result
}

// seedFromArgs scans the argument list for an explicit -s/--seed flag value.
func seedFromArgs(args []string) string {
	return flagFromArgs(args, "--seed", "-s")
}

// configFromArgs scans the argument list for an explicit --config flag value.
func configFromArgs(args []string) string {
	return flagFromArgs(args, "--config", "")
}

func flagFromArgs(args []string, long, short string) string {
	for i, arg := range args {
		// --flag=value or -f=value (skip empty values so fallback logic runs)
		if v, ok := strings.CutPrefix(arg, long+"="); ok && v != "" {
			return v
		}
		if short != "" {
			if v, ok := strings.CutPrefix(arg, short+"="); ok && v != "" {
				return v
			}
		}
		// --flag value or -f value
		if (arg == long || (short != "" && arg == short)) && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// registerCompletion adds the "qrcard completion <shell>" command.
func registerCompletion(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("completion")
	cmd.SetDescription("Output shell completion script")

	ctx.CompletionShell, _ = ra.NewString("shell").
		SetUsage("Shell type").
		SetEnumConstraint([]string{"bash", "zsh"}).
		Register(cmd)

	ctx.CompletionUsed, _ = parent.RegisterCmd(cmd)
}

// runCompletion outputs the shell completion script to stdout.
func runCompletion(shell string, rootCmd *ra.Cmd) error {
	var err error
	switch shell {
	case "bash":
		err = rootCmd.GenBashCompletion(os.Stdout)
	case "zsh":
		err = rootCmd.GenZshCompletion(os.Stdout)
	default:
		return fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}
	if err != nil {
		return fmt.Errorf("failed to generate completion script: %w", err)
	}
	return nil
}
