package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/amterp/ra"

	"github.com/amterp/qrcard/internal/api"
	"github.com/amterp/qrcard/internal/store"
)

func registerServe(parent *ra.Cmd, ctx *CommandContext) {
	cmd := ra.NewCmd("serve")
	cmd.SetDescription("Start the local HTTP API")

	ctx.ServePort, _ = ra.NewInt("port").
		SetOptional(true).
		SetDefault(0).
		SetShort("p").
		SetFlagOnly(true).
		SetUsage("Port to listen on, default from config (will try incrementally if in use)").
		Register(cmd)

	ctx.ServeWatch, _ = ra.NewBool("watch").
		SetShort("w").
		SetOptional(true).
		SetFlagOnly(true).
		SetUsage("Reload cards whenever the seed file changes").
		Register(cmd)

	ctx.ServeUsed, _ = parent.RegisterCmd(cmd)
}

func runServe(app *App, port int, watch bool) error {
	if port == 0 {
		port = app.Config.Server.Port
	}
	watch = watch || app.Config.Server.WatchSeed
	if watch && app.SeedPath == "" {
		PrintWarning("--watch needs a seed file (--seed or seed_file in config); ignoring")
		watch = false
	}

	handler := api.NewHandler(app.CardService)
	server := api.NewServer(handler, app.CardStore, api.ServerOptions{
		Port:           port,
		RateLimit:      app.Config.Server.RateLimit,
		AllowedOrigins: app.Config.Server.AllowedOrigins,
		SeedFile:       app.SeedPath,
		WatchSeed:      watch,
		SeedLoader:     store.LoadSeed,
	}, app.Logger)

	ln, err := listenFrom(port)
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "qrcard API running at http://localhost:%d/api/v1/cards\n", ln.Addr().(*net.TCPAddr).Port)
	fmt.Fprintln(app.Out, RenderMuted("Press Ctrl+C to stop"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.Run(ctx, ln)
}

// listenFrom tries ports starting from startPort until one is free.
// A start port of 0 asks the OS for any free port.
func listenFrom(startPort int) (net.Listener, error) {
	if startPort == 0 {
		return net.Listen("tcp", ":0")
	}

	const maxAttempts = 100
	var lastErr error
	for i := 0; i < maxAttempts && startPort+i <= 65535; i++ {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", startPort+i))
		if err == nil {
			return ln, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("no free port found from %d: %w", startPort, lastErr)
}
