package main

import (
	"fmt"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ritzau/brandos-canvas/pkg/board"
	"github.com/ritzau/brandos-canvas/pkg/logging"
	"github.com/ritzau/brandos-canvas/pkg/nodetype"
	"github.com/ritzau/brandos-canvas/pkg/watcher"
	"github.com/ritzau/brandos-canvas/pkg/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the node catalog and board over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8080, "Port for the web server")
	serveCmd.Flags().String("db", "", "SQLite file to persist the board in (in-memory when empty)")
	serveCmd.Flags().String("inbox", "inbox", "Directory watched for dropped images")
	serveCmd.Flags().Bool("watch", false, "Import images dropped into the inbox")
	serveCmd.Flags().Bool("open", false, "Open the browser once the server is up")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pub := web.NewPublisher()
	defer pub.Close()

	opts := []board.Option{board.WithPublisher(pub)}
	if cfg.DB != "" {
		db, err := board.OpenSQLite(cfg.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, board.WithPersister(db))
	}

	store := board.NewStore(nodetype.Builtin(), opts...)
	if err := store.Load(ctx); err != nil {
		return err
	}

	if cfg.Watch {
		go func() {
			if err := watcher.Run(ctx, cfg.Inbox, store, 300*time.Millisecond, 2*time.Second); err != nil {
				logging.Error("media inbox stopped", "error", err)
			}
		}()
	}

	if cfg.OpenBrowser {
		url := fmt.Sprintf("http://localhost:%d", cfg.Port)
		time.AfterFunc(500*time.Millisecond, func() { openBrowser(url) })
	}

	return web.NewServer(store, pub).Start(ctx, cfg.Port)
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("cannot open browser on platform", "os", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("failed to open browser", "error", err)
	}
}
