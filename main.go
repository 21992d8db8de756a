package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"BrushBoard/internal/brush"
	"BrushBoard/internal/canvas"
	"BrushBoard/internal/config"
	"BrushBoard/internal/logging"
	boardnet "BrushBoard/internal/net"
	"BrushBoard/internal/render"
	"BrushBoard/internal/ui"
)

const dialTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	join := flag.String("join", "", "share link or host:port of a board to join")
	noShare := flag.Bool("no-share", false, "do not share the board on the local network")
	browse := flag.Duration("browse", 0, "list boards shared on the local network for this long and exit")
	flag.Parse()
	if *join == "" && strings.HasPrefix(flag.Arg(0), boardnet.LinkScheme+"://") {
		*join = flag.Arg(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	log := logging.Logger()

	if *browse > 0 {
		err := boardnet.Browse(cfg.Share.Service, *browse, func(addr string) {
			fmt.Println(boardnet.LinkScheme + "://" + addr)
		})
		if err != nil {
			log.Error("browse failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := app.New()
	reg := brush.NewRegistry()
	tex := render.NewTextures()
	if err := cfg.Apply(reg, tex, filepath.Dir(*configPath)); err != nil {
		log.Error("invalid brushes", "err", err)
		os.Exit(1)
	}
	size := image.Pt(cfg.Canvas.Width, cfg.Canvas.Height)
	raster := render.NewRaster(size, tex)
	raster.SetBackground(cfg.BackgroundColor())
	c := canvas.New(raster, reg, tex, size)
	c.SetScale(cfg.Canvas.Scale)
	board := ui.NewBoardWidget(c, raster, cfg.BackgroundColor())

	opts := ui.Options{
		Title:   "BrushBoard",
		Size:    fyne.NewSize(float32(cfg.Canvas.Width), float32(cfg.Canvas.Height)),
		OnClose: cancel,
	}
	switch {
	case *join != "":
		addr, err := boardnet.ParseLink(*join)
		if err != nil {
			log.Error("cannot join", "err", err)
			os.Exit(1)
		}
		if err := runPeer(ctx, addr, board); err != nil {
			log.Error("cannot join", "addr", addr, "err", err)
			os.Exit(1)
		}
		opts.Title = "BrushBoard - " + addr
	case cfg.Share.Enabled && !*noShare:
		opts.ShareLink = runHost(ctx, cfg.Share, board)
	default:
		log.Info("sharing disabled")
	}

	ui.RunApp(a, board, opts)
}

// runHost shares the board and returns its share link.
func runHost(ctx context.Context, share config.ShareConfig, board *ui.BoardWidget) string {
	log := logging.Logger()
	hub := boardnet.NewHub(board.Deliver)
	board.Canvas().History().Observers().Add(hub.Outbox())

	go func() {
		if err := hub.ListenAndServe(ctx, fmt.Sprintf(":%d", share.Port)); err != nil {
			log.Error("sharing stopped", "err", err)
			board.SetStatus("Sharing stopped: " + err.Error())
		}
	}()

	server, err := boardnet.Advertise(share.Name, share.Service, share.Port)
	if err != nil {
		log.Warn("board not advertised", "err", err)
	} else {
		go func() {
			<-ctx.Done()
			server.Shutdown()
		}()
	}
	return boardnet.ShareLink(boardnet.OutgoingIP(), share.Port)
}

// runPeer connects to the host at addr and forwards local drawing to it.
func runPeer(ctx context.Context, addr string, board *ui.BoardWidget) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	peer, err := boardnet.Dial(dialCtx, addr, board.Deliver)
	if err != nil {
		return err
	}
	board.Canvas().History().Observers().Add(peer.Outbox())
	board.StatusBar().SetText("Connected to " + addr)

	go func() {
		select {
		case <-peer.Done():
			if err := peer.Err(); err != nil {
				logging.Logger().Warn("disconnected from host", "addr", addr, "err", err)
			}
			board.SetStatus("Disconnected from host")
		case <-ctx.Done():
			peer.Close()
		}
	}()
	return nil
}
