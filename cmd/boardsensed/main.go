package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/minsu-kwon/boardsense/internal/accuracy"
	"github.com/minsu-kwon/boardsense/internal/analysis"
	"github.com/minsu-kwon/boardsense/internal/board"
	appcfg "github.com/minsu-kwon/boardsense/internal/config"
	"github.com/minsu-kwon/boardsense/internal/game"
	"github.com/minsu-kwon/boardsense/internal/obslog"
	"github.com/minsu-kwon/boardsense/internal/opening"
	"github.com/minsu-kwon/boardsense/internal/overlay"
	"github.com/minsu-kwon/boardsense/internal/source"
)

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}

	lib, err := opening.NewLibrary(cfg.OpeningOverrideDir)
	if err != nil {
		log.Fatalf("opening library error: %v", err)
	}

	var store *accuracy.Store
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis url error: %v", err)
		}
		store = accuracy.NewStore(redis.NewClient(opt))
	}

	var repo *accuracy.Repository
	if cfg.DatabaseURL != "" {
		repo, err = accuracy.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("repository init error: %v", err)
		}
	}

	var sink game.Sink
	if cfg.OverlayURL != "" {
		client := overlay.NewClient(cfg.OverlayURL)
		hctx, hcancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := client.Health(hctx); err != nil {
			log.Printf("overlay not reachable yet: %v", err)
		}
		hcancel()
		sink = client
	}

	if cfg.EngineBaseURL != "" {
		pctx, pcancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := analysis.ProbeHealth(pctx, cfg.EngineBaseURL); err != nil {
			log.Printf("engine sidecar not healthy yet: %v", err)
		}
		pcancel()
	}

	socket := analysis.NewEngineSocket(cfg.EngineWSURL, 5, time.Second)
	socket.OnStateChange(func(state analysis.SocketState) {
		log.Printf("engine socket: %s", state)
	})

	session := game.NewSession(game.Params{
		PlayerColor: board.Color(cfg.PlayerColor),
		SampleDelay: cfg.SampleDelay,
		Correlator: analysis.NewCorrelator(socket, analysis.Settings{
			MultiPV:     cfg.MultiPV,
			PlayerElo:   cfg.PlayerElo,
			OpponentElo: cfg.OpponentElo,
		}),
		Cache:      accuracy.NewCache(),
		Store:      store,
		Repository: repo,
		Matcher:    opening.NewMatcher(lib),
		Sink:       sink,
	})
	socket.OnInbound(session.HandleInbound)

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := socket.Connect(cctx); err != nil {
		ccancel()
		log.Fatalf("engine connect error: %v", err)
	}
	ccancel()

	if len(cfg.ReplayMoves) == 0 {
		log.Fatal("REPLAY_MOVES is required until a live page source is attached")
	}
	src := source.NewReplaySource(cfg.ReplayMoves, cfg.ReplayInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 2)
	go func() { errCh <- src.Run(ctx) }()
	go func() { errCh <- session.Run(ctx, src.Samples()) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			log.Printf("session stopped: %v", err)
		}
	}

	cancel()
	_ = socket.Close(context.Background())
	_ = repo.Close()
}
