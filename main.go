package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/arena"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/handlers"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/leaderboard"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/logging"
	"github.com/hoccuspoccus34/realm-of-shadows-pvp/internal/storage"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	addr := flag.String("addr", "", "listen address (overrides PORT)")
	flag.Parse()
	logging.Debug = *debug

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	listen := *addr
	if listen == "" {
		port := os.Getenv("PORT")
		if port == "" {
			port = "3000"
		}
		listen = ":" + port
	}

	// The match archive and the Redis leaderboard are both optional;
	// without them every table is memory-only and lost on restart.
	var store *storage.Store
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := storage.New(dsn)
		if err != nil {
			log.Fatalf("[STORE] connect: %v", err)
		}
		store = storage.NewStore(db)
		log.Printf("[STORE] match archive enabled")
	}

	var board *leaderboard.Board
	if raddr := os.Getenv("REDIS_ADDR"); raddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		b, err := leaderboard.New(ctx, raddr)
		cancel()
		if err != nil {
			log.Fatalf("[LEADERBOARD] connect: %v", err)
		}
		board = b
		defer board.Close()
		log.Printf("[LEADERBOARD] redis leaderboard enabled")
	}

	hub := arena.NewHub()
	hub.SetStore(store)
	hub.SetLeaderboard(board)
	go hub.Run()
	defer hub.Close()

	h := handlers.NewHandler(hub, store)
	http.HandleFunc("/ws", h.HandleWS)
	http.HandleFunc("/health", h.HandleHealth)
	http.HandleFunc("/history", h.HandleHistory)

	log.Printf("Realm of Shadows PvP server %s (built %s) listening on %s", commit, buildDate, listen)
	log.Fatal(http.ListenAndServe(listen, nil))
}
