package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"partial-trueskill/server/ladder"
	"partial-trueskill/server/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate, memory bool
	for _, a := range os.Args[1:] {
		switch a {
		case "--migrate":
			migrate = true
		case "--memory":
			memory = true
		}
	}

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if memory {
		cfg.Store = "memory"
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	var st ladder.Store
	switch cfg.Store {
	case "memory":
		if migrate {
			log.Fatal("--migrate needs STORE=postgres")
		}
		log.Println("Using in-memory store; ratings are lost on exit")
		st = ladder.NewMemStore()
	default:
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db open: %v", err)
		}
		defer db.Close()
		if err := db.Ping(ctx); err != nil {
			log.Fatalf("db unreachable: %v", err)
		}
		if migrate {
			if err := store.Migrate(ctx, db); err != nil {
				log.Fatalf("migrate: %v", err)
			}
			log.Println("Migration complete")
			return
		}
		st = db
	}

	svc, err := ladder.NewService(st, cfg.Ladder)
	if err != nil {
		log.Fatalf("ladder: %v", err)
	}
	p := svc.Parameters()
	log.Printf("Rating with beta=%.4f tau=%.4f, new players start at %.2f/%.2f",
		p.Beta(), p.Tau(), cfg.Ladder.DefaultMean, cfg.Ladder.DefaultVariance)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           Router(svc),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("Listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func watchSignals(cancel context.CancelFunc) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Printf("Received %s, shutting down", sig)
	cancel()
}
