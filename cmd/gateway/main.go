package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mind-engage/learnportal/internal/config"
	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/db"
	storage "github.com/mind-engage/learnportal/internal/storage"
	syncx "github.com/mind-engage/learnportal/internal/sync"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// --- Store ---
	var (
		store  *content.Repo
		events syncx.Log
	)
	if cfg.DBDriver == "memory" {
		store, events = content.NewInMemoryStore(), &syncx.MemoryLog{}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		store, events = content.NewSQLStore(dbh, cfg.DBDriver), syncx.NewEventRepo(dbh)
	}

	bs, err := storage.NewFSStore(cfg.BlobBasePath, "/assets/")
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	a := newApp(cfg, store, events, bs)
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: a.routes(), ReadHeaderTimeout: 10 * time.Second}

	go func() {
		log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
