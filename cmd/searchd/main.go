package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"websearch/internal/api"
	"websearch/internal/cache"
	"websearch/internal/config"
	"websearch/internal/ranker"
	"websearch/internal/storage"
	"websearch/internal/tokenizer"
)

func main() {
	cfg := config.Load()

	logFile, err := os.OpenFile("searchd.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	tok := tokenizer.New()
	tok.Stemming = cfg.Stemming

	rk := ranker.New(store, ranker.DefaultConfig())
	qc := cache.NewQueryCache(cfg.CacheCapacity, cfg.CacheTTL)

	server := api.NewServer(store, rk, qc, tok, cfg.PageSize)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down gracefully...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Stop(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := server.Start(cfg.ListenAddr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
