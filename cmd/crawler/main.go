package main

import (
	"bufio"
	"context"
	"io"
	"log"
	"os"
	"strings"

	"websearch/internal/config"
	"websearch/internal/crawler"
	"websearch/internal/fetcher"
	"websearch/internal/pagerank"
	"websearch/internal/storage"
	"websearch/internal/tokenizer"
)

func main() {
	cfg := config.Load()

	logFile, err := os.OpenFile("crawler.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	log.Printf("Seed file: %s", cfg.SeedFile)
	log.Printf("Database: %s", cfg.DBPath)
	log.Printf("Crawl depth: %d, fetch timeout: %s", cfg.MaxDepth, cfg.FetchTimeout)

	store, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	tok := tokenizer.New()
	tok.Stemming = cfg.Stemming

	c := crawler.New(store, fetcher.New(cfg.UserAgent, cfg.FetchTimeout), tok, cfg.MaxDepth)

	seeds, err := readSeeds(cfg.SeedFile)
	if err != nil {
		log.Fatalf("Failed to read seed file: %v", err)
	}
	for _, seed := range seeds {
		c.AddSeed(seed)
	}

	if err := c.Crawl(context.Background()); err != nil {
		log.Fatalf("Crawl aborted: %v", err)
	}
	log.Printf("Crawling completed. Documents indexed: %d", c.PagesCrawled())

	log.Println("Computing PageRank scores...")
	graph, err := store.GetLinkGraph()
	if err != nil {
		log.Fatalf("Failed to load link graph: %v", err)
	}
	scores := pagerank.Normalize(pagerank.Compute(graph, cfg.Iterations))
	if err := store.UpdatePageRanks(scores); err != nil {
		log.Fatalf("Failed to store PageRank scores: %v", err)
	}
	log.Printf("PageRank updated for %d documents", len(scores))

	stats, err := store.GetStatistics()
	if err != nil {
		log.Fatalf("Failed to load statistics: %v", err)
	}
	log.Printf("Terms: %d  Documents: %d  Postings: %d  Links: %d",
		stats.Terms, stats.Documents, stats.Postings, stats.Links)
}

// readSeeds loads a newline-delimited URL list, skipping blank lines.
func readSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		seeds = append(seeds, line)
	}
	return seeds, scanner.Err()
}
