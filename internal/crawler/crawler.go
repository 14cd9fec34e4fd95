package crawler

import (
	"bytes"
	"context"
	"log"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"websearch/internal/storage"
	"websearch/internal/tokenizer"
)

// PageFetcher retrieves raw markup for a URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type queueItem struct {
	url   string
	depth int
}

type linkKey struct {
	from, to int64
}

// Crawler drives a single sequential crawl run: frontier pop, blocking
// fetch, weighted traversal, flush to store. Each document is fetched and
// indexed at most once per run, keyed by its canonical identity.
type Crawler struct {
	store     *storage.DB
	fetcher   PageFetcher
	tokenizer *tokenizer.Tokenizer
	maxDepth  int

	queue    []queueItem
	seenDocs map[int64]bool
	docIDs   map[string]int64
	termIDs  map[string]int64
	linkSeen map[linkKey]bool

	// state for the document currently being indexed
	curURL    string
	curDocID  int64
	curDepth  int
	weight    int
	curTerms  map[int64]int
	titleSeen bool

	pagesCrawled int
}

func New(store *storage.DB, fetcher PageFetcher, tok *tokenizer.Tokenizer, maxDepth int) *Crawler {
	return &Crawler{
		store:     store,
		fetcher:   fetcher,
		tokenizer: tok,
		maxDepth:  maxDepth,
		seenDocs:  make(map[int64]bool),
		docIDs:    make(map[string]int64),
		termIDs:   make(map[string]int64),
		linkSeen:  make(map[linkKey]bool),
	}
}

// AddSeed enqueues a seed URL at depth 0. Unparseable seeds are dropped.
func (c *Crawler) AddSeed(rawURL string) {
	canonical, err := canonicalize(strings.TrimSpace(rawURL))
	if err != nil || canonical == "" {
		log.Printf("Skipping invalid seed URL %q: %v", rawURL, err)
		return
	}
	c.queue = append(c.queue, queueItem{url: canonical, depth: 0})
}

// Crawl processes the frontier until it drains. A failing URL is logged and
// never aborts the run.
func (c *Crawler) Crawl(ctx context.Context) error {
	for len(c.queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		item := c.queue[0]
		c.queue = c.queue[1:]

		if item.depth > c.maxDepth {
			continue
		}

		docID, err := c.documentID(item.url)
		if err != nil {
			log.Printf("Failed to resolve document id for %s: %v", item.url, err)
			continue
		}
		if c.seenDocs[docID] {
			continue
		}
		c.seenDocs[docID] = true

		log.Printf("Crawling %s (depth=%d)", item.url, item.depth)
		if err := c.crawlPage(ctx, item.url, docID, item.depth); err != nil {
			log.Printf("Failed to crawl %s: %v", item.url, err)
			continue
		}
		c.pagesCrawled++
	}
	return nil
}

// PagesCrawled reports how many documents were fetched and indexed.
func (c *Crawler) PagesCrawled() int {
	return c.pagesCrawled
}

func (c *Crawler) crawlPage(ctx context.Context, pageURL string, docID int64, depth int) error {
	markup, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return err
	}

	root, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		return err
	}

	c.curURL = pageURL
	c.curDocID = docID
	c.curDepth = depth + 1
	c.weight = 0
	c.curTerms = make(map[int64]int)
	c.titleSeen = false

	c.indexDocument(root)

	return c.store.SavePostings(docID, c.curTerms)
}

func (c *Crawler) documentID(url string) (int64, error) {
	if id, ok := c.docIDs[url]; ok {
		return id, nil
	}
	id, err := c.store.GetOrCreateDocumentID(url)
	if err != nil {
		return 0, err
	}
	c.docIDs[url] = id
	return id, nil
}

func (c *Crawler) termID(term string) (int64, error) {
	if id, ok := c.termIDs[term]; ok {
		return id, nil
	}
	id, err := c.store.GetOrCreateTermID(term)
	if err != nil {
		return 0, err
	}
	c.termIDs[term] = id
	return id, nil
}

func (c *Crawler) addLink(from, to int64) {
	key := linkKey{from: from, to: to}
	if c.linkSeen[key] {
		return
	}
	if err := c.store.InsertLink(from, to); err != nil {
		log.Printf("Failed to record link %d -> %d: %v", from, to, err)
		return
	}
	c.linkSeen[key] = true
}

// canonicalize strips the fragment from an absolute URL.
func canonicalize(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	return u.String(), nil
}

// resolveURL resolves href (absolute or relative) against the current
// document's URL, stripping any fragment.
func resolveURL(base, href string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", err
	}
	abs := baseURL.ResolveReference(ref)
	abs.Fragment = ""
	return abs.String(), nil
}

// isCrawlable filters out non-HTTP schemes and obvious binary assets.
func isCrawlable(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	path := strings.ToLower(u.Path)
	skipExtensions := []string{
		".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg",
		".css", ".js", ".zip", ".tar", ".gz",
		".exe", ".dmg", ".iso",
		".mp4", ".avi", ".mov",
		".mp3", ".wav",
	}
	for _, ext := range skipExtensions {
		if strings.HasSuffix(path, ext) {
			return false
		}
	}
	return true
}
