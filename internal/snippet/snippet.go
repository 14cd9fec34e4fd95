package snippet

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Generator extracts short contextual excerpts around query-term matches
// and wraps the matched terms in emphasis markup.
type Generator struct {
	// MaxLength caps the snippet length in characters.
	MaxLength int

	// ContextWords is the window radius, in words, scored around each
	// candidate position.
	ContextWords int
}

func New(maxLength, contextWords int) *Generator {
	return &Generator{MaxLength: maxLength, ContextWords: contextWords}
}

// Generate builds a snippet from raw text, centered on the window where the
// most query terms appear. Matched terms (prefix-tolerant, case-insensitive)
// are wrapped in <b> tags.
func (g *Generator) Generate(text string, queryTerms []string) string {
	text = cleanText(text)
	if text == "" || len(queryTerms) == 0 {
		return g.truncate(text)
	}

	terms := make([]string, len(queryTerms))
	for i, term := range queryTerms {
		terms[i] = strings.ToLower(term)
	}

	position, found := g.bestPosition(text, terms)
	if !found {
		return g.truncate(text)
	}

	excerpt := g.extractContext(text, position)
	return highlight(excerpt, terms)
}

// FromHTML strips markup before generating a snippet.
func (g *Generator) FromHTML(markup string, queryTerms []string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return g.Generate(markup, queryTerms)
	}
	doc.Find("script, style, noscript").Remove()
	return g.Generate(doc.Text(), queryTerms)
}

// bestPosition scores a sliding word window around every word and returns
// the character offset of the best-matching one.
func (g *Generator) bestPosition(text string, terms []string) (int, bool) {
	lower := strings.ToLower(text)
	words := strings.Split(lower, " ")
	if len(words) == 0 {
		return 0, false
	}

	bestScore := 0
	bestPosition := 0

	for i := range words {
		start := i - g.ContextWords
		if start < 0 {
			start = 0
		}
		end := i + g.ContextWords + 1
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]

		score := 0
		for _, term := range terms {
			for _, w := range window {
				if strings.Contains(w, term) {
					score++
					break
				}
			}
		}

		if score > bestScore {
			bestScore = score
			bestPosition = len(strings.Join(words[:i], " "))
		}
	}

	if bestScore == 0 {
		return 0, false
	}
	return bestPosition, true
}

// extractContext cuts a MaxLength window centered on position and trims the
// ragged edges to word boundaries with ellipsis markers.
func (g *Generator) extractContext(text string, position int) string {
	start := position - g.MaxLength/2
	if start < 0 {
		start = 0
	}
	end := start + g.MaxLength
	if end > len(text) {
		end = len(text)
		start = end - g.MaxLength
		if start < 0 {
			start = 0
		}
	}

	excerpt := text[start:end]

	if start > 0 {
		if cut := strings.Index(excerpt, " "); cut > 0 && cut < 50 {
			excerpt = "..." + excerpt[cut+1:]
		}
	}
	if end < len(text) {
		if cut := strings.LastIndex(excerpt, " "); cut > len(excerpt)-50 {
			excerpt = excerpt[:cut] + "..."
		}
	}

	return strings.TrimSpace(excerpt)
}

func (g *Generator) truncate(text string) string {
	if len(text) <= g.MaxLength {
		return text
	}
	truncated := text[:g.MaxLength]
	if cut := strings.LastIndex(truncated, " "); cut > 0 {
		truncated = truncated[:cut]
	}
	return truncated + "..."
}

// highlight wraps every word starting with a query term in <b> tags.
func highlight(text string, terms []string) string {
	for _, term := range terms {
		pattern, err := regexp.Compile(`(?i)\b(` + regexp.QuoteMeta(term) + `\w*)\b`)
		if err != nil {
			continue
		}
		text = pattern.ReplaceAllString(text, "<b>$1</b>")
	}
	return text
}

func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
