package rag

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"

	"pagelens/internal/contextutil"
	"pagelens/internal/index"
	"pagelens/internal/ingest"
	"pagelens/internal/llm"
)

const (
	// retrievalK bounds how many chunks feed the prompt.
	retrievalK = 5

	// relevanceRatio gates retrieved chunks relative to the best match:
	// chunks scoring at or below this fraction of the maximum are dropped.
	relevanceRatio = 0.5

	// answerConfidence is reported on every successful answer.
	answerConfidence = 0.95

	// snippetLimit caps source snippet length in characters.
	snippetLimit = 200
)

// Fixed answers for the degraded paths. All carry confidence 0.0 and empty
// sources.
const (
	blockedMessage = "This site blocks automated access, so I can't read its content. " +
		"Try selecting the relevant text on the page and asking about that instead."
	noInformationMessage = "I don't have any information about this page yet. " +
		"Please reload the page so I can read it, then ask again."
	notRelevantMessage = "I couldn't find relevant information on this page to answer your question."
)

// Engine answers questions about web pages using retrieval-augmented
// generation.
type Engine interface {
	// Ask answers a question about the page at req.URL, ingesting the page
	// first if it is not indexed yet.
	Ask(ctx context.Context, req AskRequest) (AskResponse, error)
}

// Ingestor makes sure a page's content is indexed before retrieval.
type Ingestor interface {
	EnsureIngested(ctx context.Context, userID, url string) (ingest.Outcome, error)
}

// Retriever is the subset of the per-user index the engine needs.
type Retriever interface {
	HasAnyDocuments(ctx context.Context, userID string) bool
	Search(ctx context.Context, userID, query string, k int, filters map[string]string) ([]index.ScoredChunk, error)
}

// Completer produces an assistant reply for a chat transcript.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// engine implements Engine.
type engine struct {
	ingestor  Ingestor
	retriever Retriever
	completer Completer
	markdown  goldmark.Markdown
}

// NewEngine creates the answer engine.
func NewEngine(ingestor Ingestor, retriever Retriever, completer Completer) Engine {
	return &engine{
		ingestor:  ingestor,
		retriever: retriever,
		completer: completer,
		markdown:  goldmark.New(),
	}
}

// Ask runs the full pipeline: ingest-if-absent, URL-scoped retrieval with a
// relevance gate, then answer generation with source attribution.
// Recoverable conditions (blocked site, nothing indexed, nothing relevant)
// come back as well-formed zero-confidence answers, never as errors.
func (e *engine) Ask(ctx context.Context, req AskRequest) (AskResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if strings.TrimSpace(req.UserID) == "" {
		return AskResponse{}, fmt.Errorf("user id is required")
	}

	outcome, err := e.ingestor.EnsureIngested(ctx, req.UserID, req.URL)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to ingest page: %w", err)
	}
	if outcome == ingest.OutcomeBlocked {
		logger.InfoContext(ctx, "answering blocked-site message", "url", req.URL)
		return degradedResponse(blockedMessage), nil
	}

	if !e.retriever.HasAnyDocuments(ctx, req.UserID) {
		logger.InfoContext(ctx, "user has no indexed documents", "url", req.URL, "ingest_outcome", outcome.String())
		return degradedResponse(noInformationMessage), nil
	}

	chunks := relevantOnly(e.retrieve(ctx, req))
	if len(chunks) == 0 {
		logger.InfoContext(ctx, "no chunks passed the relevance gate", "url", req.URL)
		return degradedResponse(notRelevantMessage), nil
	}

	answer, err := e.generate(ctx, req.Question, chunks)
	if err != nil {
		return AskResponse{}, fmt.Errorf("failed to generate answer: %w", err)
	}

	logger.InfoContext(ctx, "answered question", "url", req.URL, "chunks_used", len(chunks))
	return AskResponse{
		Answer:     answer,
		AnswerHTML: e.renderHTML(ctx, answer),
		Sources:    buildSources(chunks),
		Confidence: answerConfidence,
	}, nil
}

// retrieve searches the user's index scoped to the page, falling back to
// progressively broader filters. Broader filters are tried only when a search
// fails outright; an empty result set is a real answer, not a reason to widen
// the scope. A failure of the whole chain is treated as zero results, so the
// caller degrades to the not-relevant answer instead of erroring.
func (e *engine) retrieve(ctx context.Context, req AskRequest) []index.ScoredChunk {
	logger := contextutil.LoggerFromContext(ctx)

	var lastErr error
	for _, filters := range filterChain(req.URL) {
		chunks, err := e.retriever.Search(ctx, req.UserID, req.Question, retrievalK, filters)
		if err != nil {
			logger.WarnContext(ctx, "filtered search failed, trying broader filter", "filters", filters, "error", err)
			lastErr = err
			continue
		}
		return chunks
	}

	logger.ErrorContext(ctx, "all filtered searches failed, treating as no results", "url", req.URL, "error", lastErr)
	return nil
}

// filterChain returns the ordered retrieval filters for a page, from most to
// least specific.
func filterChain(pageURL string) []map[string]string {
	filters := []map[string]string{
		{"full_url": pageURL},
		{"source": pageURL},
	}
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Hostname() != "" {
		filters = append(filters, map[string]string{"domain": parsed.Hostname()})
	}
	return filters
}

// relevantOnly keeps chunks scoring above half of the best match.
func relevantOnly(chunks []index.ScoredChunk) []index.ScoredChunk {
	if len(chunks) == 0 {
		return nil
	}

	max := chunks[0].Score
	for _, c := range chunks[1:] {
		if c.Score > max {
			max = c.Score
		}
	}

	kept := make([]index.ScoredChunk, 0, len(chunks))
	for _, c := range chunks {
		if float64(c.Score) > relevanceRatio*float64(max) {
			kept = append(kept, c)
		}
	}
	return kept
}

// generate builds the grounded prompt and asks the language model.
func (e *engine) generate(ctx context.Context, question string, chunks []index.ScoredChunk) (string, error) {
	var contextBuilder strings.Builder
	contextBuilder.WriteString("--- Page content ---\n\n")
	for _, c := range chunks {
		if c.Chunk.Meta.Title != "" {
			contextBuilder.WriteString(fmt.Sprintf("[%s] %s\n", c.Chunk.Meta.Title, c.Chunk.Meta.FullURL))
		} else {
			contextBuilder.WriteString(c.Chunk.Meta.FullURL + "\n")
		}
		contextBuilder.WriteString(c.Chunk.Text)
		contextBuilder.WriteString("\n\n")
	}
	contextBuilder.WriteString("--- End page content ---")

	systemPrompt := "You are an assistant that answers questions about the web page the user is " +
		"currently viewing. Answer using only the information in the provided page content. " +
		"If the content does not contain enough information to answer, say so plainly. " +
		"Format your answer as Markdown."

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: question + "\n\n" + contextBuilder.String()},
	}
	return e.completer.Complete(ctx, messages)
}

// renderHTML converts the Markdown answer to HTML for clients that render
// rich text. Rendering failures degrade to plain text.
func (e *engine) renderHTML(ctx context.Context, answer string) string {
	var buf bytes.Buffer
	if err := e.markdown.Convert([]byte(answer), &buf); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "failed to render answer markdown", "error", err)
		return ""
	}
	return buf.String()
}

// buildSources groups snippet previews of the supporting chunks by source URL,
// preserving retrieval order within each URL.
func buildSources(chunks []index.ScoredChunk) map[string][]string {
	sources := make(map[string][]string)
	for _, c := range chunks {
		sourceURL := c.Chunk.Meta.FullURL
		if sourceURL == "" {
			continue
		}
		sources[sourceURL] = append(sources[sourceURL], snippet(c.Chunk.Text))
	}
	return sources
}

// snippet truncates text to the preview limit, counting characters rather
// than bytes so multi-byte runes are never split.
func snippet(text string) string {
	runes := []rune(text)
	if len(runes) <= snippetLimit {
		return text
	}
	return string(runes[:snippetLimit]) + "..."
}

// degradedResponse is a well-formed answer for a recoverable failure.
func degradedResponse(message string) AskResponse {
	return AskResponse{
		Answer:     message,
		Sources:    map[string][]string{},
		Confidence: 0.0,
	}
}
