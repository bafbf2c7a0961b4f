// Package rag wires retrieval over the pgvector store together with the LLM.
// The engine is an explicitly constructed dependency; handlers receive it
// from the application container rather than through package globals.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/huc-edu/insight-engine/internal/core"
	"github.com/huc-edu/insight-engine/internal/models"
)

// QuizQuestion is one generated multiple-choice question.
type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Stats summarizes the document corpus for the dashboard.
type Stats struct {
	TotalDocuments  int               `json:"total_documents"`
	DocumentCounts  map[string]int    `json:"document_counts"`
	RecentDocuments []models.Document `json:"recent_documents"`
}

// Engine answers questions over the ingested corpus and generates
// derivative artifacts (summaries, quizzes, mind maps, podcast scripts,
// deep reports).
type Engine struct {
	db       core.DbClient
	embedder core.EmbeddingProvider
	llm      core.LLMProvider
	topK     int
}

func NewEngine(db core.DbClient, emb core.EmbeddingProvider, llm core.LLMProvider, topK int) *Engine {
	if topK <= 0 {
		topK = 5
	}
	return &Engine{db: db, embedder: emb, llm: llm, topK: topK}
}

// Search embeds the query and returns the most similar chunks, optionally
// restricted to one category.
func (e *Engine) Search(ctx context.Context, query string, k int, category string) ([]models.DocumentChunk, error) {
	if k <= 0 {
		k = e.topK
	}
	vecs, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) == 0 {
		return nil, fmt.Errorf("embedder returned no vector for query")
	}
	return e.db.SearchChunks(ctx, vecs[0], k, category)
}

// Answer retrieves the top chunks for the query and generates a grounded
// answer from them. The retrieved chunks are returned as sources.
func (e *Engine) Answer(ctx context.Context, query string) (string, []models.DocumentChunk, error) {
	chunks, err := e.Search(ctx, query, e.topK, "")
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	for _, ch := range chunks {
		sb.WriteString(fmt.Sprintf("[%s]\n%s\n---\n", ch.FileName, ch.Text))
	}

	userPrompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s", sb.String(), query)
	answer, err := e.llm.Generate(ctx, answerSystemPrompt, userPrompt)
	if err != nil {
		return "", nil, fmt.Errorf("generate answer: %w", err)
	}
	return answer, chunks, nil
}

// Summarize produces a short review summary of the given content. Callers
// are expected to bound the content length themselves.
func (e *Engine) Summarize(ctx context.Context, content string) (string, error) {
	return e.llm.Generate(ctx, summarySystemPrompt, fmt.Sprintf(summaryUserPrompt, content))
}

// GeneratePodcastScript turns content into a two-host dialogue script.
func (e *Engine) GeneratePodcastScript(ctx context.Context, content string) (string, error) {
	return e.llm.Generate(ctx, podcastSystemPrompt, content)
}

// GenerateMindMap returns Mermaid.js mindmap syntax for the content.
func (e *Engine) GenerateMindMap(ctx context.Context, content string) (string, error) {
	out, err := e.llm.Generate(ctx, mindMapSystemPrompt, content)
	if err != nil {
		return "", err
	}
	return stripCodeFences(out), nil
}

// GenerateQuiz asks the LLM for a JSON quiz and decodes it.
func (e *Engine) GenerateQuiz(ctx context.Context, content string) ([]QuizQuestion, error) {
	out, err := e.llm.Generate(ctx, quizSystemPrompt, content)
	if err != nil {
		return nil, err
	}
	var questions []QuizQuestion
	if err := json.Unmarshal([]byte(stripCodeFences(out)), &questions); err != nil {
		return nil, fmt.Errorf("decode quiz response: %w", err)
	}
	return questions, nil
}

// GenerateDeepReport builds a markdown report on a topic. Source documents
// named by ID contribute their summaries; topical retrieval fills in the rest.
func (e *Engine) GenerateDeepReport(ctx context.Context, topic string, sourceIDs []string) (string, error) {
	var sb strings.Builder

	for _, id := range sourceIDs {
		doc, err := e.db.GetDocumentByID(ctx, id)
		if err != nil || doc == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("Source %s:\n%s\n\n", doc.FileName, doc.Summary))
	}

	chunks, err := e.Search(ctx, topic, e.topK, "")
	if err != nil {
		return "", err
	}
	for _, ch := range chunks {
		sb.WriteString(fmt.Sprintf("Excerpt from %s:\n%s\n\n", ch.FileName, ch.Text))
	}

	userPrompt := fmt.Sprintf("Topic: %s\n\nSource material:\n%s", topic, sb.String())
	return e.llm.Generate(ctx, deepReportSystemPrompt, userPrompt)
}

// CorpusStats aggregates dashboard numbers from the relational store.
func (e *Engine) CorpusStats(ctx context.Context) (*Stats, error) {
	counts, err := e.db.CountDocumentsByType(ctx)
	if err != nil {
		return nil, err
	}

	grouped := map[string]int{"pdf": 0, "word": 0, "excel": 0, "ppt": 0, "other": 0}
	total := 0
	for fileType, n := range counts {
		total += n
		switch fileType {
		case "pdf":
			grouped["pdf"] += n
		case "doc", "docx":
			grouped["word"] += n
		case "xls", "xlsx", "csv":
			grouped["excel"] += n
		case "ppt", "pptx":
			grouped["ppt"] += n
		default:
			grouped["other"] += n
		}
	}

	recent, err := e.db.ListDocuments(ctx, 5)
	if err != nil {
		return nil, err
	}

	return &Stats{TotalDocuments: total, DocumentCounts: grouped, RecentDocuments: recent}, nil
}

// stripCodeFences drops a leading/trailing markdown fence some models wrap
// structured output in despite instructions.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
