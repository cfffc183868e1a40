// Package textgen provides text-merge providers for memory consolidation.
package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"sync/atomic"

	"google.golang.org/adk/agent"
	"google.golang.org/adk/agent/llmagent"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/adk/runner"
	"google.golang.org/adk/session"
	"google.golang.org/genai"

	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
)

const (
	mergerAppName = "avatales_memory_merger"
	mergerUserID  = "memory_merger"
)

const mergeInstruction = `You merge several episodic memories of a children's story character into one.
Write for a young audience: warm, simple, concrete.

Produce:
1. A short title capturing the shared theme
2. A summary weaving the source memories into one coherent recollection
3. Optional longer content with the details worth keeping

Output requirements:
- Third-person narration
- Keep the summary under 100 words
- Return a valid JSON object matching the output schema
- No extra keys or text outside the JSON object`

// GeminiMerger merges memory texts through an ADK llmagent with a structured
// output schema. It implements memory.TextMerge.
type GeminiMerger struct {
	agent          agent.Agent
	runner         mergerRunner
	sessionService session.Service
	counter        uint64
}

type mergerRunner interface {
	Run(ctx context.Context, userID, sessionID string, msg *genai.Content, cfg agent.RunConfig) iter.Seq2[*session.Event, error]
}

// NewGeminiMerger builds the merge agent for the given Gemini model.
func NewGeminiMerger(ctx context.Context, apiKey, modelName string) (*GeminiMerger, error) {
	mergerModel, err := gemini.NewModel(ctx, modelName, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create merger model: %w", err)
	}

	llmAgent, err := llmagent.New(llmagent.Config{
		Name:            "memory_merger",
		Description:     "merges similar character memories into one",
		Model:           mergerModel,
		Instruction:     mergeInstruction,
		OutputSchema:    mergeOutputSchema(),
		IncludeContents: llmagent.IncludeContentsNone,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory merger agent: %w", err)
	}

	sessionService := session.InMemoryService()
	r, err := runner.New(runner.Config{
		AppName:        mergerAppName,
		Agent:          llmAgent,
		SessionService: sessionService,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create memory merger runner: %w", err)
	}

	return &GeminiMerger{
		agent:          llmAgent,
		runner:         r,
		sessionService: sessionService,
	}, nil
}

// Merge produces fluent merged text for the given source memory texts.
func (g *GeminiMerger) Merge(ctx context.Context, sources []string, reason string) (memory.MergedText, error) {
	if len(sources) == 0 {
		return memory.MergedText{}, fmt.Errorf("no source texts to merge")
	}

	sessID := fmt.Sprintf("merge-%d", atomic.AddUint64(&g.counter, 1))
	if _, err := g.sessionService.Create(ctx, &session.CreateRequest{
		AppName:   mergerAppName,
		UserID:    mergerUserID,
		SessionID: sessID,
	}); err != nil {
		return memory.MergedText{}, fmt.Errorf("failed to create merger session: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("Merge reason: ")
	sb.WriteString(reason)
	sb.WriteString("\nSource memories:\n")
	for i, src := range sources {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, src)
	}

	msg := genai.NewContentFromText(sb.String(), "user")
	events := g.runner.Run(ctx, mergerUserID, sessID, msg, agent.RunConfig{
		StreamingMode: agent.StreamingModeNone,
	})

	var last string
	for event, err := range events {
		if err != nil {
			return memory.MergedText{}, err
		}
		if event == nil || event.Content == nil || event.Author == "user" {
			continue
		}
		text := strings.TrimSpace(contentText(event.Content))
		if text == "" {
			continue
		}
		last = text
		if event.IsFinalResponse() {
			break
		}
	}
	if last == "" {
		return memory.MergedText{}, fmt.Errorf("empty merge response")
	}

	return parseMergedJSON(last)
}

func mergeOutputSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title": {
				Type: genai.TypeString,
			},
			"summary": {
				Type: genai.TypeString,
			},
			"content": {
				Type: genai.TypeString,
			},
		},
		Required: []string{"title", "summary"},
	}
}

// contentText concatenates the text parts of a genai content block.
func contentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// parseMergedJSON extracts the JSON object from model output and decodes it.
func parseMergedJSON(raw string) (memory.MergedText, error) {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	var merged memory.MergedText
	if err := json.Unmarshal([]byte(clean), &merged); err != nil {
		return memory.MergedText{}, fmt.Errorf("failed to parse merge json: %w", err)
	}
	return merged, nil
}

var _ memory.TextMerge = (*GeminiMerger)(nil)
