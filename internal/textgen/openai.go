package textgen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
)

// OpenAIMerger merges memory texts through an OpenAI-compatible chat
// completions endpoint. The expected output shape is communicated as a JSON
// Schema in the system prompt, which keeps the provider requirements minimal.
// It implements memory.TextMerge.
type OpenAIMerger struct {
	client *openai.Client
	model  string
}

// NewOpenAIMerger returns a merger backed by an OpenAI-compatible API.
// baseURL may be empty for the default endpoint.
func NewOpenAIMerger(apiKey, baseURL, modelName string) (*OpenAIMerger, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if modelName == "" {
		return nil, fmt.Errorf("model name cannot be empty")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)

	return &OpenAIMerger{
		client: &client,
		model:  modelName,
	}, nil
}

// mergeSchema describes the required response object.
func mergeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"title":   {Type: "string", Description: "short title capturing the shared theme"},
			"summary": {Type: "string", Description: "merged recollection, under 100 words"},
			"content": {Type: "string", Description: "optional longer detail"},
		},
		Required: []string{"title", "summary"},
	}
}

// Merge produces fluent merged text for the given source memory texts.
func (m *OpenAIMerger) Merge(ctx context.Context, sources []string, reason string) (memory.MergedText, error) {
	if len(sources) == 0 {
		return memory.MergedText{}, fmt.Errorf("no source texts to merge")
	}

	schemaJSON, err := json.Marshal(mergeSchema())
	if err != nil {
		return memory.MergedText{}, fmt.Errorf("failed to encode merge schema: %w", err)
	}

	system := mergeInstruction + "\nThe JSON object must match this schema:\n" + string(schemaJSON)

	var sb strings.Builder
	sb.WriteString("Merge reason: ")
	sb.WriteString(reason)
	sb.WriteString("\nSource memories:\n")
	for i, src := range sources {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, src)
	}

	resp, err := m.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: m.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(sb.String()),
		},
	})
	if err != nil {
		return memory.MergedText{}, fmt.Errorf("failed to call merge API: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return memory.MergedText{}, fmt.Errorf("empty merge response")
	}

	return parseMergedJSON(resp.Choices[0].Message.Content)
}

var _ memory.TextMerge = (*OpenAIMerger)(nil)
