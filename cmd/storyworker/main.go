// Package main runs the character development maintenance worker: it wires
// the memory engine against the store and sweeps memory decay on an
// interval. The development facade itself is a library surface invoked by
// the story-completion workflow.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dschilow/Avatales-Backend-sub000/internal/config"
	"github.com/dschilow/Avatales-Backend-sub000/internal/memory"
	"github.com/dschilow/Avatales-Backend-sub000/internal/repository"
	"github.com/dschilow/Avatales-Backend-sub000/internal/textgen"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("shutting down")
		cancel()
	}()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()

	merger, err := newMerger(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to create text merger: %v", err)
	}

	memoryEngine := memory.NewEngine(store.Memories, merger, memory.Options{
		DuplicateThreshold:       cfg.DuplicateThreshold,
		AutoConsolidateThreshold: cfg.AutoConsolidateThreshold,
		CandidateThreshold:       cfg.CandidateThreshold,
		MaxActiveMemories:        cfg.MaxActiveMemories,
	})
	runDecaySweep(ctx, store.Memories, memoryEngine)

	ticker := time.NewTicker(cfg.DecayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runDecaySweep(ctx, store.Memories, memoryEngine)
		case <-ctx.Done():
			return
		}
	}
}

// newMerger selects the configured text-merge provider; nil disables fluent
// merging and the engine falls back to deterministic text.
func newMerger(ctx context.Context, cfg config.Config) (memory.TextMerge, error) {
	switch cfg.MergeProvider {
	case "gemini":
		return textgen.NewGeminiMerger(ctx, cfg.GoogleAPIKey, cfg.MergeModel)
	case "openai":
		return textgen.NewOpenAIMerger(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.MergeModel)
	}
	return nil, nil
}

// runDecaySweep processes decay and the capacity cap for every character
// holding memories.
func runDecaySweep(ctx context.Context, memories *repository.MemoryRepo, engine *memory.Engine) {
	ids, err := memories.CharacterIDs(ctx)
	if err != nil {
		slog.Error("decay sweep: failed to list characters", "error", err)
		return
	}
	for _, id := range ids {
		archived, err := engine.ProcessDecay(ctx, id)
		if err != nil {
			slog.Error("decay sweep failed", "character_id", id, "error", err)
			continue
		}
		capped, err := engine.EnforceLimit(ctx, id)
		if err != nil {
			slog.Error("limit enforcement failed", "character_id", id, "error", err)
			continue
		}
		if archived > 0 || capped > 0 {
			slog.Info("decay sweep archived memories", "character_id", id, "decayed", archived, "capped", capped)
		}
	}
}
