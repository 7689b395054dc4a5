// Package main runs the emotional state engine as a standalone process. It
// hosts the decay scheduler, forwards state-change events, and exposes a
// line-oriented console for driving the message pathway during development.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/easeaico/emotion-engine/internal/analysis"
	"github.com/easeaico/emotion-engine/internal/config"
	"github.com/easeaico/emotion-engine/internal/emotion"
	"github.com/easeaico/emotion-engine/internal/events"
	"github.com/easeaico/emotion-engine/internal/memory"
	"github.com/easeaico/emotion-engine/internal/repository"
	"github.com/easeaico/emotion-engine/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var embedder memory.Embedder
	if cfg.GoogleAPIKey != "" {
		genaiEmbedder, err := memory.NewGenAIEmbedder(ctx, cfg.GoogleAPIKey, cfg.EmbeddingModel)
		if err != nil {
			log.Fatalf("failed to create embedder: %v", err)
		}
		embedder = genaiEmbedder
	}

	engineCfg := emotion.Config{
		TickInterval: cfg.DecayTick,
	}

	if cfg.DatabaseURL != "" {
		store, err := repository.NewStore(ctx, cfg.DatabaseURL, embedder)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer store.Close()
		engineCfg.Directory = store.Characters
		engineCfg.Memories = memory.NewService(store.Memories)
		engineCfg.Transitions = store.Transitions
		engineCfg.Profiles = store.Profiles
		engineCfg.Searcher = store.Memories
	} else {
		slog.Info("no DATABASE_URL set, running on in-memory stores")
		engineCfg.Memories = memory.NewService(memory.NewInMemoryRepo())
	}

	var analyzer *analysis.Analyzer
	if cfg.GoogleAPIKey != "" {
		analyzer, err = analysis.NewAnalyzer(ctx, cfg.AnalyzerModel, cfg.GoogleAPIKey)
		if err != nil {
			log.Fatalf("failed to create analyzer: %v", err)
		}
	}

	sink := events.NewChannelSink(cfg.EventBuffer)
	engineCfg.Sink = sink
	engine := emotion.NewEngine(engineCfg)
	defer engine.Close()

	// Forward engine events to the structured log. An external dispatcher
	// replaces this consumer in production.
	go func() {
		logSink := events.LogSink{}
		for envelope := range sink.Events() {
			_ = logSink.Publish(ctx, envelope.Topic, envelope.Event)
		}
	}()

	go runConsole(ctx, cfg, engine, analyzer)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	slog.Info("shutting down")
	cancel()
}

// runConsole reads "characterID<TAB>message" lines from stdin, runs each
// message through the analyzer and the message pathway, and prints the
// resulting composite state. A message of the form "/recall <query>" searches
// the character's memories semantically instead.
func runConsole(ctx context.Context, cfg config.Config, engine *emotion.Engine, analyzer *analysis.Analyzer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		characterID, message, ok := strings.Cut(line, "\t")
		if !ok {
			fmt.Println("usage: <character_id>\\t<message or /recall query>")
			continue
		}

		if query, isRecall := strings.CutPrefix(message, "/recall "); isRecall {
			memories, err := engine.Recall(ctx, characterID, query, cfg.TopK, cfg.SimilarityThreshold)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if len(memories) == 0 {
				fmt.Println("no matching memories")
				continue
			}
			for _, mem := range memories {
				fmt.Printf("%s: %s (significance %.0f)\n", mem.Timestamp.Format("2006-01-02 15:04"), mem.Trigger, mem.Significance)
			}
			continue
		}

		if analyzer == nil {
			fmt.Println("analyzer disabled, set GOOGLE_API_KEY to drive the message pathway")
			continue
		}
		result, err := analyzer.Analyze(ctx, message)
		if err != nil {
			slog.Warn("message analysis failed, using neutral defaults", "error", err.Error())
		}
		state, err := engine.ProcessAnalysis(ctx, characterID, result, message, types.EmotionalContext{
			SocialSetting: types.SettingPrivate,
		})
		if err != nil {
			fmt.Printf("error: %v\n", err)
			continue
		}
		fmt.Printf("%s: %s (intensity %d)\n", characterID, state.Description, state.Intensity)
	}
}
