// Command simulate drives one full session through the engine end to end:
// segment a document, assign role queues, run the conversation state
// machine turn by turn, interrupt it, and persist/restore its state. It is
// the offline harness for exercising the whole stack without a real
// front end or LLM, colorized the way this lineage's debug tooling is.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/Bhargs24/rqsm-engine/internal/config"
	"github.com/Bhargs24/rqsm-engine/internal/pkg/logger"
	"github.com/Bhargs24/rqsm-engine/pkg/assign"
	"github.com/Bhargs24/rqsm-engine/pkg/dialogue"
	"github.com/Bhargs24/rqsm-engine/pkg/dialogue/generator"
	"github.com/Bhargs24/rqsm-engine/pkg/events"
	"github.com/Bhargs24/rqsm-engine/pkg/segment"
	"github.com/Bhargs24/rqsm-engine/pkg/segment/embedder"
	"github.com/Bhargs24/rqsm-engine/pkg/store"
)

const sampleDocument = `OVERVIEW

Load balancers distribute incoming traffic across a pool of backend
servers so that no single machine is overwhelmed. They sit between
clients and the backend fleet, inspecting each request just long enough
to decide where it goes next.

ROUTING ALGORITHMS

Round robin cycles through backends in a fixed order, ignoring their
current load. Least-connections instead sends each request to whichever
backend currently holds the fewest open connections, which adapts better
when requests vary wildly in cost.

FAILURE HANDLING

A load balancer that keeps sending traffic to a dead backend defeats its
own purpose. Health checks probe each backend on an interval and pull it
out of rotation the moment it stops responding correctly.

SUMMARY

Load balancing trades a small amount of routing overhead for a large gain
in resilience and throughput, and the right algorithm depends entirely on
how uniform the request cost is across your fleet.`

func main() {
	cfg := config.Load()
	log := logger.New(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer log.Sync()

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	bold.Println("=== rqsm-engine simulation ===")

	ctx := context.Background()
	seg := segment.New(embedder.NewStubEmbedder(), segment.Config{
		SimilarityThreshold: cfg.Segmentation.SimilarityThreshold,
		MaxGroupSize:        cfg.Segmentation.MaxGroupSize,
		MinGroupSize:        cfg.Segmentation.MinGroupSize,
		MinParagraphChars:   cfg.Segmentation.MinParagraphChars,
	}, log)

	units, err := seg.Segment(ctx, sampleDocument)
	if err != nil {
		fmt.Fprintln(os.Stderr, "segment error:", err)
		os.Exit(1)
	}
	cyan.Printf("segmented into %d units\n", len(units))

	mode := assign.ModeBalanced
	if cfg.Assignment.DefaultMode == "greedy" {
		mode = assign.ModeGreedy
	}
	assignment, err := assign.Assign(units, mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "assign error:", err)
		os.Exit(1)
	}
	for _, ua := range assignment.Units {
		yellow.Printf("  unit %-8s primary=%-22s queue=%v\n", ua.UnitID, ua.Primary, ua.Queue)
	}

	bus := events.NewBus()
	defer bus.Close()

	sessionID := "sim-" + uuid.NewString()
	m := dialogue.NewMachine(sessionID, pickGenerator(cfg), cfg.Dialogue.GeneratorDeadline, log)
	m.SetEventBus(bus)

	if err := m.LoadDocument(len(units)); err != nil {
		fmt.Fprintln(os.Stderr, "load document:", err)
		os.Exit(1)
	}
	if err := m.AttachAssignment(units, assignment); err != nil {
		fmt.Fprintln(os.Stderr, "attach assignment:", err)
		os.Exit(1)
	}
	if err := m.StartDialogue(); err != nil {
		fmt.Fprintln(os.Stderr, "start dialogue:", err)
		os.Exit(1)
	}

	hot := store.NewCacheStore(time.Hour, 10*time.Minute)
	sessionStore := store.Store(hot)

	reader := bufio.NewScanner(os.Stdin)
	green.Println(`commands: "next" (bot turn), "interrupt <msg>", "resume", "save", "load", "quit"`)

	for {
		if m.State() == dialogue.StateCompleted {
			bold.Println("session completed.")
			break
		}
		fmt.Print("> ")
		if !reader.Scan() {
			break
		}
		line := strings.TrimSpace(reader.Text())
		switch {
		case line == "next":
			text, err := m.GenerateBotTurn(ctx)
			if err != nil {
				fmt.Fprintln(os.Stderr, "generate:", err)
				continue
			}
			cyan.Println(text)
			if err := m.AdvanceUnit(); err != nil {
				fmt.Fprintln(os.Stderr, "advance:", err)
			}
		case line == "resume":
			if err := m.ResumeConversation(false); err != nil {
				fmt.Fprintln(os.Stderr, "resume:", err)
			}
		case strings.HasPrefix(line, "interrupt "):
			msg := strings.TrimPrefix(line, "interrupt ")
			if _, err := m.UserClicksInterrupt(); err != nil {
				fmt.Fprintln(os.Stderr, "interrupt:", err)
				continue
			}
			intent, confidence, err := m.HandleInterruptionMessage(ctx, msg)
			if err != nil {
				fmt.Fprintln(os.Stderr, "handle interruption:", err)
				continue
			}
			yellow.Printf("classified intent=%s confidence=%.2f\n", intent, confidence)
		case line == "save":
			blob, err := m.SaveState()
			if err != nil {
				fmt.Fprintln(os.Stderr, "save:", err)
				continue
			}
			if err := sessionStore.Put(ctx, sessionID, blob); err != nil {
				fmt.Fprintln(os.Stderr, "store put:", err)
				continue
			}
			green.Println("saved.")
		case line == "load":
			blob, found, err := sessionStore.Get(ctx, sessionID)
			if err != nil || !found {
				fmt.Fprintln(os.Stderr, "no saved state found")
				continue
			}
			fresh := dialogue.NewMachine(sessionID, pickGenerator(cfg), cfg.Dialogue.GeneratorDeadline, log)
			if err := fresh.LoadState(blob); err != nil {
				fmt.Fprintln(os.Stderr, "load state:", err)
				continue
			}
			m = fresh
			m.SetEventBus(bus)
			green.Println("loaded.")
		case line == "quit" || line == "exit":
			return
		default:
			fmt.Println(`unknown command`)
		}
	}
}

func pickGenerator(cfg *config.Config) generator.Generator {
	if cfg.Generator.Provider == "ollama" {
		return generator.NewOllamaGenerator(cfg.Generator.BaseURL, cfg.Generator.Model)
	}
	return generator.NewStubGenerator()
}
