package main

// Run a single agent against a JSON input file:
//   go run ./cmd/agentcli -agent esg -input business.json

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"agents-backend/internal/agents"
	"agents-backend/internal/agents/bizhealth"
	"agents-backend/internal/agents/contracts"
	"agents-backend/internal/agents/esg"
	"agents-backend/internal/agents/maintenance"
	"agents-backend/internal/agents/pricing"
	"agents-backend/internal/agents/success"
	"agents-backend/internal/engine"
	"agents-backend/internal/marketplace"
	"agents-backend/internal/pipeline"
)

func main() {
	agentKey := flag.String("agent", "", "agent key to run, or 'all' for the full pipeline")
	inputPath := flag.String("input", "", "path to a JSON input file (defaults to stdin)")
	flag.Parse()

	registry := agents.NewRegistry()
	registry.MustRegister(bizhealth.New(time.Now))
	registry.MustRegister(maintenance.New(time.Now))
	registry.MustRegister(pricing.New(time.Now))
	registry.MustRegister(success.New(time.Now))
	registry.MustRegister(contracts.New(time.Now))
	registry.MustRegister(esg.New(time.Now))

	if *agentKey == "" {
		fmt.Fprintf(os.Stderr, "available agents: %s\n", strings.Join(registry.Keys(), ", "))
		os.Exit(2)
	}

	input, err := readInput(*inputPath)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}

	ctx := context.Background()
	var result any

	if *agentKey == "all" {
		catalog := marketplace.NewCatalog(registry, nil)
		runner := pipeline.NewRunner(registry, catalog.Priority, time.Now)
		keys := registry.Keys()
		sort.SliceStable(keys, func(i, j int) bool {
			return catalog.Priority(keys[i]) < catalog.Priority(keys[j])
		})
		result = runner.Run(ctx, keys, input)
	} else {
		agent, ok := registry.Get(*agentKey)
		if !ok {
			log.Fatalf("unknown agent %q (available: %s)", *agentKey, strings.Join(registry.Keys(), ", "))
		}
		report, err := agent.Analyze(ctx, input)
		if err != nil {
			log.Fatalf("analyze: %v", err)
		}
		result = report
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatalf("encode report: %v", err)
	}
}

func readInput(path string) (engine.Input, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	var input engine.Input
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("parse input JSON: %w", err)
	}
	return input, nil
}
