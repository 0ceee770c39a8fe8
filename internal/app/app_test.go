package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/newthinker/holdings/internal/config"
	"github.com/newthinker/holdings/internal/core"
	"github.com/newthinker/holdings/internal/identity"
	"github.com/newthinker/holdings/internal/metrics"
)

const alphaDoc = `
slug: alpha
name: Alpha Capital
snapshots:
  - quarter: 2024-Q3
    positions:
      - { identifier: "037833100", ticker: AAPL, name: "AAPL - Apple Inc.", shares: 100, value: 22000 }
      - { identifier: "88160R101", ticker: TSLA, name: "TSLA - Tesla", shares: 10, value: 2500 }
  - quarter: 2024-Q4
    positions:
      - { identifier: "037833100", ticker: AAPL, name: "AAPL - Apple Inc.", shares: 150, value: 37500 }
`

const betaDoc = `{
  "slug": "beta",
  "snapshots": [
    {"quarter": "2024-Q3", "positions": [{"ticker": "TSLA", "name": "Tesla", "shares": 5, "value": 1250}]},
    {"quarter": "2024-Q4", "positions": [{"ticker": "XOM", "name": "Exxon", "shares": 20, "value": 2400}]}
  ]
}`

const sectorsDoc = `
locale: en
sectors:
  aapl: technology
  "88160R101": consumer
  TSLA: consumer
  XOM: energy
labels:
  technology: Information Technology
`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "investors/alpha.yaml", alphaDoc)
	writeFile(t, dir, "investors/beta.json", betaDoc)
	writeFile(t, dir, "sectors.yaml", sectorsDoc)

	cfg := config.Defaults()
	cfg.Data.Path = dir
	cfg.Data.Prefix = "investors"
	cfg.Data.SectorTable = filepath.Join(dir, "sectors.yaml")
	return cfg
}

func TestApp_EngineBeforeLoad(t *testing.T) {
	a := New(config.Defaults(), nil, nil)

	_, err := a.Engine()
	if !errors.Is(err, core.ErrMissingData) {
		t.Errorf("expected ErrMissingData, got %v", err)
	}
	if a.GetStats()["loaded"] != false {
		t.Error("expected loaded=false")
	}
}

func TestApp_Load(t *testing.T) {
	reg := metrics.NewRegistry()
	a := New(testConfig(t), nil, reg)

	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	engine, err := a.Engine()
	if err != nil {
		t.Fatalf("engine unavailable: %v", err)
	}

	latest := engine.LatestWindow()
	if latest.Newest() != core.MustQuarter("2024-Q4") {
		t.Errorf("expected 2024-Q4, got %v", latest.Newest())
	}

	exits := engine.ExitTracker(latest.Quarters)
	if len(exits.Groups) != 1 || exits.Groups[0].Ticker != "TSLA" {
		t.Fatalf("expected one TSLA exit group, got %+v", exits.Groups)
	}
	if len(exits.Groups[0].ExitedBy) != 2 {
		t.Errorf("expected both investors exiting TSLA, got %d", len(exits.Groups[0].ExitedBy))
	}

	flows := engine.SectorNetFlows(latest.Quarters)
	if flows.Flows["Information Technology"] != 15500 {
		t.Errorf("expected technology inflow 15500, got %v", flows.Flows)
	}
	if flows.Flows["consumer"] != -3750 {
		t.Errorf("expected consumer outflow -3750, got %v", flows.Flows)
	}
	if flows.Flows["energy"] != 2400 {
		t.Errorf("expected energy inflow 2400, got %v", flows.Flows)
	}
	if _, ok := flows.Flows[identity.Unclassified]; ok {
		t.Errorf("all positions should be classified, got %v", flows.Flows)
	}

	stats := a.GetStats()
	if stats["investors"] != 2 {
		t.Errorf("expected 2 investors, got %v", stats["investors"])
	}
	if stats["cache_entries"].(int) == 0 {
		t.Error("expected cached views")
	}
}

func TestApp_LoadMissingDirectory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Data.Path = filepath.Join(t.TempDir(), "missing")

	a := New(cfg, nil, nil)
	err := a.Load(context.Background())
	if !errors.Is(err, core.ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}

func TestApp_LoadInvalidDocumentKeepsPrevious(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, nil, nil)
	if err := a.Load(context.Background()); err != nil {
		t.Fatalf("load failed: %v", err)
	}
	before, _ := a.Engine()

	writeFile(t, cfg.Data.Path, "investors/broken.yaml", `
snapshots:
  - quarter: 2024-Q4
    positions:
      - { ticker: BAD, shares: -1, value: 10 }
`)
	err := a.Load(context.Background())
	if !errors.Is(err, core.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}

	after, _ := a.Engine()
	if before != after {
		t.Error("failed load must keep the previous engine")
	}
}

func TestApp_LoadMissingSectorTable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Data.SectorTable = filepath.Join(cfg.Data.Path, "nope.yaml")

	a := New(cfg, nil, nil)
	if err := a.Load(context.Background()); !errors.Is(err, core.ErrLoadFailed) {
		t.Errorf("expected ErrLoadFailed, got %v", err)
	}
}
