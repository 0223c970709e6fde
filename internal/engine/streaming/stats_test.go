package streaming

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStatsSpan(t *testing.T) {
	cfg := smallConfig()
	g := mustGrid(t, cfg)

	s := g.Stats()
	if s.Tiles != cfg.TilesX*cfg.TilesZ {
		t.Errorf("Tiles = %d, want %d", s.Tiles, cfg.TilesX*cfg.TilesZ)
	}
	if s.MaxZ != 100 || s.MinZ != -400 {
		t.Errorf("Z range = [%v, %v], want [-400, 100]", s.MinZ, s.MaxZ)
	}
	if s.Span != s.ExpectedSpan {
		t.Errorf("Span = %v, want %v", s.Span, s.ExpectedSpan)
	}
}

func TestLogCoverageOncePerInterval(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := smallConfig()
	cfg.Diagnostics = true
	g, err := NewGrid(cfg, zap.New(core))
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	for elapsed := 0.0; elapsed < 12; elapsed += 1.0 / 60 {
		g.LogCoverage(elapsed, 0)
	}
	// Buckets 0, 1 and 2 (t = 0, 5, 10).
	if n := logs.FilterMessage("terrain coverage").Len(); n != 3 {
		t.Errorf("expected 3 coverage lines, got %d", n)
	}
}

func TestLogCoverageDisabled(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	g, err := NewGrid(smallConfig(), zap.New(core))
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	g.LogCoverage(100, 0)
	if logs.FilterMessage("terrain coverage").Len() != 0 {
		t.Error("coverage summary should be silent without diagnostics")
	}
}
