package hitplot

import (
	"math"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ---- Debug mode tests ------------------------------------------------------

func observedChart(t *testing.T, level zapcore.Level, delay time.Duration) (*Chart, *ManualClock, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(level)
	c, clock := newTestChart(delay)
	c.SetLogger(zap.New(core))
	return c, clock, logs
}

func TestDebugMode_LogsRebuildStats(t *testing.T) {
	c, _, logs := observedChart(t, zapcore.DebugLevel, 0)
	c.SetDebugMode(true)
	c.Update(twoShapes(), testViewport)

	entries := logs.FilterMessage("interaction layer rebuilt").All()
	if len(entries) != 1 {
		t.Fatalf("got %d rebuild log entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["sites"] != int64(2) || fields["cells"] != int64(2) {
		t.Errorf("fields = %v, want 2 sites and 2 cells", fields)
	}
	if fields["chart"] != c.ID().String() {
		t.Errorf("chart field = %v, want %v", fields["chart"], c.ID())
	}
}

func TestDebugMode_Off(t *testing.T) {
	c, _, logs := observedChart(t, zapcore.DebugLevel, 0)
	c.Update(twoShapes(), testViewport)
	c.HandlePointer(PointerInput{Kind: PointerMove, X: 1, Y: 1})
	if logs.Len() != 0 {
		t.Errorf("logged %d entries with debug off, want 0", logs.Len())
	}
}

func TestDebugMode_LogsSuppressedEvents(t *testing.T) {
	c, _, logs := observedChart(t, zapcore.DebugLevel, time.Second)
	c.SetDebugMode(true)
	c.Update(twoShapes(), testViewport)
	c.HandlePointer(PointerInput{Kind: PointerClick, X: 1, Y: 1})

	entries := logs.FilterMessage("pointer event suppressed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d suppression entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["pointer"] != "click" || fields["state"] != "pending" {
		t.Errorf("fields = %v, want pointer=click state=pending", fields)
	}
}

func TestDebugMode_WarnsAboutShapes(t *testing.T) {
	c, _, logs := observedChart(t, zapcore.DebugLevel, time.Second)
	c.SetDebugMode(true)
	shapes := twoShapes()
	shapes[0].X.Center = math.NaN()
	shapes[1].Y.Radius = -2
	c.Update(shapes, testViewport)

	if n := logs.FilterMessage("non-finite shape center coerced to zero").Len(); n != 1 {
		t.Errorf("non-finite center entries = %d, want 1", n)
	}
	if n := logs.FilterMessage("negative shape radius").Len(); n != 1 {
		t.Errorf("negative radius entries = %d, want 1", n)
	}
}

func TestRebuildFailureLogsWarning(t *testing.T) {
	c, _, logs := observedChart(t, zapcore.WarnLevel, 0)
	shapes := twoShapes()
	shapes[0].Y.Center = math.Inf(1)
	c.Update(shapes, testViewport)

	entries := logs.FilterMessage("interaction layer rebuild failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d warnings, want 1", len(entries))
	}
	if entries[0].Level != zapcore.WarnLevel {
		t.Errorf("level = %v, want warn", entries[0].Level)
	}
	if _, ok := entries[0].ContextMap()["error"]; !ok {
		t.Error("warning should carry the error")
	}
}

func TestSetLoggerNil(t *testing.T) {
	c, _ := newTestChart(0)
	c.SetLogger(nil)
	c.SetDebugMode(true)
	// Must not panic with the no-op logger.
	c.Update(twoShapes(), testViewport)
}
