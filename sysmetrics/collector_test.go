package sysmetrics

import "testing"

// TestSampleBeforePollReturnsZeroValue covers A12: Sample() returns
// the zero value before the first successful poll, and never blocks
// (it only reads the cached value under a mutex).
func TestSampleBeforePollReturnsZeroValue(t *testing.T) {
	c := NewCollector()
	s := c.Sample()
	if s != (Sample{}) {
		t.Fatalf("expected zero Sample before first poll, got %+v", s)
	}
}

func TestPollPopulatesSample(t *testing.T) {
	c := NewCollector()
	if err := c.Poll(); err != nil {
		t.Fatalf("poll failed: %v", err)
	}
	s := c.Sample()
	if s.MemPct <= 0 || s.MemPct > 100 {
		t.Fatalf("mem pct out of plausible range: %f", s.MemPct)
	}
}

func TestSecondPollComputesCPUDelta(t *testing.T) {
	c := NewCollector()
	if err := c.Poll(); err != nil {
		t.Fatalf("first poll failed: %v", err)
	}
	if err := c.Poll(); err != nil {
		t.Fatalf("second poll failed: %v", err)
	}
	s := c.Sample()
	if s.CPUPct < 0 || s.CPUPct > 100 {
		t.Fatalf("cpu pct out of range: %f", s.CPUPct)
	}
}

func TestStreamRequiresOpenBeforeSchema(t *testing.T) {
	s := NewStream(NewCollector())
	if _, err := s.Schema(); err == nil {
		t.Fatal("expected error calling Schema before Open")
	}
}

func TestStreamReadNextYieldsFiveColumns(t *testing.T) {
	s := NewStream(NewCollector())
	if err := s.Open(); err != nil {
		t.Fatal(err)
	}
	schema, err := s.Schema()
	if err != nil {
		t.Fatal(err)
	}
	if len(schema.Columns) != 5 {
		t.Fatalf("columns = %d want 5", len(schema.Columns))
	}
	if !s.HasNext() {
		t.Fatal("expected HasNext true after open")
	}
	rec, err := s.ReadNext()
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Values) != 5 {
		t.Fatalf("record values = %d want 5", len(rec.Values))
	}
}

func TestStreamResetIsUnsupported(t *testing.T) {
	s := NewStream(NewCollector())
	_ = s.Open()
	if err := s.Reset(); err == nil {
		t.Fatal("expected error: live stream is not seekable")
	}
}
