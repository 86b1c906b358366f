package trace

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type event struct {
	Tick uint64 `json:"tick"`
	Kind string `json:"kind"`
}

func TestWriteAndRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "frames.jsonl.zst")
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	events := []event{{1, "recreate"}, {2, "job"}, {3, "job"}, {37, "acquire_out_of_date"}}
	for _, ev := range events {
		if err := w.Write(ev); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}
	if w.Records() != len(events) {
		t.Errorf("Records = %d", w.Records())
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := w.Write(event{}); !errors.Is(err, os.ErrClosed) {
		t.Errorf("write after close err = %v", err)
	}

	var got []event
	err = Each(path, func(line json.RawMessage) error {
		var ev event
		if err := json.Unmarshal(line, &ev); err != nil {
			return err
		}
		got = append(got, ev)
		return nil
	})
	if err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("read %d events, want %d", len(got), len(events))
	}
	for i := range events {
		if got[i] != events[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}

	counts, err := Summary(path)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if counts["job"] != 2 || counts["recreate"] != 1 || counts["acquire_out_of_date"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestEachRejectsPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.jsonl")
	if err := os.WriteFile(path, []byte("{\"kind\":\"job\"}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Each(path, func(json.RawMessage) error { return nil }); err == nil {
		t.Fatal("expected a zstd error for an uncompressed file")
	}
}
