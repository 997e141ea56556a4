// SPDX-License-Identifier: EPL-2.0

package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func openTest(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	// Deterministic, strictly increasing clock
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	return s
}

func mustCreate(t *testing.T, s *Store, id, user string) *Asset {
	t.Helper()

	a := &Asset{ID: id, Title: "title " + id, File: id + ".wav", FileType: "wav", User: user}
	if err := s.CreateAsset(context.Background(), a); err != nil {
		t.Fatalf("CreateAsset(%s) error = %v", id, err)
	}

	return a
}

func TestStore_CreateGet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTest(t)

	created := mustCreate(t, s, "a1", "alice")
	if created.CreatedAt.IsZero() || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("timestamps = %v / %v", created.CreatedAt, created.UpdatedAt)
	}

	got, err := s.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatalf("GetAsset() error = %v", err)
	}

	if got.Title != "title a1" || got.File != "a1.wav" || got.User != "alice" || got.FileType != "wav" {
		t.Errorf("GetAsset() = %+v", got)
	}
	if got.Duration != nil || got.Waveform != nil {
		t.Errorf("fresh asset has metadata: %v %v", got.Duration, got.Waveform)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}

	if _, err := s.GetAsset(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAsset(missing) error = %v, want ErrNotFound", err)
	}

	if err := s.CreateAsset(ctx, &Asset{ID: "a1", Title: "dup", File: "x", FileType: "wav", User: "bob"}); err == nil {
		t.Error("CreateAsset() with a duplicate id succeeded")
	}
}

func TestStore_ListAssets_NewestFirst(t *testing.T) {
	t.Parallel()

	s := openTest(t)
	for _, id := range []string{"first", "second", "third"} {
		mustCreate(t, s, id, "alice")
	}

	assets, err := s.ListAssets(context.Background())
	if err != nil {
		t.Fatalf("ListAssets() error = %v", err)
	}

	ids := make([]string, 0, len(assets))
	for _, a := range assets {
		ids = append(ids, a.ID)
	}
	if !slices.Equal(ids, []string{"third", "second", "first"}) {
		t.Errorf("ListAssets() order = %v", ids)
	}
}

func TestStore_ListAssets_Empty(t *testing.T) {
	t.Parallel()

	assets, err := openTest(t).ListAssets(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	data, _ := json.Marshal(assets)
	if string(data) != "[]" {
		t.Errorf("empty list encodes as %s, want []", data)
	}
}

func TestStore_UpdateMetadata(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTest(t)
	created := mustCreate(t, s, "a1", "alice")

	if err := s.UpdateMetadata(ctx, "a1", 2.5, []float64{0, 0.5, 1}); err != nil {
		t.Fatalf("UpdateMetadata() error = %v", err)
	}

	got, err := s.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Duration == nil || *got.Duration != 2.5 {
		t.Errorf("Duration = %v, want 2.5", got.Duration)
	}
	if !slices.Equal(got.Waveform, []float64{0, 0.5, 1}) {
		t.Errorf("Waveform = %v", got.Waveform)
	}
	if !got.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt not advanced: %v", got.UpdatedAt)
	}

	if err := s.UpdateMetadata(ctx, "missing", 1, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMetadata(missing) error = %v, want ErrNotFound", err)
	}
}

func TestStore_ReplaceAudio(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTest(t)
	mustCreate(t, s, "a1", "alice")

	first, err := s.ReplaceAudio(ctx, "a1", "b.wav", 2, []float64{1}, Edit{
		Kind:       "trim",
		Parameters: json.RawMessage(`{"start_ms":1000,"end_ms":3000}`),
		User:       "alice",
	})
	if err != nil {
		t.Fatalf("ReplaceAudio() error = %v", err)
	}
	if first.ID == 0 || first.AssetID != "a1" || first.CreatedAt.IsZero() {
		t.Errorf("stored edit = %+v", first)
	}

	if _, err := s.ReplaceAudio(ctx, "a1", "c.wav", 4, nil, Edit{Kind: "speed", User: "alice"}); err != nil {
		t.Fatalf("ReplaceAudio() error = %v", err)
	}

	got, err := s.GetAsset(ctx, "a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.File != "c.wav" || *got.Duration != 4 || got.Waveform != nil {
		t.Errorf("asset after edits = %+v", got)
	}

	edits, err := s.ListEdits(ctx, "a1")
	if err != nil {
		t.Fatalf("ListEdits() error = %v", err)
	}
	if len(edits) != 2 || edits[0].Kind != "trim" || edits[1].Kind != "speed" {
		t.Fatalf("ListEdits() = %+v, want trim then speed", edits)
	}
	if string(edits[0].Parameters) != `{"start_ms":1000,"end_ms":3000}` || string(edits[1].Parameters) != "{}" {
		t.Errorf("parameters = %s / %s", edits[0].Parameters, edits[1].Parameters)
	}

	// A missing asset records nothing
	if _, err := s.ReplaceAudio(ctx, "missing", "x.wav", 1, nil, Edit{Kind: "trim", User: "bob"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceAudio(missing) error = %v, want ErrNotFound", err)
	}
	if edits, _ := s.ListEdits(ctx, "missing"); len(edits) != 0 {
		t.Errorf("edits recorded for a missing asset: %v", edits)
	}
}

func TestStore_DeleteAsset(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := openTest(t)
	mustCreate(t, s, "a1", "alice")
	mustCreate(t, s, "a2", "alice")

	if _, err := s.ReplaceAudio(ctx, "a1", "b.wav", 1, nil, Edit{Kind: "volume", User: "alice"}); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteAsset(ctx, "a1"); err != nil {
		t.Fatalf("DeleteAsset() error = %v", err)
	}
	if _, err := s.GetAsset(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAsset(deleted) error = %v", err)
	}
	if edits, _ := s.ListEdits(ctx, "a1"); len(edits) != 0 {
		t.Errorf("edits survived delete: %v", edits)
	}
	if err := s.DeleteAsset(ctx, "a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteAsset() error = %v, want ErrNotFound", err)
	}

	if _, err := s.GetAsset(ctx, "a2"); err != nil {
		t.Errorf("unrelated asset gone: %v", err)
	}
}

func TestAsset_JSON(t *testing.T) {
	t.Parallel()

	d := 1.5
	a := Asset{
		ID:        "a1",
		Title:     "Song",
		File:      "a1.mp3",
		FileType:  "mp3",
		Duration:  &d,
		Waveform:  []float64{0, 1},
		User:      "alice",
		CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data, err := json.Marshal(a)
	if err != nil {
		t.Fatal(err)
	}

	want := `{"id":"a1","title":"Song","file":"a1.mp3","file_type":"mp3","duration":1.5,` +
		`"waveform_data":[0,1],"user":"alice","created_at":"2024-01-02T03:04:05Z","updated_at":"2024-01-02T03:04:05Z"}`
	if string(data) != want {
		t.Errorf("json =\n%s\nwant\n%s", data, want)
	}
}
