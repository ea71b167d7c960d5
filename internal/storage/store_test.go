package storage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/rlund/airsusp/internal/dynamo"
)

func testSnapshots() []dynamo.Snapshot {
	return []dynamo.Snapshot{
		{SimTime: 0.001, Step: 1, Frame: dynamo.FrameState{Heave: 0.0121, Roll: -0.0004, Pitch: 0.0019}},
		{SimTime: 0.002, Step: 2, Frame: dynamo.FrameState{Heave: 0.0118, Roll: -0.0007, Pitch: 0.0021}},
		{SimTime: 0.003, Step: 3, Frame: dynamo.FrameState{Heave: 0.0114, Roll: -0.0011, Pitch: 0.0022}},
	}
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	// Fixed UTC timestamp: survives the JSON round trip exactly.
	meta := RunMetadata{
		ID:         "pothole_test",
		Timestamp:  time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
		Profile:    "pothole",
		Stepper:    "trbdf2",
		Dt:         0.001,
		Duration:   6.0,
		Steps:      6000,
		Overruns:   2,
		Faults:     0,
		Drops:      5400,
		Efficiency: 0.1,
	}
	snaps := testSnapshots()

	id, err := st.Save(meta, snaps)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != meta.ID {
		t.Errorf("Save returned id %q, want %q", id, meta.ID)
	}

	gotMeta, err := st.LoadMetadata(id)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if diff := cmp.Diff(meta, gotMeta); diff != "" {
		t.Errorf("metadata mismatch (-saved +loaded):\n%s", diff)
	}

	gotSnaps, err := st.LoadSnapshots(id)
	if err != nil {
		t.Fatalf("LoadSnapshots failed: %v", err)
	}
	if diff := cmp.Diff(snaps, gotSnaps); diff != "" {
		t.Errorf("snapshots mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestStore_GeneratesID(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := st.Save(RunMetadata{Profile: "sine"}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Fatal("Save returned an empty id")
	}

	meta, err := st.LoadMetadata(id)
	if err != nil {
		t.Fatalf("LoadMetadata failed: %v", err)
	}
	if meta.Timestamp.IsZero() {
		t.Error("Save did not stamp the run")
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	base := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		_, err := st.Save(RunMetadata{
			ID:        id,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Profile:   "flat",
		}, nil)
		if err != nil {
			t.Fatalf("Save %q failed: %v", id, err)
		}
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	var ids []string
	for _, r := range runs {
		ids = append(ids, r.ID)
	}
	want := []string{"third", "second", "first"}
	if diff := cmp.Diff(want, ids); diff != "" {
		t.Errorf("List order mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_ListEmptyBase(t *testing.T) {
	st := New(t.TempDir() + "/never-created")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("List on a missing base dir failed: %v", err)
	}
	if runs != nil {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}

func TestStore_EmptyTrajectory(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatal(err)
	}

	id, err := st.Save(RunMetadata{ID: "empty", Profile: "flat"}, nil)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	snaps, err := st.LoadSnapshots(id)
	if err != nil {
		t.Fatalf("LoadSnapshots failed: %v", err)
	}
	if snaps != nil {
		t.Errorf("expected nil trajectory, got %d rows", len(snaps))
	}
}
