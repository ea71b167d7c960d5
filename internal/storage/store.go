// Package storage records completed runs on disk: one directory per
// run holding metadata.json and snapshots.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rlund/airsusp/internal/dynamo"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Profile    string    `json:"profile"`
	Stepper    string    `json:"stepper"`
	Dt         float64   `json:"dt"`
	Duration   float64   `json:"duration"`
	Steps      uint64    `json:"steps"`
	Overruns   uint64    `json:"overruns"`
	Faults     uint64    `json:"faults"`
	Drops      uint64    `json:"drops"`
	Efficiency float64   `json:"efficiency"`
}

// Save writes one run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, snaps []dynamo.Snapshot) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", meta.Profile, time.Now().Unix())
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()
	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "snapshots.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write([]string{"time", "step", "heave", "roll", "pitch"}); err != nil {
		return "", err
	}
	for _, snap := range snaps {
		row := []string{
			strconv.FormatFloat(snap.SimTime, 'g', -1, 64),
			strconv.FormatUint(snap.Step, 10),
			strconv.FormatFloat(snap.Frame.Heave, 'g', -1, 64),
			strconv.FormatFloat(snap.Frame.Roll, 'g', -1, 64),
			strconv.FormatFloat(snap.Frame.Pitch, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	return meta.ID, w.Error()
}

// List returns metadata for every stored run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var runs []RunMetadata
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		meta, err := s.LoadMetadata(e.Name())
		if err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) LoadMetadata(id string) (RunMetadata, error) {
	var meta RunMetadata
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, "metadata.json"))
	if err != nil {
		return meta, err
	}
	err = json.Unmarshal(data, &meta)
	return meta, err
}

// LoadSnapshots reads back a recorded trajectory.
func (s *Store) LoadSnapshots(id string) ([]dynamo.Snapshot, error) {
	f, err := os.Open(filepath.Join(s.baseDir, id, "snapshots.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) <= 1 {
		return nil, nil
	}

	snaps := make([]dynamo.Snapshot, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != 5 {
			return nil, fmt.Errorf("storage: malformed row in %s/snapshots.csv", id)
		}
		t, err1 := strconv.ParseFloat(row[0], 64)
		step, err2 := strconv.ParseUint(row[1], 10, 64)
		heave, err3 := strconv.ParseFloat(row[2], 64)
		roll, err4 := strconv.ParseFloat(row[3], 64)
		pitch, err5 := strconv.ParseFloat(row[4], 64)
		for _, e := range []error{err1, err2, err3, err4, err5} {
			if e != nil {
				return nil, fmt.Errorf("storage: parse %s/snapshots.csv: %w", id, e)
			}
		}
		snaps = append(snaps, dynamo.Snapshot{
			SimTime: t,
			Step:    step,
			Frame:   dynamo.FrameState{Heave: heave, Roll: roll, Pitch: pitch},
		})
	}
	return snaps, nil
}
