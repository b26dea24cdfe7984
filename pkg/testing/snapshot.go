package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/motion/pkg/animation"
)

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot is the committed trajectory of one or more controllers.
type Snapshot struct {
	Frames []FrameRecord `json:"frames"`
}

// FrameRecord is one commit. Values are rounded to 4 decimals so golden
// files stay stable across platforms.
type FrameRecord struct {
	Frame  int64              `json:"frame"`
	Source string             `json:"source,omitempty"`
	Values map[string]float64 `json:"values"`
	Rest   bool               `json:"rest,omitempty"`
}

// Recorder collects the commits of controllers driven by a harness.
type Recorder struct {
	h     *Harness
	snap  Snapshot
	unsub []func()
}

// NewRecorder creates an empty recorder.
func (h *Harness) NewRecorder() *Recorder {
	return &Recorder{h: h}
}

// Record subscribes to c's commits under the given label.
func (r *Recorder) Record(label string, c *animation.Controller) {
	r.unsub = append(r.unsub,
		c.OnTick(func(v animation.Values) {
			r.snap.Frames = append(r.snap.Frames, FrameRecord{
				Frame:  r.h.sched.FrameCount(),
				Source: label,
				Values: round4(v),
			})
		}),
		c.OnRest(func(animation.Values) {
			if n := len(r.snap.Frames); n > 0 && r.snap.Frames[n-1].Source == label {
				r.snap.Frames[n-1].Rest = true
			}
		}),
	)
}

// Stop unsubscribes from every recorded controller.
func (r *Recorder) Stop() {
	for _, fn := range r.unsub {
		fn()
	}
	r.unsub = nil
}

// Snapshot returns the commits recorded so far.
func (r *Recorder) Snapshot() *Snapshot {
	frames := make([]FrameRecord, len(r.snap.Frames))
	copy(frames, r.snap.Frames)
	return &Snapshot{Frames: frames}
}

// Len returns the number of recorded commits.
func (r *Recorder) Len() int {
	return len(r.snap.Frames)
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// MOTION_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("MOTION_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: MOTION_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: MOTION_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other. Returns the
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func round4(v animation.Values) map[string]float64 {
	out := make(map[string]float64, len(v))
	for key, x := range v {
		out[key] = math.Round(x*1e4) / 1e4
	}
	return out
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lineDiff lists the lines that differ, position by position.
func lineDiff(expected, actual string) string {
	expectedLines := strings.Split(expected, "\n")
	actualLines := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")
	for i := range max(len(expectedLines), len(actualLines)) {
		var e, a string
		if i < len(expectedLines) {
			e = expectedLines[i]
		}
		if i < len(actualLines) {
			a = actualLines[i]
		}
		if e == a {
			continue
		}
		if i < len(expectedLines) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(actualLines) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}
