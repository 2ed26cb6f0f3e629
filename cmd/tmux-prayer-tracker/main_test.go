package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/geo"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/state"
	"github.com/smokyabdulrahman/prayer-tracker/internal/storage"
)

func buildBinary(t *testing.T, ldflags string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "tmux-prayer-tracker")
	args := []string{"build"}
	if ldflags != "" {
		args = append(args, "-ldflags", ldflags)
	}
	args = append(args, "-o", binPath, ".")

	cmd := exec.Command("go", args...)
	cmd.Dir = "."
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}
	return binPath
}

// TestVersionFlag verifies that --version prints the version string.
func TestVersionFlag(t *testing.T) {
	binPath := buildBinary(t, "-X main.version=v1.2.3-test")

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	want := "tmux-prayer-tracker v1.2.3-test"
	if got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

// TestStatusLine_Binary verifies the binary prints one short-name line offline.
func TestStatusLine_Binary(t *testing.T) {
	binPath := buildBinary(t, "")
	home := t.TempDir()

	cmd := exec.Command(binPath,
		"--latitude", "21.4225", "--longitude", "39.8262", "--timezone", "UTC",
		"--format", "{{.ShortName}}", "--cache-dir", t.TempDir())
	cmd.Env = append(os.Environ(), "HOME="+home, "XDG_CONFIG_HOME="+filepath.Join(home, ".config"))
	cmd.Dir = t.TempDir()

	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	got := string(out)
	if strings.ContainsAny(got, "!\n") {
		t.Errorf("fresh state should print a bare line, got %q", got)
	}
	if !strings.Contains("FDAMI", got) || len(got) != 1 {
		t.Errorf("output = %q, want one of F, D, A, M, I", got)
	}
}

func TestStatusLine(t *testing.T) {
	coord := prayer.DefaultCoordinate
	now := time.Date(2026, 3, 1, 13, 0, 0, 0, time.FixedZone("AST", 3*3600))
	snap := state.Initialize(coord, now)

	if got := statusLine(snap, coord, now, prayer.FormatNameAndTime, "15:04", true); got != "Asr 15:50" {
		t.Errorf("statusLine = %q, want %q", got, "Asr 15:50")
	}

	for _, n := range []prayer.Name{prayer.Fajr, prayer.Dhuhr} {
		r := snap.Prayers[n]
		r.ReminderSent = true
		snap.Prayers[n] = r
	}
	if got := statusLine(snap, coord, now, prayer.FormatShortNameAndTime, "15:04", true); got != "A 15:50 !2" {
		t.Errorf("statusLine = %q, want %q", got, "A 15:50 !2")
	}
	if got := statusLine(snap, coord, now, prayer.FormatShortNameAndTime, "15:04", false); got != "A 15:50" {
		t.Errorf("statusLine without alerts = %q, want %q", got, "A 15:50")
	}

	late := time.Date(2026, 3, 1, 23, 0, 0, 0, now.Location())
	if got := statusLine(snap, coord, late, prayer.FormatNameAndRemaining, "15:04", false); got != "Fajr 6h 50m" {
		t.Errorf("statusLine after Isha = %q, want %q", got, "Fajr 6h 50m")
	}
}

// TestInvalidFormat verifies a broken template fails before any work is done.
func TestInvalidFormat(t *testing.T) {
	binPath := buildBinary(t, "")

	err := exec.Command(binPath, "--format", "{{.Bad").Run()
	if err == nil {
		t.Fatal("expected non-zero exit for an invalid template")
	}
	if exitErr, ok := err.(*exec.ExitError); !ok || exitErr.ExitCode() != 1 {
		t.Errorf("exit = %v, want status 1", err)
	}
}

// TestRun_UnusableDetectedTimezone verifies a cached detection with a zone the
// host cannot load still yields a status line.
func TestRun_UnusableDetectedTimezone(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	dir := t.TempDir()
	kv, err := storage.NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	data, err := json.Marshal(map[string]any{
		"location": geo.Location{
			Latitude:  prayer.DefaultCoordinate.Latitude,
			Longitude: prayer.DefaultCoordinate.Longitude,
			Timezone:  "America/Not_In_Tzdata",
		},
		"detected_at": time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := kv.Set(context.Background(), geo.CacheKey, data); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	var out bytes.Buffer
	opts := options{format: "{{.ShortName}}", cacheDir: dir}
	if err := run(opts, &out); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := out.String(); len(got) != 1 || !strings.Contains("FDAMI", got) {
		t.Errorf("output = %q, want one of F, D, A, M, I", got)
	}
}
