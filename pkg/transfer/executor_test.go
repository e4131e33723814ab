package transfer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"fatfs/pkg/config"
	"fatfs/pkg/fat"
	"fatfs/pkg/ui"
)

func TestExecutorImportExportRoundTrip(t *testing.T) {
	host := memfs.New()
	files := map[string]string{
		"src/a.sav":        "slot one",
		"src/deep/b.sav":   "slot two, longer than one chunk",
		"src/deep/c/c.bin": "",
	}
	for name, data := range files {
		if err := util.WriteFile(host, name, []byte(data), 0o644); err != nil {
			t.Fatalf("write host %s: %v", name, err)
		}
	}
	vol := fat.NewMemVolume()
	exec := Executor{
		Volume:    vol,
		Host:      host,
		Checksum:  config.ChecksumSHA256,
		ChunkSize: 4,
		Logger:    slogDiscard(),
		Progress:  ui.NoopProgress{},
	}

	plan, err := PlanImport(host, "src", "saves")
	if err != nil {
		t.Fatalf("plan import: %v", err)
	}
	if plan.TotalFiles != 3 {
		t.Fatalf("unexpected plan %+v", plan)
	}
	result, err := exec.Execute(context.Background(), plan)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	rec, ok := result.Success["saves/deep/b.sav"]
	if !ok || rec.Checksum == "" || rec.Size != int64(len(files["src/deep/b.sav"])) {
		t.Fatalf("unexpected record %+v", rec)
	}
	if got := vol.FileSize("saves/a.sav"); got != 8 {
		t.Fatalf("unexpected size %d", got)
	}

	plan, err = PlanExport(vol, "saves", "out")
	if err != nil {
		t.Fatalf("plan export: %v", err)
	}
	if _, err := exec.Execute(context.Background(), plan); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	for name, want := range files {
		rel, _ := filepath.Rel("src", name)
		got, err := util.ReadFile(host, filepath.Join("out", rel))
		if err != nil {
			t.Fatalf("read exported %s: %v", rel, err)
		}
		if string(got) != want {
			t.Fatalf("content mismatch for %s: %q", rel, got)
		}
	}
}

func TestExecutorAppend(t *testing.T) {
	host := memfs.New()
	if err := util.WriteFile(host, "tail.txt", []byte("world"), 0o644); err != nil {
		t.Fatalf("write host: %v", err)
	}
	vol := fat.NewOSVolume(t.TempDir())
	if err := os.WriteFile(filepath.Join(vol.Root(), "log.txt"), []byte("hello "), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	exec := Executor{Volume: vol, Host: host, Checksum: config.ChecksumMD5, Append: true}
	plan, err := PlanImport(host, "tail.txt", "log.txt")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if _, err := exec.Execute(context.Background(), plan); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(vol.Root(), "log.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello world" {
		t.Fatalf("unexpected content %q", data)
	}
}

func TestExecutorReportsFailures(t *testing.T) {
	host := memfs.New()
	vol := fat.NewMemVolume()
	exec := Executor{Volume: vol, Host: host}
	plan := Plan{}
	plan.AddItem(Item{Source: "missing.sav", Dest: "x.sav", Action: ActionImport})
	plan.AddItem(Item{Source: "link", Dest: "link", Action: ActionSkip})
	result, err := exec.Execute(context.Background(), plan)
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := result.Failed["x.sav"]; !ok {
		t.Fatalf("failure not recorded: %+v", result)
	}
	if plan.TotalFiles != 1 {
		t.Fatalf("skip should not count, got %d", plan.TotalFiles)
	}
}

func TestExecutorCanceled(t *testing.T) {
	exec := Executor{Volume: fat.NewMemVolume(), Host: memfs.New()}
	plan := Plan{}
	plan.AddItem(Item{Source: "a", Dest: "a", Action: ActionImport})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := exec.Execute(ctx, plan)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestPlanImportSingleFileIntoDirectory(t *testing.T) {
	host := memfs.New()
	if err := util.WriteFile(host, "dl/game.sav", []byte("abc"), 0o644); err != nil {
		t.Fatalf("write host: %v", err)
	}
	plan, err := PlanImport(host, "dl/game.sav", "saves/")
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(plan.Items) != 1 || plan.Items[0].Dest != "saves/game.sav" || plan.TotalBytes != 3 {
		t.Fatalf("unexpected plan %+v", plan)
	}
}

func TestPlanExportMissing(t *testing.T) {
	if _, err := PlanExport(fat.NewMemVolume(), "nothing", "out"); err == nil {
		t.Fatalf("expected error")
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
