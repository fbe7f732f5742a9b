package blob

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()
	fs, err := Open(ctx, Config{FSRoot: filepath.Join(t.TempDir(), "b")})
	if err != nil || fs.Driver() != DriverFilesystem {
		t.Fatalf("expected filesystem default, got %v %v", fs, err)
	}
	mem, err := Open(ctx, Config{Driver: "memory"})
	if err != nil || mem.Driver() != DriverMemory {
		t.Fatalf("expected memory driver, got %v %v", mem, err)
	}
	if _, err := Open(ctx, Config{Driver: "s3"}); err == nil {
		t.Fatalf("expected s3 without bucket to fail")
	}
	if _, err := Open(ctx, Config{Driver: "tape"}); err == nil || !strings.Contains(err.Error(), "unknown blob driver") {
		t.Fatalf("expected unknown driver error, got %v", err)
	}
}

func TestArchiveUploadStoresCSVWithMetadata(t *testing.T) {
	ctx := context.Background()
	archive := NewArchive(NewMemory())
	archive.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	key, err := archive.ArchiveUpload(ctx, "accession", []byte("PUID,INSTCODE\n"), "ana", 3)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if !strings.HasPrefix(key, "uploads/accession/20240301T120000Z-") || !strings.HasSuffix(key, ".csv") {
		t.Fatalf("unexpected key %s", key)
	}
	info, rc, err := archive.Store().Get(ctx, key)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "PUID,INSTCODE\n" || info.Metadata["actor"] != "ana" || info.Metadata["count"] != "3" || info.ContentType != "text/csv" {
		t.Fatalf("unexpected archived blob %+v %q", info, body)
	}
	if _, err := archive.ArchiveUpload(ctx, "institute", []byte("INSTCODE\n"), "ana", 1); err != nil {
		t.Fatalf("archive second: %v", err)
	}
	uploads, err := archive.Uploads(ctx, "accession")
	if err != nil || len(uploads) != 1 {
		t.Fatalf("expected one accession upload, got %v %v", uploads, err)
	}
	all, _ := archive.Uploads(ctx, "")
	if len(all) != 2 {
		t.Fatalf("expected two uploads, got %d", len(all))
	}
}
