package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestUntilModifiedCancelsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genebank.yaml")
	if err := os.WriteFile(path, []byte("server: {}\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel, err := UntilModified(context.Background(), path)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	if err := os.WriteFile(path, []byte("server: {addr: ':9090'}\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	select {
	case <-ctx.Done():
		if cause := context.Cause(ctx); cause == nil || !strings.Contains(cause.Error(), "genebank.yaml") {
			t.Fatalf("unexpected cause %v", cause)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("context was not cancelled after the file changed")
	}
}

func TestUntilModifiedMissingFile(t *testing.T) {
	if _, _, err := UntilModified(context.Background(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
