package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"genebank/internal/auth"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GENEBANK_STORAGE_DRIVER", "sqlite")
	t.Setenv("GENEBANK_SQLITE_PATH", filepath.Join(dir, "genebank.db"))
	t.Setenv("GENEBANK_BLOB_DRIVER", "fs")
	t.Setenv("GENEBANK_BLOB_FS_ROOT", filepath.Join(dir, "blobs"))
	t.Setenv("GENEBANK_LOG_LEVEL", "error")
	t.Setenv("GENEBANK_AUTH_SECRET", "cli-secret")
	return dir
}

func TestAccountCommandsAndToken(t *testing.T) {
	isolate(t)
	if out, err := execute(t, "group", "add", "curators"); err != nil || !strings.Contains(out, "group curators created") {
		t.Skipf("sqlite unavailable: %v %s", err, out)
	}
	if out, err := execute(t, "user", "add", "ana", "--group", "curators"); err != nil || !strings.Contains(out, "user ana created") {
		t.Fatalf("user add: %v %s", err, out)
	}
	if _, err := execute(t, "user", "add", "bo", "--group", "ghosts"); err == nil {
		t.Fatalf("expected unknown group to be rejected")
	}
	out, err := execute(t, "token", "--user", "ana", "--ttl", "1h")
	if err != nil {
		t.Fatalf("token: %v %s", err, out)
	}
	signer, _ := auth.NewSigner("cli-secret", "genebank")
	if user, err := signer.Verify(strings.TrimSpace(out)); err != nil || user != "ana" {
		t.Fatalf("minted token must verify: %q %v", user, err)
	}
	if _, err := execute(t, "token", "--user", "ghost"); err == nil {
		t.Fatalf("expected unknown user to be rejected")
	}
}

func TestImportThenExport(t *testing.T) {
	dir := isolate(t)
	if _, err := execute(t, "group", "add", "curators"); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	csvPath := filepath.Join(dir, "institutes.csv")
	if err := os.WriteFile(csvPath, []byte("INSTCODE,NAME,CITY\nESP004,CRF,Madrid\nESP026,UPV,Valencia\n"), 0o600); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	if out, err := execute(t, "import", "institutes", "--file", csvPath); err != nil || !strings.Contains(out, "2 institutes created") {
		t.Fatalf("import: %v %s", err, out)
	}
	if _, err := execute(t, "import", "institutes", "--file", csvPath); err == nil {
		t.Fatalf("re-import must fail on duplicates")
	}

	exportPath := filepath.Join(dir, "export.csv")
	if out, err := execute(t, "export", "institutes", "--out", exportPath); err != nil {
		t.Fatalf("export: %v %s", err, out)
	}
	exported, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(exported)), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "INSTCODE,NAME,") {
		t.Fatalf("unexpected export:\n%s", exported)
	}

	archived, _ := filepath.Glob(filepath.Join(dir, "blobs", "uploads", "institutes", "*.csv"))
	if len(archived) != 1 {
		t.Fatalf("expected the committed upload archived once, got %v", archived)
	}
	if _, err := execute(t, "export", "plants"); err == nil {
		t.Fatalf("expected unknown entity error")
	}
}

func TestOperatorImportsAccessionSetsOnFreshStore(t *testing.T) {
	dir := isolate(t)
	files := map[string]string{
		"institutes.csv":    "INSTCODE,NAME\nESP004,CRF\n",
		"accessions.csv":    "INSTCODE,ACCENUMB,GENUS\nESP004,BGE0001,Solanum\nESP004,BGE0002,Capsicum\n",
		"accessionsets.csv": "INSTCODE,ACCESETNUMB,ACCESSIONS\nESP004,SET1,ESP004:BGE0001;ESP004:BGE0002\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if _, err := execute(t, "import", "institutes", "--file", filepath.Join(dir, "institutes.csv")); err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if out, err := execute(t, "import", "accessions", "--file", filepath.Join(dir, "accessions.csv"), "--group", "admin"); err != nil || !strings.Contains(out, "2 accessions created") {
		t.Fatalf("import accessions: %v %s", err, out)
	}
	if out, err := execute(t, "import", "accessionsets", "--file", filepath.Join(dir, "accessionsets.csv")); err != nil || !strings.Contains(out, "1 accessionsets created") {
		t.Fatalf("import accession sets without creating the admin group first: %v %s", err, out)
	}
	if _, err := execute(t, "group", "add", "admin"); err == nil {
		t.Fatalf("the admin group must already exist after the first start")
	}
}
