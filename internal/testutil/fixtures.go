package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mcoot/shiftclock/internal/model"
)

// DefaultRoster is the roster used by service and handler tests
var DefaultRoster = []model.Person{
	{Identity: "1001", DisplayName: "Jane Doe"},
	{Identity: "1002", DisplayName: "John Smith"},
	{Identity: "1003", DisplayName: "Ann Lee"},
}

// WriteRoster writes a roster CSV (with the name,number header) into dir
// and returns its path
func WriteRoster(t testing.TB, dir string, people ...model.Person) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("name,number\n")
	for _, p := range people {
		b.WriteString(p.DisplayName + "," + string(p.Identity) + "\n")
	}
	return WriteFile(t, dir, "students.csv", b.String())
}

// WriteFile writes content to dir/name and returns the path
func WriteFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ReadLedgerRows returns the ledger file's lines, or nil if it does not exist
func ReadLedgerRows(t testing.TB, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	content := strings.TrimRight(string(data), "\n")
	if content == "" {
		return nil
	}
	return strings.Split(content, "\n")
}
