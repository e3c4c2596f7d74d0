package testsupport

import (
	"encoding/json"
	"os"
	"testing"
)

// LoadFixture returns the raw bytes at path, failing the test on error.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("load fixture %s: %v", path, err)
	}
	return data
}

// LoadGolden decodes the JSON golden file at path into v.
func LoadGolden(t testing.TB, path string, v any) {
	t.Helper()
	if err := json.Unmarshal(LoadFixture(t, path), v); err != nil {
		t.Fatalf("decode golden %s: %v", path, err)
	}
}

// RenderCase is one entry of a render golden file.
type RenderCase struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	BBCode bool   `json:"bbcode"`
	HTML   bool   `json:"html"`
	Want   string `json:"want"`
}
