package fileutils

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeNewlines(t *testing.T) {
	t.Parallel()

	got := SanitizeNewlines("a\r\nb\rc\nd")
	if got != `a\nb\nc\nd` {
		t.Fatalf("got %q", got)
	}
}

func TestTruncate_RuneBased(t *testing.T) {
	t.Parallel()

	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q, want unchanged", got)
	}
	if got := Truncate("  padded  ", 10); got != "padded" {
		t.Fatalf("got %q, want trimmed", got)
	}
	got := Truncate("🎉🎉🎉🎉", 2)
	if got != "🎉🎉…" {
		t.Fatalf("got %q, want two emoji plus ellipsis", got)
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("got %q, missing ellipsis", got)
	}
	if got := Truncate("anything", 0); got != "anything" {
		t.Fatalf("got %q, want untruncated for max<=0", got)
	}
}

func TestWriteJSONFileAtomic(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out", "result.json")
	in := map[string]int{"a": 1, "b": 2}

	if err := WriteJSONFileAtomic(path, in, true); err != nil {
		t.Fatalf("WriteJSONFileAtomic: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.HasSuffix(string(b), "\n") {
		t.Fatalf("output missing trailing newline")
	}
	var out map[string]int
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Fatalf("roundtrip=%v", out)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir entries=%d, want only the result file", len(entries))
	}
}

func TestDecodeModelJSON(t *testing.T) {
	t.Parallel()

	type out struct {
		A int `json:"a"`
	}

	var v out
	if err := DecodeModelJSON(`{"a": 1}`, &v); err != nil || v.A != 1 {
		t.Fatalf("clean JSON: v=%+v err=%v", v, err)
	}

	v = out{}
	if err := DecodeModelJSON("Here you go:\n```json\n{\"a\": 2}\n```", &v); err != nil || v.A != 2 {
		t.Fatalf("wrapped JSON: v=%+v err=%v", v, err)
	}

	if err := DecodeModelJSON("", &v); err == nil {
		t.Fatalf("empty input should fail")
	}
	if err := DecodeModelJSON("no json here", &v); err == nil {
		t.Fatalf("non-JSON input should fail")
	}
}
