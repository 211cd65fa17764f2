package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestEmbeddedDefaultsRender(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("status.win", map[string]any{"Winner": "Black", "Black": 40, "White": 24})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Game over. Black wins 40 to 24." {
		t.Fatalf("got %q", got)
	}
	if !c.Has("help") || !c.Has("error.illegal_move") {
		t.Fatalf("expected default keys, have %v", c.Keys())
	}
}

func TestMissingKeyAndField(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Render("nope.nothing", nil); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := c.Render("status.win", map[string]any{"Winner": "Black"}); err == nil {
		t.Fatalf("expected missing field error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "game:\n  played: \"{{.Player}} -> {{.Square}}\"\n")
	writeFile(t, dir, "notes.txt", "ignored: true\n")

	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("game.played", map[string]any{"Player": "White", "Square": "c4"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "White -> c4" {
		t.Fatalf("override not applied: %q", got)
	}
	if _, err := c.Render("moves.empty", map[string]any{"Player": "Black"}); err != nil {
		t.Fatalf("untouched default lost: %v", err)
	}
}

func TestOverrideDuplicateKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "moves:\n  empty: one\n")
	writeFile(t, dir, "b.yml", "moves:\n  empty: two\n")
	_, err := New(dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestOverrideRejectsNonString(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", "moves:\n  empty: 3\n")
	if _, err := New(dir); err == nil {
		t.Fatalf("expected error for non-string leaf")
	}
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}
