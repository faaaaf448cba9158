package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const outlinesYAML = `outlines:
  - ref: alpha
    name: Alpha
    tags: [x, y]
  - ref: beta
    name: Beta
    tags: [x]
  - ref: gamma
    name: Gamma
    tags: [y, z]
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestLoadOutlines(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)
	list, err := loadOutlines(path)
	if err != nil {
		t.Fatalf("loadOutlines: %v", err)
	}
	if len(list) != 3 || list[2].Name != "Gamma" || list[2].Tags[1] != "z" {
		t.Errorf("unexpected outlines: %+v", list)
	}

	path = writeTempFile(t, "list.yaml", "- name: Solo\n  tags: [a]\n")
	list, err = loadOutlines(path)
	if err != nil {
		t.Fatalf("loadOutlines(list): %v", err)
	}
	if len(list) != 1 || list[0].Name != "Solo" {
		t.Errorf("unexpected outlines: %+v", list)
	}

	path = writeTempFile(t, "empty.yaml", "")
	if list, err = loadOutlines(path); err != nil || len(list) != 0 {
		t.Errorf("empty file: %v %v", list, err)
	}
}

func TestFilter_Narrows(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)

	out, _, err := run(t, "filter", "-f", path, "--tag", "x", "--tag", "y")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out, "0\tAlpha\tx,y") || strings.Contains(out, "Beta") {
		t.Errorf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "1 of 3 outlines match") {
		t.Errorf("missing summary:\n%s", out)
	}
}

func TestFilter_NoTagsHidesAll(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)

	out, _, err := run(t, "filter", "-f", path)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out, "0 of 3 outlines match") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = run(t, "filter", "-f", path, "--show-all")
	if err != nil {
		t.Fatalf("filter --show-all: %v", err)
	}
	if !strings.Contains(out, "3 of 3 outlines match") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestFilter_Commit(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)

	out, _, err := run(t, "filter", "-f", path, "--tag", "y", "--commit", "first")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out, "chosen: Alpha (alpha)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, _, err = run(t, "filter", "-f", path, "--tag", "y", "--commit", "2")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(out, "chosen: Gamma (gamma)") {
		t.Errorf("unexpected output:\n%s", out)
	}

	_, _, err = run(t, "filter", "-f", path, "--tag", "y", "--commit", "1")
	if err == nil || !strings.Contains(err.Error(), "candidate is hidden") {
		t.Errorf("expected hidden error, got %v", err)
	}

	_, _, err = run(t, "filter", "-f", path, "--tag", "nope", "--commit", "first")
	if err == nil {
		t.Error("expected nothing to commit")
	}

	_, _, err = run(t, "filter", "-f", path, "--commit", "last")
	if err == nil {
		t.Error("expected invalid --commit error")
	}
}

func TestFilter_SuggestsTags(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)

	_, errOut, err := run(t, "filter", "-f", path, "--tag", "Y")
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if !strings.Contains(errOut, `did you mean y`) {
		t.Errorf("expected suggestion, got %q", errOut)
	}
}

func TestVocab(t *testing.T) {
	path := writeTempFile(t, "outlines.yaml", outlinesYAML)

	out, _, err := run(t, "vocab", "-f", path)
	if err != nil {
		t.Fatalf("vocab: %v", err)
	}
	want := "2\tx\n2\ty\n1\tz\n"
	if out != want {
		t.Errorf("vocab output = %q, want %q", out, want)
	}

	out, _, _ = run(t, "vocab", "-f", path, "--prefix", "Z")
	if out != "1\tz\n" {
		t.Errorf("vocab --prefix output = %q", out)
	}
}

func TestFilter_MissingFile(t *testing.T) {
	_, _, err := run(t, "filter", "-f", filepath.Join(t.TempDir(), "none.yaml"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}
