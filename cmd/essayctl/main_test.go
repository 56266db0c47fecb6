package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/essaygest/internal/history"
	"github.com/dgallion1/essaygest/internal/scoring"
)

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func seedHistory(t *testing.T) (string, history.Record) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()
	rec, err := store.Save(context.Background(), history.Record{
		UserID:       "u1",
		Title:        "모의고사 2회",
		QuestionText: "교사의 역할을 논하시오.",
		AnswerText:   "교사는 학생의 성장을 돕는다.",
		Analysis:     scoring.MockAnalysis(),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return path, rec
}

const fieldsResponse = `{"images":[{"fields":[
 {"inferText":"첫째 줄","boundingPoly":{"vertices":[{"x":10,"y":0},{"x":200,"y":0},{"x":200,"y":20},{"x":10,"y":20}]}},
 {"inferText":"이어지는 줄","boundingPoly":{"vertices":[{"x":10,"y":24},{"x":200,"y":24},{"x":200,"y":44},{"x":10,"y":44}]}},
 {"inferText":"새 문단","boundingPoly":{"vertices":[{"x":10,"y":100},{"x":200,"y":100},{"x":200,"y":120},{"x":10,"y":120}]}}
]}]}`

func TestReconstructFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr.json")
	if err := os.WriteFile(path, []byte(fieldsResponse), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := runCLI(t, "", "reconstruct", "--raw", path)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if stdout != "첫째 줄 이어지는 줄\n\n새 문단\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestReconstructStdinJSON(t *testing.T) {
	stdout, _, err := runCLI(t, fieldsResponse, "-o", "json", "reconstruct", "--raw", "-")
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	var out reconstructOutput
	if err := json.Unmarshal([]byte(stdout), &out); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if len(out.Paragraphs) != 2 || out.Fallback {
		t.Errorf("out = %+v", out)
	}
}

func TestReconstructFallbackText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.txt")
	if err := os.WriteFile(path, []byte("한 줄은\n이어지고\n\n다음 문단"), 0o644); err != nil {
		t.Fatal(err)
	}
	stdout, _, err := runCLI(t, "", "reconstruct", "--text", path)
	if err != nil {
		t.Fatalf("reconstruct: %v", err)
	}
	if stdout != "한 줄은 이어지고\n\n다음 문단\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestReconstructRequiresInput(t *testing.T) {
	if _, _, err := runCLI(t, "", "reconstruct"); err == nil {
		t.Fatal("expected error without --raw or --text")
	}
}

func TestUnknownOutputMode(t *testing.T) {
	_, _, err := runCLI(t, "", "-o", "yaml", "history", "list", "--user", "u1")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("err = %v", err)
	}
}

func TestHistoryListJSONWhenPiped(t *testing.T) {
	db, rec := seedHistory(t)
	stdout, _, err := runCLI(t, "", "--db", db, "history", "list", "--user", "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var records []history.Record
	if err := json.Unmarshal([]byte(stdout), &records); err != nil {
		t.Fatalf("decode %q: %v", stdout, err)
	}
	if len(records) != 1 || records[0].ID != rec.ID {
		t.Errorf("records = %+v", records)
	}
}

func TestHistoryListTable(t *testing.T) {
	db, rec := seedHistory(t)
	stdout, _, err := runCLI(t, "", "--db", db, "-o", "table", "history", "list", "--user", "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{rec.ID, "모의고사 2회", "15 / 20", "╭"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("table missing %q:\n%s", want, stdout)
		}
	}
}

func TestHistoryListEmpty(t *testing.T) {
	db, _ := seedHistory(t)
	stdout, _, err := runCLI(t, "", "--db", db, "-o", "table", "history", "list", "--user", "nobody")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout, "No saved analyses") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestHistoryShowAndDelete(t *testing.T) {
	db, rec := seedHistory(t)

	stdout, _, err := runCLI(t, "", "--db", db, "history", "show", rec.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.HasPrefix(stdout, "# 모의고사 2회") {
		t.Errorf("markdown = %q", stdout)
	}

	stdout, _, err = runCLI(t, "", "--db", db, "history", "show", rec.ID, "--format", "html")
	if err != nil {
		t.Fatalf("show html: %v", err)
	}
	if !strings.Contains(stdout, "<h1>") {
		t.Errorf("html = %q", stdout)
	}

	if _, _, err := runCLI(t, "", "--db", db, "history", "delete", rec.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, _, err = runCLI(t, "", "--db", db, "history", "show", rec.ID)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("show after delete err = %v", err)
	}
}
