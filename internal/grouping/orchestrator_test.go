package grouping

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/config"
	"github.com/drewdunne/changedfiles/internal/filter"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/outputs"
)

func newWriter() *outputs.Writer {
	return outputs.NewWriter(&bytes.Buffer{}, nil, outputs.Options{Separator: " "},
		outputs.WithDelimiter(func() string { return "EOF_TEST" }))
}

func TestOrchestrator_Groups(t *testing.T) {
	all := changes.New()
	all.Add(changes.Modified, "web/app.ts")

	w := newWriter()
	o := New(w, nil, filter.Options{Separator: " "})

	res, err := o.Process(all, nil, []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"**/*.ts"}},
		{Name: "backend", Patterns: []string{"**/*.go"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !slices.Equal(res.ChangedKeys, []string{"frontend"}) {
		t.Errorf("ChangedKeys = %q, want %q", res.ChangedKeys, []string{"frontend"})
	}
	if !slices.Equal(res.ModifiedKeys, []string{"frontend"}) {
		t.Errorf("ModifiedKeys = %q, want %q", res.ModifiedKeys, []string{"frontend"})
	}
	if v, _ := w.Value("changed_keys"); v != "frontend" {
		t.Errorf("changed_keys = %q, want %q", v, "frontend")
	}
	if v, _ := w.Value("frontend_any_changed"); v != "true" {
		t.Errorf("frontend_any_changed = %q, want %q", v, "true")
	}
	if v, _ := w.Value("backend_any_changed"); v != "false" {
		t.Errorf("backend_any_changed = %q, want %q", v, "false")
	}
	if v, _ := w.Value("frontend_only_changed"); v != "true" {
		t.Errorf("frontend_only_changed = %q, want %q", v, "true")
	}
	if _, ok := w.Value("any_changed"); ok {
		t.Error("unprefixed any_changed should not be written in grouped mode")
	}
}

func TestOrchestrator_GroupsDeletedOnly(t *testing.T) {
	all := changes.New()
	all.Add(changes.Deleted, "web/old.ts")

	w := newWriter()
	res, err := New(w, nil, filter.Options{Separator: " "}).Process(all, nil, []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"**/*.ts"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if len(res.ChangedKeys) != 0 {
		t.Errorf("ChangedKeys = %q, want none", res.ChangedKeys)
	}
	if !slices.Equal(res.ModifiedKeys, []string{"frontend"}) {
		t.Errorf("ModifiedKeys = %q, want %q", res.ModifiedKeys, []string{"frontend"})
	}
	if _, ok := w.Value("changed_keys"); ok {
		t.Error("changed_keys should not be written when empty")
	}
}

func TestOrchestrator_GroupsAddedOnly(t *testing.T) {
	all := changes.New()
	all.Add(changes.Added, "app.ts")

	w := newWriter()
	res, err := New(w, nil, filter.Options{Separator: " "}).Process(all, nil, []config.PatternGroup{
		{Name: "frontend", Patterns: []string{"*.ts"}},
		{Name: "backend", Patterns: []string{"*.go"}},
	})
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	// An added file is both changed and modified.
	if !slices.Equal(res.ChangedKeys, []string{"frontend"}) {
		t.Errorf("ChangedKeys = %q, want %q", res.ChangedKeys, []string{"frontend"})
	}
	if !slices.Equal(res.ModifiedKeys, []string{"frontend"}) {
		t.Errorf("ModifiedKeys = %q, want %q", res.ModifiedKeys, []string{"frontend"})
	}
	if v, _ := w.Value("modified_keys"); v != "frontend" {
		t.Errorf("modified_keys = %q, want %q", v, "frontend")
	}
	if v, _ := w.Value("backend_any_modified"); v != "false" {
		t.Errorf("backend_any_modified = %q, want %q", v, "false")
	}
}

func TestOrchestrator_GroupsTakePrecedenceOverPatterns(t *testing.T) {
	all := changes.New()
	all.Add(changes.Modified, "web/app.ts")

	var logs bytes.Buffer
	w := newWriter()
	res, err := New(w, logging.NewActions(&logs), filter.Options{Separator: " "}).Process(all,
		[]string{"**/*.ts"},
		[]config.PatternGroup{{Name: "frontend", Patterns: []string{"**/*.ts"}}},
	)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if v, _ := w.Value("frontend_any_changed"); v != "true" {
		t.Errorf("frontend_any_changed = %q, want %q", v, "true")
	}
	if _, ok := w.Value("any_changed"); ok {
		t.Error("unprefixed any_changed written alongside groups")
	}
	if res.Status.AnyChanged {
		t.Error("Status.AnyChanged set in grouped mode")
	}
	if strings.Contains(logs.String(), "changed-files-patterns") {
		t.Errorf("flat pattern mode ran:\n%s", logs.String())
	}
	if !strings.Contains(logs.String(), "::warning::Both files and files_yaml are set") {
		t.Errorf("missing precedence warning:\n%s", logs.String())
	}
}

func TestOrchestrator_Patterns(t *testing.T) {
	all := changes.New()
	all.Add(changes.Added, "main.go")
	all.Add(changes.Added, "README.md")

	w := newWriter()
	res, err := New(w, nil, filter.Options{Separator: " "}).Process(all, []string{"*.go"}, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.Status.AnyChanged {
		t.Error("AnyChanged should be true")
	}
	if v, _ := w.Value("all_changed_files"); v != "main.go" {
		t.Errorf("all_changed_files = %q, want %q", v, "main.go")
	}
	if v, _ := w.Value("other_changed_files"); v != "README.md" {
		t.Errorf("other_changed_files = %q, want %q", v, "README.md")
	}
	if _, ok := w.Value("changed_keys"); ok {
		t.Error("changed_keys should not be written without groups")
	}
}

func TestOrchestrator_AllFiles(t *testing.T) {
	all := changes.New()
	all.Add(changes.Added, "main.go")

	var logs bytes.Buffer
	w := newWriter()
	res, err := New(w, logging.NewActions(&logs), filter.Options{Separator: " "}).Process(all, nil, nil)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if !res.Status.AnyChanged {
		t.Error("AnyChanged should be true")
	}
	if v, _ := w.Value("only_changed"); v != "false" {
		t.Errorf("only_changed = %q, want %q without patterns", v, "false")
	}
	if !strings.Contains(logs.String(), "::group::changed-files-all") {
		t.Errorf("logs missing group marker:\n%s", logs.String())
	}
}

type failingWriter struct{ err error }

func (f failingWriter) WriteGroup(filter.Options, outputs.Group) (outputs.Status, error) {
	return outputs.Status{}, f.err
}

func (f failingWriter) SetArray(string, []string) error { return f.err }

func TestOrchestrator_WriteError(t *testing.T) {
	boom := errors.New("disk full")
	o := New(failingWriter{err: boom}, nil, filter.Options{})

	_, err := o.Process(changes.New(), nil, []config.PatternGroup{{Name: "docs", Patterns: []string{"*.md"}}})
	if !errors.Is(err, boom) {
		t.Errorf("Process() error = %v, want %v", err, boom)
	}
}
