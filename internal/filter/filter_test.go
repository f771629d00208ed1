package filter

import (
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/pathutil"
)

func TestChangeTypeFiles_Dedup(t *testing.T) {
	files := changes.New()
	files.Add(changes.Added, "x.txt")
	files.Add(changes.Added, "y.txt")
	files.Add(changes.Modified, "y.txt")

	got := ChangeTypeFiles(Options{JSON: true}, files, changes.Added, changes.Modified)

	paths, ok := got.Paths.([]string)
	if !ok {
		t.Fatalf("Paths type = %T, want []string", got.Paths)
	}
	if want := []string{"x.txt", "y.txt"}; !slices.Equal(paths, want) {
		t.Errorf("Paths = %q, want %q", paths, want)
	}
	if got.Count != "2" {
		t.Errorf("Count = %q, want %q", got.Count, "2")
	}
}

func TestChangeTypeFiles_Joined(t *testing.T) {
	files := changes.New()
	files.Add(changes.Modified, "b.go")
	files.Add(changes.Added, "a.go")

	got := ChangeTypeFiles(Options{Separator: " "}, files, changes.Added, changes.Modified)
	if got.Paths != "a.go b.go" {
		t.Errorf("Paths = %q, want %q", got.Paths, "a.go b.go")
	}
	if got.Count != "2" {
		t.Errorf("Count = %q, want %q", got.Count, "2")
	}
}

func TestChangeTypeFiles_Empty(t *testing.T) {
	got := ChangeTypeFiles(Options{Separator: " "}, changes.New(), changes.Deleted)
	if got.Paths != "" {
		t.Errorf("Paths = %q, want empty", got.Paths)
	}
	if got.Count != "0" {
		t.Errorf("Count = %q, want %q", got.Count, "0")
	}

	got = ChangeTypeFiles(Options{JSON: true}, changes.New(), changes.Deleted)
	if paths, _ := got.Paths.([]string); paths == nil || len(paths) != 0 {
		t.Errorf("Paths = %#v, want empty non-nil slice", got.Paths)
	}
}

func TestFiles(t *testing.T) {
	tests := []struct {
		name  string
		opts  Options
		files []string
		want  []string
	}{
		{
			name:  "spaces become hyphens",
			files: []string{"my folder/my file.txt"},
			want:  []string{"my-folder/my-file.txt"},
		},
		{
			name:  "dir names collapse",
			opts:  Options{DirNames: true, DirNamesMaxDepth: 1},
			files: []string{"a/b/c/file.txt", "a/x.txt", "b/y.txt"},
			want:  []string{"a", "b"},
		},
		{
			name:  "dir names full depth",
			opts:  Options{DirNames: true},
			files: []string{"a/b/c/file.txt"},
			want:  []string{"a/b/c"},
		},
		{
			name:  "dir names root file",
			opts:  Options{DirNames: true},
			files: []string{"README.md", "src/main.go"},
			want:  []string{".", "src"},
		},
		{
			name:  "dir names exclude current dir",
			opts:  Options{DirNames: true, DirNamesExcludeCurrentDir: true},
			files: []string{"README.md", "src/main.go"},
			want:  []string{"src"},
		},
		{
			name:  "dir names include files",
			opts:  Options{DirNames: true, DirNamesIncludeFiles: []string{"**/*.md"}},
			files: []string{"docs/guide one.md", "docs/img.png"},
			want:  []string{"docs/guide-one.md", "docs"},
		},
		{
			name:  "include patterns ignored without dir names",
			opts:  Options{DirNamesIncludeFiles: []string{"**/*.md"}},
			files: []string{"docs/guide.md"},
			want:  []string{"docs/guide.md"},
		},
		{
			name:  "windows native separators",
			opts:  Options{Platform: pathutil.Platform{Windows: true}},
			files: []string{"src/my app/main.go"},
			want:  []string{`src\my-app\main.go`},
		},
		{
			name:  "windows posix output",
			opts:  Options{Platform: pathutil.Platform{Windows: true}, UsePosixPathSeparator: true},
			files: []string{"src/my app/main.go"},
			want:  []string{"src/my-app/main.go"},
		},
		{
			name:  "posix flag ignored elsewhere",
			opts:  Options{UsePosixPathSeparator: true},
			files: []string{`a\b.txt`},
			want:  []string{`a\b.txt`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := changes.New()
			for _, f := range tt.files {
				files.Add(changes.Added, f)
			}
			got := Files(tt.opts, files, changes.Added)
			if !slices.Equal(got, tt.want) {
				t.Errorf("Files() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaths_StopsEarly(t *testing.T) {
	files := changes.New()
	files.Add(changes.Added, "a")
	files.Add(changes.Added, "b")
	files.Add(changes.Modified, "c")

	var got []string
	for p := range Paths(Options{}, files, []changes.ChangeType{changes.Added, changes.Modified}) {
		got = append(got, p)
		if len(got) == 2 {
			break
		}
	}
	if want := []string{"a", "b"}; !slices.Equal(got, want) {
		t.Errorf("Paths() = %q, want %q", got, want)
	}
}

func TestPaths_TypeOrder(t *testing.T) {
	files := changes.New()
	files.Add(changes.Added, "a")
	files.Add(changes.Modified, "m")

	got := Unique(Paths(Options{}, files, []changes.ChangeType{changes.Modified, changes.Added}))
	if want := []string{"m", "a"}; !slices.Equal(got, want) {
		t.Errorf("Unique() = %q, want %q", got, want)
	}
}

func TestAllChangeTypeFiles(t *testing.T) {
	files := changes.New()
	files.Add(changes.Deleted, "gone.md")
	files.Add(changes.Added, "new.md")
	files.Add(changes.Unknown, "new.md")

	got := AllChangeTypeFiles(Options{JSON: true, DirNamesIncludeFiles: []string{"*.md"}}, files)
	if want := []string{"new.md", "gone.md"}; !slices.Equal(got.Paths.([]string), want) {
		t.Errorf("Paths = %q, want %q", got.Paths, want)
	}
}

func TestRender(t *testing.T) {
	joined := Render(Options{Separator: ","}, []string{"a", "b"})
	if joined.Paths != "a,b" || joined.Count != "2" {
		t.Errorf("Render() = %+v, want {a,b 2}", joined)
	}

	empty := Render(Options{JSON: true}, nil)
	paths, ok := empty.Paths.([]string)
	if !ok || paths == nil || len(paths) != 0 {
		t.Errorf("Render(nil) Paths = %#v, want empty slice", empty.Paths)
	}
	if empty.Count != "0" {
		t.Errorf("Render(nil) Count = %q, want %q", empty.Count, "0")
	}
}

func TestFiles_SubmoduleMergeOrder(t *testing.T) {
	pool := []string{"a.go", "b.go", "lib/c.go", "lib/d e.go", "x/y/z.txt"}
	types := []changes.ChangeType{changes.Added, changes.Modified, changes.Deleted}

	gen := func(t *rapid.T, label string) changes.ChangedFiles {
		files := changes.New()
		for _, ct := range types {
			for _, p := range rapid.SliceOf(rapid.SampledFrom(pool)).Draw(t, label+string(ct)) {
				files.Add(ct, p)
			}
		}
		return files
	}

	rapid.Check(t, func(t *rapid.T) {
		parent, subA, subB := gen(t, "parent"), gen(t, "a"), gen(t, "b")

		ab := changes.New()
		ab.Merge(parent)
		ab.Merge(subA)
		ab.Merge(subB)

		ba := changes.New()
		ba.Merge(parent)
		ba.Merge(subB)
		ba.Merge(subA)

		got1 := Files(Options{}, ab, changes.ModifiedTypes...)
		got2 := Files(Options{}, ba, changes.ModifiedTypes...)
		slices.Sort(got1)
		slices.Sort(got2)
		if !slices.Equal(got1, got2) {
			t.Fatalf("merge order changed result: %q vs %q", got1, got2)
		}
	})
}
