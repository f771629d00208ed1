package outputs

import (
	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/filter"
)

// Group is one set of outputs: the whole diff plus the subset selected by a
// pattern list.
type Group struct {
	// Prefix is prepended to every key as "<prefix>_". Empty for ungrouped runs.
	Prefix   string
	All      changes.ChangedFiles
	Filtered changes.ChangedFiles
	// Patterned is set when Filtered came from a pattern list. The only_*
	// outputs are never true otherwise.
	Patterned bool
}

// Status summarizes a group.
type Status struct {
	// AnyChanged is set when an added, copied, modified or renamed file matched.
	AnyChanged bool
	// AnyModified additionally counts deleted files.
	AnyModified bool
}

var typeOutputs = []struct {
	key string
	t   changes.ChangeType
}{
	{"added_files", changes.Added},
	{"copied_files", changes.Copied},
	{"modified_files", changes.Modified},
	{"renamed_files", changes.Renamed},
	{"type_changed_files", changes.TypeChanged},
	{"unmerged_files", changes.Unmerged},
	{"unknown_files", changes.Unknown},
}

// WriteGroup writes the per-type, changed, modified and deleted outputs for
// g and reports whether anything changed or was modified.
func (w *Writer) WriteGroup(opts filter.Options, g Group) (Status, error) {
	key := func(k string) string {
		if g.Prefix == "" {
			return k
		}
		return g.Prefix + "_" + k
	}

	for _, o := range typeOutputs {
		if err := w.SetResult(key(o.key), filter.ChangeTypeFiles(opts, g.Filtered, o.t)); err != nil {
			return Status{}, err
		}
	}

	if err := w.SetResult(key("all_changed_and_modified_files"), filter.AllChangeTypeFiles(opts, g.Filtered)); err != nil {
		return Status{}, err
	}

	var status Status
	summaries := []struct {
		name  string
		files string
		types []changes.ChangeType
		flag  *bool
	}{
		{"changed", "all_changed_files", changes.ChangedTypes, &status.AnyChanged},
		{"modified", "all_modified_files", changes.ModifiedTypes, &status.AnyModified},
		{"deleted", "deleted_files", []changes.ChangeType{changes.Deleted}, nil},
	}

	for _, s := range summaries {
		current := filter.Files(opts, g.Filtered, s.types...)
		other := difference(filter.Files(opts, g.All, s.types...), current)
		anyMatched := len(current) > 0

		if s.flag != nil {
			*s.flag = anyMatched
		}
		w.log.Debug("Group summary", "key", key(s.files), "matched", len(current), "other", len(other))

		if err := w.SetResult(key(s.files), filter.Render(opts, current)); err != nil {
			return Status{}, err
		}
		if err := w.SetBool(key("any_"+s.name), anyMatched); err != nil {
			return Status{}, err
		}
		only := g.Patterned && anyMatched && len(other) == 0
		if err := w.SetBool(key("only_"+s.name), only); err != nil {
			return Status{}, err
		}
		if err := w.SetResult(key("other_"+s.name+"_files"), filter.Render(opts, other)); err != nil {
			return Status{}, err
		}
	}

	return status, nil
}

// difference returns the elements of all not present in exclude, in order.
func difference(all, exclude []string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, p := range exclude {
		skip[p] = struct{}{}
	}
	out := []string{}
	for _, p := range all {
		if _, ok := skip[p]; !ok {
			out = append(out, p)
		}
	}
	return out
}
