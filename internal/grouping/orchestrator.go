// Package grouping runs the output writer over the changed-file set for one
// requested pattern shape: named pattern groups, a flat pattern list, or the
// whole diff when neither is given.
package grouping

import (
	"fmt"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/config"
	"github.com/drewdunne/changedfiles/internal/filter"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/outputs"
	"github.com/drewdunne/changedfiles/internal/pattern"
)

// GroupWriter writes the outputs for one filtered set.
type GroupWriter interface {
	WriteGroup(opts filter.Options, g outputs.Group) (outputs.Status, error)
	SetArray(key string, values []string) error
}

// Result reports what was written.
type Result struct {
	// Status is the summary of the flat pattern list or of the whole diff.
	// It is zero in grouped mode.
	Status       outputs.Status
	ChangedKeys  []string
	ModifiedKeys []string
}

// Orchestrator filters the diff per pattern shape and delegates output
// writing.
type Orchestrator struct {
	out  GroupWriter
	log  logging.Logger
	opts filter.Options
}

// New creates an Orchestrator.
func New(out GroupWriter, log logging.Logger, opts filter.Options) *Orchestrator {
	if log == nil {
		log = logging.Nop()
	}
	return &Orchestrator{out: out, log: log, opts: opts}
}

// Process runs exactly one mode. Named groups take precedence: with groups,
// each one is written under its own prefix and a flat pattern list is
// ignored. Otherwise a flat pattern list is written unprefixed, and with
// neither the whole diff is. modified_keys and changed_keys are written only
// when non-empty.
func (o *Orchestrator) Process(all changes.ChangedFiles, patterns []string, groups []config.PatternGroup) (Result, error) {
	switch {
	case len(groups) > 0:
		if len(patterns) > 0 {
			o.log.Warn("Both files and files_yaml are set; files is ignored in favour of the files_yaml groups")
		}
		return o.processGroups(all, groups)

	case len(patterns) > 0:
		status, err := o.run("changed-files-patterns", all, patterns, "")
		if err != nil {
			return Result{}, err
		}
		return Result{Status: status}, nil

	default:
		o.log.Group("changed-files-all")
		status, err := o.out.WriteGroup(o.opts, outputs.Group{All: all, Filtered: all})
		o.log.EndGroup()
		if err != nil {
			return Result{}, err
		}
		return Result{Status: status}, nil
	}
}

func (o *Orchestrator) processGroups(all changes.ChangedFiles, groups []config.PatternGroup) (Result, error) {
	var res Result
	for _, g := range groups {
		status, err := o.run("changed-files-yaml-"+g.Name, all, g.Patterns, g.Name)
		if err != nil {
			return Result{}, fmt.Errorf("writing group %s: %w", g.Name, err)
		}
		if status.AnyModified {
			res.ModifiedKeys = append(res.ModifiedKeys, g.Name)
		}
		if status.AnyChanged {
			res.ChangedKeys = append(res.ChangedKeys, g.Name)
		}
	}

	if len(res.ModifiedKeys) > 0 {
		if err := o.out.SetArray("modified_keys", res.ModifiedKeys); err != nil {
			return Result{}, err
		}
	}
	if len(res.ChangedKeys) > 0 {
		if err := o.out.SetArray("changed_keys", res.ChangedKeys); err != nil {
			return Result{}, err
		}
	}
	return res, nil
}

func (o *Orchestrator) run(name string, all changes.ChangedFiles, patterns []string, prefix string) (outputs.Status, error) {
	o.log.Group(name)
	defer o.log.EndGroup()

	filtered := pattern.Filter(all, patterns, o.opts.Platform)
	o.log.Debug("Filtered changed files", "patterns", len(patterns), "files", filtered.Len())

	status, err := o.out.WriteGroup(o.opts, outputs.Group{
		Prefix:    prefix,
		All:       all,
		Filtered:  filtered,
		Patterned: len(patterns) > 0,
	})
	if err != nil {
		return outputs.Status{}, err
	}
	o.log.Info("All Done!")
	return status, nil
}
