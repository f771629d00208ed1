// Package app wires a changed-files run: it resolves the change set from a
// local checkout or a hosted API and writes every output.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drewdunne/changedfiles/internal/changes"
	"github.com/drewdunne/changedfiles/internal/config"
	"github.com/drewdunne/changedfiles/internal/event"
	"github.com/drewdunne/changedfiles/internal/filter"
	"github.com/drewdunne/changedfiles/internal/git"
	"github.com/drewdunne/changedfiles/internal/grouping"
	"github.com/drewdunne/changedfiles/internal/localdiff"
	"github.com/drewdunne/changedfiles/internal/logging"
	"github.com/drewdunne/changedfiles/internal/metrics"
	"github.com/drewdunne/changedfiles/internal/outputs"
	"github.com/drewdunne/changedfiles/internal/pathutil"
	"github.com/drewdunne/changedfiles/internal/provider"
)

// GitClient answers the local git queries of a run.
type GitClient interface {
	localdiff.GitClient
	SubmodulePaths(ctx context.Context, dir string) ([]string, error)
}

// ProviderSource hands out the configured hosted provider.
type ProviderSource interface {
	Default() (provider.Provider, error)
}

// App runs one changed-files invocation.
type App struct {
	cfg       *config.Config
	event     *event.Event
	git       GitClient
	providers ProviderSource
	out       *outputs.Writer
	log       logging.Logger
	platform  pathutil.Platform
}

// Option configures an App.
type Option func(*App)

// WithPlatform overrides the detected platform (for testing).
func WithPlatform(p pathutil.Platform) Option {
	return func(a *App) {
		a.platform = p
	}
}

// New creates an App.
func New(cfg *config.Config, ev *event.Event, git GitClient, providers ProviderSource, out *outputs.Writer, log logging.Logger, opts ...Option) *App {
	if log == nil {
		log = logging.Nop()
	}
	a := &App{
		cfg:       cfg,
		event:     ev,
		git:       git,
		providers: providers,
		out:       out,
		log:       log,
		platform:  pathutil.DetectPlatform(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// OutputOptions derives the writer options from cfg.
func OutputOptions(cfg *config.Config) outputs.Options {
	return outputs.Options{
		JSON:             cfg.Output.JSON,
		EscapeJSON:       cfg.Output.EscapeJSON,
		Separator:        cfg.Output.Separator,
		SafeOutput:       cfg.Output.SafeOutput,
		WriteOutputFiles: cfg.Output.WriteOutputFiles,
		OutputDir:        cfg.Output.OutputDir,
	}
}

func (a *App) filterOptions() filter.Options {
	return filter.Options{
		DirNames:                  a.cfg.DirNames.DirNames,
		DirNamesMaxDepth:          a.cfg.DirNames.DirNamesMaxDepth,
		DirNamesExcludeCurrentDir: a.cfg.DirNames.DirNamesExcludeCurrentDir,
		DirNamesIncludeFiles:      a.cfg.DirNamesIncludePatterns(),
		JSON:                      a.cfg.Output.JSON,
		Separator:                 a.cfg.Output.Separator,
		UsePosixPathSeparator:     a.cfg.Output.UsePosixPathSeparator,
		Platform:                  a.platform,
	}
}

// useAPI reports whether the change set comes from the hosted API: it is
// requested or there is no local checkout, and the run is for a pull request.
func (a *App) useAPI() bool {
	if a.event.Type != event.TypePullRequest {
		return false
	}
	if a.cfg.Diff.UseRestAPI {
		return true
	}
	_, err := os.Stat(filepath.Join(a.cfg.Diff.Path, ".git"))
	return err != nil
}

// Run resolves the change set and writes all outputs.
func (a *App) Run(ctx context.Context) error {
	patterns, err := a.cfg.Patterns()
	if err != nil {
		return fmt.Errorf("loading patterns: %w", err)
	}
	groups, err := a.cfg.Groups()
	if err != nil {
		return fmt.Errorf("loading pattern groups: %w", err)
	}

	var src source
	if a.useAPI() {
		src, err = a.apiSource()
	} else {
		src, err = a.localSource(ctx)
	}
	if err != nil {
		return err
	}

	a.log.Info(fmt.Sprintf("Retrieving changes for %s", a.event.Key()))
	all, err := src.changedFiles(ctx)
	if err != nil {
		return err
	}
	a.log.Debug("Changed files", "total", all.Len())

	orch := grouping.New(a.out, a.log, a.filterOptions())
	if _, err := orch.Process(all, patterns, groups); err != nil {
		return fmt.Errorf("writing outputs: %w", err)
	}

	if a.cfg.Output.IncludeAllOldNewRenamedFiles {
		a.log.Group("changed-files-all-old-new-renamed-files")
		renamed, err := src.renamedFiles(ctx)
		a.log.EndGroup()
		if err != nil {
			return fmt.Errorf("listing renamed files: %w", err)
		}
		if err := a.out.SetResult("all_old_new_renamed_files", renamed); err != nil {
			return err
		}
	}

	m := metrics.Get()
	a.log.Debug("Run metrics",
		"diffs", m.DiffsRun,
		"submodules_walked", m.SubmodulesWalked,
		"submodules_skipped", m.SubmodulesSkipped,
		"two_dot_fallbacks", m.TwoDotFallbacks,
		"api_pages", m.APIPagesFetched,
		"files", m.FilesClassified,
	)
	return nil
}

// source produces the change set and rename descriptors for a run.
type source interface {
	changedFiles(ctx context.Context) (changes.ChangedFiles, error)
	renamedFiles(ctx context.Context) (filter.Result, error)
}

func (a *App) localSource(ctx context.Context) (source, error) {
	r, err := a.event.DiffResult(a.cfg.Diff.SHA, a.cfg.Diff.BaseSHA)
	if err != nil {
		return nil, err
	}

	var submodules []string
	if a.cfg.DiffSubmodule() {
		submodules, err = a.git.SubmodulePaths(ctx, a.cfg.Diff.Path)
		if err != nil {
			a.log.Warn(fmt.Sprintf("Unable to list submodules: %v", err))
			submodules = nil
		}
	}

	c := localdiff.New(a.git, a.log, pathutil.NewNormalizer(a.platform), localdiff.Options{
		WorkingDir:                       a.cfg.Diff.Path,
		DiffSubmodule:                    a.cfg.DiffSubmodule(),
		FetchAdditionalSubmoduleHistory:  a.cfg.Diff.FetchAdditionalSubmoduleHistory,
		OutputRenamedFilesAsDeletedAdded: a.cfg.Diff.OutputRenamedFilesAsDeletedAndAdded,
		FailOnInitialDiffError:           a.cfg.Diff.FailOnInitialDiffError,
		FailOnSubmoduleDiffError:         a.cfg.Diff.FailOnSubmoduleDiffError,
		OldNewSeparator:                  a.cfg.Output.OldNewSeparator,
		OldNewFilesSeparator:             a.cfg.Output.OldNewFilesSeparator,
		JSON:                             a.cfg.Output.JSON,
	})
	a.log.Debug("Diffing", "range", r.Range(), "submodules", len(submodules))
	return &gitSource{collector: c, r: r, submodules: submodules}, nil
}

type gitSource struct {
	collector  *localdiff.Collector
	r          git.DiffResult
	submodules []string
}

func (s *gitSource) changedFiles(ctx context.Context) (changes.ChangedFiles, error) {
	return s.collector.AllDiffFiles(ctx, s.r, s.submodules)
}

func (s *gitSource) renamedFiles(ctx context.Context) (filter.Result, error) {
	return s.collector.RenamedFiles(ctx, s.r, s.submodules)
}

type apiSource struct {
	p          provider.Provider
	ev         *event.Event
	expand     bool
	normalizer pathutil.Normalizer
	output     config.OutputConfig
}

func (a *App) apiSource() (source, error) {
	p, err := a.providers.Default()
	if err != nil {
		return nil, err
	}
	a.log.Info(fmt.Sprintf("Using %s API to get changed files", p.Name()))
	return &apiSource{
		p:          p,
		ev:         a.event,
		expand:     a.cfg.Diff.OutputRenamedFilesAsDeletedAndAdded,
		normalizer: pathutil.NewNormalizer(a.platform),
		output:     a.cfg.Output,
	}, nil
}

func (s *apiSource) changedFiles(ctx context.Context) (changes.ChangedFiles, error) {
	return provider.Classify(ctx, s.p, s.ev.RepoOwner, s.ev.RepoName, s.ev.MRNumber, s.expand, s.normalizer)
}

func (s *apiSource) renamedFiles(ctx context.Context) (filter.Result, error) {
	renamed, err := provider.RenamedFiles(ctx, s.p, s.ev.RepoOwner, s.ev.RepoName, s.ev.MRNumber, s.output.OldNewSeparator, s.normalizer)
	if err != nil {
		return filter.Result{}, err
	}
	return filter.Render(filter.Options{JSON: s.output.JSON, Separator: s.output.OldNewFilesSeparator}, renamed), nil
}
