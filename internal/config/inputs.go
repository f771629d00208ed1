package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// input binds an action input name to a Config field.
type input struct {
	name  string
	field any
}

func (c *Config) inputs() []input {
	return []input{
		{"files", &c.Files.Files},
		{"files_separator", &c.Files.FilesSeparator},
		{"files_from_source_file", &c.Files.FilesFromSourceFile},
		{"files_from_source_file_separator", &c.Files.FilesFromSourceFileSeparator},
		{"files_ignore", &c.Files.FilesIgnore},
		{"files_ignore_separator", &c.Files.FilesIgnoreSeparator},
		{"files_ignore_from_source_file", &c.Files.FilesIgnoreFromSourceFile},
		{"files_ignore_from_source_file_separator", &c.Files.FilesIgnoreFromSourceFileSeparator},
		{"files_yaml", &c.Files.FilesYAML},
		{"files_ignore_yaml", &c.Files.FilesIgnoreYAML},

		{"separator", &c.Output.Separator},
		{"json", &c.Output.JSON},
		{"escape_json", &c.Output.EscapeJSON},
		{"safe_output", &c.Output.SafeOutput},
		{"write_output_files", &c.Output.WriteOutputFiles},
		{"output_dir", &c.Output.OutputDir},
		{"use_posix_path_separator", &c.Output.UsePosixPathSeparator},
		{"include_all_old_new_renamed_files", &c.Output.IncludeAllOldNewRenamedFiles},
		{"old_new_separator", &c.Output.OldNewSeparator},
		{"old_new_files_separator", &c.Output.OldNewFilesSeparator},

		{"dir_names", &c.DirNames.DirNames},
		{"dir_names_max_depth", &c.DirNames.DirNamesMaxDepth},
		{"dir_names_exclude_current_dir", &c.DirNames.DirNamesExcludeCurrentDir},
		{"dir_names_include_files", &c.DirNames.DirNamesIncludeFiles},
		{"dir_names_include_files_separator", &c.DirNames.DirNamesIncludeFilesSeparator},

		{"path", &c.Diff.Path},
		{"sha", &c.Diff.SHA},
		{"base_sha", &c.Diff.BaseSHA},
		{"use_rest_api", &c.Diff.UseRestAPI},
		{"exclude_submodules", &c.Diff.ExcludeSubmodules},
		{"fetch_additional_submodule_history", &c.Diff.FetchAdditionalSubmoduleHistory},
		{"output_renamed_files_as_deleted_and_added", &c.Diff.OutputRenamedFilesAsDeletedAndAdded},
		{"fail_on_initial_diff_error", &c.Diff.FailOnInitialDiffError},
		{"fail_on_submodule_diff_error", &c.Diff.FailOnSubmoduleDiffError},

		{"provider", &c.Providers.Default},
		{"token", &c.Providers.GitHub.Token},
		{"api_url", &c.Providers.GitHub.APIURL},
		{"gitlab_token", &c.Providers.GitLab.Token},
		{"gitlab_url", &c.Providers.GitLab.BaseURL},

		{"log_format", &c.Logging.Format},
		{"log_level", &c.Logging.Level},
	}
}

// InputNames returns every recognised input name.
func InputNames() []string {
	var names []string
	for _, in := range DefaultConfig().inputs() {
		names = append(names, in.name)
	}
	return names
}

// RegisterFlags adds a flag for every input, named with hyphens
// (dir_names_max_depth becomes --dir-names-max-depth).
func RegisterFlags(flags *pflag.FlagSet) {
	for _, in := range DefaultConfig().inputs() {
		name := strings.ReplaceAll(in.name, "_", "-")
		usage := "overrides the " + in.name + " input"
		switch field := in.field.(type) {
		case *string:
			flags.String(name, *field, usage)
		case *bool:
			flags.Bool(name, *field, usage)
		case *int:
			flags.Int(name, *field, usage)
		}
	}
}

// NewViper returns a viper instance reading INPUT_<NAME> environment
// variables and, when flags is non-nil, the matching command-line flags.
func NewViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("INPUT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	for _, name := range InputNames() {
		if err := v.BindEnv(name); err != nil {
			return nil, fmt.Errorf("binding input %s: %w", name, err)
		}
		if flags == nil {
			continue
		}
		if f := flags.Lookup(strings.ReplaceAll(name, "_", "-")); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return nil, fmt.Errorf("binding flag %s: %w", f.Name, err)
			}
		}
	}
	return v, nil
}

// ApplyInputs overlays every input set in v onto cfg. Empty values are
// treated as unset, matching how the runner passes omitted inputs.
func ApplyInputs(cfg *Config, v *viper.Viper) error {
	for _, in := range cfg.inputs() {
		if !v.IsSet(in.name) {
			continue
		}
		raw := v.GetString(in.name)
		if raw == "" {
			continue
		}

		switch field := in.field.(type) {
		case *string:
			*field = raw
		case *bool:
			b, err := parseBool(raw)
			if err != nil {
				return fmt.Errorf("parsing input %s: %w", in.name, err)
			}
			*field = b
		case *int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("parsing input %s: %w", in.name, err)
			}
			*field = n
		}
	}
	return nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}
