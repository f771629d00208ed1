package config

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config represents a changed-files run configuration. Field names follow
// the action input names so a YAML file and INPUT_* variables share keys.
type Config struct {
	Files     FilesConfig     `yaml:",inline"`
	Output    OutputConfig    `yaml:",inline"`
	DirNames  DirNamesConfig  `yaml:",inline"`
	Diff      DiffConfig      `yaml:",inline"`
	Providers ProvidersConfig `yaml:"providers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// FilesConfig holds the pattern inputs.
type FilesConfig struct {
	Files                              string `yaml:"files"`
	FilesSeparator                     string `yaml:"files_separator"`
	FilesFromSourceFile                string `yaml:"files_from_source_file"`
	FilesFromSourceFileSeparator       string `yaml:"files_from_source_file_separator"`
	FilesIgnore                        string `yaml:"files_ignore"`
	FilesIgnoreSeparator               string `yaml:"files_ignore_separator"`
	FilesIgnoreFromSourceFile          string `yaml:"files_ignore_from_source_file"`
	FilesIgnoreFromSourceFileSeparator string `yaml:"files_ignore_from_source_file_separator"`
	FilesYAML                          string `yaml:"files_yaml"`
	FilesIgnoreYAML                    string `yaml:"files_ignore_yaml"`
}

// OutputConfig controls how outputs are rendered and where they go.
type OutputConfig struct {
	Separator                    string `yaml:"separator"`
	JSON                         bool   `yaml:"json"`
	EscapeJSON                   bool   `yaml:"escape_json"`
	SafeOutput                   bool   `yaml:"safe_output"`
	WriteOutputFiles             bool   `yaml:"write_output_files"`
	OutputDir                    string `yaml:"output_dir"`
	UsePosixPathSeparator        bool   `yaml:"use_posix_path_separator"`
	IncludeAllOldNewRenamedFiles bool   `yaml:"include_all_old_new_renamed_files"`
	OldNewSeparator              string `yaml:"old_new_separator"`
	OldNewFilesSeparator         string `yaml:"old_new_files_separator"`
}

// DirNamesConfig controls directory-name output mode.
type DirNamesConfig struct {
	DirNames                      bool   `yaml:"dir_names"`
	DirNamesMaxDepth              int    `yaml:"dir_names_max_depth"`
	DirNamesExcludeCurrentDir     bool   `yaml:"dir_names_exclude_current_dir"`
	DirNamesIncludeFiles          string `yaml:"dir_names_include_files"`
	DirNamesIncludeFilesSeparator string `yaml:"dir_names_include_files_separator"`
}

// DiffConfig selects the revision range and diff policies.
type DiffConfig struct {
	Path                                string `yaml:"path"`
	SHA                                 string `yaml:"sha"`
	BaseSHA                             string `yaml:"base_sha"`
	UseRestAPI                          bool   `yaml:"use_rest_api"`
	ExcludeSubmodules                   bool   `yaml:"exclude_submodules"`
	FetchAdditionalSubmoduleHistory     bool   `yaml:"fetch_additional_submodule_history"`
	OutputRenamedFilesAsDeletedAndAdded bool   `yaml:"output_renamed_files_as_deleted_and_added"`
	FailOnInitialDiffError              bool   `yaml:"fail_on_initial_diff_error"`
	FailOnSubmoduleDiffError            bool   `yaml:"fail_on_submodule_diff_error"`
}

// ProvidersConfig holds hosting provider settings for the REST API source.
type ProvidersConfig struct {
	// Default names the provider used for API listing: github or gitlab.
	Default string       `yaml:"default"`
	GitHub  GitHubConfig `yaml:"github"`
	GitLab  GitLabConfig `yaml:"gitlab"`
}

// GitHubConfig holds GitHub-specific settings.
type GitHubConfig struct {
	Token  string `yaml:"token"`
	APIURL string `yaml:"api_url"`
}

// GitLabConfig holds GitLab-specific settings.
type GitLabConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Format is "actions" for workflow commands or "text" for slog output.
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Files: FilesConfig{
			FilesSeparator:                     "\n",
			FilesFromSourceFileSeparator:       "\n",
			FilesIgnoreSeparator:               "\n",
			FilesIgnoreFromSourceFileSeparator: "\n",
		},
		Output: OutputConfig{
			Separator:            " ",
			EscapeJSON:           true,
			OutputDir:            ".github/outputs",
			OldNewSeparator:      ",",
			OldNewFilesSeparator: " ",
		},
		DirNames: DirNamesConfig{
			DirNamesIncludeFilesSeparator: "\n",
		},
		Diff: DiffConfig{
			Path: ".",
		},
		Providers: ProvidersConfig{
			Default: "github",
			GitHub: GitHubConfig{
				APIURL: "https://api.github.com",
			},
			GitLab: GitLabConfig{
				BaseURL: "https://gitlab.com/api/v4",
			},
		},
		Logging: LoggingConfig{
			Format: "actions",
			Level:  "info",
		},
	}
}

// Load reads and parses the config file at the given path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Substitute environment variables
	data = envVarPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		varName := envVarPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(varName)))
	})

	// Start with defaults
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// DiffSubmodule reports whether submodules are walked.
func (c *Config) DiffSubmodule() bool {
	return !c.Diff.ExcludeSubmodules
}
