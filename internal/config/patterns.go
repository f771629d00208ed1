package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PatternGroup is a named pattern list from files_yaml.
type PatternGroup struct {
	Name     string
	Patterns []string
}

// Patterns returns the flat pattern list: files and files_from_source_file
// as-is, then files_ignore and files_ignore_from_source_file negated with
// "!". Source files are read relative to the working directory.
func (c *Config) Patterns() ([]string, error) {
	patterns := splitPatterns(c.Files.Files, c.Files.FilesSeparator, false)

	fromFile, err := readPatternFiles(c.Files.FilesFromSourceFile, c.Files.FilesFromSourceFileSeparator, false)
	if err != nil {
		return nil, err
	}
	patterns = append(patterns, fromFile...)

	patterns = append(patterns, splitPatterns(c.Files.FilesIgnore, c.Files.FilesIgnoreSeparator, true)...)

	ignoreFromFile, err := readPatternFiles(c.Files.FilesIgnoreFromSourceFile, c.Files.FilesIgnoreFromSourceFileSeparator, true)
	if err != nil {
		return nil, err
	}
	return append(patterns, ignoreFromFile...), nil
}

// DirNamesIncludePatterns returns the dir_names_include_files pattern list.
func (c *Config) DirNamesIncludePatterns() []string {
	return splitPatterns(c.DirNames.DirNamesIncludeFiles, c.DirNames.DirNamesIncludeFilesSeparator, false)
}

// Groups parses files_yaml and files_ignore_yaml into pattern groups.
func (c *Config) Groups() ([]PatternGroup, error) {
	return ParseGroups(c.Files.FilesYAML, c.Files.FilesIgnoreYAML)
}

// ParseGroups parses a YAML mapping of group name to patterns. Values may
// be a newline separated string or a list, nested lists are flattened.
// Groups keep document order. Patterns from ignore are negated and appended
// to the group of the same name, creating it if needed.
func ParseGroups(files, ignore string) ([]PatternGroup, error) {
	groups, err := parseGroupYAML(files, false)
	if err != nil {
		return nil, fmt.Errorf("parsing files_yaml: %w", err)
	}
	ignored, err := parseGroupYAML(ignore, true)
	if err != nil {
		return nil, fmt.Errorf("parsing files_ignore_yaml: %w", err)
	}

	for _, ig := range ignored {
		found := false
		for i := range groups {
			if groups[i].Name == ig.Name {
				groups[i].Patterns = append(groups[i].Patterns, ig.Patterns...)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, ig)
		}
	}
	return groups, nil
}

func parseGroupYAML(text string, negate bool) ([]PatternGroup, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of group names to patterns", root.Line)
	}

	var groups []PatternGroup
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		var raw []string
		if err := flatten(value, &raw); err != nil {
			return nil, fmt.Errorf("group %s: %w", key.Value, err)
		}

		var patterns []string
		for _, r := range raw {
			patterns = append(patterns, splitPatterns(r, "\n", negate)...)
		}
		groups = append(groups, PatternGroup{Name: key.Value, Patterns: patterns})
	}
	return groups, nil
}

func flatten(n *yaml.Node, out *[]string) error {
	switch n.Kind {
	case yaml.ScalarNode:
		*out = append(*out, n.Value)
	case yaml.SequenceNode:
		for _, c := range n.Content {
			if err := flatten(c, out); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		return flatten(n.Alias, out)
	default:
		return fmt.Errorf("line %d: patterns must be a string or a list", n.Line)
	}
	return nil
}

// splitPatterns splits text on sep, trims entries, drops blanks, expands a
// trailing "/" to "/**" and optionally prefixes "!".
func splitPatterns(text, sep string, negate bool) []string {
	if sep == "" {
		sep = "\n"
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var out []string
	for _, p := range strings.Split(text, sep) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		if negate && !strings.HasPrefix(p, "!") {
			p = "!" + p
		}
		out = append(out, p)
	}
	return out
}

// readPatternFiles reads patterns from each newline separated path in paths.
func readPatternFiles(paths, sep string, negate bool) ([]string, error) {
	var out []string
	for _, path := range strings.Split(paths, "\n") {
		if path = strings.TrimSpace(path); path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading pattern source file: %w", err)
		}
		out = append(out, splitPatterns(string(data), sep, negate)...)
	}
	return out, nil
}
