package emit

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Formatter rewrites one generated unit. path is where the unit will be
// written and lets the formatter pick up per-directory settings.
type Formatter interface {
	Format(ctx context.Context, path string, src []byte) ([]byte, error)
}

// NopFormatter returns sources unchanged.
type NopFormatter struct{}

func (NopFormatter) Format(_ context.Context, _ string, src []byte) ([]byte, error) {
	return src, nil
}

// CommandFormatter pipes each unit through an external program. Args may
// contain {path}, replaced by the unit's destination path.
type CommandFormatter struct {
	Name    string
	Dir     string // working directory, where the formatter config was found
	Program string
	Args    []string
}

func (f *CommandFormatter) Format(ctx context.Context, path string, src []byte) ([]byte, error) {
	args := make([]string, len(f.Args))
	for i, a := range f.Args {
		args[i] = strings.ReplaceAll(a, "{path}", path)
	}
	cmd := exec.CommandContext(ctx, f.Program, args...)
	cmd.Dir = f.Dir
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", f.Name, err, msg)
	}
	return stdout.Bytes(), nil
}

type formatterSpec struct {
	name    string
	configs []string
	args    []string
}

var knownFormatters = []formatterSpec{
	{
		name:    "prettier",
		configs: []string{".prettierrc", ".prettierrc.json", ".prettierrc.js", ".prettierrc.cjs", ".prettierrc.mjs", ".prettierrc.yml", ".prettierrc.yaml", ".prettierrc.toml", "prettier.config.js", "prettier.config.cjs", "prettier.config.mjs"},
		args:    []string{"prettier", "--stdin-filepath", "{path}"},
	},
	{
		name:    "biome",
		configs: []string{"biome.json", "biome.jsonc"},
		args:    []string{"@biomejs/biome", "format", "--stdin-file-path={path}"},
	},
	{
		name:    "dprint",
		configs: []string{"dprint.json", ".dprint.json", "dprint.jsonc", ".dprint.jsonc"},
		args:    []string{"dprint", "fmt", "--stdin", "{path}"},
	},
}

// DetectFormatter walks up from dir looking for formatter config files. It
// returns the formatter name and the directory holding its config, or two
// empty strings.
func DetectFormatter(dir string) (name, rootDir string) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", ""
	}
	for {
		for _, kf := range knownFormatters {
			for _, cfg := range kf.configs {
				if _, err := os.Stat(filepath.Join(dir, cfg)); err == nil {
					return kf.name, dir
				}
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ""
		}
		dir = parent
	}
}

// NewFormatter returns the formatter for choice ("auto", "none" or a
// formatter name). "auto" falls back to NopFormatter when no config is found;
// an explicit name runs from the directory of its config, or from the working
// directory.
func NewFormatter(choice, outputDir string) (Formatter, error) {
	switch choice {
	case "none":
		return NopFormatter{}, nil
	case "auto", "":
		name, root := DetectFormatter(outputDir)
		if name == "" {
			return NopFormatter{}, nil
		}
		return commandFormatter(name, root)
	}

	root := ""
	if name, dir := DetectFormatter(outputDir); name == choice {
		root = dir
	}
	return commandFormatter(choice, root)
}

func commandFormatter(name, dir string) (*CommandFormatter, error) {
	for _, kf := range knownFormatters {
		if kf.name == name {
			return &CommandFormatter{
				Name:    name,
				Dir:     dir,
				Program: "npx",
				Args:    append([]string{"--no-install"}, kf.args...),
			}, nil
		}
	}
	return nil, fmt.Errorf("unknown formatter %q", name)
}
