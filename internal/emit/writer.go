// Package emit writes generated units to the output directory.
package emit

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/LukeThoma5/mortar/internal/sdkgen"
)

//go:embed lib.ts
var runtimeLib []byte

// RuntimeFile is the name of the embedded runtime under the output root.
const RuntimeFile = "lib.ts"

// ErrAbsoluteOutput is returned for an output directory that is not relative.
var ErrAbsoluteOutput = errors.New("output directory must be relative")

var (
	// ErrUnsafePath is returned for a unit whose path leaves the output root.
	ErrUnsafePath = errors.New("unsafe output path")
	// ErrPathConflict is returned when two units map to the same file.
	ErrPathConflict = errors.New("conflicting output path")
)

// Writer lays generated units out under Root:
//
//	lib.ts
//	endpoints/<Module>.ts
//	<Namespace>/<...>.ts
type Writer struct {
	Root      string
	Formatter Formatter
	Logger    zerolog.Logger

	// Clean removes Root before writing. Otherwise unchanged files are left
	// untouched and stale .ts files are removed.
	Clean bool
}

// Result lists what a Write produced.
type Result struct {
	Files     []string // paths relative to Root, sorted
	Written   int
	Unchanged int
	Removed   int
}

// Paths returns the produced files joined with root.
func (r *Result) Paths(root string) []string {
	out := make([]string, len(r.Files))
	for i, f := range r.Files {
		out[i] = filepath.Join(root, f)
	}
	return out
}

type unit struct {
	name string // module name or namespace path, for errors
	rel  string
	src  []byte
}

// layout maps generated output to file paths relative to the output root.
// Every path must stay under the root and belong to exactly one unit.
func layout(out *sdkgen.Output) ([]unit, error) {
	units := []unit{{name: "runtime", rel: RuntimeFile, src: runtimeLib}}
	modules := make([]string, 0, len(out.Modules))
	for name := range out.Modules {
		modules = append(modules, name)
	}
	slices.Sort(modules)
	for _, name := range modules {
		units = append(units, unit{
			name: name,
			rel:  filepath.Join("endpoints", filepath.FromSlash(name)+".ts"),
			src:  []byte(out.Modules[name]),
		})
	}
	for _, tf := range out.TypeFiles {
		rel := strings.TrimPrefix(tf.Path, "mortar/")
		units = append(units, unit{
			name: tf.Path,
			rel:  filepath.FromSlash(rel) + ".ts",
			src:  []byte(tf.Source),
		})
	}

	owners := make(map[string]string, len(units))
	for i := range units {
		u := &units[i]
		u.rel = filepath.Clean(u.rel)
		if err := checkRelative(u.rel); err != nil {
			return nil, fmt.Errorf("%s: %w", u.name, err)
		}
		if prev, dup := owners[u.rel]; dup {
			return nil, fmt.Errorf("%w: %s and %s both map to %s", ErrPathConflict, prev, u.name, filepath.ToSlash(u.rel))
		}
		owners[u.rel] = u.name
	}
	return units, nil
}

// checkRelative rejects paths that would leave the output root or that have
// no file name.
func checkRelative(rel string) error {
	switch {
	case filepath.IsAbs(rel), filepath.VolumeName(rel) != "":
		return fmt.Errorf("%w: %s is absolute", ErrUnsafePath, rel)
	case rel == "..", strings.HasPrefix(rel, ".."+string(filepath.Separator)):
		return fmt.Errorf("%w: %s is outside the output directory", ErrUnsafePath, filepath.ToSlash(rel))
	case filepath.Base(rel) == ".ts":
		return fmt.Errorf("%w: %s has an empty name", ErrUnsafePath, filepath.ToSlash(rel))
	}
	return nil
}

// Write formats every unit and writes it to disk. A formatter failure aborts
// before anything is written.
func (w *Writer) Write(ctx context.Context, out *sdkgen.Output) (*Result, error) {
	if filepath.IsAbs(w.Root) {
		return nil, fmt.Errorf("%w: %s", ErrAbsoluteOutput, w.Root)
	}
	formatter := w.Formatter
	if formatter == nil {
		formatter = NopFormatter{}
	}

	units, err := layout(out)
	if err != nil {
		return nil, err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range units {
		if units[i].rel == RuntimeFile {
			continue
		}
		g.Go(func() error {
			u := &units[i]
			src, err := formatter.Format(gctx, filepath.Join(w.Root, u.rel), u.src)
			if err != nil {
				return fmt.Errorf("formatting %s: %w", u.name, err)
			}
			u.src = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if w.Clean {
		if err := os.RemoveAll(w.Root); err != nil {
			return nil, fmt.Errorf("cleaning %s: %w", w.Root, err)
		}
	}

	result := &Result{}
	keep := make(map[string]bool, len(units))
	for _, u := range units {
		path := filepath.Join(w.Root, u.rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
		}
		changed, err := writeFile(path, u.src)
		if err != nil {
			return nil, err
		}
		if changed {
			result.Written++
			w.Logger.Debug().Str("file", path).Msg("wrote")
		} else {
			result.Unchanged++
		}
		keep[u.rel] = true
		result.Files = append(result.Files, u.rel)
	}
	slices.Sort(result.Files)

	if !w.Clean {
		removed, err := removeStale(w.Root, keep)
		if err != nil {
			return nil, err
		}
		result.Removed = removed
	}
	return result, nil
}

// writeFile skips writing when the file already has identical content, so
// downstream watchers are not triggered. It reports whether it wrote.
func writeFile(path string, content []byte) (bool, error) {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == string(content) {
		return false, nil
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return false, fmt.Errorf("writing %s: %w", path, err)
	}
	return true, nil
}

// removeStale deletes .ts files under root that the current run did not
// produce, then any directories left empty.
func removeStale(root string, keep map[string]bool) (int, error) {
	removed := 0
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if rel != "." {
				dirs = append(dirs, path)
			}
			return nil
		}
		if filepath.Ext(path) != ".ts" || keep[rel] {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
		removed++
		return nil
	})
	if err != nil {
		return removed, err
	}
	// Deepest first so parents empty out after their children.
	slices.SortFunc(dirs, func(a, b string) int { return len(b) - len(a) })
	for _, dir := range dirs {
		if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
			os.Remove(dir)
		}
	}
	return removed, nil
}
