package sdkgen

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

// Options controls generation.
type Options struct {
	// TargetLibrary provides apiGet, apiPost, apiPut, apiDelete and
	// ApiRequestOptions.
	TargetLibrary string
	// RuntimeLibrary provides makeAction and makeFormData, relative to the
	// endpoints directory.
	RuntimeLibrary string
	// StrictNullability marks query parameters as "| null".
	StrictNullability bool
	// BannedNamespaces are regular expression fragments matched against
	// namespace group paths.
	BannedNamespaces []string
	// EndpointsOnly emits path factories and parameter shapes instead of
	// action wrappers.
	EndpointsOnly bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		TargetLibrary:  "@redriver/cinnamon-mui",
		RuntimeLibrary: "../lib",
	}
}

// Output holds every generated unit.
type Output struct {
	Modules   map[string]string // module name -> source
	TypeFiles []TypeFile        // sorted by path
}

// GenerateDocument parses doc and generates its sources.
func GenerateDocument(ctx context.Context, doc *openapi.Document, opts Options, diags *diagnostic.Collector) (*Model, *Output, error) {
	model, err := Parse(doc, diags)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing: %w", err)
	}
	out, err := Generate(ctx, model, opts, diags)
	if err != nil {
		return model, nil, err
	}
	return model, out, nil
}

// Generate renders every module and namespace unit of model. Units are built
// concurrently; the result does not depend on scheduling.
func Generate(ctx context.Context, model *Model, opts Options, diags *diagnostic.Collector) (*Output, error) {
	r := NewResolver(model.Schemas, diags)

	all := model.Schemas.All()
	groups := groupByNamespace(all)
	if err := validateNamespaces(groups, all, opts.BannedNamespaces); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(groups))
	for p := range groups {
		paths = append(paths, p)
	}
	slices.Sort(paths)

	moduleSources := make([]string, len(model.Modules))
	typeFiles := make([]TypeFile, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, m := range model.Modules {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var src string
			var err error
			if opts.EndpointsOnly {
				src, err = generateRequests(m, r, opts)
			} else {
				src, err = generateActions(m, r, opts)
			}
			if err != nil {
				return err
			}
			moduleSources[i] = src
			return nil
		})
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tf, err := generateTypeFile(p, groups[p], r)
			if err != nil {
				return err
			}
			typeFiles[i] = tf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Output{Modules: make(map[string]string, len(model.Modules)), TypeFiles: typeFiles}
	for i, m := range model.Modules {
		out.Modules[m.Name] = moduleSources[i]
	}
	return out, nil
}
