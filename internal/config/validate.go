package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/LukeThoma5/mortar/internal/diagnostic"
	"github.com/LukeThoma5/mortar/internal/openapi"
)

// ValidationResult holds config validation results.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// ValidateDetailed performs thorough config validation with suggestions.
func (c *Config) ValidateDetailed() *ValidationResult {
	result := &ValidationResult{}

	// Input
	switch {
	case c.SwaggerEndpoint == "":
		result.Errors = append(result.Errors, "swaggerEndpoint: required (or set MORTAR_SWAGGER_ENDPOINT)")
	case !openapi.IsRemote(c.SwaggerEndpoint) && strings.Contains(c.SwaggerEndpoint, "://"):
		result.Errors = append(result.Errors,
			fmt.Sprintf("swaggerEndpoint: unsupported scheme in %q, expected http, https or a local path", c.SwaggerEndpoint))
	case !openapi.IsRemote(c.SwaggerEndpoint) && filepath.Ext(c.SwaggerEndpoint) != ".json":
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("swaggerEndpoint: local document %q does not have a .json extension", c.SwaggerEndpoint))
	}

	// Output
	switch {
	case c.OutputDir == "":
		result.Errors = append(result.Errors, "outputDir: required")
	case filepath.IsAbs(c.OutputDir):
		result.Errors = append(result.Errors,
			fmt.Sprintf("outputDir: %q must be relative, the directory is removed and recreated on every run", c.OutputDir))
	case filepath.Clean(c.OutputDir) == ".":
		result.Errors = append(result.Errors, "outputDir: refusing to generate into the working directory itself")
	case strings.HasPrefix(filepath.Clean(c.OutputDir), ".."):
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("outputDir: %q points outside the working directory", c.OutputDir))
	}

	// Generation
	if c.TargetLibrary == "" {
		result.Errors = append(result.Errors, "targetLibrary: must name the module providing apiGet/apiPost/apiPut/apiDelete")
	}
	if c.RuntimeLibrary == "" {
		result.Errors = append(result.Errors, "runtimeLibrary: must name the module providing makeAction")
	}
	for _, ns := range c.BannedNamespaces {
		if _, err := regexp.Compile(ns); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("bannedNamespaces: %q: %v", ns, err))
		}
	}

	// Formatting
	if !isFormatter(c.Formatter) {
		result.Errors = append(result.Errors,
			fmt.Sprintf("formatter: invalid value %q, must be one of %s", c.Formatter, strings.Join(Formatters, ", ")))
	} else if c.NoFormat && c.Formatter != "auto" && c.Formatter != "none" {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("formatter: %q is ignored because noFormat is set", c.Formatter))
	}

	// Watch
	if c.PollInterval <= 0 {
		result.Errors = append(result.Errors, "pollInterval: must be positive")
	}

	return result
}

// IsValid returns true if there are no errors.
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// Report adds the findings to diags, warnings first. subject names the
// config source.
func (r *ValidationResult) Report(diags *diagnostic.Collector, subject string) {
	for _, w := range r.Warnings {
		diags.Warn(diagnostic.CategoryConfigInvalid, subject, w)
	}
	for _, e := range r.Errors {
		diags.Error(diagnostic.CategoryConfigInvalid, subject, e)
	}
}
