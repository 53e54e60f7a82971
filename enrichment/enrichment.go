// Package enrichment implements the information gathering stage. The
// SpecEnricher derives a tabular data plan from the requirement spec and
// materializes it as JSON artifacts in the session's enrichment directory.
package enrichment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hupe1980/docflow/artifact"
	"github.com/hupe1980/docflow/core"
)

// Options configures the SpecEnricher.
type Options struct {
	// Source labels where table data is read from; recorded on every
	// manifest entry.
	Source string
	// DefaultTable names the fallback table used when the spec lists no
	// sections.
	DefaultTable string
}

// SpecEnricher is a local enrichment provider. It turns the spec's section
// list into a table manifest plus field mappings, writes both (and the
// augmented spec) into outputDir and returns them as the typed result.
// Re-running it overwrites the previous artifacts, so retried invocations
// cannot accumulate duplicates.
type SpecEnricher struct {
	opts Options
}

// NewSpecEnricher creates a local enrichment provider.
func NewSpecEnricher(optFns ...func(o *Options)) *SpecEnricher {
	opts := Options{
		Source:       "local",
		DefaultTable: "document_overview",
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &SpecEnricher{opts: opts}
}

// Run derives the table manifest and field mappings from spec and writes
// tables_manifest.json, mappings.json and the augmented spec.json into
// outputDir.
func (e *SpecEnricher) Run(ctx context.Context, spec map[string]any, outputDir string) (*core.EnrichmentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("enrichment requires a requirement spec")
	}

	sections := sectionNames(spec)
	if len(sections) == 0 {
		sections = []string{e.opts.DefaultTable}
	}

	tables := make([]any, 0, len(sections))
	tableNames := make([]any, 0, len(sections))
	mappings := make(map[string]any, len(sections))
	seen := make(map[string]bool, len(sections))
	for _, section := range sections {
		table := snakeCase(section)
		if table == "" || seen[table] {
			continue
		}
		seen[table] = true
		tables = append(tables, map[string]any{
			"name":    table,
			"section": section,
			"source":  e.opts.Source,
			"columns": []any{"metric", "value", "period"},
		})
		tableNames = append(tableNames, table)
		mappings[table] = map[string]any{
			"metric": "string",
			"value":  "number",
			"period": "string",
		}
	}

	manifest := map[string]any{
		"source": e.opts.Source,
		"tables": tables,
	}

	if err := artifact.WriteJSON(filepath.Join(outputDir, artifact.ManifestFile), manifest); err != nil {
		return nil, err
	}
	if err := artifact.WriteJSON(filepath.Join(outputDir, artifact.MappingsFile), mappings); err != nil {
		return nil, err
	}

	// Augment the staged spec with the derived data plan; the orchestrator
	// reloads spec.json after the run, so the enriched copy becomes the
	// session's spec.
	enriched := make(map[string]any, len(spec)+1)
	for k, v := range spec {
		enriched[k] = v
	}
	enriched["enrichment"] = map[string]any{
		"source": e.opts.Source,
		"tables": tableNames,
	}
	if err := artifact.WriteSpec(outputDir, enriched); err != nil {
		return nil, err
	}

	return &core.EnrichmentResult{
		Status:        "success",
		TableManifest: manifest,
		FieldMappings: mappings,
	}, nil
}

// sectionNames extracts section names from the spec. Entries may be plain
// strings or objects carrying a "name" (or "title") key.
func sectionNames(spec map[string]any) []string {
	raw, ok := spec["sections"].([]any)
	if !ok {
		return nil
	}

	var names []string
	for _, entry := range raw {
		switch v := entry.(type) {
		case string:
			if v != "" {
				names = append(names, v)
			}
		case map[string]any:
			if name, ok := v["name"].(string); ok && name != "" {
				names = append(names, name)
			} else if title, ok := v["title"].(string); ok && title != "" {
				names = append(names, title)
			}
		}
	}
	return names
}

// snakeCase lowercases s and collapses every non-alphanumeric run into a
// single underscore.
func snakeCase(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return b.String()
}
