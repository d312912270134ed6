package catalog

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"askdata/internal/domain"
)

//go:embed catalog.yaml
var embeddedDefinition embed.FS

// definition mirrors the on-disk YAML shape of a catalog file.
type definition struct {
	Version    string `yaml:"version"`
	Table      string `yaml:"table"`
	TimeColumn string `yaml:"time_column"`
	Dimensions []struct {
		Key        string `yaml:"key"`
		Label      string `yaml:"label"`
		Expr       string `yaml:"expr"`
		Filterable bool   `yaml:"filterable"`
	} `yaml:"dimensions"`
	Metrics []struct {
		Key   string `yaml:"key"`
		Label string `yaml:"label"`
		Expr  string `yaml:"expr"`
	} `yaml:"metrics"`
	Synonyms map[string]string `yaml:"synonyms"`
}

// Load reads a catalog definition from path. An empty path loads the
// embedded default definition.
func Load(path string) (*Catalog, error) {
	var raw []byte
	var err error
	if path == "" {
		raw, err = embeddedDefinition.ReadFile("catalog.yaml")
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog definition: %w", err)
	}
	return Parse(raw)
}

// Parse builds an immutable Catalog from YAML bytes, rejecting definitions
// that could weaken the whitelist (duplicate keys, empty expressions,
// synonyms pointing at non-existent keys).
func Parse(raw []byte) (*Catalog, error) {
	var def definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse catalog definition: %w", err)
	}

	if strings.TrimSpace(def.Version) == "" {
		return nil, fmt.Errorf("catalog definition: version is required")
	}
	if strings.TrimSpace(def.Table) == "" {
		return nil, fmt.Errorf("catalog definition: table is required")
	}
	if strings.TrimSpace(def.TimeColumn) == "" {
		return nil, fmt.Errorf("catalog definition: time_column is required")
	}
	if len(def.Dimensions) == 0 || len(def.Metrics) == 0 {
		return nil, fmt.Errorf("catalog definition: at least one dimension and one metric are required")
	}

	c := &Catalog{
		version:    def.Version,
		table:      def.Table,
		timeColumn: def.TimeColumn,
		dims:       make(map[string]domain.CatalogEntry, len(def.Dimensions)),
		metrics:    make(map[string]domain.CatalogEntry, len(def.Metrics)),
		synonyms:   make(map[string]string, len(def.Synonyms)),
	}

	for _, d := range def.Dimensions {
		key := strings.ToLower(strings.TrimSpace(d.Key))
		if key == "" {
			return nil, fmt.Errorf("catalog definition: dimension with empty key")
		}
		if strings.TrimSpace(d.Expr) == "" {
			return nil, fmt.Errorf("catalog definition: dimension %q has empty expression", key)
		}
		if _, dup := c.dims[key]; dup {
			return nil, fmt.Errorf("catalog definition: duplicate dimension %q", key)
		}
		c.dims[key] = domain.CatalogEntry{
			Key:        key,
			Expr:       d.Expr,
			Label:      d.Label,
			Type:       domain.EntryDimension,
			Filterable: d.Filterable,
		}
		c.dimOrder = append(c.dimOrder, key)
	}

	for _, m := range def.Metrics {
		key := strings.ToLower(strings.TrimSpace(m.Key))
		if key == "" {
			return nil, fmt.Errorf("catalog definition: metric with empty key")
		}
		if strings.TrimSpace(m.Expr) == "" {
			return nil, fmt.Errorf("catalog definition: metric %q has empty expression", key)
		}
		if _, dup := c.dims[key]; dup {
			return nil, fmt.Errorf("catalog definition: key %q is both dimension and metric", key)
		}
		if _, dup := c.metrics[key]; dup {
			return nil, fmt.Errorf("catalog definition: duplicate metric %q", key)
		}
		c.metrics[key] = domain.CatalogEntry{
			Key:   key,
			Expr:  m.Expr,
			Label: m.Label,
			Type:  domain.EntryMetric,
		}
		c.metricOrder = append(c.metricOrder, key)
	}

	for phrase, target := range def.Synonyms {
		phrase = strings.ToLower(strings.TrimSpace(phrase))
		target = strings.ToLower(strings.TrimSpace(target))
		if _, ok := c.dims[target]; !ok {
			if _, ok := c.metrics[target]; !ok {
				return nil, fmt.Errorf("catalog definition: synonym %q points at unknown key %q", phrase, target)
			}
		}
		c.synonyms[phrase] = target
	}

	return c, nil
}
