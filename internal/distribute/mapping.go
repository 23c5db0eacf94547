// Copyright (c) 2025 Dsbench
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package distribute rewrites standard single-database SQL queries into
// federated, multi-catalog queries. Every bare table reference is replaced
// by its catalog-qualified form according to an externally supplied mapping;
// nothing else in the query text changes.
package distribute

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy controls what happens to a table reference with no mapping entry.
type Policy string

const (
	// PolicyError fails the query file (the default).
	PolicyError Policy = "error"
	// PolicyKeep leaves the reference unqualified.
	PolicyKeep Policy = "keep"
)

// Entry maps one logical table name to its federated qualifier.
type Entry struct {
	Table   string `yaml:"table" json:"table"`
	Catalog string `yaml:"catalog" json:"catalog"`
	Schema  string `yaml:"schema" json:"schema"`
}

// Qualifier returns the prefix to put in front of the table name:
// "catalog.schema", or just "catalog" when no schema is configured.
func (e Entry) Qualifier() string {
	if e.Schema == "" {
		return e.Catalog
	}
	return e.Catalog + "." + e.Schema
}

// Mapping is the validated, read-only table mapping shared by all workers.
type Mapping struct {
	entries map[string]Entry
	order   []string
	policy  Policy
}

// mappingDoc is the on-disk shape of a mapping file.
type mappingDoc struct {
	OnUnmapped string  `yaml:"on_unmapped" json:"on_unmapped"`
	Tables     []Entry `yaml:"tables" json:"tables"`
}

// NewMapping validates entries and builds a Mapping. Duplicate table names
// and empty table/catalog fields are configuration errors.
func NewMapping(entries []Entry, policy Policy) (*Mapping, error) {
	switch policy {
	case PolicyError, PolicyKeep:
	case "":
		policy = PolicyError
	default:
		return nil, &ConfigurationError{Msg: fmt.Sprintf("unknown on_unmapped policy %q", policy)}
	}
	m := &Mapping{
		entries: make(map[string]Entry, len(entries)),
		policy:  policy,
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Table) == "" {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("entry %d: empty table name", i+1)}
		}
		if strings.TrimSpace(e.Catalog) == "" {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("entry %d (%s): empty catalog", i+1, e.Table)}
		}
		key := strings.ToLower(e.Table)
		if _, dup := m.entries[key]; dup {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("duplicate mapping entry for table %q", e.Table)}
		}
		m.entries[key] = e
		m.order = append(m.order, key)
	}
	return m, nil
}

// LoadMapping reads a mapping document from path. YAML and JSON are
// supported, chosen by file extension (.yaml/.yml vs anything else).
func LoadMapping(path string) (*Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Msg: err.Error()}
	}
	var doc mappingDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("%s: %v", path, err)}
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &ConfigurationError{Msg: fmt.Sprintf("%s: %v", path, err)}
		}
	}
	if len(doc.Tables) == 0 {
		return nil, &ConfigurationError{Msg: fmt.Sprintf("%s: no table entries", path)}
	}
	return NewMapping(doc.Tables, Policy(doc.OnUnmapped))
}

// Lookup resolves a logical table name (case-insensitive).
func (m *Mapping) Lookup(table string) (Entry, bool) {
	e, ok := m.entries[strings.ToLower(table)]
	return e, ok
}

// Policy returns the configured unmapped-table policy.
func (m *Mapping) Policy() Policy { return m.policy }

// Len returns the number of mapping entries.
func (m *Mapping) Len() int { return len(m.entries) }
