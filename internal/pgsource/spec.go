package pgsource

import (
	"fmt"
	"strings"
)

// TableSpec names a Postgres table and its key columns.
type TableSpec struct {
	Schema string   // default "public"
	Name   string
	Key    []string // key column names, may be empty
}

// Source returns the source key used to register the table.
func (s TableSpec) Source() string {
	return "pg:" + s.Schema + "." + s.Name
}

// qualifiedName returns the quoted schema.table identifier.
func (s TableSpec) qualifiedName() string {
	return quoteIdentifier(s.Schema) + "." + quoteIdentifier(s.Name)
}

// ParseTableSpec parses "[schema.]table[:key1+key2]".
//
//	ParseTableSpec("orders:id")            // public.orders keyed by id
//	ParseTableSpec("sales.lines:order+no") // composite key
func ParseTableSpec(s string) (TableSpec, error) {
	s = strings.TrimSpace(s)
	name, keys, _ := strings.Cut(s, ":")

	spec := TableSpec{Schema: "public", Name: name}
	if schema, table, ok := strings.Cut(name, "."); ok {
		spec.Schema, spec.Name = schema, table
	}
	if spec.Schema == "" || spec.Name == "" {
		return TableSpec{}, fmt.Errorf("invalid table spec %q", s)
	}

	if keys != "" {
		for _, k := range strings.Split(keys, "+") {
			k = strings.TrimSpace(k)
			if k == "" {
				return TableSpec{}, fmt.Errorf("invalid table spec %q: empty key column", s)
			}
			spec.Key = append(spec.Key, k)
		}
	}
	return spec, nil
}

// ParseTableSpecs parses a list of table specs.
func ParseTableSpecs(list []string) ([]TableSpec, error) {
	specs := make([]TableSpec, 0, len(list))
	for _, s := range list {
		spec, err := ParseTableSpec(s)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}
