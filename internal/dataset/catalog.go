package dataset

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog holds the named domain tables available to a run.
type Catalog struct {
	order   []string
	domains map[string]Domain
}

// DefaultCatalog returns the built-in revenue and promo domains.
func DefaultCatalog() *Catalog {
	c := &Catalog{domains: map[string]Domain{}}
	c.Put(RevenueDomain())
	c.Put(PromoDomain())
	return c
}

// LoadCatalog starts from the built-in domains and applies overrides from a
// YAML file mapping domain name to (partial) domain tables. Keys absent from
// an override keep their built-in values; unknown names add new domains.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read domains file: %w", err)
	}
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse domains file: %w", err)
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		node := raw[name]
		d, ok := c.domains[name]
		if !ok {
			d = Domain{Name: name}
		}
		if err := node.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode domain %q: %w", name, err)
		}
		if d.Name == "" {
			d.Name = name
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		c.Put(d)
	}
	return c, nil
}

// Put adds or replaces a domain, keeping first-insertion order.
func (c *Catalog) Put(d Domain) {
	if _, ok := c.domains[d.Name]; !ok {
		c.order = append(c.order, d.Name)
	}
	c.domains[d.Name] = d
}

// Get returns the named domain.
func (c *Catalog) Get(name string) (Domain, error) {
	d, ok := c.domains[name]
	if !ok {
		return Domain{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownDomain, name, c.order)
	}
	return d, nil
}

// Names lists domains in catalog order.
func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}
