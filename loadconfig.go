package autocompare

import (
	"fmt"
	"io"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// Config is a declarative set of comparison rules, keyed by struct type name
//
//	types:
//	  Consumer:
//	    ignore: [DateOfBirth]
//	    match:
//	      Orders: {key: ID, default: "0"}
type Config struct {
	Types map[string]TypeRules `yaml:"types"`
}

// TypeRules are the rules for a single type
type TypeRules struct {
	Ignore []string             `yaml:"ignore"`
	Match  map[string]MatchRule `yaml:"match"`
}

// MatchRule matches a sequence member's elements by a key field. Default is
// decoded as YAML into the key field's type, when empty the field's zero
// value is the default key
type MatchRule struct {
	Key     string `yaml:"key"`
	Default string `yaml:"default"`
}

// LoadConfig decodes rules from YAML
func LoadConfig(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// ApplyConfig registers cfg's rules with the engine. Type names are resolved
// against the struct types of samples, which may be values or pointers.
// Naming a type that isn't among samples is a ConfigurationError
func (e *Engine) ApplyConfig(cfg *Config, samples ...interface{}) error {
	if cfg == nil {
		return nil
	}

	types := map[string]reflect.Type{}
	for _, s := range samples {
		t := reflect.TypeOf(s)
		for t != nil && t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t == nil || t.Kind() != reflect.Struct {
			return &UnsupportedTypeError{Type: t}
		}
		types[t.Name()] = t
	}

	names := make([]string, 0, len(cfg.Types))
	for name := range cfg.Types {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		t, ok := types[name]
		if !ok {
			return &ConfigurationError{Reason: fmt.Sprintf("config names unknown type %q", name)}
		}
		rules := cfg.Types[name]
		for member, rule := range rules.Match {
			if rule.Key == "" {
				return &ConfigurationError{Type: t, Member: member, Reason: "match rule has no key"}
			}
		}

		e.configure(t, func(c *TypeConfiguration) {
			for _, member := range rules.Ignore {
				c.ignored[member] = true
			}
			for member, rule := range rules.Match {
				c.matches[member] = &MatchSpec{
					keyField:    rule.Key,
					defaultText: rule.Default,
					hasText:     rule.Default != "",
				}
			}
		})
		e.log.WithField("type", t.String()).Debug("applied config rules")
	}
	return nil
}
