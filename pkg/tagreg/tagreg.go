// Package tagreg decodes YAML documents whose mapping nodes carry custom
// tags (for example "!window") into caller-defined types. The tag-to-
// constructor mapping is an explicit Registry built at startup and passed by
// reference; there is no process-global registration.
package tagreg

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/seglab/sriracha/internal/log"
)

// Constructor builds a value from the decoded parameters of a tagged mapping
// node. An empty tagged node yields an empty parameter map.
type Constructor func(params map[string]interface{}) (interface{}, error)

// Registry maps YAML tags to constructors.
type Registry struct {
	constructors map[string]Constructor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register binds a tag to a constructor. Tags must start with "!".
// Re-registering a tag replaces the previous constructor with a warning,
// which keeps config overlays working while surfacing likely mistakes.
func (r *Registry) Register(tag string, c Constructor) error {
	if !strings.HasPrefix(tag, "!") {
		return fmt.Errorf("tagreg: tag %q must start with %q", tag, "!")
	}
	if c == nil {
		return fmt.Errorf("tagreg: nil constructor for tag %q", tag)
	}
	if _, exists := r.constructors[tag]; exists {
		log.Warnf("YAML tag %s is already registered; replacing existing constructor", tag)
	}
	r.constructors[tag] = c
	return nil
}

// Tags returns the registered tags with the given prefix, sorted. An empty
// prefix returns all tags.
func (r *Registry) Tags(prefix string) []string {
	var tags []string
	for tag := range r.constructors {
		if strings.HasPrefix(tag, prefix) {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// Decode parses a YAML document and resolves it bottom-up: plain nodes decode
// to maps, slices and scalars; nodes carrying a registered tag are passed to
// their constructor. Unregistered custom tags are an error.
func (r *Registry) Decode(data []byte) (interface{}, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	return r.resolve(root.Content[0])
}

func (r *Registry) resolve(node *yaml.Node) (interface{}, error) {
	if node.Kind == yaml.AliasNode {
		return r.resolve(node.Alias)
	}

	if c, ok := r.constructors[node.Tag]; ok {
		params, err := r.tagParams(node)
		if err != nil {
			return nil, err
		}
		v, err := c(params)
		if err != nil {
			return nil, fmt.Errorf("tagreg: constructing %s at line %d: %w", node.Tag, node.Line, err)
		}
		return v, nil
	}
	if strings.HasPrefix(node.Tag, "!") && !strings.HasPrefix(node.Tag, "!!") {
		return nil, fmt.Errorf("tagreg: unregistered tag %s at line %d", node.Tag, node.Line)
	}

	switch node.Kind {
	case yaml.MappingNode:
		out := make(map[string]interface{}, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			v, err := r.resolve(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[key] = v
		}
		return out, nil
	case yaml.SequenceNode:
		out := make([]interface{}, len(node.Content))
		for i, child := range node.Content {
			v, err := r.resolve(child)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	default:
		var v interface{}
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// tagParams extracts the constructor parameters of a tagged node. Mapping
// nodes decode their entries recursively; an empty scalar yields no
// parameters; anything else is malformed.
func (r *Registry) tagParams(node *yaml.Node) (map[string]interface{}, error) {
	switch {
	case node.Kind == yaml.MappingNode:
		params := make(map[string]interface{}, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			var key string
			if err := node.Content[i].Decode(&key); err != nil {
				return nil, err
			}
			v, err := r.resolve(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			params[key] = v
		}
		return params, nil
	case node.Kind == yaml.ScalarNode && node.Value == "":
		return map[string]interface{}{}, nil
	default:
		return nil, fmt.Errorf("tagreg: node tagged %s at line %d must be a mapping or an empty scalar",
			node.Tag, node.Line)
	}
}
