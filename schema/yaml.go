package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes attribute definitions from a YAML mapping, keeping the
// document's key order as declaration order.
//
// Values are either a type name, a one-element sequence for arrays, or a
// descriptor mapping:
//
//	name:     { type: string, default: Name }
//	password: { type: string, required: true, minLength: 8 }
//	age:      number
//	friends:  [User]
//	tags:     { type: array, items: string, maxLength: 5 }
//	favorite: Book
//
// Type names other than the built-ins are resolved through the Registry
// passed to Compile, on first use.
func ParseYAML(data []byte) (Definitions, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}

	if doc.Kind == 0 {
		return Definitions{}, nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return Definitions{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("failed to parse definitions: line %d: expected a mapping of attribute names", root.Line)
	}

	defs := make(Definitions, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]

		spec, err := specFromNode(value)
		if err != nil {
			return nil, fmt.Errorf("failed to parse definitions: attribute %q (line %d): %w", key.Value, key.Line, err)
		}
		defs = append(defs, Attr(key.Value, spec))
	}

	return defs, nil
}

// LoadFile reads and parses a YAML definitions file.
func LoadFile(path string) (Definitions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions file: %w", err)
	}
	return ParseYAML(data)
}

func specFromNode(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.ScalarNode, yaml.SequenceNode:
		return typeNameFromNode(n)

	case yaml.MappingNode:
		desc := make(map[string]any, len(n.Content)/2)
		var items *yaml.Node
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], n.Content[i+1]
			switch key.Value {
			case "type":
				name, err := typeNameFromNode(value)
				if err != nil {
					return nil, err
				}
				desc["type"] = name
			case "items":
				items = value
			default:
				var v any
				if err := value.Decode(&v); err != nil {
					return nil, fmt.Errorf("%s: %w", key.Value, err)
				}
				desc[key.Value] = v
			}
		}

		if desc["type"] == "array" {
			if items == nil {
				return nil, fmt.Errorf("array type needs items")
			}
			name, err := typeNameFromNode(items)
			if err != nil {
				return nil, err
			}
			desc["type"] = "[]" + name
		}
		return desc, nil

	default:
		return nil, fmt.Errorf("unsupported node kind %d", n.Kind)
	}
}

// typeNameFromNode reads "Name" or "[Name]" into "Name" or "[]Name".
func typeNameFromNode(n *yaml.Node) (string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return "", fmt.Errorf("empty type name")
		}
		return n.Value, nil
	case yaml.SequenceNode:
		if len(n.Content) != 1 {
			return "", fmt.Errorf("array shorthand takes exactly one item type, got %d", len(n.Content))
		}
		item, err := typeNameFromNode(n.Content[0])
		if err != nil {
			return "", err
		}
		return "[]" + item, nil
	default:
		return "", fmt.Errorf("type must be a name or a one-item sequence")
	}
}
