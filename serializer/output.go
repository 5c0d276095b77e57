package serializer

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	skema "github.com/reoring/skema"
)

// Native serializes v into Go values.
func Native(s Serializer, v any, opt skema.SerializeOpt) (any, skema.Issues, error) {
	st := NewState(ModeNative, opt)
	out, err := serializeWith(s, v, st)
	if err != nil {
		return nil, nil, err
	}
	return out, st.Warnings(), nil
}

// JSON serializes v into JSON text. Object keys keep record field order
// and mapping insertion order.
func JSON(s Serializer, v any, opt skema.SerializeOpt) ([]byte, skema.Issues, error) {
	st := NewState(ModeJSON, opt)
	tree, err := serializeWith(s, v, st)
	if err != nil {
		return nil, nil, err
	}
	var buf bytes.Buffer
	if err := writeJSON(&buf, tree); err != nil {
		return nil, nil, err
	}
	if opt.Indent == "" {
		return buf.Bytes(), st.Warnings(), nil
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf.Bytes(), "", opt.Indent); err != nil {
		return nil, nil, err
	}
	return pretty.Bytes(), st.Warnings(), nil
}

// YAML serializes v into a YAML document.
func YAML(s Serializer, v any, opt skema.SerializeOpt) ([]byte, skema.Issues, error) {
	st := NewState(ModeYAML, opt)
	tree, err := serializeWith(s, v, st)
	if err != nil {
		return nil, nil, err
	}
	node, err := yamlNode(tree)
	if err != nil {
		return nil, nil, err
	}
	out, err := yaml.Marshal(node)
	if err != nil {
		return nil, nil, err
	}
	return out, st.Warnings(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	switch x := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		buf.WriteString(strconv.FormatBool(x))
	case skema.Number:
		buf.WriteString(string(x))
	case string:
		b, err := json.Marshal(x)
		if err != nil {
			return err
		}
		buf.Write(b)
	case []any:
		buf.WriteByte('[')
		for i, it := range x {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, it); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case *skema.Object:
		buf.WriteByte('{')
		for i, k := range x.Keys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			val, _ := x.Get(k)
			if err := writeJSON(buf, val); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("serializer: unexpected wire value %T", v)
	}
	return nil
}

func yamlNode(v any) (*yaml.Node, error) {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(x)}, nil
	case skema.Number:
		tag := "!!float"
		if x.IsInteger() {
			tag = "!!int"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: string(x)}, nil
	case string:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: x}, nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, it := range x {
			c, err := yamlNode(it)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, c)
		}
		return n, nil
	case *skema.Object:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range x.Keys() {
			val, _ := x.Get(k)
			c, err := yamlNode(val)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, c)
		}
		return n, nil
	}
	return nil, fmt.Errorf("serializer: unexpected wire value %T", v)
}
