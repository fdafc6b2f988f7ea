package logo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"

	"gopkg.in/yaml.v3"
)

// objectEntry and orderedObject keep document order for decoded objects, which
// decides clause order in the compiled filter.
type objectEntry struct {
	key   string
	value interface{}
}

type orderedObject []objectEntry

// ParseCriteriaJSON builds Criteria from a JSON object such as
//
//	{"code": "ABC", "price": {"gte": 100, "lte": 500}, "tags": ["A", "B"]}
//
// Keys and operators keep the order they have in the document.
func ParseCriteriaJSON(data []byte) (*Criteria, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	root, err := decodeJSONValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parsing criteria JSON: %w", err)
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing criteria JSON: %w", ErrTrailingData)
	}

	return criteriaFromDocument(root)
}

// ParseCriteriaYAML builds Criteria from a YAML mapping, keeping document order.
func ParseCriteriaYAML(data []byte) (*Criteria, error) {
	var doc yaml.Node

	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing criteria YAML: %w", err)
	}

	if doc.Kind == 0 {
		return NewCriteria(), nil
	}

	root, err := decodeYAMLNode(&doc)
	if err != nil {
		return nil, fmt.Errorf("parsing criteria YAML: %w", err)
	}

	return criteriaFromDocument(root)
}

// CriteriaFromMap builds Criteria from a Go map. Go maps have no order, so keys
// (and operator keys) are taken in sorted order.
func CriteriaFromMap(m map[string]interface{}) (*Criteria, error) {
	return criteriaFromDocument(sortedObject(m))
}

func sortedObject(m map[string]interface{}) orderedObject {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	obj := make(orderedObject, 0, len(keys))
	for _, k := range keys {
		obj = append(obj, objectEntry{key: k, value: m[k]})
	}

	return obj
}

func criteriaFromDocument(root interface{}) (*Criteria, error) {
	criteria := NewCriteria()

	if root == nil {
		return criteria, nil
	}

	obj, ok := root.(orderedObject)
	if !ok {
		return nil, fmt.Errorf("%w: criteria must be an object, got %T", ErrInvalidCriteria, root)
	}

	for _, entry := range obj {
		value, err := fieldValueOf(entry.value)
		if err != nil {
			return nil, fmt.Errorf("criteria %q: %w", entry.key, err)
		}

		criteria.Set(entry.key, value)
	}

	return criteria, nil
}

func fieldValueOf(raw interface{}) (FieldValue, error) {
	if value, ok := raw.(FieldValue); ok {
		return value, nil
	}

	switch typed := normalize(raw).(type) {
	case map[string]interface{}:
		return expressionOf(sortedObject(typed))
	case orderedObject:
		return expressionOf(typed)
	case []interface{}:
		values, err := valuesOf(typed)
		if err != nil {
			return nil, err
		}

		return AnyOf(values), nil
	default:
		return ValueOf(raw)
	}
}

func expressionOf(obj orderedObject) (Expression, error) {
	expr := make(Expression, 0, len(obj))

	for _, entry := range obj {
		op, err := ParseOperator(entry.key)
		if err != nil {
			return nil, err
		}

		if op == OpIn {
			list, ok := normalize(entry.value).([]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: %q expects a list, got %T", ErrInvalidValue, op, entry.value)
			}

			values, err := valuesOf(list)
			if err != nil {
				return nil, err
			}

			expr = append(expr, In(values...))

			continue
		}

		v, err := ValueOf(entry.value)
		if err != nil {
			return nil, fmt.Errorf("operator %q: %w", op, err)
		}

		expr = append(expr, Condition{op: op, value: v})
	}

	return expr, nil
}

func valuesOf(list []interface{}) ([]Value, error) {
	values := make([]Value, 0, len(list))

	for i, item := range list {
		v, err := ValueOf(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}

		values = append(values, v)
	}

	return values, nil
}

// normalize turns typed Go slices, arrays and string-keyed maps into the
// []interface{} and map[string]interface{} shapes the decoders produce.
func normalize(raw interface{}) interface{} {
	switch raw.(type) {
	case nil, []interface{}, map[string]interface{}, orderedObject:
		return raw
	}

	rv := reflect.ValueOf(raw)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		list := make([]interface{}, rv.Len())
		for i := range list {
			list[i] = rv.Index(i).Interface()
		}

		return list
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return raw
		}

		m := make(map[string]interface{}, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}

		return m
	default:
		return raw
	}
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch delim := tok.(type) {
	case json.Delim:
		switch delim {
		case '{':
			obj := orderedObject{}

			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}

				key, _ := keyTok.(string)

				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}

				obj = append(obj, objectEntry{key: key, value: value})
			}

			_, err = dec.Token()

			return obj, err
		case '[':
			list := []interface{}{}

			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}

				list = append(list, value)
			}

			_, err = dec.Token()

			return list, err
		default:
			return nil, fmt.Errorf("%w: unexpected %v", ErrInvalidCriteria, delim)
		}
	default:
		return tok, nil
	}
}

func decodeYAMLNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}

		return decodeYAMLNode(node.Content[0])
	case yaml.MappingNode:
		obj := make(orderedObject, 0, len(node.Content)/2)

		for i := 0; i+1 < len(node.Content); i += 2 {
			value, err := decodeYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}

			obj = append(obj, objectEntry{key: node.Content[i].Value, value: value})
		}

		return obj, nil
	case yaml.SequenceNode:
		list := make([]interface{}, 0, len(node.Content))

		for _, child := range node.Content {
			value, err := decodeYAMLNode(child)
			if err != nil {
				return nil, err
			}

			list = append(list, value)
		}

		return list, nil
	case yaml.AliasNode:
		return decodeYAMLNode(node.Alias)
	default:
		var value interface{}

		err := node.Decode(&value)
		if err != nil {
			return nil, err
		}

		return value, nil
	}
}
