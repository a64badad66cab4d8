// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// IsZero reports whether the Value is null.
func (v Value) IsZero() bool {
	return v.kind == KindNull
}

func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	decoded, err := valueFromNode(node)
	if err != nil {
		return err
	}

	*v = decoded
	return nil
}

func valueFromNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null(), nil
		}
		return valueFromNode(node.Content[0])
	case yaml.AliasNode:
		return valueFromNode(node.Alias)
	case yaml.SequenceNode:
		items := make([]Value, 0, len(node.Content))
		for _, child := range node.Content {
			item, err := valueFromNode(child)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.MappingNode:
		fields := make([]Field, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			item, err := valueFromNode(node.Content[i+1])
			if err != nil {
				return Value{}, err
			}
			fields = append(fields, F(node.Content[i].Value, item))
		}
		return Map(fields...), nil
	case yaml.ScalarNode:
		return scalarFromNode(node)
	}

	return Value{}, fmt.Errorf("line %d: unsupported yaml node", node.Line)
}

func scalarFromNode(node *yaml.Node) (Value, error) {
	switch node.ShortTag() {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return Value{}, err
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := node.Decode(&i); err == nil {
			return Int(i), nil
		}
		var u uint64
		if err := node.Decode(&u); err == nil {
			return Uint(u), nil
		}
		// Too large for either, keep the digits.
		if _, err := strconv.ParseFloat(node.Value, 64); err == nil {
			return numberLiteral(node.Value)
		}
		return Value{}, fmt.Errorf("line %d: invalid integer %q", node.Line, node.Value)
	case "!!float":
		var f float64
		if err := node.Decode(&f); err != nil {
			return Value{}, err
		}
		return Number(f), nil
	default:
		return String(node.Value), nil
	}
}
