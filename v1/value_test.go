// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package v1_test

import (
	"encoding/json"
	"testing"

	v1 "github.com/dpeckett/vlogs/v1"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_KeepsOrder(t *testing.T) {
	var v v1.Value
	require.NoError(t, json.Unmarshal([]byte(`{"z":1,"a":[true,null,"x"],"m":{"b":2,"a":1}}`), &v))

	assert.Equal(t, v1.KindMap, v.Kind())
	assert.Equal(t, []string{"z", "a", "m"}, v.Keys())

	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":[true,null,"x"],"m":{"b":2,"a":1}}`, string(raw))
}

func TestValue_Set(t *testing.T) {
	v := v1.Map(v1.F("a", v1.Int(1)))
	v.Set("b", v1.Bool(true))
	v.Set("a", v1.String("replaced"))

	assert.Equal(t, []string{"a", "b"}, v.Keys())
	a, ok := v.Get("a")
	require.True(t, ok)
	assert.Equal(t, "replaced", a.AsString())

	_, ok = v.Get("missing")
	assert.False(t, ok)
}

func TestValueOf(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: `null`},
		{name: "int", in: 42, want: `42`},
		{name: "float", in: 1.5, want: `1.5`},
		{name: "string slice", in: []string{"a", "b"}, want: `["a","b"]`},
		{name: "map sorted", in: map[string]int{"b": 2, "a": 1}, want: `{"a":1,"b":2}`},
		{name: "struct", in: payload{Name: "x", Count: 3}, want: `{"name":"x","count":3}`},
		{name: "nested", in: map[string]any{"list": []any{1, "two", nil}}, want: `{"list":[1,"two",null]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := v1.ValueOf(tt.in)
			require.NoError(t, err)

			raw, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(raw))
		})
	}
}

func TestValueOf_UnsupportedKey(t *testing.T) {
	_, err := v1.ValueOf(map[int]string{1: "one"})
	assert.Error(t, err)
}

func TestValue_Interface(t *testing.T) {
	v := v1.Map(
		v1.F("n", v1.Int(1)),
		v1.F("l", v1.List(v1.String("a"), v1.Null())),
	)

	assert.Equal(t, map[string]any{
		"n": int64(1),
		"l": []any{"a", nil},
	}, v.Interface())
}

func TestValue_UnmarshalTrailingData(t *testing.T) {
	var v v1.Value
	assert.Error(t, v.UnmarshalJSON([]byte(`{} {}`)))
}

func TestValue_LargeIntegers(t *testing.T) {
	// 2^53 + 1 is not representable as a float64.
	const orderID = int64(9007199254740993)

	v := v1.MustValueOf(map[string]any{"order_id": orderID})
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"order_id":9007199254740993}`, string(raw))

	var decoded v1.Value
	require.NoError(t, json.Unmarshal([]byte(`{"n":9007199254740993,"u":18446744073709551615,"f":0.25}`), &decoded))

	raw, err = json.Marshal(decoded)
	require.NoError(t, err)
	assert.Equal(t, `{"n":9007199254740993,"u":18446744073709551615,"f":0.25}`, string(raw))

	n, _ := decoded.Get("n")
	exact, ok := n.AsInt64()
	require.True(t, ok)
	assert.Equal(t, orderID, exact)

	f, _ := decoded.Get("f")
	_, ok = f.AsInt64()
	assert.False(t, ok)
	assert.Equal(t, 0.25, f.AsNumber())

	big, err := v1.ValueOf(uint64(18446744073709551615))
	require.NoError(t, err)
	raw, err = json.Marshal(big)
	require.NoError(t, err)
	assert.Equal(t, `18446744073709551615`, string(raw))
}

func TestValueOf_InvalidNumber(t *testing.T) {
	_, err := v1.ValueOf(json.Number("Inf"))
	assert.Error(t, err)
}
