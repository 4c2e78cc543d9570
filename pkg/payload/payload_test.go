package payload_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealforge/mealforge-go/pkg/apperror"
	"github.com/mealforge/mealforge-go/pkg/payload"
)

func TestDecode_Returns(t *testing.T) {
	tests := []struct {
		name      string
		body      []byte
		expectErr bool
	}{
		{"object_body", []byte(`{"data":{"id":1}}`), false},
		{"empty_body", nil, true},
		{"truncated_body", []byte(`{"data":`), true},
		{"non_object_body", []byte(`"just a string"`), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := payload.Decode(tc.body)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, apperror.IsKind(err, apperror.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, doc)
		})
	}
}

func TestExtract_Returns(t *testing.T) {
	tests := []struct {
		name       string
		doc        payload.Document
		want       payload.Kind
		entityKeys []string
		expected   any
		expectErr  bool
	}{
		{
			name:     "single_wrapped_object",
			doc:      payload.Document{"data": map[string]any{"id": "abc"}},
			want:     payload.KindObject,
			expected: map[string]any{"id": "abc"},
		},
		{
			name:     "double_wrapped_object",
			doc:      payload.Document{"data": map[string]any{"data": map[string]any{"id": "abc"}}},
			want:     payload.KindObject,
			expected: map[string]any{"id": "abc"},
		},
		{
			name:       "entity_keyed_payload",
			doc:        payload.Document{"data": map[string]any{"user": map[string]any{"email": "e"}}},
			want:       payload.KindObject,
			entityKeys: []string{"user"},
			expected:   map[string]any{"email": "e"},
		},
		{
			name:       "double_wrapped_entity_keyed_payload",
			doc:        payload.Document{"data": map[string]any{"data": map[string]any{"recipes": []any{"a"}}}},
			want:       payload.KindList,
			entityKeys: []string{"recipes"},
			expected:   []any{"a"},
		},
		{
			name:     "list_payload",
			doc:      payload.Document{"data": []any{1.0, 2.0}},
			want:     payload.KindList,
			expected: []any{1.0, 2.0},
		},
		{
			name:      "nil_document",
			doc:       nil,
			want:      payload.KindAny,
			expectErr: true,
		},
		{
			name:      "null_payload",
			doc:       payload.Document{"data": nil},
			want:      payload.KindAny,
			expectErr: true,
		},
		{
			name:       "missing_entity_key",
			doc:        payload.Document{"data": map[string]any{"user": map[string]any{}}},
			want:       payload.KindObject,
			entityKeys: []string{"recipe"},
			expectErr:  true,
		},
		{
			name:      "kind_mismatch",
			doc:       payload.Document{"data": []any{}},
			want:      payload.KindObject,
			expectErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			value, err := payload.Extract(tc.doc, tc.want, tc.entityKeys...)
			if tc.expectErr {
				require.Error(t, err)
				assert.True(t, apperror.IsKind(err, apperror.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, value)
		})
	}
}

func TestCoalesce_NeverPanics(t *testing.T) {
	inputs := []any{
		nil,
		"str",
		"42",
		"3.5",
		true,
		12.0,
		map[string]any{"nested": 1},
		[]any{1, 2, 3},
		struct{ X int }{X: 1},
	}

	for _, input := range inputs {
		assert.NotPanics(t, func() {
			_ = payload.String(input, "fb")
			_ = payload.Int(input, -1)
			_ = payload.Float(input, -1)
			_ = payload.Bool(input, false)
			_ = payload.List(input, nil)
		})
	}
}

func TestCoalesce_Returns(t *testing.T) {
	assert.Equal(t, "fb", payload.String(nil, "fb"))
	assert.Equal(t, "hello", payload.String("hello", "fb"))
	assert.Equal(t, "12", payload.String(12.0, "fb"))
	assert.Equal(t, "true", payload.String(true, "fb"))

	assert.Equal(t, 42, payload.Int("42", -1))
	assert.Equal(t, 42, payload.Int(42.0, -1))
	assert.Equal(t, -1, payload.Int("not a number", -1))
	assert.Equal(t, -1, payload.Int(nil, -1))

	assert.InDelta(t, 3.5, payload.Float("3.5", -1), 0.0001)
	assert.InDelta(t, -1, payload.Float(map[string]any{}, -1), 0.0001)

	assert.True(t, payload.Bool(true, false))
	assert.False(t, payload.Bool("true", false))

	assert.Equal(t, []any{1, 2}, payload.List([]any{1, 2}, nil))
	assert.Nil(t, payload.List("nope", nil))
}

func TestRequireFields_Returns(t *testing.T) {
	tests := []struct {
		name            string
		obj             map[string]any
		fields          []string
		expectedMissing map[string]string
	}{
		{
			name:            "empty_string_counts_as_missing",
			obj:             map[string]any{"a": "", "b": 1},
			fields:          []string{"a", "b"},
			expectedMissing: map[string]string{"a": "required"},
		},
		{
			name:   "all_present",
			obj:    map[string]any{"a": "x", "b": 1},
			fields: []string{"a", "b"},
		},
		{
			name:            "nil_and_absent_fields",
			obj:             map[string]any{"a": nil},
			fields:          []string{"a", "b"},
			expectedMissing: map[string]string{"a": "required", "b": "required"},
		},
		{
			name:            "whitespace_only_counts_as_missing",
			obj:             map[string]any{"a": "   "},
			fields:          []string{"a"},
			expectedMissing: map[string]string{"a": "required"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := payload.RequireFields(tc.obj, tc.fields...)
			if tc.expectedMissing == nil {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			assert.Equal(t, tc.expectedMissing, appErr.Fields)
		})
	}
}
