package logo_test

import (
	"testing"

	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCriteriaJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		wantOK  bool
		wantErr error
	}{
		{
			name:   "document order decides clause order",
			input:  `{"status": 1, "code": "ABC"}`,
			want:   "STATUS eq 1 and CODE eq 'ABC'",
			wantOK: true,
		},
		{
			name:   "operators, ranges and lists",
			input:  `{"code": {"like": "AB*"}, "price": {"gte": 100, "lte": 500}, "tags": ["A", "B"], "status": {"in": [1, 2]}}`,
			want:   "CODE like 'AB*' and PRICE gte 100 and PRICE lte 500 and (TAGS eq 'A' or TAGS eq 'B') and (STATUS eq 1 or STATUS eq 2)",
			wantOK: true,
		},
		{
			name:   "decimals and booleans",
			input:  `{"vat": 18.5, "useVariants": true}`,
			want:   "VAT eq 18.5 and USE_VARIANTS eq true",
			wantOK: true,
		},
		{
			name:   "empty object",
			input:  `{}`,
			wantOK: false,
		},
		{
			name:   "null document",
			input:  `null`,
			wantOK: false,
		},
		{name: "unknown operator", input: `{"price": {"between": [1, 2]}}`, wantErr: logo.ErrInvalidOperator},
		{name: "in without list", input: `{"status": {"in": 1}}`, wantErr: logo.ErrInvalidValue},
		{name: "null value", input: `{"code": null}`, wantErr: logo.ErrInvalidValue},
		{name: "not an object", input: `["code"]`, wantErr: logo.ErrInvalidCriteria},
		{name: "trailing data", input: `{"code": "A"} {"code": "B"}`, wantErr: logo.ErrTrailingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			criteria, err := logo.ParseCriteriaJSON([]byte(tt.input))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)

			got, ok := logo.Compile(criteria)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCriteriaJSON_Malformed(t *testing.T) {
	t.Parallel()

	_, err := logo.ParseCriteriaJSON([]byte(`{"code": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing criteria JSON")
}

func TestParseCriteriaYAML(t *testing.T) {
	t.Parallel()

	input := `
status: 1
code:
  like: AB*
price:
  gte: 100
  lte: 499.9
tags: [A, B]
`

	criteria, err := logo.ParseCriteriaYAML([]byte(input))
	require.NoError(t, err)

	got, ok := logo.Compile(criteria)
	require.True(t, ok)
	assert.Equal(t, "STATUS eq 1 and CODE like 'AB*' and PRICE gte 100 and PRICE lte 499.9 and (TAGS eq 'A' or TAGS eq 'B')", got)
}

func TestParseCriteriaYAML_Empty(t *testing.T) {
	t.Parallel()

	criteria, err := logo.ParseCriteriaYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, criteria.Len())
}

func TestParseCriteriaYAML_Errors(t *testing.T) {
	t.Parallel()

	_, err := logo.ParseCriteriaYAML([]byte("price:\n  between: 3\n"))
	require.ErrorIs(t, err, logo.ErrInvalidOperator)

	_, err = logo.ParseCriteriaYAML([]byte("- code\n"))
	require.ErrorIs(t, err, logo.ErrInvalidCriteria)
}

func TestCriteriaFromMap(t *testing.T) {
	t.Parallel()

	criteria, err := logo.CriteriaFromMap(map[string]interface{}{
		"status": []interface{}{1, 2},
		"code":   "A",
		"price":  map[string]interface{}{"lte": 500, "gte": 100},
	})
	require.NoError(t, err)

	got, ok := logo.Compile(criteria)
	require.True(t, ok)
	assert.Equal(t, "CODE eq 'A' and PRICE gte 100 and PRICE lte 500 and (STATUS eq 1 or STATUS eq 2)", got)
}

func TestCriteriaFromMap_TypedGoValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input map[string]interface{}
		want  string
	}{
		{
			name:  "string slice",
			input: map[string]interface{}{"tags": []string{"A", "B"}},
			want:  "(TAGS eq 'A' or TAGS eq 'B')",
		},
		{
			name:  "int array",
			input: map[string]interface{}{"status": [2]int{1, 2}},
			want:  "(STATUS eq 1 or STATUS eq 2)",
		},
		{
			name:  "in with int slice",
			input: map[string]interface{}{"status": map[string]interface{}{"in": []int{1, 2}}},
			want:  "(STATUS eq 1 or STATUS eq 2)",
		},
		{
			name:  "typed operator map",
			input: map[string]interface{}{"price": map[string]int{"lte": 500, "gte": 100}},
			want:  "PRICE gte 100 and PRICE lte 500",
		},
		{
			name:  "prebuilt values",
			input: map[string]interface{}{"code": logo.Like(logo.String("AB*")), "price": logo.All(logo.Gt(logo.Int(1)))},
			want:  "CODE like 'AB*' and PRICE gt 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			criteria, err := logo.CriteriaFromMap(tt.input)
			require.NoError(t, err)

			got, ok := logo.Compile(criteria)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
