package logo

import (
	"strings"
	"unicode"
)

// FieldName converts a camelCase criteria key into the SCREAMING_SNAKE_CASE column
// name used by the service.
//
// An underscore is inserted before an uppercase letter that starts a camel hump,
// i.e. one that follows a lowercase letter or a digit. Runs of uppercase letters are
// kept together, so keys that are already upper-snake pass through unchanged:
//
//	code                 -> CODE
//	capiblockCreatedby   -> CAPIBLOCK_CREATEDBY
//	ohCapiblockCreatedby -> OH_CAPIBLOCK_CREATEDBY
//	itemREF              -> ITEM_REF
//	INTERNAL_REFERENCE   -> INTERNAL_REFERENCE
func FieldName(key string) string {
	var builder strings.Builder

	builder.Grow(len(key) + len(key)/4)

	var prev rune

	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			builder.WriteByte('_')
		}

		builder.WriteRune(unicode.ToUpper(r))

		prev = r
	}

	return builder.String()
}

// FieldNames converts every key with FieldName, keeping order.
func FieldNames(keys ...string) []string {
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = FieldName(key)
	}

	return names
}
