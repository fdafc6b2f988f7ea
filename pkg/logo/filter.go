package logo

import (
	"fmt"
	"strings"
)

// Operator is a comparison keyword understood by the service's filter grammar.
type Operator string

// Filter operators.
const (
	OpEq   Operator = "eq"
	OpNe   Operator = "ne"
	OpLike Operator = "like"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpIn   Operator = "in"
)

// Filter grammar keywords.
const (
	conjunction = " and "
	disjunction = " or "
)

var operators = map[Operator]struct{}{
	OpEq: {}, OpNe: {}, OpLike: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {}, OpIn: {},
}

// ParseOperator returns the Operator named by s.
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if _, ok := operators[op]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOperator, s)
	}

	return op, nil
}

// FieldValue is the value bound to a criteria key. It is one of Value, Condition,
// Expression or AnyOf.
type FieldValue interface {
	fieldValue()
}

func (Value) fieldValue()      {}
func (Condition) fieldValue()  {}
func (Expression) fieldValue() {}
func (AnyOf) fieldValue()      {}

// Condition is a single operator applied to a field. Build one with Eq, Ne, Like,
// Gt, Gte, Lt, Lte or In.
type Condition struct {
	op     Operator
	value  Value
	values []Value
}

// Operator returns the condition's operator.
func (c Condition) Operator() Operator {
	return c.op
}

// Eq matches values equal to v.
func Eq(v Value) Condition { return Condition{op: OpEq, value: v} }

// Ne matches values not equal to v.
func Ne(v Value) Condition { return Condition{op: OpNe, value: v} }

// Like matches a pattern; the service uses * as wildcard.
func Like(v Value) Condition { return Condition{op: OpLike, value: v} }

// Gt matches values greater than v.
func Gt(v Value) Condition { return Condition{op: OpGt, value: v} }

// Gte matches values greater than or equal to v.
func Gte(v Value) Condition { return Condition{op: OpGte, value: v} }

// Lt matches values less than v.
func Lt(v Value) Condition { return Condition{op: OpLt, value: v} }

// Lte matches values less than or equal to v.
func Lte(v Value) Condition { return Condition{op: OpLte, value: v} }

// In matches any of values.
func In(values ...Value) Condition { return Condition{op: OpIn, values: values} }

// Expression is an ordered set of conditions on one field, conjoined.
type Expression []Condition

// All combines conditions on one field, e.g. All(Gte(Int(100)), Lte(Int(500))).
func All(conditions ...Condition) Expression {
	return Expression(conditions)
}

// AnyOf matches a field equal to any of its values.
type AnyOf []Value

// Criterion is a single key/value pair of a Criteria.
type Criterion struct {
	Key   string
	Value FieldValue
}

// Criteria maps camelCase field keys to values. Keys are unique and keep insertion
// order, which is the order clauses appear in the compiled filter.
type Criteria struct {
	entries []Criterion
	index   map[string]int
}

// NewCriteria creates an empty Criteria.
func NewCriteria() *Criteria {
	return &Criteria{index: make(map[string]int)}
}

// Set binds key to value. Setting an existing key replaces its value in place.
func (c *Criteria) Set(key string, value FieldValue) *Criteria {
	if c.index == nil {
		c.index = make(map[string]int)
	}

	if i, ok := c.index[key]; ok {
		c.entries[i].Value = value

		return c
	}

	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Criterion{Key: key, Value: value})

	return c
}

// Where is shorthand for Set(key, Eq-able scalar) with a dynamic Go value.
func (c *Criteria) Where(key string, value interface{}) (*Criteria, error) {
	v, err := ValueOf(value)
	if err != nil {
		return c, fmt.Errorf("criteria %q: %w", key, err)
	}

	return c.Set(key, v), nil
}

// Get returns the value bound to key.
func (c *Criteria) Get(key string) (FieldValue, bool) {
	if c == nil {
		return nil, false
	}

	i, ok := c.index[key]
	if !ok {
		return nil, false
	}

	return c.entries[i].Value, true
}

// Len returns the number of keys.
func (c *Criteria) Len() int {
	if c == nil {
		return 0
	}

	return len(c.entries)
}

// Entries returns a copy of the key/value pairs in order.
func (c *Criteria) Entries() []Criterion {
	if c == nil {
		return nil
	}

	out := make([]Criterion, len(c.entries))
	copy(out, c.entries)

	return out
}

// Compiler turns Criteria into filter expressions.
type Compiler struct {
	// EscapeQuotes doubles single quotes inside string literals (O''Brien).
	// The service historically receives them verbatim, so this is off by default.
	EscapeQuotes bool
}

// Compile compiles criteria with the default Compiler. ok is false when the
// criteria yields no clause, in which case no filter should be sent at all.
func Compile(criteria *Criteria) (string, bool) {
	return Compiler{}.Compile(criteria)
}

// Compile joins one clause per usable field with " and ", in criteria order.
func (c Compiler) Compile(criteria *Criteria) (string, bool) {
	if criteria.Len() == 0 {
		return "", false
	}

	clauses := make([]string, 0, len(criteria.entries))

	for _, entry := range criteria.entries {
		clause := c.compileField(FieldName(entry.Key), entry.Value)
		if clause != "" {
			clauses = append(clauses, clause)
		}
	}

	if len(clauses) == 0 {
		return "", false
	}

	return strings.Join(clauses, conjunction), true
}

func (c Compiler) compileField(field string, value FieldValue) string {
	switch v := value.(type) {
	case Value:
		return c.term(field, OpEq, v)
	case Condition:
		return c.compileCondition(field, v)
	case Expression:
		parts := make([]string, 0, len(v))

		for _, cond := range v {
			part := c.compileCondition(field, cond)
			if part != "" {
				parts = append(parts, part)
			}
		}

		return strings.Join(parts, conjunction)
	case AnyOf:
		return c.anyOf(field, v)
	default:
		return ""
	}
}

func (c Compiler) compileCondition(field string, cond Condition) string {
	if cond.op == OpIn {
		return c.anyOf(field, cond.values)
	}

	return c.term(field, cond.op, cond.value)
}

func (c Compiler) term(field string, op Operator, v Value) string {
	if !v.IsValid() {
		return ""
	}

	return field + " " + string(op) + " " + v.literal(c.EscapeQuotes)
}

func (c Compiler) anyOf(field string, values []Value) string {
	terms := make([]string, 0, len(values))

	for _, v := range values {
		term := c.term(field, OpEq, v)
		if term != "" {
			terms = append(terms, term)
		}
	}

	if len(terms) == 0 {
		return ""
	}

	return "(" + strings.Join(terms, disjunction) + ")"
}

// PrefixFilter builds "<FIELD> like '<term>*'". The term is interpolated as is,
// whatever its type.
func PrefixFilter(key string, term interface{}) string {
	text := fmt.Sprint(term)
	if v, ok := term.(Value); ok {
		text = v.Text()
	}

	return FieldName(key) + " " + string(OpLike) + " '" + text + "*'"
}

// JoinConditions joins preformatted conditions with " and " without inspecting
// them. ok is false when there is nothing to join.
func JoinConditions(conditions []string) (string, bool) {
	if len(conditions) == 0 {
		return "", false
	}

	return strings.Join(conditions, conjunction), true
}
