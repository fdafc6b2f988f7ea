package logo

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query string parameter names.
const (
	ParamLimit       = "limit"
	ParamOffset      = "offset"
	ParamSort        = "sort"
	ParamFields      = "fields"
	ParamQ           = "q"
	ParamCount       = "count"
	ParamExpandLevel = "expandLevel"
)

// Expand levels understood by the service.
const (
	ExpandFull = "full"
)

// SortDirection orders a sort.
type SortDirection string

// Sort directions.
const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// normalized folds case and surrounding space, so "DESC" reads as Descending.
func (d SortDirection) normalized() SortDirection {
	return SortDirection(strings.ToLower(strings.TrimSpace(string(d))))
}

// Sort is a list of fields sharing one direction.
type Sort struct {
	Fields    []string
	Direction SortDirection
}

// SortBy sorts ascending by one or more fields.
func SortBy(fields ...string) *Sort {
	return &Sort{Fields: fields}
}

// SortByDirection sorts by one or more fields in the given direction.
func SortByDirection(direction SortDirection, fields ...string) *Sort {
	return &Sort{Fields: fields, Direction: direction}
}

// String renders the sort as "F1,F2" followed by ",desc" when descending.
// Ascending is the service default and is never written out. Directions are
// matched ignoring case; anything other than asc or desc fails Validate.
func (s *Sort) String() string {
	if s == nil || len(s.Fields) == 0 {
		return ""
	}

	out := strings.Join(s.Fields, ",")
	if s.Direction.normalized() == Descending {
		out += "," + string(Descending)
	}

	return out
}

// QueryOptions are the list parameters of a collection request. Nil or empty
// members are left out of the query string.
type QueryOptions struct {
	Limit       *int
	Offset      *int
	Sort        *Sort
	Fields      []string
	Q           string
	Count       *bool
	ExpandLevel string
}

// NewQueryOptions creates empty query options.
func NewQueryOptions() *QueryOptions {
	return &QueryOptions{}
}

// WithLimit sets the page size.
func (o *QueryOptions) WithLimit(limit int) *QueryOptions {
	o.Limit = &limit

	return o
}

// WithOffset sets the number of records to skip.
func (o *QueryOptions) WithOffset(offset int) *QueryOptions {
	o.Offset = &offset

	return o
}

// WithSort replaces the sort.
func (o *QueryOptions) WithSort(sort *Sort) *QueryOptions {
	o.Sort = sort

	return o
}

// WithFields appends to the selected fields.
func (o *QueryOptions) WithFields(fields ...string) *QueryOptions {
	o.Fields = append(o.Fields, fields...)

	return o
}

// WithQ sets a raw filter expression.
func (o *QueryOptions) WithQ(q string) *QueryOptions {
	o.Q = q

	return o
}

// WithFilter compiles criteria into Q. Criteria without usable fields clear Q.
func (o *QueryOptions) WithFilter(criteria *Criteria) *QueryOptions {
	o.Q, _ = Compile(criteria)

	return o
}

// WithCount asks the service to include the total count.
func (o *QueryOptions) WithCount(count bool) *QueryOptions {
	o.Count = &count

	return o
}

// WithExpandLevel sets the expand level, e.g. ExpandFull.
func (o *QueryOptions) WithExpandLevel(level string) *QueryOptions {
	o.ExpandLevel = level

	return o
}

// Clone returns a copy that shares no mutable state with o.
func (o *QueryOptions) Clone() *QueryOptions {
	if o == nil {
		return NewQueryOptions()
	}

	out := *o

	if o.Limit != nil {
		limit := *o.Limit
		out.Limit = &limit
	}

	if o.Offset != nil {
		offset := *o.Offset
		out.Offset = &offset
	}

	if o.Count != nil {
		count := *o.Count
		out.Count = &count
	}

	if o.Sort != nil {
		out.Sort = &Sort{Fields: append([]string(nil), o.Sort.Fields...), Direction: o.Sort.Direction}
	}

	if o.Fields != nil {
		out.Fields = append([]string(nil), o.Fields...)
	}

	return &out
}

// Validate reports options the service would reject.
func (o *QueryOptions) Validate() error {
	if o == nil {
		return nil
	}

	if o.Limit != nil && *o.Limit < 0 {
		return fmt.Errorf("%w: limit %d is negative", ErrInvalidQueryOption, *o.Limit)
	}

	if o.Offset != nil && *o.Offset < 0 {
		return fmt.Errorf("%w: offset %d is negative", ErrInvalidQueryOption, *o.Offset)
	}

	if o.Sort != nil {
		switch o.Sort.Direction.normalized() {
		case "", Ascending, Descending:
		default:
			return fmt.Errorf("%w: sort direction %q", ErrInvalidQueryOption, o.Sort.Direction)
		}
	}

	return nil
}

type queryPair struct {
	key   string
	value string
}

// pairs lists the set members in canonical order.
func (o *QueryOptions) pairs() []queryPair {
	if o == nil {
		return nil
	}

	var pairs []queryPair

	if o.Limit != nil {
		pairs = append(pairs, queryPair{ParamLimit, strconv.Itoa(*o.Limit)})
	}

	if o.Offset != nil {
		pairs = append(pairs, queryPair{ParamOffset, strconv.Itoa(*o.Offset)})
	}

	if sort := o.Sort.String(); sort != "" {
		pairs = append(pairs, queryPair{ParamSort, sort})
	}

	if len(o.Fields) > 0 {
		pairs = append(pairs, queryPair{ParamFields, strings.Join(o.Fields, ",")})
	}

	if o.Q != "" {
		pairs = append(pairs, queryPair{ParamQ, o.Q})
	}

	if o.Count != nil {
		pairs = append(pairs, queryPair{ParamCount, strconv.FormatBool(*o.Count)})
	}

	if o.ExpandLevel != "" {
		pairs = append(pairs, queryPair{ParamExpandLevel, o.ExpandLevel})
	}

	return pairs
}

// Encode renders the query string without the leading "?". Members appear in the
// order limit, offset, sort, fields, q, count, expandLevel, so equal options
// always encode to the same bytes.
func (o *QueryOptions) Encode() string {
	pairs := o.pairs()
	if len(pairs) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, pair := range pairs {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(pair.key)
		builder.WriteByte('=')
		builder.WriteString(escapeQueryValue(pair.value))
	}

	return builder.String()
}

// ToValues returns the same parameters as url.Values.
func (o *QueryOptions) ToValues() url.Values {
	values := url.Values{}
	for _, pair := range o.pairs() {
		values.Set(pair.key, pair.value)
	}

	return values
}

// AppendQuery appends "?"+opts.Encode() to path when there is anything to encode.
func AppendQuery(path string, opts *QueryOptions) string {
	encoded := opts.Encode()
	if encoded == "" {
		return path
	}

	if strings.Contains(path, "?") {
		return path + "&" + encoded
	}

	return path + "?" + encoded
}

// escapeQueryValue percent-encodes a value. Spaces become %20 rather than "+" so a
// literal plus inside a quoted filter literal stays distinguishable, and commas
// and the * wildcard are left readable since they never split a parameter.
func escapeQueryValue(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	escaped = strings.ReplaceAll(escaped, "%2C", ",")
	escaped = strings.ReplaceAll(escaped, "%2A", "*")

	return escaped
}
