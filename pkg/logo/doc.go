// Package logo provides types, interfaces, and helpers for working with the
// Logo Objects REST API.
//
// # Overview
//
// The logo package defines the record types (Item, Variant, Opportunity, Arp,
// SalesOrder), the resource client interfaces, and the two pieces every list
// request goes through: the filter compiler and the query serializer. A concrete
// client is built by the logoclient package.
//
// # Filters
//
// Criteria maps camelCase keys to values. Compile turns it into the service's
// filter expression, converting each key to its column name with FieldName:
//
//	criteria := logo.NewCriteria().
//	  Set("code", logo.Like(logo.String("AB*"))).
//	  Set("price", logo.All(logo.Gte(logo.Int(100)), logo.Lte(logo.Int(500)))).
//	  Set("status", logo.AnyOf{logo.Int(1), logo.Int(2)})
//
//	q, ok := logo.Compile(criteria)
//	// CODE like 'AB*' and PRICE gte 100 and PRICE lte 500 and (STATUS eq 1 or STATUS eq 2)
//
// ok is false when no clause was produced; no filter should be sent then.
// String literals are quoted but embedded quotes are passed through unchanged.
// Use Compiler{EscapeQuotes: true} to double them.
//
// Criteria can also be read from JSON or YAML documents with ParseCriteriaJSON
// and ParseCriteriaYAML.
//
// # Queries and pagination
//
// QueryOptions carries limit, offset, sort, fields, q, count and expandLevel.
// Encode always writes the members in that order:
//
//	opts := logo.NewQueryOptions().WithLimit(10).WithOffset(0).WithSort(logo.SortBy("ITEMREF"))
//	opts.Encode() // limit=10&offset=0&sort=ITEMREF
//
// PaginationIterator and FetchAll walk a collection page by page:
//
//	all, err := logo.FetchAll[logo.Item](ctx, cli.Items(), nil, logo.DefaultPaginationOptions())
//
// # Errors
//
// Error responses are returned as *APIError. IsNotFound, IsUnauthorized,
// IsForbidden and IsBadRequest branch on the status code.
//
// # Interceptors and caching
//
// An InterceptorChain set on Config runs around every request; the package
// ships logging, header, firm selection, rate limiting, metrics and circuit
// breaker interceptors. Config.Cache enables caching of GET responses in memory
// or in a NATS JetStream key-value bucket.
package logo
