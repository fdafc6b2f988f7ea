package logo

import (
	"encoding/json"
	"time"
)

// Meta carries the self link the service attaches to resources and lists.
type Meta struct {
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Link represents a single link.
type Link struct {
	Href string `json:"href" yaml:"href"`
}

// Resource holds the members every Logo Objects record shares.
type Resource struct {
	Meta              *Meta  `json:"Meta,omitempty"                   yaml:"meta,omitempty"`
	InternalReference int    `json:"INTERNAL_REFERENCE,omitempty"     yaml:"internal_reference,omitempty"`
	RecordStatus      int    `json:"RECORD_STATUS,omitempty"          yaml:"record_status,omitempty"`
	CreatedBy         int    `json:"CAPIBLOCK_CREATEDBY,omitempty"    yaml:"capiblock_createdby,omitempty"`
	CreatedDate       string `json:"CAPIBLOCK_CREADEDDATE,omitempty"  yaml:"capiblock_creadeddate,omitempty"`
	ModifiedBy        int    `json:"CAPIBLOCK_MODIFIEDBY,omitempty"   yaml:"capiblock_modifiedby,omitempty"`
	ModifiedDate      string `json:"CAPIBLOCK_MODIFIEDDATE,omitempty" yaml:"capiblock_modifieddate,omitempty"`
}

// Ref returns the record's internal reference.
func (r Resource) Ref() int {
	return r.InternalReference
}

// ListResponse is a page of a collection.
type ListResponse[T any] struct {
	Meta   *Meta `json:"Meta,omitempty"   yaml:"meta,omitempty"`
	Items  []T   `json:"items"            yaml:"items"`
	Count  int   `json:"count,omitempty"  yaml:"count,omitempty"`
	Limit  int   `json:"limit,omitempty"  yaml:"limit,omitempty"`
	Offset int   `json:"offset,omitempty" yaml:"offset,omitempty"`
	Next   *Link `json:"next,omitempty"   yaml:"next,omitempty"`
}

// HasMore reports whether the service announced another page.
func (l *ListResponse[T]) HasMore() bool {
	if l == nil {
		return false
	}

	if l.Next != nil && l.Next.Href != "" {
		return true
	}

	return l.Count > 0 && l.Offset+len(l.Items) < l.Count
}

// Token is an access token issued by the token endpoint.
type Token struct {
	AccessToken  string    `json:"access_token"            yaml:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" yaml:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type"              yaml:"token_type"`
	ExpiresIn    int       `json:"expires_in"              yaml:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"              yaml:"expires_at"`
}

// ActionResult is the response of a custom remote-procedure endpoint.
type ActionResult struct {
	StatusCode int             `json:"-"    yaml:"status_code"`
	Body       json.RawMessage `json:"body" yaml:"body"`
}

// Decode unmarshals the result body into v.
func (r *ActionResult) Decode(v interface{}) error {
	if len(r.Body) == 0 {
		return nil
	}

	return json.Unmarshal(r.Body, v)
}
