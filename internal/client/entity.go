package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/internal/http"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
)

// EntityClient is the generic CRUD and search client behind every resource.
type EntityClient[T any] struct {
	httpClient   *http.Client
	resourcePath string
	entityName   string
}

// NewEntityClient binds a client to /api/v1/<resource>.
func NewEntityClient[T any](httpClient *http.Client, resource, entityName string) *EntityClient[T] {
	return &EntityClient[T]{
		httpClient:   httpClient,
		resourcePath: constants.APIBasePath + "/" + resource,
		entityName:   entityName,
	}
}

// ResourcePath returns the collection path.
func (c *EntityClient[T]) ResourcePath() string {
	return c.resourcePath
}

func (c *EntityClient[T]) recordPath(ref int) string {
	return c.resourcePath + "/" + strconv.Itoa(ref)
}

// GetAll implements logo.EntityClient.GetAll.
func (c *EntityClient[T]) GetAll(ctx context.Context, opts *logo.QueryOptions) (*logo.ListResponse[T], error) {
	err := opts.Validate()
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.entityName, err)
	}

	resp, err := c.httpClient.Get(ctx, logo.AppendQuery(c.resourcePath, opts), nil)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", c.entityName, err)
	}

	var result logo.ListResponse[T]

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, fmt.Errorf("parsing %s list response: %w", c.entityName, err)
	}

	return &result, nil
}

// Get implements logo.EntityClient.Get.
func (c *EntityClient[T]) Get(ctx context.Context, ref int) (*T, error) {
	resp, err := c.httpClient.Get(ctx, c.recordPath(ref), nil)
	if err != nil {
		return nil, fmt.Errorf("getting %s %d: %w", c.entityName, ref, err)
	}

	return c.decode(resp.Body)
}

// Create implements logo.EntityClient.Create.
func (c *EntityClient[T]) Create(ctx context.Context, record *T) (*T, error) {
	resp, err := c.httpClient.Post(ctx, c.resourcePath, record)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.entityName, err)
	}

	return c.decode(resp.Body)
}

// Update implements logo.EntityClient.Update.
func (c *EntityClient[T]) Update(ctx context.Context, ref int, record *T) (*T, error) {
	resp, err := c.httpClient.Put(ctx, c.recordPath(ref), record)
	if err != nil {
		return nil, fmt.Errorf("updating %s %d: %w", c.entityName, ref, err)
	}

	return c.decode(resp.Body)
}

// Patch implements logo.EntityClient.Patch.
func (c *EntityClient[T]) Patch(ctx context.Context, ref int, fields map[string]interface{}) (*T, error) {
	resp, err := c.httpClient.Patch(ctx, c.recordPath(ref), fields)
	if err != nil {
		return nil, fmt.Errorf("patching %s %d: %w", c.entityName, ref, err)
	}

	return c.decode(resp.Body)
}

// Delete implements logo.EntityClient.Delete.
func (c *EntityClient[T]) Delete(ctx context.Context, ref int) error {
	_, err := c.httpClient.Delete(ctx, c.recordPath(ref))
	if err != nil {
		return fmt.Errorf("deleting %s %d: %w", c.entityName, ref, err)
	}

	return nil
}

// Search implements logo.EntityClient.Search. The compiled criteria replace any q
// already present in opts.
func (c *EntityClient[T]) Search(ctx context.Context, criteria *logo.Criteria, opts *logo.QueryOptions) (*logo.ListResponse[T], error) {
	return c.GetAll(ctx, opts.Clone().WithFilter(criteria))
}

// SearchByCode implements logo.EntityClient.SearchByCode.
func (c *EntityClient[T]) SearchByCode(ctx context.Context, code string, opts *logo.QueryOptions) (*logo.ListResponse[T], error) {
	return c.GetAll(ctx, opts.Clone().WithQ(logo.PrefixFilter("code", code)))
}

// SearchByName implements logo.EntityClient.SearchByName.
func (c *EntityClient[T]) SearchByName(ctx context.Context, name string, opts *logo.QueryOptions) (*logo.ListResponse[T], error) {
	return c.GetAll(ctx, opts.Clone().WithQ(logo.PrefixFilter("name", name)))
}

// BuildQuery implements logo.EntityClient.BuildQuery.
func (c *EntityClient[T]) BuildQuery(ctx context.Context, conditions []string, opts *logo.QueryOptions) (*logo.ListResponse[T], error) {
	q, _ := logo.JoinConditions(conditions)

	return c.GetAll(ctx, opts.Clone().WithQ(q))
}

// Count implements logo.EntityClient.Count.
func (c *EntityClient[T]) Count(ctx context.Context, criteria *logo.Criteria) (int, error) {
	opts := logo.NewQueryOptions().WithLimit(0).WithFilter(criteria).WithCount(true)

	result, err := c.GetAll(ctx, opts)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.entityName, err)
	}

	return result.Count, nil
}

// Invoke implements logo.EntityClient.Invoke.
func (c *EntityClient[T]) Invoke(ctx context.Context, action string, body interface{}) (*logo.ActionResult, error) {
	resp, err := c.httpClient.Post(ctx, c.resourcePath+"/"+action, body)
	if err != nil {
		return nil, fmt.Errorf("invoking %s %s: %w", c.entityName, action, err)
	}

	return &logo.ActionResult{StatusCode: resp.StatusCode, Body: resp.Body}, nil
}

func (c *EntityClient[T]) decode(body []byte) (*T, error) {
	var record T

	err := json.Unmarshal(body, &record)
	if err != nil {
		return nil, fmt.Errorf("parsing %s response: %w", c.entityName, err)
	}

	return &record, nil
}
