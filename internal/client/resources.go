package client

import (
	"context"
	"fmt"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/internal/http"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
)

// ActionConvertToOrder is the opportunity action that creates a sales order.
const ActionConvertToOrder = "convertToOrder"

// ItemsClient implements logo.ItemsClient.
type ItemsClient struct {
	*EntityClient[logo.Item]
}

// NewItemsClient creates a new items client.
func NewItemsClient(httpClient *http.Client) *ItemsClient {
	return &ItemsClient{EntityClient: NewEntityClient[logo.Item](httpClient, constants.ResourceItems, "item")}
}

// VariantsClient implements logo.VariantsClient.
type VariantsClient struct {
	*EntityClient[logo.Variant]
}

// NewVariantsClient creates a new variants client.
func NewVariantsClient(httpClient *http.Client) *VariantsClient {
	return &VariantsClient{EntityClient: NewEntityClient[logo.Variant](httpClient, constants.ResourceVariants, "variant")}
}

// ListForItem lists the variants of one material card.
func (c *VariantsClient) ListForItem(ctx context.Context, itemRef int, opts *logo.QueryOptions) (*logo.VariantList, error) {
	criteria := logo.NewCriteria().Set("itemref", logo.Int(itemRef))

	result, err := c.Search(ctx, criteria, opts)
	if err != nil {
		return nil, fmt.Errorf("listing variants of item %d: %w", itemRef, err)
	}

	return result, nil
}

// OpportunitiesClient implements logo.OpportunitiesClient.
type OpportunitiesClient struct {
	*EntityClient[logo.Opportunity]
}

// NewOpportunitiesClient creates a new opportunities client.
func NewOpportunitiesClient(httpClient *http.Client) *OpportunitiesClient {
	return &OpportunitiesClient{
		EntityClient: NewEntityClient[logo.Opportunity](httpClient, constants.ResourceOpportunities, "opportunity"),
	}
}

// ConvertToOrder turns the opportunity into a sales order.
func (c *OpportunitiesClient) ConvertToOrder(ctx context.Context, ref int) (*logo.ActionResult, error) {
	body := map[string]interface{}{"INTERNAL_REFERENCE": ref}

	return c.Invoke(ctx, ActionConvertToOrder, body)
}

// ArpsClient implements logo.ArpsClient.
type ArpsClient struct {
	*EntityClient[logo.Arp]
}

// NewArpsClient creates a new current accounts client.
func NewArpsClient(httpClient *http.Client) *ArpsClient {
	return &ArpsClient{EntityClient: NewEntityClient[logo.Arp](httpClient, constants.ResourceArps, "current account")}
}

// SalesOrdersClient implements logo.SalesOrdersClient.
type SalesOrdersClient struct {
	*EntityClient[logo.SalesOrder]
}

// NewSalesOrdersClient creates a new sales orders client.
func NewSalesOrdersClient(httpClient *http.Client) *SalesOrdersClient {
	return &SalesOrdersClient{
		EntityClient: NewEntityClient[logo.SalesOrder](httpClient, constants.ResourceSalesOrders, "sales order"),
	}
}
