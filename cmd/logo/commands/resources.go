package commands

import (
	"fmt"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/spf13/cobra"
)

// NewItemsCommand creates the items command group.
func NewItemsCommand() *cobra.Command {
	return newEntityCommand(entityView[logo.Item]{
		use:     "items",
		aliases: []string{"item"},
		short:   "Manage material cards",
		client:  func(c logo.Client) logo.EntityClient[logo.Item] { return c.Items() },
		columns: []string{"INTERNAL_REFERENCE", "CODE", "NAME", "CARD_TYPE", "UNITSET_CODE", "VAT"},
		row: func(item *logo.Item) []string {
			return []string{itoa(item.InternalReference), item.Code, item.Name, itoa(item.CardType), item.UnitsetCode, ftoa(item.VAT)}
		},
	})
}

var variantsView = entityView[logo.Variant]{
	use:     "variants",
	aliases: []string{"variant"},
	short:   "Manage item variants",
	client:  func(c logo.Client) logo.EntityClient[logo.Variant] { return c.Variants() },
	columns: []string{"INTERNAL_REFERENCE", "CODE", "NAME", "ITEMREF", "ITEM_CODE", "ACTIVE"},
	row: func(v *logo.Variant) []string {
		return []string{itoa(v.InternalReference), v.Code, v.Name, itoa(v.ItemRef), v.ItemCode, itoa(v.Active)}
	},
}

// NewVariantsCommand creates the variants command group.
func NewVariantsCommand() *cobra.Command {
	cmd := newEntityCommand(variantsView)
	cmd.AddCommand(newVariantsForItemCommand())

	return cmd
}

func newVariantsForItemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "for-item ITEMREF",
		Short: "List the variants of an item",
		Long:  "List the variants whose ITEMREF is the given item's internal reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			itemRef, err := parseReference(args[0])
			if err != nil {
				return err
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			page, err := c.Variants().ListForItem(cmd.Context(), itemRef, nil)
			if err != nil {
				return fmt.Errorf("failed to list variants of item %d: %w", itemRef, err)
			}

			return variantsView.print(cmd.OutOrStdout(), format, page.Items)
		},
	}
}

// NewOpportunitiesCommand creates the opportunities command group.
func NewOpportunitiesCommand() *cobra.Command {
	cmd := newEntityCommand(entityView[logo.Opportunity]{
		use:     "opportunities",
		aliases: []string{"opportunity", "opp"},
		short:   "Manage CRM opportunities",
		client:  func(c logo.Client) logo.EntityClient[logo.Opportunity] { return c.Opportunities() },
		columns: []string{"INTERNAL_REFERENCE", "OPPNO", "NAME", "ARP_CODE", "STATUS", "AMOUNT"},
		row: func(o *logo.Opportunity) []string {
			return []string{itoa(o.InternalReference), o.OppNo, o.Name, o.ArpCode, itoa(o.Status), ftoa(o.Amount)}
		},
	})
	cmd.AddCommand(newOpportunityConvertCommand())

	return cmd
}

func newOpportunityConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert REF",
		Short: "Convert an opportunity into a sales order",
		Long:  "Convert the opportunity with the given internal reference into a sales order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			ref, err := parseReference(args[0])
			if err != nil {
				return err
			}

			c, err := createClient(cmd.Context(), cmd)
			if err != nil {
				return err
			}

			result, err := c.Opportunities().ConvertToOrder(cmd.Context(), ref)
			if err != nil {
				return fmt.Errorf("failed to convert opportunity %d: %w", ref, err)
			}

			var order logo.SalesOrder

			err = result.Decode(&order)
			if err != nil {
				return fmt.Errorf("failed to decode sales order: %w", err)
			}

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, order)
			}

			return salesOrdersView.print(cmd.OutOrStdout(), format, []logo.SalesOrder{order})
		},
	}
}

// NewArpsCommand creates the arps command group.
func NewArpsCommand() *cobra.Command {
	return newEntityCommand(entityView[logo.Arp]{
		use:     "arps",
		aliases: []string{"arp", "accounts"},
		short:   "Manage current accounts",
		client:  func(c logo.Client) logo.EntityClient[logo.Arp] { return c.Arps() },
		columns: []string{"INTERNAL_REFERENCE", "CODE", "TITLE", "TAX_ID", "CITY", "E_MAIL"},
		row: func(a *logo.Arp) []string {
			return []string{itoa(a.InternalReference), a.Code, a.Title, a.TaxID, a.City, a.Email}
		},
	})
}

var salesOrdersView = entityView[logo.SalesOrder]{
	use:     "salesorders",
	aliases: []string{"salesorder", "orders"},
	short:   "Manage sales orders",
	client:  func(c logo.Client) logo.EntityClient[logo.SalesOrder] { return c.SalesOrders() },
	columns: []string{"INTERNAL_REFERENCE", "NUMBER", "DATE", "ARP_CODE", "ORDER_STATUS", "TOTAL_NET"},
	row: func(o *logo.SalesOrder) []string {
		return []string{itoa(o.InternalReference), o.Number, o.Date, o.ArpCode, itoa(o.Status), ftoa(o.TotalNet)}
	},
}

// NewSalesOrdersCommand creates the salesorders command group.
func NewSalesOrdersCommand() *cobra.Command {
	return newEntityCommand(salesOrdersView)
}
