package logo

// Item is a material card (ITEMS).
type Item struct {
	Resource `yaml:",inline"`

	CardType    int     `json:"CARD_TYPE,omitempty"    yaml:"card_type,omitempty"`
	Code        string  `json:"CODE,omitempty"         yaml:"code,omitempty"`
	Name        string  `json:"NAME,omitempty"         yaml:"name,omitempty"`
	Name2       string  `json:"NAME2,omitempty"        yaml:"name2,omitempty"`
	GroupCode   string  `json:"GROUP_CODE,omitempty"   yaml:"group_code,omitempty"`
	UnitsetCode string  `json:"UNITSET_CODE,omitempty" yaml:"unitset_code,omitempty"`
	VAT         float64 `json:"VAT,omitempty"          yaml:"vat,omitempty"`
	Barcode     string  `json:"BARCODE,omitempty"      yaml:"barcode,omitempty"`
	UseVariants int     `json:"USE_VARIANTS,omitempty" yaml:"use_variants,omitempty"`
}

// Variant is an item variant (VARIANTS).
type Variant struct {
	Resource `yaml:",inline"`

	Code     string `json:"CODE,omitempty"      yaml:"code,omitempty"`
	Name     string `json:"NAME,omitempty"      yaml:"name,omitempty"`
	ItemRef  int    `json:"ITEMREF,omitempty"   yaml:"itemref,omitempty"`
	ItemCode string `json:"ITEM_CODE,omitempty" yaml:"item_code,omitempty"`
	Active   int    `json:"ACTIVE,omitempty"    yaml:"active,omitempty"`
}

// Opportunity is a CRM sales opportunity (OPPORTUNITIES).
type Opportunity struct {
	Resource `yaml:",inline"`

	OppNo       string  `json:"OPPNO,omitempty"       yaml:"oppno,omitempty"`
	Name        string  `json:"NAME,omitempty"        yaml:"name,omitempty"`
	ArpCode     string  `json:"ARP_CODE,omitempty"    yaml:"arp_code,omitempty"`
	Status      int     `json:"STATUS,omitempty"      yaml:"status,omitempty"`
	Probability float64 `json:"PROBABILITY,omitempty" yaml:"probability,omitempty"`
	Amount      float64 `json:"AMOUNT,omitempty"      yaml:"amount,omitempty"`
	DueDate     string  `json:"DUE_DATE,omitempty"    yaml:"due_date,omitempty"`
}

// Arp is a current account (ARPS).
type Arp struct {
	Resource `yaml:",inline"`

	AccountType int    `json:"ACCOUNT_TYPE,omitempty" yaml:"account_type,omitempty"`
	Code        string `json:"CODE,omitempty"         yaml:"code,omitempty"`
	Title       string `json:"TITLE,omitempty"        yaml:"title,omitempty"`
	TaxID       string `json:"TAX_ID,omitempty"       yaml:"tax_id,omitempty"`
	TaxOffice   string `json:"TAX_OFFICE,omitempty"   yaml:"tax_office,omitempty"`
	City        string `json:"CITY,omitempty"         yaml:"city,omitempty"`
	Email       string `json:"E_MAIL,omitempty"       yaml:"e_mail,omitempty"`
}

// SalesOrderLine is a line of a SalesOrder.
type SalesOrderLine struct {
	Type       int     `json:"TYPE"                  yaml:"type"`
	MasterCode string  `json:"MASTER_CODE,omitempty" yaml:"master_code,omitempty"`
	Quantity   float64 `json:"QUANTITY,omitempty"    yaml:"quantity,omitempty"`
	Price      float64 `json:"PRICE,omitempty"       yaml:"price,omitempty"`
	UnitCode   string  `json:"UNIT_CODE,omitempty"   yaml:"unit_code,omitempty"`
	VATRate    float64 `json:"VAT_RATE,omitempty"    yaml:"vat_rate,omitempty"`
}

// SalesOrderLines wraps order lines the way the service nests them.
type SalesOrderLines struct {
	Items []SalesOrderLine `json:"items" yaml:"items"`
}

// SalesOrder is a sales order slip (salesOrders).
type SalesOrder struct {
	Resource `yaml:",inline"`

	Number       string           `json:"NUMBER,omitempty"       yaml:"number,omitempty"`
	Date         string           `json:"DATE,omitempty"         yaml:"date,omitempty"`
	ArpCode      string           `json:"ARP_CODE,omitempty"     yaml:"arp_code,omitempty"`
	Status       int              `json:"ORDER_STATUS,omitempty" yaml:"order_status,omitempty"`
	TotalNet     float64          `json:"TOTAL_NET,omitempty"    yaml:"total_net,omitempty"`
	TotalGross   float64          `json:"TOTAL_GROSS,omitempty"  yaml:"total_gross,omitempty"`
	Notes1       string           `json:"NOTES1,omitempty"       yaml:"notes1,omitempty"`
	Transactions *SalesOrderLines `json:"TRANSACTIONS,omitempty" yaml:"transactions,omitempty"`
}

// ItemList is a page of items.
type ItemList = ListResponse[Item]

// VariantList is a page of variants.
type VariantList = ListResponse[Variant]

// OpportunityList is a page of opportunities.
type OpportunityList = ListResponse[Opportunity]

// ArpList is a page of current accounts.
type ArpList = ListResponse[Arp]

// SalesOrderList is a page of sales orders.
type SalesOrderList = ListResponse[SalesOrder]
