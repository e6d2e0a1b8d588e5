package models

import "time"

// FrameDetails describes the frame attached to a FRAME line item.
type FrameDetails struct {
	Material  string `json:"material" bson:"material"`
	Reference string `json:"reference" bson:"reference"`
	Color     string `json:"color" bson:"color"`
}

// SaleItem is a product line. UnitPrice is the product sale price when the line was added.
type SaleItem struct {
	ProductID    int64           `json:"productId" bson:"product_id"`
	ProductName  string          `json:"productName" bson:"product_name"`
	Category     ProductCategory `json:"category" bson:"category"`
	UnitPrice    float64         `json:"unitPrice" bson:"unit_price"`
	Quantity     int             `json:"quantity" bson:"quantity"`
	FrameDetails *FrameDetails   `json:"frameDetails,omitempty" bson:"frame_details,omitempty"`
}

// SaleService is a service line.
type SaleService struct {
	ServiceID   int64   `json:"serviceId" bson:"service_id"`
	ServiceName string  `json:"serviceName" bson:"service_name"`
	Price       float64 `json:"price" bson:"price"`
	Quantity    int     `json:"quantity" bson:"quantity"`
}

// SaleStatus tracks payment progress.
type SaleStatus string

const (
	SaleStatusPending   SaleStatus = "PENDING"
	SaleStatusPaid      SaleStatus = "PAID"
	SaleStatusCancelled SaleStatus = "CANCELLED"
)

// PaymentMethod enumerates accepted payment methods.
type PaymentMethod string

const (
	PaymentCash       PaymentMethod = "CASH"
	PaymentPix        PaymentMethod = "PIX"
	PaymentCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentBankSlip   PaymentMethod = "BANK_SLIP"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentPix, PaymentCreditCard, PaymentDebitCard, PaymentBankSlip:
		return true
	}
	return false
}

// Sale aggregates client, line items, services, discount and the optional protocol.
type Sale struct {
	ID            int64         `json:"id,omitempty"`
	ClientID      int64         `json:"clientId"`
	ClientName    string        `json:"clientName,omitempty"`
	Items         []SaleItem    `json:"items"`
	Services      []SaleService `json:"services"`
	Subtotal      float64       `json:"subtotal"`
	Discount      float64       `json:"discount"`
	Total         float64       `json:"total"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	Status        SaleStatus    `json:"status,omitempty"`
	Protocol      *Protocol     `json:"protocol,omitempty"`
	CreatedAt     time.Time     `json:"createdAt,omitempty"`
}

// Payment is an amount received against a sale.
type Payment struct {
	ID           int64         `json:"id,omitempty"`
	SaleID       int64         `json:"saleId"`
	Amount       float64       `json:"amount"`
	Method       PaymentMethod `json:"method"`
	Installments int           `json:"installments"`
	PaidAt       time.Time     `json:"paidAt,omitempty"`
}

// SaleBalance summarizes how much of a sale has been paid.
type SaleBalance struct {
	SaleID  int64      `json:"saleId"`
	Total   float64    `json:"total"`
	Paid    float64    `json:"paid"`
	Balance float64    `json:"balance"`
	Status  SaleStatus `json:"status"`
}
