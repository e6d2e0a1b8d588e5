package models

import (
	"errors"
	"time"
)

// WizardStep names a step of the sale creation wizard.
type WizardStep string

const (
	StepClient   WizardStep = "CLIENT"
	StepItems    WizardStep = "ITEMS"
	StepProtocol WizardStep = "PROTOCOL"
	StepReview   WizardStep = "REVIEW"
)

// SaleDraft is an in-progress sale owned by the wizard.
type SaleDraft struct {
	ID         string        `json:"id" bson:"_id"`
	Step       WizardStep    `json:"step" bson:"step"`
	ClientID   int64         `json:"clientId,omitempty" bson:"client_id,omitempty"`
	ClientName string        `json:"clientName,omitempty" bson:"client_name,omitempty"`
	Phone      string        `json:"-" bson:"phone,omitempty"`
	Items      []SaleItem    `json:"items" bson:"items"`
	Services   []SaleService `json:"services" bson:"services"`
	Discount   float64       `json:"discount" bson:"discount"`
	Protocol   *Protocol     `json:"protocol,omitempty" bson:"protocol,omitempty"`
	CreatedAt  time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt  time.Time     `json:"updatedAt" bson:"updated_at"`
}

// Quote is the computed money view of a sale form.
type Quote struct {
	Subtotal         float64 `json:"subtotal"`
	Discount         float64 `json:"discount"`
	Total            float64 `json:"total"`
	RequiresProtocol bool    `json:"requiresProtocol"`
}

// ErrDraftNotFound is returned by draft stores for unknown ids.
var ErrDraftNotFound = errors.New("sale draft not found")
