package models

// Client is a customer of the store.
type Client struct {
	ID        int64  `json:"id,omitempty"`
	Name      string `json:"name"`
	Document  string `json:"document,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Address   string `json:"address,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Brand groups products by manufacturer.
type Brand struct {
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name"`
}

// ProductCategory enumerates product kinds. FRAME and LENS drive sale form rules.
type ProductCategory string

const (
	CategoryFrame       ProductCategory = "FRAME"
	CategoryLens        ProductCategory = "LENS"
	CategorySunglasses  ProductCategory = "SUNGLASSES"
	CategoryContactLens ProductCategory = "CONTACT_LENS"
	CategoryAccessory   ProductCategory = "ACCESSORY"
)

// Valid reports whether c is a known category.
func (c ProductCategory) Valid() bool {
	switch c {
	case CategoryFrame, CategoryLens, CategorySunglasses, CategoryContactLens, CategoryAccessory:
		return true
	}
	return false
}

// Product is a stock item.
type Product struct {
	ID            int64           `json:"id,omitempty"`
	Name          string          `json:"name"`
	Reference     string          `json:"reference,omitempty"`
	Category      ProductCategory `json:"category"`
	BrandID       int64           `json:"brandId,omitempty"`
	BrandName     string          `json:"brandName,omitempty"`
	CostPrice     float64         `json:"costPrice"`
	SalePrice     float64         `json:"salePrice"`
	StockQuantity int             `json:"stockQuantity"`
	Active        bool            `json:"active"`
}

// Service is a billable optical service (assembly, exam, adjustment).
type Service struct {
	ID          int64   `json:"id,omitempty"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
}
