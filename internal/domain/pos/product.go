package pos

import "github.com/google/uuid"

// Product is the stock relevant view of a catalog product
type Product struct {
	ID             uuid.UUID
	VersionID      uuid.UUID
	ParentID       *uuid.UUID
	Name           string
	ProductNumber  string
	ChildCount     int
	Stock          int
	AvailableStock int

	stockChange *StockChange
}

// StockChange is the transient annotation recording the amount sent to iZettle
type StockChange struct {
	amount int
}

// NewStockChange creates a stock change annotation
func NewStockChange(amount int) *StockChange {
	return &StockChange{amount: amount}
}

// Amount returns the stock change
func (s *StockChange) Amount() int {
	return s.amount
}

// IsVariant reports whether the product is a variant of another product
func (p *Product) IsVariant() bool {
	return p.ParentID != nil
}

// HasChildren reports whether the product is a container of variants
func (p *Product) HasChildren() bool {
	return p.ChildCount > 0
}

// DisplayName returns the product name, or "variant" for unnamed variants
func (p *Product) DisplayName() string {
	if p.Name == "" {
		return "variant"
	}
	return p.Name
}

// AttachStockChange annotates the product with the amount its remote stock changed by
func (p *Product) AttachStockChange(change *StockChange) {
	p.stockChange = change
}

// StockChange returns the attached annotation, or nil
func (p *Product) StockChange() *StockChange {
	return p.stockChange
}

// RemoteUUIDs returns the iZettle product and variant UUIDs of the product.
// Variants map to (parent, self); standalone products get a derived variant UUID.
func (p *Product) RemoteUUIDs() (productUUID, variantUUID string) {
	if p.ParentID != nil {
		return ToV1(*p.ParentID).String(), ToV1(p.ID).String()
	}
	own := ToV1(p.ID)
	return own.String(), IncrementUUID(own).String()
}

// ProductCollection is an ordered set of products
type ProductCollection []*Product

// IDs returns the product IDs in order
func (c ProductCollection) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c))
	for _, p := range c {
		ids = append(ids, p.ID)
	}
	return ids
}

// Get returns the product with id, or nil
func (c ProductCollection) Get(id uuid.UUID) *Product {
	for _, p := range c {
		if p.ID == id {
			return p
		}
	}
	return nil
}
