package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product: not found")
	ErrInvalidProduct    = errors.New("product: invalid input")
	ErrInvalidQuantity   = errors.New("product: quantity must be positive")
	ErrInsufficientStock = errors.New("product: insufficient stock")
	ErrProductReferenced = errors.New("product: referenced by orders")
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type NewProductParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Stock       int
}

func NewProduct(p NewProductParams) (Product, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if p.Price.IsNegative() {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	if p.Stock < 0 {
		return Product{}, fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	now := time.Now().UTC()
	return Product{
		Name:        name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update changes the catalogue fields. Stock only moves through the ledger.
func (p *Product) Update(name, description string, price decimal.Decimal) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	}
	if price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	}
	p.Name = name
	p.Description = description
	p.Price = price
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p Product) HasEnoughStock(quantity int) bool {
	return p.Stock >= quantity
}

// DecreaseStock removes quantity units. It fails without touching the stock
// when fewer than quantity units are available.
func (p *Product) DecreaseStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if p.Stock < quantity {
		return &StockError{ProductID: p.ID, ProductName: p.Name, Available: p.Stock, Requested: quantity}
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (p *Product) IncreaseStock(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// StockError names the product that could not cover a requested quantity.
type StockError struct {
	ProductID   int64
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: available %d, requested %d", e.ProductName, e.Available, e.Requested)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
