/*
Package product Catalog subdomain.

Product is the aggregate root of the catalog. Stock fields (quantity, sold)
are changed by settlement and cancellation through the repository's atomic
operations; every other field is owned by admin management.

isOutOfStock is never assigned by callers: it is recomputed through
ComputeOutOfStock on every mutation of inStock or quantity.
*/
package product

import (
	"strings"
	"time"

	"storefront/domain/shared"
)

// MaxImages images a product may carry
const MaxImages = 3

// Category top-level catalog category
type Category string

const (
	CategoryMen    Category = "men"
	CategoryWomen  Category = "women"
	CategoryUnisex Category = "unisex"
)

// SubCategory garment type
type SubCategory string

const (
	SubCategoryShirt      SubCategory = "shirt"
	SubCategorySweatshirt SubCategory = "sweatshirt"
	SubCategoryHoodie     SubCategory = "hoodie"
	SubCategoryJacket     SubCategory = "jacket"
	SubCategoryPants      SubCategory = "pants"
)

// ParseCategory normalizes and validates a category
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case CategoryMen, CategoryWomen, CategoryUnisex:
		return c, nil
	}
	return "", newInvalidFieldError("category", "category must be one of men, women, unisex")
}

// ParseSubCategory normalizes and validates a sub category
func ParseSubCategory(s string) (SubCategory, error) {
	c := SubCategory(strings.ToLower(strings.TrimSpace(s)))
	switch c {
	case SubCategoryShirt, SubCategorySweatshirt, SubCategoryHoodie, SubCategoryJacket, SubCategoryPants:
		return c, nil
	}
	return "", newInvalidFieldError("subCategory", "subCategory must be one of shirt, sweatshirt, hoodie, jacket, pants")
}

// ComputeOutOfStock the single derivation rule for isOutOfStock
func ComputeOutOfStock(inStock bool, quantity int) bool {
	return !inStock || quantity <= 0
}

// Product catalog aggregate root
type Product struct {
	id           string
	name         string
	description  string
	price        shared.Money
	category     Category
	subCategory  SubCategory
	quantity     int
	inStock      bool
	isOutOfStock bool
	sold         int
	images       []string
	version      int
	createdAt    time.Time
	updatedAt    time.Time

	events []shared.DomainEvent
}

// NewProductOptions admin input for a new product
type NewProductOptions struct {
	ID          string
	Name        string
	Description string
	Price       string
	Category    string
	SubCategory string
	Quantity    int
	InStock     *bool
	Images      []string
}

// priceScale prices are stored and charged in whole minor units
const priceScale = 2

func parsePrice(value string) (shared.Money, error) {
	price, err := shared.ParseMoney(strings.TrimSpace(value), shared.DefaultCurrency)
	if err != nil {
		return shared.Money{}, newInvalidFieldError("price", "price must be a valid non-negative number")
	}
	if !price.Amount().Equal(price.Amount().Round(priceScale)) {
		return shared.Money{}, newInvalidFieldError("price", "price must have at most 2 decimal places")
	}
	return price, nil
}

// NewProduct validates input and creates a product
func NewProduct(opts NewProductOptions) (*Product, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, newInvalidFieldError("name", "name is required")
	}
	price, err := parsePrice(opts.Price)
	if err != nil {
		return nil, err
	}
	category, err := ParseCategory(opts.Category)
	if err != nil {
		return nil, err
	}
	subCategory, err := ParseSubCategory(opts.SubCategory)
	if err != nil {
		return nil, err
	}
	if opts.Quantity < 0 {
		return nil, newInvalidFieldError("quantity", "quantity must not be negative")
	}
	if len(opts.Images) > MaxImages {
		return nil, newInvalidFieldError("images", "a product can have at most 3 images")
	}

	inStock := true
	if opts.InStock != nil {
		inStock = *opts.InStock
	}

	now := time.Now()
	p := &Product{
		id:          opts.ID,
		name:        name,
		description: strings.TrimSpace(opts.Description),
		price:       price,
		category:    category,
		subCategory: subCategory,
		quantity:    opts.Quantity,
		inStock:     inStock,
		images:      append([]string(nil), opts.Images...),
		createdAt:   now,
		updatedAt:   now,
	}
	p.isOutOfStock = ComputeOutOfStock(p.inStock, p.quantity)
	p.events = append(p.events, newProductAddedEvent(p))

	return p, nil
}

// Patch partial admin update; nil fields are left unchanged
type Patch struct {
	Name        *string
	Description *string
	Price       *string
	Category    *string
	SubCategory *string
	Quantity    *int
	InStock     *bool
}

// Update applies a partial update
func (p *Product) Update(patch Patch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return newInvalidFieldError("name", "name must not be empty")
		}
		p.name = name
	}
	if patch.Description != nil {
		p.description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		price, err := parsePrice(*patch.Price)
		if err != nil {
			return err
		}
		p.price = price
	}
	if patch.Category != nil {
		c, err := ParseCategory(*patch.Category)
		if err != nil {
			return err
		}
		p.category = c
	}
	if patch.SubCategory != nil {
		c, err := ParseSubCategory(*patch.SubCategory)
		if err != nil {
			return err
		}
		p.subCategory = c
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return newInvalidFieldError("quantity", "quantity must not be negative")
		}
		p.quantity = *patch.Quantity
	}
	if patch.InStock != nil {
		p.inStock = *patch.InStock
	}

	p.isOutOfStock = ComputeOutOfStock(p.inStock, p.quantity)
	p.touch()
	return nil
}

// ReplaceImages swaps the image list, returning the images that were replaced
func (p *Product) ReplaceImages(images []string) ([]string, error) {
	if len(images) > MaxImages {
		return nil, newInvalidFieldError("images", "a product can have at most 3 images")
	}
	old := p.images
	p.images = append([]string(nil), images...)
	p.touch()
	return old, nil
}

// ApplyStockDelta mirrors the store's atomic stock update on a loaded aggregate.
// A positive delta removes stock and records sales; a negative one restores it.
func (p *Product) ApplyStockDelta(delta int) {
	p.quantity -= delta
	p.sold += delta
	if p.sold < 0 {
		p.sold = 0
	}
	p.isOutOfStock = ComputeOutOfStock(p.inStock, p.quantity)
	p.touch()
}

// HasStockFor reports whether requested units can be sold
func (p *Product) HasStockFor(requested int) bool {
	return p.inStock && !p.isOutOfStock && p.quantity >= requested
}

func (p *Product) touch() {
	p.updatedAt = time.Now()
}

// ============================================================================
// Reconstruction (repository use only)
// ============================================================================

// ReconstructionDTO persisted state of a product
type ReconstructionDTO struct {
	ID          string
	Name        string
	Description string
	Price       shared.Money
	Category    Category
	SubCategory SubCategory
	Quantity    int
	InStock     bool
	Sold        int
	Images      []string
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RebuildFromDTO rebuilds a product from storage. isOutOfStock is derived, not loaded.
func RebuildFromDTO(dto ReconstructionDTO) *Product {
	return &Product{
		id:           dto.ID,
		name:         dto.Name,
		description:  dto.Description,
		price:        dto.Price,
		category:     dto.Category,
		subCategory:  dto.SubCategory,
		quantity:     dto.Quantity,
		inStock:      dto.InStock,
		isOutOfStock: ComputeOutOfStock(dto.InStock, dto.Quantity),
		sold:         dto.Sold,
		images:       append([]string(nil), dto.Images...),
		version:      dto.Version,
		createdAt:    dto.CreatedAt,
		updatedAt:    dto.UpdatedAt,
	}
}

// ToDTO snapshot for persistence
func (p *Product) ToDTO() ReconstructionDTO {
	return ReconstructionDTO{
		ID:          p.id,
		Name:        p.name,
		Description: p.description,
		Price:       p.price,
		Category:    p.category,
		SubCategory: p.subCategory,
		Quantity:    p.quantity,
		InStock:     p.inStock,
		Sold:        p.sold,
		Images:      p.Images(),
		Version:     p.version,
		CreatedAt:   p.createdAt,
		UpdatedAt:   p.updatedAt,
	}
}

// ============================================================================
// Getters
// ============================================================================

func (p *Product) ID() string               { return p.id }
func (p *Product) Name() string             { return p.name }
func (p *Product) Description() string      { return p.description }
func (p *Product) Price() shared.Money      { return p.price }
func (p *Product) Category() Category       { return p.category }
func (p *Product) SubCategory() SubCategory { return p.subCategory }
func (p *Product) Quantity() int            { return p.quantity }
func (p *Product) InStock() bool            { return p.inStock }
func (p *Product) IsOutOfStock() bool       { return p.isOutOfStock }
func (p *Product) Sold() int                { return p.sold }
func (p *Product) Version() int             { return p.version }
func (p *Product) CreatedAt() time.Time     { return p.createdAt }
func (p *Product) UpdatedAt() time.Time     { return p.updatedAt }

// Images copy of the image URLs
func (p *Product) Images() []string {
	return append([]string(nil), p.images...)
}

// PullEvents returns and clears recorded events
func (p *Product) PullEvents() []shared.DomainEvent {
	events := p.events
	p.events = nil
	return events
}

// IncrementVersionForSave bumps the optimistic lock version; repositories call it on update
func (p *Product) IncrementVersionForSave() {
	p.version++
}

var _ shared.AggregateRoot = (*Product)(nil)
