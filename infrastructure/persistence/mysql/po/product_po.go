package po

import (
	"time"

	"storefront/domain/product"
)

// ProductPO Product persistence object.
// is_out_of_stock is stored for catalog queries but always recomputed on load.
type ProductPO struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Name         string    `gorm:"size:255;not null"`
	Description  string    `gorm:"type:text"`
	Price        string    `gorm:"type:decimal(14,2);not null"`
	Currency     string    `gorm:"size:3;not null"`
	Category     string    `gorm:"size:20;index;not null"`
	SubCategory  string    `gorm:"size:20;not null"`
	Quantity     int       `gorm:"not null;default:0"`
	InStock      bool      `gorm:"not null;default:true"`
	IsOutOfStock bool      `gorm:"not null;default:false"`
	Sold         int       `gorm:"not null;default:0;index"`
	Images       []string  `gorm:"serializer:json;type:json"`
	Version      int       `gorm:"default:0"`
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time
}

func (ProductPO) TableName() string {
	return "products"
}

// FromProductDomain Convert domain model to persistence object
func FromProductDomain(p *product.Product) *ProductPO {
	dto := p.ToDTO()
	return &ProductPO{
		ID:           dto.ID,
		Name:         dto.Name,
		Description:  dto.Description,
		Price:        moneyColumn(dto.Price),
		Currency:     dto.Price.Currency(),
		Category:     string(dto.Category),
		SubCategory:  string(dto.SubCategory),
		Quantity:     dto.Quantity,
		InStock:      dto.InStock,
		IsOutOfStock: product.ComputeOutOfStock(dto.InStock, dto.Quantity),
		Sold:         dto.Sold,
		Images:       dto.Images,
		Version:      dto.Version,
		CreatedAt:    dto.CreatedAt,
		UpdatedAt:    dto.UpdatedAt,
	}
}

// ToDomain Convert persistence object to domain model
func (po *ProductPO) ToDomain() (*product.Product, error) {
	price, err := parseMoneyColumn("products.price", po.Price, po.Currency)
	if err != nil {
		return nil, err
	}
	return product.RebuildFromDTO(product.ReconstructionDTO{
		ID:          po.ID,
		Name:        po.Name,
		Description: po.Description,
		Price:       price,
		Category:    product.Category(po.Category),
		SubCategory: product.SubCategory(po.SubCategory),
		Quantity:    po.Quantity,
		InStock:     po.InStock,
		Sold:        po.Sold,
		Images:      po.Images,
		Version:     po.Version,
		CreatedAt:   po.CreatedAt,
		UpdatedAt:   po.UpdatedAt,
	}), nil
}
