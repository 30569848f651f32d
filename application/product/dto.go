package product

import (
	"io"
	"time"
)

// ImageUpload one uploaded image file
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// AddProductRequest admin create; price is a decimal string
type AddProductRequest struct {
	Name        string `form:"name" json:"name" binding:"required"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price" binding:"required"`
	Category    string `form:"category" json:"category" binding:"required"`
	SubCategory string `form:"subCategory" json:"subCategory" binding:"required"`
	Quantity    int    `form:"quantity" json:"quantity" binding:"min=0"`
	InStock     *bool  `form:"inStock" json:"inStock"`

	Images []ImageUpload `form:"-" json:"-"`
}

// UpdateProductRequest admin partial update; nil fields are left unchanged
type UpdateProductRequest struct {
	Name        *string `form:"name" json:"name"`
	Description *string `form:"description" json:"description"`
	Price       *string `form:"price" json:"price"`
	Category    *string `form:"category" json:"category"`
	SubCategory *string `form:"subCategory" json:"subCategory"`
	Quantity    *int    `form:"quantity" json:"quantity"`
	InStock     *bool   `form:"inStock" json:"inStock"`

	Images []ImageUpload `form:"-" json:"-"`
}

// ProductResponse catalog view
type ProductResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        string    `json:"price"`
	Category     string    `json:"category"`
	SubCategory  string    `json:"subCategory"`
	Quantity     int       `json:"quantity"`
	InStock      bool      `json:"inStock"`
	IsOutOfStock bool      `json:"isOutOfStock"`
	Sold         int       `json:"sold"`
	Images       []string  `json:"images"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DeletedProductResponse identifies a removed product
type DeletedProductResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
