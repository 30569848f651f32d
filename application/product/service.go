/*
Package product Application Layer - catalog reads and admin management.

Reads are public. Management calls require the admin capability on the
identity passed in; image files go through the MediaStore port.
*/
package product

import (
	"context"
	"fmt"
	"io"

	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

// collectionLimit size of the latest, bestseller and related lists
const collectionLimit = 10

// MediaStore stores product images and hands back public URLs
type MediaStore interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}

// ApplicationService product application service
type ApplicationService struct {
	products product.Repository
	media    MediaStore
	uow      shared.UnitOfWorkFactory
}

func NewApplicationService(products product.Repository, media MediaStore, uow shared.UnitOfWorkFactory) *ApplicationService {
	return &ApplicationService{products: products, media: media, uow: uow}
}

// ============================================================================
// Catalog reads
// ============================================================================

func (s *ApplicationService) ListProducts(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

func (s *ApplicationService) GetProduct(ctx context.Context, id string) (*ProductResponse, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// LatestCollection newest products first
func (s *ApplicationService) LatestCollection(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.products.Latest(ctx, collectionLimit)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// BestSellers most sold first
func (s *ApplicationService) BestSellers(ctx context.Context) ([]*ProductResponse, error) {
	products, err := s.products.BestSellers(ctx, collectionLimit)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// RelatedProducts products sharing a category
func (s *ApplicationService) RelatedProducts(ctx context.Context, category string) ([]*ProductResponse, error) {
	c, err := product.ParseCategory(category)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Related(ctx, c, collectionLimit)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// ============================================================================
// Admin management
// ============================================================================

// AddProduct uploads the images, then stores the product. An upload failure
// aborts the call; images already uploaded are removed again.
func (s *ApplicationService) AddProduct(ctx context.Context, identity shared.Identity, req AddProductRequest) (*ProductResponse, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}
	if len(req.Images) > product.MaxImages {
		return nil, shared.NewValidationError("product", "images", "a product can have at most 3 images")
	}

	var urls []string
	for _, img := range req.Images {
		url, err := s.media.Upload(ctx, img.Filename, img.Content)
		if err != nil {
			s.deleteImages(ctx, urls)
			return nil, fmt.Errorf("upload %s: %w", img.Filename, err)
		}
		urls = append(urls, url)
	}

	p, err := product.NewProduct(product.NewProductOptions{
		ID:          s.products.NextIdentity(),
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Quantity:    req.Quantity,
		InStock:     req.InStock,
		Images:      urls,
	})
	if err != nil {
		s.deleteImages(ctx, urls)
		return nil, err
	}

	uow := s.uow.New()
	err = uow.Execute(ctx, func(ctx context.Context) error {
		if err := s.products.Save(ctx, p); err != nil {
			return err
		}
		uow.RegisterNew(p)
		return nil
	})
	if err != nil {
		s.deleteImages(ctx, urls)
		return nil, err
	}
	return toProductResponse(p), nil
}

// UpdateProduct applies a partial update. Uploaded images replace the
// current set; a failed upload is logged and skipped, and the replaced
// images are deleted best-effort once the product is stored.
func (s *ApplicationService) UpdateProduct(ctx context.Context, identity shared.Identity, id string, req UpdateProductRequest) (*ProductResponse, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}
	if len(req.Images) > product.MaxImages {
		return nil, shared.NewValidationError("product", "images", "a product can have at most 3 images")
	}

	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	err = p.Update(product.Patch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Quantity:    req.Quantity,
		InStock:     req.InStock,
	})
	if err != nil {
		return nil, err
	}

	var urls []string
	for _, img := range req.Images {
		url, err := s.media.Upload(ctx, img.Filename, img.Content)
		if err != nil {
			logger.FromContext(ctx).Warn("image upload failed, skipping",
				append(logger.ErrorFields(err), zap.String("product_id", id), zap.String("filename", img.Filename))...)
			continue
		}
		urls = append(urls, url)
	}

	var replaced []string
	if len(urls) > 0 {
		if replaced, err = p.ReplaceImages(urls); err != nil {
			s.deleteImages(ctx, urls)
			return nil, err
		}
	}

	if err := s.products.Save(ctx, p); err != nil {
		s.deleteImages(ctx, urls)
		return nil, err
	}
	s.deleteImages(ctx, replaced)
	return toProductResponse(p), nil
}

// DeleteProduct removes the product, then its images best-effort
func (s *ApplicationService) DeleteProduct(ctx context.Context, identity shared.Identity, id string) (*DeletedProductResponse, error) {
	if err := identity.RequireAdmin(); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return nil, err
	}
	s.deleteImages(ctx, p.Images())
	return &DeletedProductResponse{ID: p.ID(), Name: p.Name()}, nil
}

func (s *ApplicationService) deleteImages(ctx context.Context, urls []string) {
	for _, url := range urls {
		if err := s.media.Delete(ctx, url); err != nil {
			logger.FromContext(ctx).Warn("failed to delete product image",
				append(logger.ErrorFields(err), zap.String("url", url))...)
		}
	}
}

func toProductResponse(p *product.Product) *ProductResponse {
	images := p.Images()
	if images == nil {
		images = []string{}
	}
	return &ProductResponse{
		ID:           p.ID(),
		Name:         p.Name(),
		Description:  p.Description(),
		Price:        p.Price().String(),
		Category:     string(p.Category()),
		SubCategory:  string(p.SubCategory()),
		Quantity:     p.Quantity(),
		InStock:      p.InStock(),
		IsOutOfStock: p.IsOutOfStock(),
		Sold:         p.Sold(),
		Images:       images,
		CreatedAt:    p.CreatedAt(),
		UpdatedAt:    p.UpdatedAt(),
	}
}

func toProductResponses(products []*product.Product) []*ProductResponse {
	result := make([]*ProductResponse, 0, len(products))
	for _, p := range products {
		result = append(result, toProductResponse(p))
	}
	return result
}
