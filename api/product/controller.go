/*
Package product catalog and admin product endpoints.

Admin create and update take multipart forms with up to three files in
image1..image3; the remaining form fields bind to the request DTOs.
*/
package product

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"storefront/api/ctxutil"
	"storefront/api/middleware"
	"storefront/api/response"
	productapp "storefront/application/product"
	"storefront/domain/product"

	"github.com/gin-gonic/gin"
)

// Controller Product controller
type Controller struct {
	productService *productapp.ApplicationService
}

func NewController(productService *productapp.ApplicationService) *Controller {
	return &Controller{productService: productService}
}

// RegisterRoutes public catalog routes
func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/products")
	{
		products.GET("", c.ListProducts)
		products.GET("/latest", c.LatestCollection)
		products.GET("/bestseller", c.BestSellers)
		products.GET("/related", c.RelatedProducts)
		products.GET("/:id", c.GetProduct)
	}
}

// RegisterAdminRoutes POST/PUT/DELETE under /admin/products
func (c *Controller) RegisterAdminRoutes(router *gin.RouterGroup, guards middleware.Guards) {
	products := router.Group("/admin/products", guards.Admin...)
	{
		products.POST("", c.AddProduct)
		products.PUT("/:id", c.UpdateProduct)
		products.DELETE("/:id", c.DeleteProduct)
	}
}

// ListProducts GET /api/v1/products
func (c *Controller) ListProducts(ctx *gin.Context) {
	products, err := c.productService.ListProducts(ctxutil.WithRequestID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, products, len(products), "products retrieved successfully")
}

// GetProduct GET /api/v1/products/:id
func (c *Controller) GetProduct(ctx *gin.Context) {
	p, err := c.productService.GetProduct(ctxutil.WithRequestID(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, p, "product retrieved successfully")
}

// LatestCollection GET /api/v1/products/latest
func (c *Controller) LatestCollection(ctx *gin.Context) {
	products, err := c.productService.LatestCollection(ctxutil.WithRequestID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, products, len(products), "latest collection retrieved successfully")
}

// BestSellers GET /api/v1/products/bestseller
func (c *Controller) BestSellers(ctx *gin.Context) {
	products, err := c.productService.BestSellers(ctxutil.WithRequestID(ctx))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, products, len(products), "best sellers retrieved successfully")
}

// RelatedProducts GET /api/v1/products/related?category=
func (c *Controller) RelatedProducts(ctx *gin.Context) {
	products, err := c.productService.RelatedProducts(ctxutil.WithRequestID(ctx), ctx.Query("category"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleList(ctx, products, len(products), "related products retrieved successfully")
}

// AddProduct POST /api/v1/admin/products
func (c *Controller) AddProduct(ctx *gin.Context) {
	var req productapp.AddProductRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	images, closeAll, err := formImages(ctx)
	if err != nil {
		response.HandleError(ctx, err, "invalid image upload", http.StatusBadRequest)
		return
	}
	defer closeAll()
	req.Images = images

	p, err := c.productService.AddProduct(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleCreated(ctx, p, "product added successfully")
}

// UpdateProduct PUT /api/v1/admin/products/:id
func (c *Controller) UpdateProduct(ctx *gin.Context) {
	var req productapp.UpdateProductRequest
	if err := ctx.ShouldBind(&req); err != nil {
		response.HandleError(ctx, err, "invalid request parameters", http.StatusBadRequest)
		return
	}
	images, closeAll, err := formImages(ctx)
	if err != nil {
		response.HandleError(ctx, err, "invalid image upload", http.StatusBadRequest)
		return
	}
	defer closeAll()
	req.Images = images

	p, err := c.productService.UpdateProduct(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("id"), req)
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, p, "product updated successfully")
}

// DeleteProduct DELETE /api/v1/admin/products/:id
func (c *Controller) DeleteProduct(ctx *gin.Context) {
	deleted, err := c.productService.DeleteProduct(ctxutil.WithRequestID(ctx), ctxutil.Identity(ctx), ctx.Param("id"))
	if err != nil {
		response.HandleAppError(ctx, err)
		return
	}
	response.HandleSuccess(ctx, deleted, "product deleted successfully")
}

// formImages opens image1..imageN from a multipart request; JSON requests have none
func formImages(ctx *gin.Context) ([]productapp.ImageUpload, func(), error) {
	var opened []multipart.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, closeAll, nil
		}
		return nil, closeAll, err
	}

	var images []productapp.ImageUpload
	for i := 1; i <= product.MaxImages; i++ {
		headers := form.File[fmt.Sprintf("image%d", i)]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		images = append(images, productapp.ImageUpload{Filename: headers[0].Filename, Content: f})
	}
	return images, closeAll, nil
}
