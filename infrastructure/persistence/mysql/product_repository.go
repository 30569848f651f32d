package mysql

import (
	"context"
	"errors"
	"time"

	"storefront/domain/product"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/mysql/po"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository MySQL/GORM catalog store.
// Stock counters are only ever changed through the conditional updates below.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) NextIdentity() string {
	return uuid.New().String()
}

func (r *ProductRepository) Save(ctx context.Context, p *product.Product) error {
	productPO := po.FromProductDomain(p)

	if p.Version() == 0 {
		productPO.Version = 1
		if err := conn(ctx, r.db).Create(productPO).Error; err != nil {
			return err
		}
		p.IncrementVersionForSave()
		return nil
	}

	productPO.Version = p.Version() + 1
	found, updated, err := versionedUpdate(conn(ctx, r.db), productPO, p.ID(), p.Version(),
		"name", "description", "price", "currency", "category", "sub_category",
		"quantity", "in_stock", "is_out_of_stock", "sold", "images", "updated_at")
	if err != nil {
		return err
	}
	if !found {
		return product.NewProductNotFoundError(p.ID())
	}
	if !updated {
		return shared.NewConflictError("product", "product "+p.ID()+" was modified by another transaction, please retry")
	}
	p.IncrementVersionForSave()
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	var productPO po.ProductPO
	if err := conn(ctx, r.db).First(&productPO, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.NewProductNotFoundError(id)
		}
		return nil, err
	}
	return productPO.ToDomain()
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*product.Product, error) {
	result := make(map[string]*product.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var productPOs []po.ProductPO
	if err := conn(ctx, r.db).Where("id IN ?", ids).Find(&productPOs).Error; err != nil {
		return nil, err
	}
	for i := range productPOs {
		p, err := productPOs[i].ToDomain()
		if err != nil {
			return nil, err
		}
		result[p.ID()] = p
	}
	return result, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*product.Product, error) {
	return r.find(conn(ctx, r.db).Order("created_at DESC"))
}

func (r *ProductRepository) Latest(ctx context.Context, limit int) ([]*product.Product, error) {
	return r.find(conn(ctx, r.db).Order("created_at DESC").Limit(limit))
}

func (r *ProductRepository) BestSellers(ctx context.Context, limit int) ([]*product.Product, error) {
	return r.find(conn(ctx, r.db).Order("sold DESC").Order("created_at DESC").Limit(limit))
}

func (r *ProductRepository) Related(ctx context.Context, category product.Category, limit int) ([]*product.Product, error) {
	return r.find(conn(ctx, r.db).Where("category = ?", string(category)).Order("created_at DESC").Limit(limit))
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Where("id = ?", id).Delete(&po.ProductPO{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return product.NewProductNotFoundError(id)
	}
	return nil
}

// IncrementStockAndSold hands stock back; sold never drops below zero
func (r *ProductRepository) IncrementStockAndSold(ctx context.Context, id string, delta int) error {
	result := conn(ctx, r.db).Model(&po.ProductPO{}).
		Clauses(stockUpdate(gorm.Expr("quantity + ?", delta), gorm.Expr("GREATEST(sold - ?, 0)", delta))).
		Where("id = ?", id).
		Updates(map[string]any{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return product.NewProductNotFoundError(id)
	}
	return nil
}

// DecrementStockIfAvailable single conditional UPDATE; the WHERE guard is the
// only thing standing between two concurrent settlements and negative stock
func (r *ProductRepository) DecrementStockIfAvailable(ctx context.Context, id string, qty int) error {
	db := conn(ctx, r.db)
	result := db.Model(&po.ProductPO{}).
		Clauses(stockUpdate(gorm.Expr("quantity - ?", qty), gorm.Expr("sold + ?", qty))).
		Where("id = ? AND quantity >= ?", id, qty).
		Updates(map[string]any{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.Model(&po.ProductPO{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return product.NewProductNotFoundError(id)
	}
	return product.NewInsufficientStockError(id, qty)
}

// stockUpdate SET clause with a fixed assignment order. MySQL evaluates
// assignments left to right, so is_out_of_stock reads the updated quantity.
func stockUpdate(quantity, sold clause.Expr) clause.Set {
	return clause.Set{
		{Column: clause.Column{Name: "quantity"}, Value: quantity},
		{Column: clause.Column{Name: "sold"}, Value: sold},
		{Column: clause.Column{Name: "is_out_of_stock"}, Value: gorm.Expr("(NOT in_stock) OR quantity <= 0")},
		{Column: clause.Column{Name: "version"}, Value: gorm.Expr("version + 1")},
		{Column: clause.Column{Name: "updated_at"}, Value: time.Now()},
	}
}

func (r *ProductRepository) find(query *gorm.DB) ([]*product.Product, error) {
	var productPOs []po.ProductPO
	if err := query.Find(&productPOs).Error; err != nil {
		return nil, err
	}
	products := make([]*product.Product, len(productPOs))
	for i := range productPOs {
		p, err := productPOs[i].ToDomain()
		if err != nil {
			return nil, err
		}
		products[i] = p
	}
	return products, nil
}

var _ product.Repository = (*ProductRepository)(nil)
