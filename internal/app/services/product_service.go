package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/safatanc/gsalt-giftcard/internal/app/errors"
	"github.com/safatanc/gsalt-giftcard/internal/app/models"
	"github.com/safatanc/gsalt-giftcard/internal/infrastructures"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
}

func NewProductService(db *gorm.DB, validator *infrastructures.Validator) *ProductService {
	return &ProductService{
		db:        db,
		validator: validator,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	if req.IsGiftCard && !req.AllowOpenAmount && req.GcMax.LessThan(req.GcMin) {
		return nil, errors.NewBadRequestError("Gift card maximum amount must not be lower than the minimum amount")
	}

	if req.Code != nil {
		var existing models.Product
		if err := s.db.WithContext(ctx).Where("code = ?", *req.Code).First(&existing).Error; err == nil {
			return nil, errors.NewBadRequestError("Product code already exists")
		}
	}

	product := &models.Product{
		Code:            req.Code,
		Name:            req.Name,
		ListPrice:       req.ListPrice,
		IsGiftCard:      req.IsGiftCard,
		AllowOpenAmount: req.AllowOpenAmount,
		GcMin:           req.GcMin,
		GcMax:           req.GcMax,
	}
	if req.IsGiftCard {
		product.GiftCardDeliveryMode = req.GiftCardDeliveryMode
	}

	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create product")
	}

	return product, nil
}

func (s *ProductService) Find(tx *gorm.DB, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := tx.Where("id = ?", id).First(&product).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NewNotFoundError("Product not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get product")
	}
	return &product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return nil, errors.NewBadRequestError("Invalid product ID format")
	}
	return s.Find(s.db.WithContext(ctx), id)
}

func (s *ProductService) GetProducts(ctx context.Context, pagination *models.PaginationRequest) (*models.Pagination[[]models.Product], error) {
	normalizePagination(pagination)
	db := s.db.WithContext(ctx)

	var totalItems int64
	if err := db.Model(&models.Product{}).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count products")
	}

	var products []models.Product
	order := orderBy(pagination, clause.OrderByColumn{Column: clause.Column{Name: "name"}},
		"name", "code", "list_price", "created_at")
	if err := db.Order(order).
		Limit(pagination.Limit).
		Offset((pagination.Page - 1) * pagination.Limit).
		Find(&products).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get products")
	}

	return paginate(pagination, totalItems, products), nil
}
