package service

import (
	"context"
	"errors"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
	"github.com/Skotchmaster/inventory/internal/repo"
	"github.com/Skotchmaster/inventory/internal/transport"
	"github.com/Skotchmaster/inventory/internal/util"
)

const DefaultImageFolder = "inventory"

type ProductService struct {
	Repo   *repo.GormRepo
	Images ImageStore
	Events Publisher
	Index  Indexer

	ImageFolder string
}

// ImageUpload is an image file received with a create or update request.
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type SearchResult struct {
	Items  []models.Product
	Total  int64
	Offset int
	Limit  int
}

func (s *ProductService) folder() string {
	if s.ImageFolder != "" {
		return s.ImageFolder
	}
	return DefaultImageFolder
}

func (s *ProductService) upload(ctx context.Context, owner uuid.UUID, img *ImageUpload) (models.Image, error) {
	if s.Images == nil {
		return models.Image{}, serverError("Image could not be uploaded", errors.New("image storage is not configured"))
	}
	key := path.Join(s.folder(), owner.String(), uuid.NewString()+strings.ToLower(filepath.Ext(img.FileName)))
	url, err := s.Images.Upload(ctx, key, img.Body, img.Size, img.ContentType)
	if err != nil {
		logging.FromContext(ctx).Error("image_upload_failed", "status", 500, "key", key, "error", err)
		return models.Image{}, serverError("Image could not be uploaded", err)
	}
	return models.Image{
		FileName: img.FileName,
		FilePath: url,
		FileType: img.ContentType,
		FileSize: humanize.Bytes(uint64(img.Size)),
	}, nil
}

func (s *ProductService) sync(ctx context.Context, eventType string, prod *models.Product) {
	publish(ctx, s.Events, TopicProductEvents, prod.UserID.String(), map[string]any{
		"type":      eventType,
		"productID": prod.ID.String(),
		"userID":    prod.UserID.String(),
		"name":      prod.Name,
	})
	if s.Index == nil {
		return
	}
	var err error
	if eventType == "product_deleted" {
		err = s.Index.DeleteProduct(ctx, prod.ID)
	} else {
		err = s.Index.IndexProduct(ctx, prod)
	}
	if err != nil {
		logging.FromContext(ctx).Error("search_index_failed", "product_id", prod.ID.String(), "error", err)
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, owner uuid.UUID, req transport.CreateProductRequest, img *ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.create")

	if blank(req.Name) || blank(req.Category) || blank(req.Quantity.String()) ||
		blank(req.Price.String()) || blank(req.Description) {
		return nil, validation("Please fill in all fields")
	}
	quantity, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		sku = models.DefaultSKU
	}

	prod := &models.Product{
		ID:          uuid.New(),
		UserID:      owner,
		Name:        req.Name,
		SKU:         sku,
		Category:    req.Category,
		Quantity:    quantity,
		Price:       price,
		Description: req.Description,
	}

	if img != nil {
		image, err := s.upload(ctx, owner, img)
		if err != nil {
			return nil, err
		}
		prod.Image = image
	}

	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, serverError("Could not create product", err)
	}

	s.sync(ctx, "product_created", prod)
	l.Info("create_product_success", "product_id", prod.ID.String())
	return prod, nil
}

func (s *ProductService) ListProducts(ctx context.Context, owner uuid.UUID) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx, owner)
	if err != nil {
		return nil, serverError("Could not list products", err)
	}
	return items, nil
}

// owned loads a product and enforces that owner is the one asking for it.
func (s *ProductService) owned(ctx context.Context, owner uuid.UUID, rawID string) (*models.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, notFound("Product not found")
	}
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, notFound("Product not found")
		}
		return nil, serverError("Could not load product", err)
	}
	if prod.UserID != owner {
		logging.FromContext(ctx).Warn("product_access_denied", "status", 401, "product_id", prod.ID.String())
		return nil, unauthorized("User not authorized")
	}
	return prod, nil
}

func (s *ProductService) GetProduct(ctx context.Context, owner uuid.UUID, id string) (*models.Product, error) {
	return s.owned(ctx, owner, id)
}

func (s *ProductService) UpdateProduct(ctx context.Context, owner uuid.UUID, id string, req transport.PatchProductRequest, img *ImageUpload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "product.update")

	prod, err := s.owned(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	updated := *prod
	if !blank(req.Name) {
		updated.Name = req.Name
	}
	if !blank(req.SKU) {
		updated.SKU = strings.TrimSpace(req.SKU)
	}
	if !blank(req.Category) {
		updated.Category = req.Category
	}
	if !blank(req.Description) {
		updated.Description = req.Description
	}
	if !blank(req.Quantity.String()) {
		if updated.Quantity, err = parseQuantity(req.Quantity); err != nil {
			return nil, err
		}
	}
	if !blank(req.Price.String()) {
		if updated.Price, err = parsePrice(req.Price); err != nil {
			return nil, err
		}
	}

	if img != nil {
		image, err := s.upload(ctx, owner, img)
		if err != nil {
			return nil, err
		}
		updated.Image = image
	}

	if err := s.Repo.SaveProduct(ctx, &updated); err != nil {
		return nil, serverError("Could not update product", err)
	}

	s.sync(ctx, "product_updated", &updated)
	l.Info("update_product_success", "product_id", updated.ID.String())
	return &updated, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, owner uuid.UUID, id string) error {
	prod, err := s.owned(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, prod.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return notFound("Product not found")
		}
		return serverError("Could not delete product", err)
	}

	s.sync(ctx, "product_deleted", prod)
	logging.FromContext(ctx).Info("delete_product_success", "product_id", prod.ID.String())
	return nil
}

// SearchProducts goes to the search index when one is configured and to the store otherwise.
func (s *ProductService) SearchProducts(ctx context.Context, owner uuid.UUID, q string, page, size int) (*SearchResult, error) {
	if blank(q) {
		return nil, validation("Please enter a search query")
	}
	offset, limit := util.Calculate(page, size)

	var (
		total int64
		items []models.Product
		err   error
	)
	if s.Index != nil {
		total, items, err = s.Index.SearchProducts(ctx, owner, q, offset, limit)
	} else {
		total, items, err = s.Repo.SearchProducts(ctx, owner, q, offset, limit)
	}
	if err != nil {
		return nil, serverError("Could not search products", err)
	}
	return &SearchResult{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}
