package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
	"github.com/google/uuid"

	"github.com/Skotchmaster/inventory/internal/models"
)

const DefaultIndex = "products"

// ProductIndex keeps a searchable copy of products, one document per product id.
type ProductIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	if index == "" {
		index = DefaultIndex
	}
	return &ProductIndex{ES: client, Index: index}
}

// productDoc is the indexed form of a product. _id is reserved by Elasticsearch.
type productDoc struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user"`
	Name        string       `json:"name"`
	SKU         string       `json:"sku"`
	Category    string       `json:"category"`
	Quantity    int64        `json:"quantity"`
	Price       float64      `json:"price"`
	Description string       `json:"description"`
	Image       models.Image `json:"image,omitzero"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func toDoc(p *models.Product) productDoc {
	return productDoc{
		ID:          p.ID.String(),
		UserID:      p.UserID.String(),
		Name:        p.Name,
		SKU:         p.SKU,
		Category:    p.Category,
		Quantity:    p.Quantity,
		Price:       p.Price,
		Description: p.Description,
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func (d productDoc) product() (models.Product, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Product{}, fmt.Errorf("es: bad product id %q: %w", d.ID, err)
	}
	owner, err := uuid.Parse(d.UserID)
	if err != nil {
		return models.Product{}, fmt.Errorf("es: bad owner id %q: %w", d.UserID, err)
	}
	return models.Product{
		ID:          id,
		UserID:      owner,
		Name:        d.Name,
		SKU:         d.SKU,
		Category:    d.Category,
		Quantity:    d.Quantity,
		Price:       d.Price,
		Description: d.Description,
		Image:       d.Image,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}, nil
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(res.Body)
	return fmt.Errorf("es: %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}

func (x *ProductIndex) IndexProduct(ctx context.Context, p *models.Product) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(toDoc(p)); err != nil {
		return fmt.Errorf("es: encode product: %w", err)
	}

	res, err := x.ES.Index(x.Index, &buf,
		x.ES.Index.WithContext(ctx),
		x.ES.Index.WithDocumentID(p.ID.String()),
	)
	if err != nil {
		return fmt.Errorf("es: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteProduct treats a missing document as already deleted.
func (x *ProductIndex) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := x.ES.Delete(x.Index, id.String(), x.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: delete: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

func searchBody(owner uuid.UUID, query string, from, size int) map[string]any {
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": map[string]any{
					"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "sku", "category", "description"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]any{
					"term": map[string]any{"user.keyword": owner.String()},
				},
			},
		},
		"sort": []any{"_score", map[string]any{"createdAt": "desc"}},
		"from": from,
		"size": size,
	}
}

func (x *ProductIndex) SearchProducts(ctx context.Context, owner uuid.UUID, query string, from, size int) (int64, []models.Product, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(owner, query, from, size)); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := x.ES.Search(
		x.ES.Search.WithContext(ctx),
		x.ES.Search.WithIndex(x.Index),
		x.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return 0, []models.Product{}, nil
	}
	if res.IsError() {
		return 0, nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source productDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	prods := make([]models.Product, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p, err := hit.Source.product()
		if err != nil {
			return 0, nil, err
		}
		prods = append(prods, p)
	}
	return r.Hits.Total.Value, prods, nil
}
