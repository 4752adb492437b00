package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Skotchmaster/shopcore/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

// ProductIndex keeps product documents searchable by name and description.
type ProductIndex struct {
	Client *elasticsearch.Client
	Index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{Client: client, Index: index}
}

func (p *ProductIndex) IndexProduct(ctx context.Context, product models.Product) error {
	body, err := json.Marshal(product)
	if err != nil {
		return err
	}

	res, err := p.Client.Index(
		p.Index,
		bytes.NewReader(body),
		p.Client.Index.WithContext(ctx),
		p.Client.Index.WithDocumentID(strconv.FormatUint(uint64(product.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("es: index product %d: %w", product.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) DeleteProduct(ctx context.Context, id uint) error {
	res, err := p.Client.Delete(
		p.Index,
		strconv.FormatUint(uint64(id), 10),
		p.Client.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("delete", res.Status(), res.Body)
	}
	return nil
}

func (p *ProductIndex) SearchProducts(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := p.Client.Search(
		p.Client.Search.WithContext(ctx),
		p.Client.Search.WithIndex(p.Index),
		p.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.Status(), res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("es: decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op, status string, body io.Reader) error {
	b, _ := io.ReadAll(io.LimitReader(body, 4<<10))
	return fmt.Errorf("es: %s returned %s: %s", op, status, b)
}
