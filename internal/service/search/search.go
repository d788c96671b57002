package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/ratehub/store_ratings/internal/models"
)

// Search runs a fuzzy multi-match over store name and address.
func Search(ctx context.Context, es *elasticsearch.Client, index, query string, from, size int) (int64, []models.Store, error) {
	body := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^2", "address"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}

	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Store `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	stores := make([]models.Store, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		stores[i] = hit.Source
	}
	return r.Hits.Total.Value, stores, nil
}

// IndexStore writes one store document, keyed by store id.
func IndexStore(ctx context.Context, es *elasticsearch.Client, index string, store models.Store) error {
	data, err := json.Marshal(store)
	if err != nil {
		return fmt.Errorf("index store: %w", err)
	}

	res, err := es.Index(
		index,
		bytes.NewReader(data),
		es.Index.WithContext(ctx),
		es.Index.WithDocumentID(fmt.Sprint(store.ID)),
	)
	if err != nil {
		return fmt.Errorf("index store: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index store: %s", res.Status())
	}
	return nil
}
