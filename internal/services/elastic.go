package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"atelier_back_end/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ProductIndex indexe et recherche les produits dans Elasticsearch.
type ProductIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewProductIndex(client *elasticsearch.Client, index string) *ProductIndex {
	return &ProductIndex{client: client, index: index}
}

func (x *ProductIndex) Index(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encodage produit: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: p.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return fmt.Errorf("erreur envoi Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elastic a refusé %s: %s", p.ID, res.String())
	}
	log.Printf("✅ Produit indexé dans Elasticsearch: %s", p.Name)
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search retourne les identifiants des produits par pertinence.
func (x *ProductIndex) Search(ctx context.Context, q string) ([]string, error) {
	var buf bytes.Buffer
	query := map[string]interface{}{
		"size": 50,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":   q,
				"fields":  []string{"name^2", "description", "category"},
				"type":    "phrase_prefix",
				"lenient": true,
			},
		},
		"_source": false,
	}
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, fmt.Errorf("erreur encodage requête: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{x.index},
		Body:  &buf,
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return nil, fmt.Errorf("erreur requête Elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elastic: %s", res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("erreur décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
