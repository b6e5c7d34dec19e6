package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Skotchmaster/ecom/internal/models"
	"github.com/Skotchmaster/ecom/internal/repo"
	"github.com/Skotchmaster/ecom/pkg/logging"
	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"
)

type ESConfig struct {
	URL      string
	User     string
	Password string
}

func NewClient(cfg ESConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}
	return client, nil
}

// ESEngine keeps name/description documents in an index and resolves hits
// back to catalog rows so prices and stock are never stale.
type ESEngine struct {
	Client    *elasticsearch.Client
	IndexName string
	Repo      *repo.GormRepo
}

type productDoc struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// name is a keyword so a wildcard query matches substrings of the whole name.
const indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "name":        {"type": "keyword"},
      "description": {"type": "text"}
    }
  }
}`

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (e *ESEngine) EnsureIndex(ctx context.Context) error {
	res, err := e.Client.Indices.Exists([]string{e.IndexName}, e.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.Client.Indices.Create(e.IndexName,
		e.Client.Indices.Create.WithContext(ctx),
		e.Client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (e *ESEngine) Search(ctx context.Context, key string, offset, limit int) (Results, error) {
	body := map[string]any{
		"query": map[string]any{
			"wildcard": map[string]any{
				"name": map[string]any{
					"value":            "*" + escapeWildcard(key) + "*",
					"case_insensitive": true,
				},
			},
		},
		"sort":             []any{map[string]any{"id": "asc"}},
		"from":             offset,
		"size":             limit,
		"track_total_hits": true,
		"_source":          false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return Results{}, fmt.Errorf("encode search: %w", err)
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.IndexName),
		e.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return Results{}, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return Results{}, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Results{}, fmt.Errorf("decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}

	items, err := e.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return Results{}, err
	}

	total := r.Hits.Total.Value
	if stale := staleIDs(ids, items); len(stale) > 0 {
		// documents outlived their rows, e.g. a delete whose index removal failed
		logging.FromContext(ctx).Warn("search_stale_hits", "index", e.IndexName, "ids", stale)
		total -= int64(len(stale))
		if total < 0 {
			total = 0
		}
	}
	return Results{Total: total, Items: items}, nil
}

func staleIDs(ids []uint, found []models.Product) []uint {
	seen := make(map[uint]struct{}, len(found))
	for _, p := range found {
		seen[p.ID] = struct{}{}
	}
	var stale []uint
	for _, id := range ids {
		if _, ok := seen[id]; !ok {
			stale = append(stale, id)
		}
	}
	return stale
}

func (e *ESEngine) Index(ctx context.Context, p *models.Product) error {
	doc, err := json.Marshal(productDoc{ID: p.ID, Name: p.Name, Description: p.Description})
	if err != nil {
		return err
	}

	res, err := e.Client.Index(e.IndexName, bytes.NewReader(doc),
		e.Client.Index.WithContext(ctx),
		e.Client.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		e.Client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (e *ESEngine) Remove(ctx context.Context, id uint) error {
	res, err := e.Client.Delete(e.IndexName, strconv.FormatUint(uint64(id), 10),
		e.Client.Delete.WithContext(ctx),
		e.Client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("remove product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return responseError("remove", res)
	}
	return nil
}

func escapeWildcard(s string) string {
	return strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`).Replace(s)
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), bytes.TrimSpace(body))
}
