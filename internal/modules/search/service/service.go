package service

import (
	"context"
	"encoding/json"
	"html"
	"log"
	"strings"

	"anoa.com/salonstreak/internal/entity"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

const catalogIndex = "challenge_definitions"

// CatalogSearchService keeps the read-only challenge catalog searchable.
// Definitions are indexed once at seed time; the engine never mutates them.
type CatalogSearchService interface {
	IndexDefinitions(defs []entity.ChallengeDefinition) error
	SearchDefinitions(ctx context.Context, query string) ([]entity.ChallengeDefinition, error)
}

type catalogSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewCatalogSearchService(client meilisearch.ServiceManager) CatalogSearchService {
	s := &catalogSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

// cleanForIndex strips markup from authored text before it reaches the index.
func (s *catalogSearchService) cleanForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *catalogSearchService) initIndex() {
	sortableAttrs := []string{"duration_days"}
	if _, err := s.client.Index(catalogIndex).UpdateSortableAttributes(&sortableAttrs); err != nil {
		log.Printf("Failed to update catalog sortable attributes: %v", err)
	}

	log.Println("Meilisearch catalog index initialized")
}

type catalogDoc struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	DurationDays  int    `json:"duration_days"`
	PostsRequired int    `json:"posts_required"`
}

func (s *catalogSearchService) IndexDefinitions(defs []entity.ChallengeDefinition) error {
	docs := make([]catalogDoc, 0, len(defs))
	for _, def := range defs {
		docs = append(docs, catalogDoc{
			ID:            def.ID.String(),
			Slug:          def.Slug,
			Title:         s.cleanForIndex(def.Title),
			Description:   s.cleanForIndex(def.Description),
			DurationDays:  def.DurationDays,
			PostsRequired: def.PostsRequired,
		})
	}

	primaryKey := "id"
	task, err := s.client.Index(catalogIndex).AddDocuments(docs, &primaryKey)
	if err != nil {
		return err
	}
	log.Printf("Indexed %d challenge definitions, task id: %d", len(docs), task.TaskUID)

	return nil
}

func (s *catalogSearchService) SearchDefinitions(ctx context.Context, query string) ([]entity.ChallengeDefinition, error) {
	res, err := s.client.Index(catalogIndex).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Limit: 50,
	})
	if err != nil {
		return nil, err
	}

	defs := make([]entity.ChallengeDefinition, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc catalogDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}

		var def entity.ChallengeDefinition
		if err := def.ID.UnmarshalText([]byte(doc.ID)); err != nil {
			continue
		}
		def.Slug = doc.Slug
		def.Title = doc.Title
		def.Description = doc.Description
		def.DurationDays = doc.DurationDays
		def.PostsRequired = doc.PostsRequired
		defs = append(defs, def)
	}

	return defs, nil
}
