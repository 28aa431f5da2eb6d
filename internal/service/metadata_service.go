package service

import (
	"context"
	"encoding/json"

	"github.com/dippreneurlab/new-salt/internal/repository"
)

const pipelineMetadataKey = "pipeline"

// MetadataService serves the read-only pipeline lookup tables (client list,
// rate card and category mappings) seeded by migration.
type MetadataService struct {
	repo repository.MetadataRepository
}

func NewMetadataService(repo repository.MetadataRepository) *MetadataService {
	return &MetadataService{repo: repo}
}

func (s *MetadataService) Pipeline(ctx context.Context) (json.RawMessage, error) {
	return s.repo.Get(ctx, pipelineMetadataKey)
}
