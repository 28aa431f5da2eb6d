package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"

	"github.com/dippreneurlab/new-salt/internal/repository"
)

// StorageService is the per-user key-value storage resource.
type StorageService struct {
	repo repository.StorageRepository
	node *snowflake.Node
}

func NewStorageService(repo repository.StorageRepository, node *snowflake.Node) *StorageService {
	return &StorageService{repo: repo, node: node}
}

// Get returns the stored value for (userID, key), nil when absent.
func (s *StorageService) Get(ctx context.Context, userID, key string) (json.RawMessage, error) {
	return s.repo.Get(ctx, userID, key)
}

// Set writes value under (userID, key) and returns the persisted value.
func (s *StorageService) Set(ctx context.Context, userID, email, key string, value json.RawMessage) (json.RawMessage, error) {
	return s.repo.Set(ctx, s.node.Generate().Int64(), userID, email, key, value)
}

func (s *StorageService) Delete(ctx context.Context, userID, key string) error {
	return s.repo.Delete(ctx, userID, key)
}
