package surrealdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/foliolab/folio/internal/common"
)

// SystemStore holds small server-side state such as generated admin
// credentials and provider cursors.
type SystemStore struct {
	db     *surrealdb.DB
	logger *common.Logger
}

func NewSystemStore(db *surrealdb.DB, logger *common.Logger) *SystemStore {
	return &SystemStore{
		db:     db,
		logger: logger,
	}
}

type systemKV struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (s *SystemStore) GetKV(ctx context.Context, key string) (string, error) {
	kv, err := surrealdb.Select[systemKV](ctx, s.db, surrealmodels.NewRecordID("system_kv", key))
	if err != nil || kv == nil {
		return "", errors.New("system KV not found")
	}
	return kv.Value, nil
}

func (s *SystemStore) SetKV(ctx context.Context, key, value string) error {
	kv := systemKV{Key: key, Value: value}

	sql := "UPSERT type::record('system_kv', $id) CONTENT $kv"
	vars := map[string]any{"id": key, "kv": kv}

	for attempt := 1; attempt <= 3; attempt++ {
		_, err := surrealdb.Query[[]systemKV](ctx, s.db, sql, vars)
		if err == nil {
			return nil
		}
		if attempt == 3 {
			return fmt.Errorf("failed to set system KV after retries: %w", err)
		}
	}
	return nil
}
