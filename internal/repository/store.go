// Package repository backs the engine's stores with PostgreSQL. The engine's
// contracts are store-agnostic; these implementations satisfy the same
// interfaces as the in-memory defaults.
package repository

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/easeaico/emotion-engine/internal/memory"
)

// Store holds the DB pool and repositories.
type Store struct {
	db          *gorm.DB
	Characters  *CharacterRepo
	Memories    *MemoryRepo
	Transitions *TransitionRepo
	Profiles    *ProfileRepo
}

// NewStore initializes the PostgreSQL pool and repositories. The embedder is
// optional; without it memories are persisted without embeddings and semantic
// recall is unavailable.
func NewStore(ctx context.Context, databaseURL string, embedder memory.Embedder) (*Store, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:          db,
		Characters:  NewCharacterRepo(db),
		Memories:    NewMemoryRepo(db, embedder),
		Transitions: NewTransitionRepo(db),
		Profiles:    NewProfileRepo(db),
	}, nil
}

// DB returns the underlying gorm handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.db == nil {
		return
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	_ = sqlDB.Close()
}
