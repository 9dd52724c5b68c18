package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	config "github.com/classmatch/api/configs"
)

// Document is the single table backing every collection. The body lives
// in a JSON column; the version column is what conditional updates
// compare against.
type Document struct {
	Collection string         `gorm:"primaryKey;size:64"`
	ID         string         `gorm:"primaryKey;size:64"`
	Fields     datatypes.JSON `gorm:"not null"`
	Version    int64          `gorm:"not null;default:1"`
	UpdatedAt  time.Time
}

type DB struct {
	db *gorm.DB
}

func Open(cfg *config.Config) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("failed to migrate documents table: %w", err)
	}
	return &DB{db: db}, nil
}

func (s *DB) Create(ctx context.Context, collection, id string, doc any) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	res := s.db.WithContext(ctx).Create(&Document{
		Collection: collection,
		ID:         id,
		Fields:     fields,
		Version:    1,
	})
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (s *DB) Get(ctx context.Context, collection, id string, out any) (int64, error) {
	var doc Document
	err := s.db.WithContext(ctx).
		First(&doc, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	if err := json.Unmarshal(doc.Fields, out); err != nil {
		return 0, fmt.Errorf("failed to decode document %s/%s: %w", collection, id, err)
	}
	return doc.Version, nil
}

func (s *DB) Update(ctx context.Context, collection, id string, doc any, expectedVersion int64) error {
	fields, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	q := s.db.WithContext(ctx).Model(&Document{}).
		Where("collection = ? AND id = ?", collection, id)
	patch := map[string]any{
		"fields":     datatypes.JSON(fields),
		"updated_at": time.Now(),
	}
	if expectedVersion == AnyVersion {
		patch["version"] = gorm.Expr("version + 1")
	} else {
		q = q.Where("version = ?", expectedVersion)
		patch["version"] = expectedVersion + 1
	}

	res := q.Updates(patch)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := s.db.WithContext(ctx).Model(&Document{}).
			Where("collection = ? AND id = ?", collection, id).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionMismatch
	}
	return nil
}

func (s *DB) Delete(ctx context.Context, collection, id string) error {
	res := s.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Document{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DB) List(ctx context.Context, collection string, filter Filter, out any) error {
	q := s.db.WithContext(ctx).Model(&Document{}).
		Where("collection = ?", collection)
	for field, want := range filter {
		switch v := want.(type) {
		case []string:
			if len(v) == 0 {
				return json.Unmarshal([]byte("[]"), out)
			}
			cond := s.db.Where(datatypes.JSONQuery("fields").Equals(v[0], field))
			for _, alt := range v[1:] {
				cond = cond.Or(datatypes.JSONQuery("fields").Equals(alt, field))
			}
			q = q.Where(cond)
		default:
			q = q.Where(datatypes.JSONQuery("fields").Equals(want, field))
		}
	}

	var docs []Document
	if err := q.Find(&docs).Error; err != nil {
		return err
	}
	raws := make([]json.RawMessage, 0, len(docs))
	for _, d := range docs {
		raws = append(raws, json.RawMessage(d.Fields))
	}
	arr, err := json.Marshal(raws)
	if err != nil {
		return err
	}
	return json.Unmarshal(arr, out)
}
