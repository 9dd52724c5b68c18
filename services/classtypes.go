package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/classmatch/api/apperrors"
	"github.com/classmatch/api/models"
	"github.com/classmatch/api/store"
)

// ClassTypes is the admin-facing catalog of class definitions.
type ClassTypes struct {
	store store.Store
}

func NewClassTypes(st store.Store) *ClassTypes {
	return &ClassTypes{store: st}
}

type ClassTypePatch struct {
	Name        *string
	Categories  *[]string
	Description *string
	IsActive    *bool
}

func (s *ClassTypes) Create(ctx context.Context, name string, categories []string, description string) (*models.ClassType, error) {
	if categories == nil {
		categories = []string{}
	}
	ct := &models.ClassType{
		ID:          uuid.NewString(),
		Name:        name,
		Categories:  categories,
		Description: description,
		IsActive:    true,
	}
	if err := s.store.Create(ctx, models.CollectionClassTypes, ct.ID, ct); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to create class type", err)
	}
	return ct, nil
}

func (s *ClassTypes) Get(ctx context.Context, id string) (*models.ClassType, error) {
	return getClassType(ctx, s.store, id)
}

func (s *ClassTypes) List(ctx context.Context, onlyActive bool) ([]models.ClassType, error) {
	filter := store.Filter{}
	if onlyActive {
		filter["isActive"] = true
	}
	var types []models.ClassType
	if err := s.store.List(ctx, models.CollectionClassTypes, filter, &types); err != nil {
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to list class types", err)
	}
	return types, nil
}

func (s *ClassTypes) Update(ctx context.Context, id string, patch ClassTypePatch) (*models.ClassType, error) {
	var ct models.ClassType
	version, err := s.store.Get(ctx, models.CollectionClassTypes, id, &ct)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "class type not found")
		}
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to load class type", err)
	}

	if patch.Name != nil {
		ct.Name = *patch.Name
	}
	if patch.Categories != nil {
		ct.Categories = *patch.Categories
	}
	if patch.Description != nil {
		ct.Description = *patch.Description
	}
	if patch.IsActive != nil {
		ct.IsActive = *patch.IsActive
	}

	if err := s.store.Update(ctx, models.CollectionClassTypes, id, &ct, version); err != nil {
		if errors.Is(err, store.ErrVersionMismatch) {
			return nil, apperrors.New(apperrors.Conflict, "class type was modified concurrently, please retry")
		}
		return nil, apperrors.Wrap(apperrors.Dependency, "failed to save class type", err)
	}
	return &ct, nil
}

// Delete refuses while any class still references the type. The store has
// no foreign keys; this check is the only referential integrity there is.
func (s *ClassTypes) Delete(ctx context.Context, id string) error {
	if _, err := getClassType(ctx, s.store, id); err != nil {
		return err
	}

	var classes []models.Class
	if err := s.store.List(ctx, models.CollectionClasses, store.Filter{"classTypeId": id}, &classes); err != nil {
		return apperrors.Wrap(apperrors.Dependency, "failed to check class references", err)
	}
	if len(classes) > 0 {
		return apperrors.Newf(apperrors.Conflict, "class type is referenced by %d class(es)", len(classes))
	}

	if err := s.store.Delete(ctx, models.CollectionClassTypes, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "class type not found")
		}
		return apperrors.Wrap(apperrors.Dependency, "failed to delete class type", err)
	}
	return nil
}
