package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/pkg/media"
	"kalamkart/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type categoryFixture struct {
	categories *MockCategoryRepository
	products   *MockProductRepository
	svc        *categoryService
	now        time.Time
}

func newCategoryFixture(uploader media.Uploader) *categoryFixture {
	f := &categoryFixture{
		categories: new(MockCategoryRepository),
		products:   new(MockProductRepository),
		now:        time.Date(2026, 4, 4, 11, 0, 0, 0, time.UTC),
	}

	repo := &repository.Repository{Category: f.categories, Product: f.products}
	f.svc = NewCategoryService(repo, Deps{Media: uploader}, zap.NewNop()).(*categoryService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestCategoryCreate(t *testing.T) {
	t.Run("uploaded image", func(t *testing.T) {
		f := newCategoryFixture(&fakeUploader{url: "https://cdn.test/pens.png"})
		f.categories.On("FindByName", mock.Anything, "Pens").Return(nil, nil)
		f.categories.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Create(context.Background(), &request.CategoryRequest{Name: "  Pens "}, strings.NewReader("png"))

		require.NoError(t, err)
		assert.Equal(t, "Pens", resp.Name)
		assert.Equal(t, "https://cdn.test/pens.png", resp.Image)
	})

	t.Run("duplicate name", func(t *testing.T) {
		f := newCategoryFixture(media.Disabled{})
		f.categories.On("FindByName", mock.Anything, "Pens").Return(&entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Pens"}, nil)

		_, err := f.svc.Create(context.Background(), &request.CategoryRequest{Name: "Pens", Image: "pens.png"}, nil)

		assert.True(t, utils.IsKind(err, utils.KindConflict))
		assert.Equal(t, "Category already exists", utils.AsAppError(err).Message)
		f.categories.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique index race", func(t *testing.T) {
		f := newCategoryFixture(media.Disabled{})
		f.categories.On("FindByName", mock.Anything, "Pens").Return(nil, nil)
		f.categories.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert: %w", repository.ErrDuplicateKey))

		_, err := f.svc.Create(context.Background(), &request.CategoryRequest{Name: "Pens", Image: "pens.png"}, nil)

		assert.True(t, utils.IsKind(err, utils.KindConflict))
	})

	t.Run("no image", func(t *testing.T) {
		f := newCategoryFixture(media.Disabled{})

		_, err := f.svc.Create(context.Background(), &request.CategoryRequest{Name: "Pens"}, nil)

		assert.True(t, utils.IsKind(err, utils.KindValidation))
		assert.Equal(t, "Name and image are required", utils.AsAppError(err).Message)
	})

	t.Run("uploads disabled", func(t *testing.T) {
		f := newCategoryFixture(media.Disabled{})

		_, err := f.svc.Create(context.Background(), &request.CategoryRequest{Name: "Pens"}, strings.NewReader("png"))

		assert.True(t, utils.IsKind(err, utils.KindInternal))
	})
}

func TestCategoryUpdate_RenameToTakenName(t *testing.T) {
	f := newCategoryFixture(media.Disabled{})
	category := &entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Pens", Image: "pens.png"}
	other := &entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Ink"}

	f.categories.On("FindByID", mock.Anything, category.ID).Return(category, nil)
	f.categories.On("FindByName", mock.Anything, "Ink").Return(other, nil)

	name := "Ink"
	_, err := f.svc.Update(context.Background(), category.ID.Hex(), &request.UpdateCategoryRequest{Name: &name}, nil)

	assert.True(t, utils.IsKind(err, utils.KindConflict))
	f.categories.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCategoryDelete(t *testing.T) {
	tests := []struct {
		name        string
		found       bool
		inUse       int64
		wantKind    utils.ErrorKind
		wantDeleted bool
	}{
		{name: "still used by products", found: true, inUse: 2, wantKind: utils.KindConflict},
		{name: "unknown category", found: false, wantKind: utils.KindNotFound},
		{name: "unused", found: true, inUse: 0, wantDeleted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCategoryFixture(media.Disabled{})
			id := primitive.NewObjectID()
			if tt.found {
				f.categories.On("FindByID", mock.Anything, id).Return(&entity.Category{Base: entity.Base{ID: id}, Name: "Pens"}, nil)
			} else {
				f.categories.On("FindByID", mock.Anything, id).Return(nil, nil)
			}
			f.products.On("CountByCategory", mock.Anything, id).Return(tt.inUse, nil)
			f.categories.On("Delete", mock.Anything, id).Return(true, nil)

			err := f.svc.Delete(context.Background(), id.Hex())

			if !tt.wantDeleted {
				assert.True(t, utils.IsKind(err, tt.wantKind), "got %v", err)
				f.categories.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			f.categories.AssertCalled(t, "Delete", mock.Anything, id)
		})
	}
}

func TestCategoryBulkCreate_SkipsDuplicates(t *testing.T) {
	f := newCategoryFixture(media.Disabled{})
	existing := &entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Pens"}

	f.categories.On("FindByName", mock.Anything, "Pens").Return(existing, nil)
	f.categories.On("FindByName", mock.Anything, "Ink").Return(nil, nil)
	f.categories.On("FindByName", mock.Anything, "Paper").Return(nil, nil)
	f.categories.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool { return c.Name == "Ink" })).Return(nil)
	f.categories.On("Create", mock.Anything, mock.MatchedBy(func(c *entity.Category) bool { return c.Name == "Paper" })).
		Return(fmt.Errorf("insert: %w", repository.ErrDuplicateKey))

	resp, err := f.svc.BulkCreate(context.Background(), &request.BulkCategoryRequest{Categories: []request.CategoryRequest{
		{Name: "Pens", Image: "pens.png"},
		{Name: "Ink", Image: "ink.png"},
		{Name: "ink", Image: "ink2.png"},
		{Name: "Paper", Image: "paper.png"},
	}})

	require.NoError(t, err)
	require.Len(t, resp.Created, 1)
	assert.Equal(t, "Ink", resp.Created[0].Name)
	assert.Equal(t, []string{"Pens", "ink", "Paper"}, resp.Skipped)
}
