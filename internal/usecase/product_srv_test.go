package usecase

import (
	"context"
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

type productFixture struct {
	products   *MockProductRepository
	categories *MockCategoryRepository
	svc        *productService
	now        time.Time
}

func newProductFixture(uploader media.Uploader) *productFixture {
	f := &productFixture{
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		now:        time.Date(2026, 4, 5, 15, 0, 0, 0, time.UTC),
	}

	repo := &repository.Repository{Product: f.products, Category: f.categories}
	f.svc = NewProductService(repo, Deps{Media: uploader}, zap.NewNop()).(*productService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestProductCreate(t *testing.T) {
	pens := &entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Pens"}
	adminID := primitive.NewObjectID()

	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture(media.Disabled{})
		missing := primitive.NewObjectID()
		f.categories.On("FindByID", mock.Anything, missing).Return(nil, nil)

		_, err := f.svc.Create(context.Background(), adminID, &request.ProductRequest{Name: "Pen", Description: "d", Category: missing.Hex()}, nil)

		assert.True(t, utils.IsKind(err, utils.KindValidation))
		assert.Equal(t, "Invalid category", utils.AsAppError(err).Message)
		f.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("malformed category", func(t *testing.T) {
		f := newProductFixture(media.Disabled{})

		_, err := f.svc.Create(context.Background(), adminID, &request.ProductRequest{Name: "Pen", Description: "d", Category: "pens"}, nil)

		assert.Equal(t, "Invalid category", utils.AsAppError(err).Message)
	})

	t.Run("defaults image", func(t *testing.T) {
		f := newProductFixture(media.Disabled{})
		var created *entity.Product
		f.categories.On("FindByID", mock.Anything, pens.ID).Return(pens, nil)
		f.products.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			created = args.Get(1).(*entity.Product)
		}).Return(nil)

		resp, err := f.svc.Create(context.Background(), adminID, &request.ProductRequest{
			Name: " Fountain Pen ", Description: "Steel nib", Category: pens.ID.Hex(), Price: 100, CountInStock: 4,
		}, nil)

		require.NoError(t, err)
		assert.Equal(t, "Fountain Pen", created.Name)
		assert.Equal(t, defaultProductImage, created.Image)
		assert.Equal(t, adminID, created.CreatedBy)
		assert.NotNil(t, created.Reviews)
		assert.Equal(t, "Pens", resp.CategoryName)
	})

	t.Run("uploaded image", func(t *testing.T) {
		f := newProductFixture(&fakeUploader{url: "https://cdn.test/pen.png"})
		f.categories.On("FindByID", mock.Anything, pens.ID).Return(pens, nil)
		f.products.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.svc.Create(context.Background(), adminID, &request.ProductRequest{
			Name: "Fountain Pen", Description: "Steel nib", Category: pens.ID.Hex(), Price: 100,
		}, strings.NewReader("png"))

		require.NoError(t, err)
		assert.Equal(t, "https://cdn.test/pen.png", resp.Image)
	})
}

func TestProductListByCategoryName(t *testing.T) {
	t.Run("unknown category", func(t *testing.T) {
		f := newProductFixture(media.Disabled{})
		f.categories.On("FindByName", mock.Anything, "Erasers").Return(nil, nil)

		_, err := f.svc.ListByCategoryName(context.Background(), "Erasers")

		assert.True(t, utils.IsKind(err, utils.KindNotFound))
		assert.Equal(t, "Category not found", utils.AsAppError(err).Message)
		f.products.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
	})

	t.Run("known category", func(t *testing.T) {
		f := newProductFixture(media.Disabled{})
		pens := &entity.Category{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Pens"}
		pen := &entity.Product{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Fountain Pen", CategoryID: pens.ID}

		f.categories.On("FindByName", mock.Anything, "Pens").Return(pens, nil)
		f.products.On("Find", mock.Anything, repository.ProductFilter{CategoryID: &pens.ID}).Return([]*entity.Product{pen}, nil)
		f.categories.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*entity.Category{pens.ID: pens}, nil)

		list, err := f.svc.ListByCategoryName(context.Background(), " Pens ")

		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Pens", list[0].CategoryName)
	})
}

func TestProductList_UnknownCategoryFilterIsEmpty(t *testing.T) {
	f := newProductFixture(media.Disabled{})
	f.categories.On("FindByName", mock.Anything, "Erasers").Return(nil, nil)

	list, err := f.svc.List(context.Background(), request.ProductQuery{Category: "Erasers"})

	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	f.products.AssertNotCalled(t, "Find", mock.Anything, mock.Anything)
}

func TestProductUpdate_UnknownCategory(t *testing.T) {
	f := newProductFixture(media.Disabled{})
	product := &entity.Product{Base: entity.Base{ID: primitive.NewObjectID()}, Name: "Fountain Pen"}
	missing := primitive.NewObjectID()

	f.products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	f.categories.On("FindByID", mock.Anything, missing).Return(nil, nil)

	category := missing.Hex()
	_, err := f.svc.Update(context.Background(), product.ID.Hex(), &request.UpdateProductRequest{Category: &category}, nil)

	assert.Equal(t, "Invalid category", utils.AsAppError(err).Message)
	f.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductDelete_Unknown(t *testing.T) {
	f := newProductFixture(media.Disabled{})
	id := primitive.NewObjectID()
	f.products.On("Delete", mock.Anything, id).Return(false, nil)

	err := f.svc.Delete(context.Background(), id.Hex())

	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}
