package usecase

import (
	"context"
	"testing"
	"time"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/data/repository"
	"kalamkart/internal/dto/request"
	"kalamkart/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type cartFixture struct {
	carts      *MockCartRepository
	products   *MockProductRepository
	categories *MockCategoryRepository
	svc        *cartService
	userID     primitive.ObjectID
	now        time.Time
	saved      *entity.Cart
}

func newCartFixture() *cartFixture {
	f := &cartFixture{
		carts:      new(MockCartRepository),
		products:   new(MockProductRepository),
		categories: new(MockCategoryRepository),
		userID:     primitive.NewObjectID(),
		now:        time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
	}

	repo := &repository.Repository{Cart: f.carts, Product: f.products, Category: f.categories}
	f.svc = NewCartService(repo, zap.NewNop()).(*cartService)
	f.svc.now = func() time.Time { return f.now }

	f.categories.On("FindByIDs", mock.Anything, mock.Anything).Return(map[primitive.ObjectID]*entity.Category{}, nil)
	return f
}

// stock makes products visible to cart population.
func (f *cartFixture) stock(products ...*entity.Product) {
	byID := make(map[primitive.ObjectID]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	f.products.On("FindByIDs", mock.Anything, mock.Anything).Return(byID, nil)
}

func (f *cartFixture) expectSave() {
	f.carts.On("Save", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		f.saved = args.Get(1).(*entity.Cart)
	}).Return(nil)
}

func newProduct(name string, price float64) *entity.Product {
	return &entity.Product{Base: entity.Base{ID: primitive.NewObjectID()}, Name: name, Price: price}
}

func TestCartAddItem_CreatesCartOnFirstUse(t *testing.T) {
	f := newCartFixture()
	pen := newProduct("Fountain Pen", 100)

	f.products.On("FindByID", mock.Anything, pen.ID).Return(pen, nil)
	f.carts.On("FindByUser", mock.Anything, f.userID).Return(nil, nil)
	f.stock(pen)
	f.expectSave()

	resp, err := f.svc.AddItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: pen.ID.Hex(), Quantity: 2})

	require.NoError(t, err)
	require.NotNil(t, f.saved)
	assert.Equal(t, f.userID, f.saved.UserID)
	assert.False(t, f.saved.ID.IsZero())
	assert.Equal(t, f.now, f.saved.UpdatedAt)
	require.Len(t, f.saved.Items, 1)
	assert.Equal(t, 2, f.saved.Items[0].Quantity)

	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Fountain Pen", resp.Items[0].Product.Name)
	assert.Equal(t, f.userID.Hex(), resp.User)
}

func TestCartAddItem_MergesExistingLine(t *testing.T) {
	f := newCartFixture()
	pen := newProduct("Fountain Pen", 100)
	lineID := primitive.NewObjectID()
	cart := &entity.Cart{
		Base:   entity.NewBase(f.now.Add(-time.Hour)),
		UserID: f.userID,
		Items:  []entity.CartItem{{ID: lineID, ProductID: pen.ID, Quantity: 1}},
	}

	f.products.On("FindByID", mock.Anything, pen.ID).Return(pen, nil)
	f.carts.On("FindByUser", mock.Anything, f.userID).Return(cart, nil)
	f.stock(pen)
	f.expectSave()

	resp, err := f.svc.AddItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: pen.ID.Hex(), Quantity: 2})

	require.NoError(t, err)
	require.Len(t, f.saved.Items, 1)
	assert.Equal(t, lineID, f.saved.Items[0].ID)
	assert.Equal(t, 3, f.saved.Items[0].Quantity)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, resp.Items[0].Quantity)
}

func TestCartAddItem_UnknownProduct(t *testing.T) {
	f := newCartFixture()
	id := primitive.NewObjectID()
	f.products.On("FindByID", mock.Anything, id).Return(nil, nil)

	_, err := f.svc.AddItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: id.Hex(), Quantity: 1})

	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCartMutations(t *testing.T) {
	pen := newProduct("Fountain Pen", 100)
	ink := newProduct("Ink Bottle", 40)
	penLine := primitive.NewObjectID()
	inkLine := primitive.NewObjectID()

	existing := func() *entity.Cart {
		return &entity.Cart{
			Base:  entity.Base{ID: primitive.NewObjectID()},
			Items: []entity.CartItem{
				{ID: penLine, ProductID: pen.ID, Quantity: 1},
				{ID: inkLine, ProductID: ink.ID, Quantity: 3},
			},
		}
	}

	tests := []struct {
		name      string
		noCart    bool
		run       func(f *cartFixture) error
		wantKind  utils.ErrorKind
		wantItems map[primitive.ObjectID]int
	}{
		{
			name: "update sets quantity",
			run: func(f *cartFixture) error {
				_, err := f.svc.UpdateItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: ink.ID.Hex(), Quantity: 5})
				return err
			},
			wantItems: map[primitive.ObjectID]int{pen.ID: 1, ink.ID: 5},
		},
		{
			name: "update product not in cart",
			run: func(f *cartFixture) error {
				_, err := f.svc.UpdateItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: primitive.NewObjectID().Hex(), Quantity: 5})
				return err
			},
			wantKind: utils.KindNotFound,
		},
		{
			name: "remove by line id",
			run: func(f *cartFixture) error {
				_, err := f.svc.RemoveItem(context.Background(), f.userID, penLine.Hex())
				return err
			},
			wantItems: map[primitive.ObjectID]int{ink.ID: 3},
		},
		{
			name: "remove unknown line",
			run: func(f *cartFixture) error {
				_, err := f.svc.RemoveItem(context.Background(), f.userID, primitive.NewObjectID().Hex())
				return err
			},
			wantKind: utils.KindNotFound,
		},
		{
			name: "remove malformed id",
			run: func(f *cartFixture) error {
				_, err := f.svc.RemoveItem(context.Background(), f.userID, "not-an-id")
				return err
			},
			wantKind: utils.KindValidation,
		},
		{
			name: "clear empties the cart",
			run: func(f *cartFixture) error {
				_, err := f.svc.Clear(context.Background(), f.userID)
				return err
			},
			wantItems: map[primitive.ObjectID]int{},
		},
		{
			name:   "clear without cart",
			noCart: true,
			run: func(f *cartFixture) error {
				_, err := f.svc.Clear(context.Background(), f.userID)
				return err
			},
			wantKind: utils.KindNotFound,
		},
		{
			name:   "update without cart",
			noCart: true,
			run: func(f *cartFixture) error {
				_, err := f.svc.UpdateItem(context.Background(), f.userID, &request.CartItemRequest{ProductID: pen.ID.Hex(), Quantity: 2})
				return err
			},
			wantKind: utils.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCartFixture()
			if tt.noCart {
				f.carts.On("FindByUser", mock.Anything, f.userID).Return(nil, nil)
			} else {
				f.carts.On("FindByUser", mock.Anything, f.userID).Return(existing(), nil)
			}
			f.stock(pen, ink)
			f.expectSave()

			err := tt.run(f)

			if tt.wantItems == nil {
				assert.True(t, utils.IsKind(err, tt.wantKind), "got %v", err)
				f.carts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, f.saved)
			got := make(map[primitive.ObjectID]int, len(f.saved.Items))
			for _, item := range f.saved.Items {
				got[item.ProductID] = item.Quantity
			}
			assert.Equal(t, tt.wantItems, got)
		})
	}
}

func TestCartGet(t *testing.T) {
	t.Run("no cart yet", func(t *testing.T) {
		f := newCartFixture()
		f.carts.On("FindByUser", mock.Anything, f.userID).Return(nil, nil)

		resp, err := f.svc.GetCart(context.Background(), f.userID)

		require.NoError(t, err)
		assert.Empty(t, resp.Items)
		assert.NotNil(t, resp.Items)
	})

	t.Run("deleted products are hidden", func(t *testing.T) {
		f := newCartFixture()
		pen := newProduct("Fountain Pen", 100)
		gone := primitive.NewObjectID()
		cart := &entity.Cart{
			Base:   entity.Base{ID: primitive.NewObjectID()},
			UserID: f.userID,
			Items: []entity.CartItem{
				{ID: primitive.NewObjectID(), ProductID: gone, Quantity: 1},
				{ID: primitive.NewObjectID(), ProductID: pen.ID, Quantity: 2},
			},
		}
		f.carts.On("FindByUser", mock.Anything, f.userID).Return(cart, nil)
		f.stock(pen)

		resp, err := f.svc.GetCart(context.Background(), f.userID)

		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, pen.ID.Hex(), resp.Items[0].Product.ID)
		assert.Equal(t, cart.ID.Hex(), resp.ID)
	})
}
