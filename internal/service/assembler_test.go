package service

import (
	"testing"

	"storefront-orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	return &models.User{
		ID:      7,
		Name:    "Dana",
		Email:   "dana@example.com",
		Phone:   "555-0101",
		Address: "12 Main St",
	}
}

func TestFromCartSnapshotsNameAndPrice(t *testing.T) {
	a := NewAssembler("M")
	product := &models.Product{ID: 1, Name: "Away Jersey", Price: 20.0}
	cart := models.NewCart(7)
	cart.AddItem(product, "M", 3)

	order, err := a.FromCart(cart, testUser(), "", "", "")
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, "Away Jersey", order.Lines[0].Name)
	assert.InDelta(t, 20.0, order.Lines[0].UnitPrice, 1e-9)
	assert.InDelta(t, 60.0, order.Total, 1e-9)
	assert.Equal(t, models.StatusPending, order.Status)

	// A later catalog change must not touch the snapshot.
	product.Name = "Renamed"
	product.Price = 99.0
	assert.Equal(t, "Away Jersey", order.Lines[0].Name)
	assert.InDelta(t, 20.0, order.Lines[0].UnitPrice, 1e-9)
}

func TestFromCartDefaultsContactFromProfile(t *testing.T) {
	a := NewAssembler("M")
	cart := models.NewCart(7)
	cart.AddItem(&models.Product{ID: 1, Price: 10.0}, "M", 1)

	order, err := a.FromCart(cart, testUser(), "", "", "")
	require.NoError(t, err)
	assert.Equal(t, "12 Main St", order.Address)
	assert.Equal(t, "555-0101", order.Phone)

	order, err = a.FromCart(cart, testUser(), "99 Elm St", "555-0199", "gift wrap")
	require.NoError(t, err)
	assert.Equal(t, "99 Elm St", order.Address)
	assert.Equal(t, "555-0199", order.Phone)
	assert.Equal(t, "gift wrap", order.Notes)
}

func TestFromCartRejectsEmptyCart(t *testing.T) {
	a := NewAssembler("M")

	_, err := a.FromCart(models.NewCart(7), testUser(), "", "", "")
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestExpressBuildsSingleLineOrder(t *testing.T) {
	a := NewAssembler("M")

	order, err := a.Express(7, 3, "Third Kit", "L", 2, 45.0, "12 Main St", "555-0101")
	require.NoError(t, err)

	require.Len(t, order.Lines, 1)
	assert.Equal(t, "L", order.Lines[0].Size)
	assert.InDelta(t, 90.0, order.Total, 1e-9)
	assert.Equal(t, models.StatusPending, order.Status)
}

func TestExpressRequiresExplicitContact(t *testing.T) {
	a := NewAssembler("M")

	_, err := a.Express(7, 3, "Third Kit", "L", 2, 45.0, "", "555-0101")
	assert.ErrorIs(t, err, ErrMissingContact)

	_, err = a.Express(7, 3, "Third Kit", "L", 2, 45.0, "12 Main St", "")
	assert.ErrorIs(t, err, ErrMissingContact)
}

func TestCustomDefaultsSize(t *testing.T) {
	a := NewAssembler("M")
	lines := []LineSpec{
		{ProductID: 1, Name: "Home Jersey", Quantity: 1, UnitPrice: 50.0},
		{ProductID: 2, Name: "Away Jersey", Size: "XL", Quantity: 2, UnitPrice: 40.0},
	}

	order, err := a.Custom(7, lines, "12 Main St", "555-0101", "")
	require.NoError(t, err)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, "M", order.Lines[0].Size)
	assert.Equal(t, "XL", order.Lines[1].Size)
	assert.InDelta(t, 130.0, order.Total, 1e-9)
}

func TestCustomRequiresContactAndLines(t *testing.T) {
	a := NewAssembler("M")
	lines := []LineSpec{{ProductID: 1, Quantity: 1, UnitPrice: 10.0}}

	_, err := a.Custom(7, nil, "12 Main St", "555-0101", "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = a.Custom(7, lines, "", "555-0101", "")
	assert.ErrorIs(t, err, ErrMissingContact)
}

func TestAssemblerRejectsNonPositiveQuantities(t *testing.T) {
	a := NewAssembler("M")

	for _, qty := range []int{0, -2} {
		cart := models.NewCart(7)
		cart.Items = append(cart.Items, models.CartItem{
			Product: &models.Product{ID: 1, Price: 10.0}, Size: "M", Quantity: qty,
		})
		_, err := a.FromCart(cart, testUser(), "", "", "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = a.Express(7, 1, "Home Jersey", "M", qty, 10.0, "12 Main St", "555-0101")
		assert.ErrorIs(t, err, ErrInvalidQuantity)

		_, err = a.Custom(7, []LineSpec{{ProductID: 1, Quantity: qty, UnitPrice: 10.0}},
			"12 Main St", "555-0101", "")
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	}
}
