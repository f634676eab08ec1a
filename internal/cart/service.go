package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidItem = errors.New("invalid cart item")

// Aggregator is the checkout-facing view of a single user's cart.
type Aggregator interface {
	LineItems(ctx context.Context) ([]Item, error)
	Subtotal(ctx context.Context) (decimal.Decimal, error)
	Clear(ctx context.Context) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type AddItemInput struct {
	ProductID       string
	Name            string
	Quantity        int
	ListPrice       decimal.Decimal
	NegotiatedPrice *decimal.Decimal
}

func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return &Cart{UserID: userID, Items: []Item{}, Subtotal: decimal.Zero}, nil
	}
	return c, nil
}

// AddItem merges the quantity into an existing line for the same product or
// appends a new line.
func (s *Service) AddItem(ctx context.Context, userID string, in AddItemInput) (*Cart, error) {
	if in.ProductID == "" || in.Quantity < 1 || !validPrice(in.ListPrice) {
		return nil, ErrInvalidItem
	}
	if in.NegotiatedPrice != nil && !validPrice(*in.NegotiatedPrice) {
		return nil, ErrInvalidItem
	}

	c, err := s.repo.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		c = &Cart{UserID: userID}
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == in.ProductID {
			c.Items[i].Quantity += in.Quantity
			c.Items[i].ListPrice = in.ListPrice
			c.Items[i].NegotiatedPrice = in.NegotiatedPrice
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{
			ProductID:       in.ProductID,
			Name:            in.Name,
			Quantity:        in.Quantity,
			ListPrice:       in.ListPrice,
			NegotiatedPrice: in.NegotiatedPrice,
		})
	}

	if err := s.repo.UpsertCart(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// validPrice accepts non-negative prices in whole kobo.
func validPrice(p decimal.Decimal) bool {
	return !p.IsNegative() && p.Equal(p.Round(2))
}

// ForUser binds the repository to one user scope.
func (s *Service) ForUser(userID string) Aggregator {
	return &userCart{repo: s.repo, userID: userID}
}

type userCart struct {
	repo   Repository
	userID string
}

func (u *userCart) LineItems(ctx context.Context) ([]Item, error) {
	c, err := u.repo.GetCart(ctx, u.userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c == nil {
		return []Item{}, nil
	}
	return CloneItems(c.Items), nil
}

func (u *userCart) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	items, err := u.LineItems(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return Subtotal(items), nil
}

func (u *userCart) Clear(ctx context.Context) error {
	return u.repo.ClearCart(ctx, u.userID)
}
