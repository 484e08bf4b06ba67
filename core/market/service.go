package market

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
)

var (
	// errors
	ErrItemNotFound  = errors.New("item not found")
	ErrAlreadyRated  = errors.New("item already reviewed by this user")
	ErrItemNotActive = errors.New("item is no longer active")
)

type (
	Repository interface {
		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItemByID(ctx context.Context, id string) (Item, error)
		FilterItems(ctx context.Context, filter QueryFilter, ordering []core.DBOrdering) ([]Item, error)
		UpdateItem(ctx context.Context, item Item) (Item, error)

		// CreateReview fails with ErrAlreadyRated when the (user, item)
		// pair already has one.
		CreateReview(ctx context.Context, review Review) (Review, error)
		GetItemReviews(ctx context.Context, itemID string) ([]Review, error)

		AddFavorite(ctx context.Context, fav Favorite) error
		RemoveFavorite(ctx context.Context, userID, itemID string) error
		GetFavorites(ctx context.Context, userID string) ([]Item, error)
		IsFavorite(ctx context.Context, userID, itemID string) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateItem(ctx context.Context, sellerID string, ni NewItem) (Item, error) {
	now := time.Now().UTC()
	return svc.repo.CreateItem(ctx, Item{
		SellerID:    sellerID,
		Title:       ni.Title,
		Description: ni.Description,
		PriceCents:  ni.PriceCents,
		Category:    ni.Category,
		Status:      StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) GetItemByID(ctx context.Context, id string) (Item, error) {
	return svc.repo.GetItemByID(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter, ordering ...core.DBOrdering) ([]Item, error) {
	return svc.repo.FilterItems(ctx, filter, ordering)
}

func (svc *Service) UpdateItem(ctx context.Context, item Item, ui UpdateItem) (Item, error) {
	if ui.Title != "" {
		item.Title = ui.Title
	}
	if ui.Description != nil {
		item.Description = *ui.Description
	}
	if ui.PriceCents != nil {
		item.PriceCents = *ui.PriceCents
	}
	if ui.Category != "" {
		item.Category = ui.Category
	}
	if ui.Status != "" {
		item.Status = ui.Status
	}
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateItem(ctx, item)
}

// RemoveItem soft-deletes the listing; reviews stay attached.
func (svc *Service) RemoveItem(ctx context.Context, item Item) (Item, error) {
	item.Status = StatusRemoved
	item.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateItem(ctx, item)
}

func (svc *Service) Review(ctx context.Context, userID, itemID string, nr NewReview) (Review, error) {
	if _, err := svc.repo.GetItemByID(ctx, itemID); err != nil {
		return Review{}, err
	}
	return svc.repo.CreateReview(ctx, Review{
		ItemID:    itemID,
		UserID:    userID,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) ItemReviews(ctx context.Context, itemID string) ([]Review, error) {
	return svc.repo.GetItemReviews(ctx, itemID)
}

// ToggleFavorite flips the favorite flag for the pair and reports the new
// state. Both directions are idempotent at the storage layer.
func (svc *Service) ToggleFavorite(ctx context.Context, userID, itemID string) (favorited bool, err error) {
	if _, err = svc.repo.GetItemByID(ctx, itemID); err != nil {
		return false, err
	}
	fav, err := svc.repo.IsFavorite(ctx, userID, itemID)
	if err != nil {
		return false, err
	}
	if fav {
		if err = svc.repo.RemoveFavorite(ctx, userID, itemID); err != nil {
			return false, errors.Wrap(err, "removing favorite")
		}
		return false, nil
	}
	if err = svc.repo.AddFavorite(ctx, Favorite{UserID: userID, ItemID: itemID, CreatedAt: time.Now().UTC()}); err != nil {
		return false, errors.Wrap(err, "adding favorite")
	}
	return true, nil
}

func (svc *Service) Favorites(ctx context.Context, userID string) ([]Item, error) {
	return svc.repo.GetFavorites(ctx, userID)
}
