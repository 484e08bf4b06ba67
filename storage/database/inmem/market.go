package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/market"
)

type marketRepository struct {
	db *DB
}

var _ market.Repository = (*marketRepository)(nil) // interface compliance check

func NewMarketRepository(db *DB) *marketRepository {
	return &marketRepository{db: db}
}

func (repo *marketRepository) CreateItem(_ context.Context, item market.Item) (market.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	item.ID = newID()
	repo.db.items[item.ID] = &item
	return item, nil
}

func (repo *marketRepository) GetItemByID(_ context.Context, id string) (market.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.items[id]; ok {
		return *item, nil
	}
	return market.Item{}, market.ErrItemNotFound
}

func (repo *marketRepository) FilterItems(_ context.Context, filter market.QueryFilter, _ []core.DBOrdering) ([]market.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	match := func(item market.Item) bool {
		if filter.Search != "" {
			s := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(item.Title), s) &&
				!strings.Contains(strings.ToLower(item.Description), s) {
				return false
			}
		}
		if filter.Category != "" && item.Category != filter.Category {
			return false
		}
		if filter.Status != "" && item.Status != filter.Status {
			return false
		}
		if filter.SellerID != "" && item.SellerID != filter.SellerID {
			return false
		}
		if filter.MinPrice != nil && item.PriceCents < *filter.MinPrice {
			return false
		}
		if filter.MaxPrice != nil && item.PriceCents > *filter.MaxPrice {
			return false
		}
		return true
	}

	var items []market.Item
	for _, item := range repo.db.items {
		if match(*item) {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[j].CreatedAt.Before(items[i].CreatedAt) })
	return items, nil
}

func (repo *marketRepository) UpdateItem(_ context.Context, item market.Item) (market.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.items[item.ID]; !ok {
		return market.Item{}, market.ErrItemNotFound
	}
	repo.db.items[item.ID] = &item
	return item, nil
}

func (repo *marketRepository) CreateReview(_ context.Context, review market.Review) (market.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	key := review.UserID + "/" + review.ItemID
	if _, ok := repo.db.reviews[key]; ok {
		return market.Review{}, market.ErrAlreadyRated
	}
	review.ID = newID()
	repo.db.reviews[key] = &review
	return review, nil
}

func (repo *marketRepository) GetItemReviews(_ context.Context, itemID string) ([]market.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var reviews []market.Review
	for _, review := range repo.db.reviews {
		if review.ItemID == itemID {
			reviews = append(reviews, *review)
		}
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[j].CreatedAt.Before(reviews[i].CreatedAt) })
	return reviews, nil
}

func (repo *marketRepository) AddFavorite(_ context.Context, fav market.Favorite) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.favorites[fav.UserID+"/"+fav.ItemID] = &fav
	return nil
}

func (repo *marketRepository) RemoveFavorite(_ context.Context, userID, itemID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	delete(repo.db.favorites, userID+"/"+itemID)
	return nil
}

func (repo *marketRepository) GetFavorites(_ context.Context, userID string) ([]market.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var items []market.Item
	for _, fav := range repo.db.favorites {
		if fav.UserID != userID {
			continue
		}
		if item, ok := repo.db.items[fav.ItemID]; ok {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (repo *marketRepository) IsFavorite(_ context.Context, userID, itemID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	_, ok := repo.db.favorites[userID+"/"+itemID]
	return ok, nil
}
