package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/market"
)

type marketRepository struct {
	db *sqlx.DB
}

var _ market.Repository = (*marketRepository)(nil) // interface compliance check

var itemSortFields = sortableFields("title", "price_cents", "category", "status", "created_at", "updated_at")

func NewMarketRepository(db *sqlx.DB) *marketRepository {
	return &marketRepository{db: db}
}

type itemRow struct {
	ID          string      `db:"id"`
	SellerID    string      `db:"seller_id"`
	Title       string      `db:"title"`
	Description null.String `db:"description"`
	PriceCents  int         `db:"price_cents"`
	Category    string      `db:"category"`
	Status      string      `db:"status"`
	CreatedAt   null.Time   `db:"created_at"`
	UpdatedAt   null.Time   `db:"updated_at"`
}

func (repo marketRepository) fromItemRow(row itemRow) market.Item {
	return market.Item{
		ID:          row.ID,
		SellerID:    row.SellerID,
		Title:       row.Title,
		Description: row.Description.String,
		PriceCents:  row.PriceCents,
		Category:    market.Category(row.Category),
		Status:      market.Status(row.Status),
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func (repo marketRepository) fromItemRows(rows []itemRow) []market.Item {
	items := make([]market.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, repo.fromItemRow(row))
	}
	return items
}

func (repo marketRepository) CreateItem(ctx context.Context, item market.Item) (market.Item, error) {
	item.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO marketplace_items (id, seller_id, title, description, price_cents, category, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		item.ID, item.SellerID, item.Title,
		null.NewString(item.Description, item.Description != ""),
		item.PriceCents, string(item.Category), string(item.Status),
		item.CreatedAt.UTC(), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return market.Item{}, errors.Wrap(err, "creating item")
	}
	return item, nil
}

func (repo marketRepository) GetItemByID(ctx context.Context, id string) (market.Item, error) {
	var row itemRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM marketplace_items WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return market.Item{}, market.ErrItemNotFound
	}
	if err != nil {
		return market.Item{}, errors.Wrap(err, "getting item")
	}
	return repo.fromItemRow(row), nil
}

func (repo marketRepository) FilterItems(ctx context.Context, filter market.QueryFilter, ordering []core.DBOrdering) ([]market.Item, error) {
	var conds []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", p))
	}
	if filter.Category != "" {
		conds = append(conds, fmt.Sprintf("category = %s", arg(string(filter.Category))))
	}
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = %s", arg(string(filter.Status))))
	}
	if filter.SellerID != "" {
		conds = append(conds, fmt.Sprintf("seller_id = %s", arg(filter.SellerID)))
	}
	if filter.MinPrice != nil {
		conds = append(conds, fmt.Sprintf("price_cents >= %s", arg(*filter.MinPrice)))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, fmt.Sprintf("price_cents <= %s", arg(*filter.MaxPrice)))
	}

	query := `SELECT * FROM marketplace_items`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += orderBy(ordering, itemSortFields, "created_at DESC")

	var rows []itemRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering items")
	}
	return repo.fromItemRows(rows), nil
}

func (repo marketRepository) UpdateItem(ctx context.Context, item market.Item) (market.Item, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE marketplace_items
		SET title = $2, description = $3, price_cents = $4, category = $5, status = $6, updated_at = $7
		WHERE id = $1`,
		item.ID, item.Title,
		null.NewString(item.Description, item.Description != ""),
		item.PriceCents, string(item.Category), string(item.Status), item.UpdatedAt.UTC(),
	)
	if err != nil {
		return market.Item{}, errors.Wrap(err, "updating item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return market.Item{}, market.ErrItemNotFound
	}
	return item, nil
}

func (repo marketRepository) CreateReview(ctx context.Context, review market.Review) (market.Review, error) {
	review.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO product_reviews (id, item_id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		review.ID, review.ItemID, review.UserID, review.Rating,
		null.NewString(review.Comment, review.Comment != ""),
		review.CreatedAt.UTC(),
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code.Name() == "unique_violation" {
			return market.Review{}, market.ErrAlreadyRated
		}
		return market.Review{}, errors.Wrap(err, "creating review")
	}
	return review, nil
}

func (repo marketRepository) GetItemReviews(ctx context.Context, itemID string) ([]market.Review, error) {
	var rows []struct {
		ID        string      `db:"id"`
		ItemID    string      `db:"item_id"`
		UserID    string      `db:"user_id"`
		Rating    int         `db:"rating"`
		Comment   null.String `db:"comment"`
		CreatedAt null.Time   `db:"created_at"`
	}
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM product_reviews WHERE item_id = $1 ORDER BY created_at DESC`, itemID)
	if err != nil {
		return nil, errors.Wrap(err, "getting reviews")
	}
	reviews := make([]market.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, market.Review{
			ID:        row.ID,
			ItemID:    row.ItemID,
			UserID:    row.UserID,
			Rating:    row.Rating,
			Comment:   row.Comment.String,
			CreatedAt: row.CreatedAt.Time,
		})
	}
	return reviews, nil
}

func (repo marketRepository) AddFavorite(ctx context.Context, fav market.Favorite) error {
	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO product_favorites (user_id, item_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO NOTHING`,
		fav.UserID, fav.ItemID, fav.CreatedAt.UTC(),
	)
	if err != nil {
		return errors.Wrap(err, "adding favorite")
	}
	return nil
}

func (repo marketRepository) RemoveFavorite(ctx context.Context, userID, itemID string) error {
	_, err := repo.db.ExecContext(ctx,
		`DELETE FROM product_favorites WHERE user_id = $1 AND item_id = $2`, userID, itemID)
	if err != nil {
		return errors.Wrap(err, "removing favorite")
	}
	return nil
}

func (repo marketRepository) GetFavorites(ctx context.Context, userID string) ([]market.Item, error) {
	var rows []itemRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT i.* FROM marketplace_items i
		JOIN product_favorites f ON f.item_id = i.id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, errors.Wrap(err, "getting favorites")
	}
	return repo.fromItemRows(rows), nil
}

func (repo marketRepository) IsFavorite(ctx context.Context, userID, itemID string) (bool, error) {
	var fav bool
	err := repo.db.GetContext(ctx, &fav,
		`SELECT EXISTS (SELECT 1 FROM product_favorites WHERE user_id = $1 AND item_id = $2)`, userID, itemID)
	if err != nil {
		return false, errors.Wrap(err, "checking favorite")
	}
	return fav, nil
}
