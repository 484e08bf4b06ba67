package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/malezi/apps/api/echo"
	"github.com/trezcool/malezi/core/market"
)

func createItem(t *testing.T, ta *testApp, token string, ni market.NewItem) market.Item {
	t.Helper()

	req, rec := newAuthRequest(http.MethodPost, "/v1/market/items", token, marchallObj(t, ni))
	ta.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var item market.Item
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	return item
}

func Test_marketApi_items(t *testing.T) {
	ta := newTestApp(t)
	seller := createUser(t, ta, "Seller", "seller01", "seller@test.cd", nil, true)
	buyer := createUser(t, ta, "Buyer", "buyer001", "buyer@test.cd", nil, true)
	sellerToken := getToken(t, seller)
	buyerToken := getToken(t, buyer)

	t.Run("create invalid category", func(t *testing.T) {
		body := marchallObj(t, market.NewItem{Title: "Wheelchair", Category: "vehicles"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/market/items", sellerToken, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	item := createItem(t, ta, sellerToken, market.NewItem{
		Title:      "Adapted tricycle",
		Category:   market.CategoryMobility,
		PriceCents: 250_00,
	})
	assert.Equal(t, seller.ID, item.SellerID)
	assert.Equal(t, market.StatusActive, item.Status)

	cheap := createItem(t, ta, sellerToken, market.NewItem{
		Title:      "Picture book",
		Category:   market.CategoryBooks,
		PriceCents: 5_00,
	})

	t.Run("items are public to authed users", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/market/items/"+item.ID, buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("query with price filter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/market/items?max_price=1000", buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var items []market.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.Len(t, items, 1)
		assert.Equal(t, cheap.ID, items[0].ID)
	})

	t.Run("only seller may update", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"title": "Hijacked"})
		req, rec := newAuthRequest(http.MethodPut, "/v1/market/items/"+item.ID, buyerToken, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	})

	t.Run("seller marks item sold", func(t *testing.T) {
		body := marchallObj(t, map[string]interface{}{"status": market.StatusSold})
		req, rec := newAuthRequest(http.MethodPut, "/v1/market/items/"+item.ID, sellerToken, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var updated market.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
		assert.Equal(t, market.StatusSold, updated.Status)
	})

	t.Run("destroy soft-removes", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/market/items/"+cheap.ID, sellerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

		// gone from active listings
		req, rec = newAuthRequest(http.MethodGet, "/v1/market/items?status=active", buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []market.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		assert.Empty(t, items)

		// but still retrievable
		req, rec = newAuthRequest(http.MethodGet, "/v1/market/items/"+cheap.ID, buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var removed market.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &removed))
		assert.Equal(t, market.StatusRemoved, removed.Status)
	})
}

func Test_marketApi_reviews(t *testing.T) {
	ta := newTestApp(t)
	seller := createUser(t, ta, "Seller", "seller01", "seller@test.cd", nil, true)
	buyer := createUser(t, ta, "Buyer", "buyer001", "buyer@test.cd", nil, true)
	buyerToken := getToken(t, buyer)

	item := createItem(t, ta, getToken(t, seller), market.NewItem{
		Title:    "Sensory toy set",
		Category: market.CategoryToys,
	})

	t.Run("rating is required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/market/items/"+item.ID+"/reviews", buyerToken, []byte(`{}`))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	})

	t.Run("review", func(t *testing.T) {
		body := marchallObj(t, market.NewReview{Rating: 5, Comment: "kid loves it"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/market/items/"+item.ID+"/reviews", buyerToken, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var rev market.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rev))
		assert.Equal(t, buyer.ID, rev.UserID)
		assert.Equal(t, 5, rev.Rating)
	})

	t.Run("one review per user per item", func(t *testing.T) {
		body := marchallObj(t, market.NewReview{Rating: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/market/items/"+item.ID+"/reviews", buyerToken, body)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
	})

	t.Run("list reviews", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/market/items/"+item.ID+"/reviews", getToken(t, seller))
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var reviews []market.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reviews))
		require.Len(t, reviews, 1)
	})
}

func Test_marketApi_favorites(t *testing.T) {
	ta := newTestApp(t)
	seller := createUser(t, ta, "Seller", "seller01", "seller@test.cd", nil, true)
	buyer := createUser(t, ta, "Buyer", "buyer001", "buyer@test.cd", nil, true)
	buyerToken := getToken(t, buyer)

	item := createItem(t, ta, getToken(t, seller), market.NewItem{
		Title:    "Weighted blanket",
		Category: market.CategoryOther,
	})

	toggle := func() bool {
		req, rec := newAuthRequest(http.MethodPut, "/v1/market/items/"+item.ID+"/favorite", buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp echoapi.FavoriteResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp.Favorited
	}
	favorites := func() []market.Item {
		req, rec := newAuthRequest(http.MethodGet, "/v1/market/items/favorites", buyerToken)
		ta.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var items []market.Item
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		return items
	}

	assert.True(t, toggle())
	favs := favorites()
	require.Len(t, favs, 1)
	assert.Equal(t, item.ID, favs[0].ID)

	// toggling again clears it
	assert.False(t, toggle())
	assert.Empty(t, favorites())
}
