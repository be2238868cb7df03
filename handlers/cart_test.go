package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"wardrobe-backend/middleware"
	"wardrobe-backend/models"
	"wardrobe-backend/utils"

	"github.com/google/uuid"
)

func TestGetCart_MintsGuestID(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, jsonRequest("GET", "/api/cart", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	guestID := w.Header().Get(middleware.GuestIDHeader)
	if !utils.IsValidGuestID(guestID) {
		t.Fatalf("expected a minted guest id in the response header, got %q", guestID)
	}

	resp := parseResponse(w)
	if resp["owner_id"] != guestID {
		t.Errorf("expected cart owned by minted guest id %s, got %v", guestID, resp["owner_id"])
	}
	if resp["is_guest"] != true {
		t.Errorf("expected a guest cart, got is_guest=%v", resp["is_guest"])
	}
	if items := resp["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(items))
	}
}

func TestGetCart_ReusesGuestID(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	guestID := utils.NewGuestID()

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, guestRequest("GET", "/api/cart", nil, guestID))
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, guestRequest("GET", "/api/cart", nil, guestID))

	first := parseResponse(w1)
	second := parseResponse(w2)
	if first["id"] != second["id"] {
		t.Errorf("expected the same cart on both requests, got %v and %v", first["id"], second["id"])
	}
	if w2.Header().Get(middleware.GuestIDHeader) != guestID {
		t.Errorf("expected the echoed guest id %s, got %s", guestID, w2.Header().Get(middleware.GuestIDHeader))
	}
}

func TestGetCart_MalformedGuestIDReplaced(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("GET", "/api/cart", nil, "not-a-guid"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	minted := w.Header().Get(middleware.GuestIDHeader)
	if minted == "not-a-guid" || !utils.IsValidGuestID(minted) {
		t.Errorf("expected a freshly minted guest id, got %q", minted)
	}
}

func TestGetCart_InvalidTokenRejected(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	req := jsonRequest("GET", "/api/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	// A guest id alongside a bad token must not rescue the request.
	req.Header.Set(middleware.GuestIDHeader, utils.NewGuestID())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestAddToCart_CapturesUnitPrice(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Aspen Sliding Wardrobe", 45999)
	guestID := utils.NewGuestID()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("POST", "/api/cart/items", map[string]interface{}{
		"product_id": product.ID.String(),
		"quantity":   2,
	}, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["quantity"].(float64) != 2 {
		t.Errorf("expected quantity 2, got %v", line["quantity"])
	}
	if line["unit_price"].(float64) != 45999 {
		t.Errorf("expected captured unit price 45999, got %v", line["unit_price"])
	}
	if resp["subtotal"].(float64) != 91998 {
		t.Errorf("expected subtotal 91998, got %v", resp["subtotal"])
	}

	// A later price change must not rewrite the captured line price.
	db.Model(&models.Product{}).Where("id = ?", product.ID).Update("price_amount", 99999)
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, guestRequest("GET", "/api/cart", nil, guestID))
	line = parseResponse(w2)["items"].([]interface{})[0].(map[string]interface{})
	if line["unit_price"].(float64) != 45999 {
		t.Errorf("unit price drifted after catalog change: %v", line["unit_price"])
	}
}

func TestAddToCart_AccumulatesOnExistingLine(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Oslo Storage Unit", 12500)
	guestID := utils.NewGuestID()

	body := map[string]interface{}{"product_id": product.ID.String(), "quantity": 1}
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, guestRequest("POST", "/api/cart/items", body, guestID))
		if w.Code != http.StatusOK {
			t.Fatalf("add %d: expected 200, got %d", i, w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("GET", "/api/cart", nil, guestID))
	resp := parseResponse(w)
	items := resp["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("expected a single line per product, got %d", len(items))
	}
	if q := items[0].(map[string]interface{})["quantity"].(float64); q != 3 {
		t.Errorf("expected accumulated quantity 3, got %v", q)
	}
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("POST", "/api/cart/items", map[string]interface{}{
		"product_id": uuid.New().String(),
		"quantity":   1,
	}, utils.NewGuestID()))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestAddToCart_RejectsBadPayload(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Vienna Wardrobe", 30000)

	cases := []map[string]interface{}{
		{"quantity": 1},
		{"product_id": product.ID.String()},
		{"product_id": product.ID.String(), "quantity": 0},
		{"product_id": product.ID.String(), "quantity": -2},
		{"product_id": "not-a-uuid", "quantity": 1},
	}
	for i, body := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, guestRequest("POST", "/api/cart/items", body, utils.NewGuestID()))
		if w.Code != http.StatusBadRequest {
			t.Errorf("case %d: expected 400, got %d", i, w.Code)
		}
	}
}

func TestUpdateCartItem_SetsQuantity(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Nordic Wardrobe", 20000)
	guestID := utils.NewGuestID()
	seedCart(db, guestID, true, product.ID, 1, 20000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("PUT", "/api/cart/items/"+product.ID.String(),
		map[string]interface{}{"quantity": 5}, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["subtotal"].(float64) != 100000 {
		t.Errorf("expected subtotal 100000, got %v", resp["subtotal"])
	}
}

func TestUpdateCartItem_ZeroQuantityRemovesLine(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Loft Storage", 8000)
	guestID := utils.NewGuestID()
	seedCart(db, guestID, true, product.ID, 2, 8000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("PUT", "/api/cart/items/"+product.ID.String(),
		map[string]interface{}{"quantity": 0}, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if items := resp["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected the line removed, got %d items", len(items))
	}
	if resp["total"].(float64) != 0 {
		t.Errorf("expected total 0, got %v", resp["total"])
	}
}

func TestUpdateCartItem_MissingLine(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Metro Wardrobe", 15000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("PUT", "/api/cart/items/"+product.ID.String(),
		map[string]interface{}{"quantity": 1}, utils.NewGuestID()))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRemoveFromCart_AbsentEntryIsNoOp(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Ivory Wardrobe", 25000)
	guestID := utils.NewGuestID()
	seedCart(db, guestID, true, product.ID, 1, 25000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("DELETE", "/api/cart/items/"+uuid.New().String(), nil, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if items := resp["items"].([]interface{}); len(items) != 1 {
		t.Errorf("expected the cart unchanged, got %d items", len(items))
	}
}

func TestRemoveFromCart_DropsLine(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Cedar Storage", 18000)
	guestID := utils.NewGuestID()
	seedCart(db, guestID, true, product.ID, 2, 18000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("DELETE", "/api/cart/items/"+product.ID.String(), nil, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if items := resp["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected the line removed, got %d items", len(items))
	}
	if resp["subtotal"].(float64) != 0 {
		t.Errorf("expected subtotal 0, got %v", resp["subtotal"])
	}
}

func TestClearCart_KeepsRecord(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	product := seedProduct(db, "Arbor Wardrobe", 40000)
	guestID := utils.NewGuestID()
	seeded := seedCart(db, guestID, true, product.ID, 2, 40000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("POST", "/api/cart/clear", nil, guestID))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	cart := parseResponse(w)["cart"].(map[string]interface{})
	if cart["id"] != seeded.ID.String() {
		t.Errorf("expected the same cart record after clear, got %v", cart["id"])
	}
	if items := cart["items"].([]interface{}); len(items) != 0 {
		t.Errorf("expected no items after clear, got %d", len(items))
	}
	if cart["total"].(float64) != 0 || cart["subtotal"].(float64) != 0 {
		t.Errorf("expected zero totals, got subtotal=%v total=%v", cart["subtotal"], cart["total"])
	}
}

func TestApplyDiscount_ClampedToSubtotal(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	user, token := seedTestUser(db, "discount@test.com", "customer")
	product := seedProduct(db, "Haven Wardrobe", 10000)
	seedCart(db, user.ID.String(), false, product.ID, 1, 10000)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/cart/discount",
		map[string]interface{}{"discount_amount": 25000}, token))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := parseResponse(w)
	if resp["discount"].(float64) != 10000 {
		t.Errorf("expected discount clamped to subtotal 10000, got %v", resp["discount"])
	}
	if resp["new_total"].(float64) != 0 {
		t.Errorf("expected total 0 after full discount, got %v", resp["new_total"])
	}
}

func TestApplyDiscount_NegativeRejected(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	_, token := seedTestUser(db, "neg-discount@test.com", "customer")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/cart/discount",
		map[string]interface{}{"discount_amount": -5}, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestApplyDiscount_RequiresAuth(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("POST", "/api/cart/discount",
		map[string]interface{}{"discount_amount": 100}, utils.NewGuestID()))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestMergeCart_FoldsGuestIntoUser(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	user, token := seedTestUser(db, "merge@test.com", "customer")
	shared := seedProduct(db, "Shared Wardrobe", 10000)
	guestOnly := seedProduct(db, "Guest Storage", 5000)
	guestID := utils.NewGuestID()

	seedCart(db, user.ID.String(), false, shared.ID, 1, 10000)
	guestCart := seedCart(db, guestID, true, shared.ID, 2, 10000)
	db.Create(&models.CartItem{
		ID:        uuid.New(),
		CartID:    guestCart.ID,
		ProductID: guestOnly.ID,
		Quantity:  1,
		UnitPrice: 5000,
	})

	req := authRequest("POST", "/api/cart/merge", nil, token)
	req.Header.Set(middleware.GuestIDHeader, guestID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := parseResponse(w)
	items := resp["items"].([]interface{})
	if len(items) != 2 {
		t.Fatalf("expected 2 lines after merge, got %d", len(items))
	}
	byProduct := map[string]map[string]interface{}{}
	for _, it := range items {
		line := it.(map[string]interface{})
		byProduct[line["product_id"].(string)] = line
	}
	if q := byProduct[shared.ID.String()]["quantity"].(float64); q != 3 {
		t.Errorf("expected shared product quantity summed to 3, got %v", q)
	}
	if q := byProduct[guestOnly.ID.String()]["quantity"].(float64); q != 1 {
		t.Errorf("expected guest-only product carried over with quantity 1, got %v", q)
	}
	if resp["subtotal"].(float64) != 35000 {
		t.Errorf("expected subtotal 35000, got %v", resp["subtotal"])
	}

	// The guest record is retired: its id now resolves to a fresh empty cart.
	var count int64
	db.Model(&models.Cart{}).Where("id = ?", guestCart.ID).Count(&count)
	if count != 0 {
		t.Error("expected the guest cart record deleted after merge")
	}
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, guestRequest("GET", "/api/cart", nil, guestID))
	fresh := parseResponse(w2)
	if fresh["id"] == guestCart.ID.String() {
		t.Error("expected a fresh cart for the retired guest id")
	}
	if freshItems := fresh["items"].([]interface{}); len(freshItems) != 0 {
		t.Errorf("expected the fresh guest cart empty, got %d items", len(freshItems))
	}
}

func TestMergeCart_Idempotent(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	_, token := seedTestUser(db, "repeat-merge@test.com", "customer")
	product := seedProduct(db, "Repeat Wardrobe", 7000)
	guestID := utils.NewGuestID()
	seedCart(db, guestID, true, product.ID, 2, 7000)

	for i := 0; i < 2; i++ {
		req := authRequest("POST", "/api/cart/merge", nil, token)
		req.Header.Set(middleware.GuestIDHeader, guestID)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("merge %d: expected 200, got %d", i, w.Code)
		}
		resp := parseResponse(w)
		if q := resp["items"].([]interface{})[0].(map[string]interface{})["quantity"].(float64); q != 2 {
			t.Errorf("merge %d: expected quantity 2, got %v", i, q)
		}
	}
}

func TestMergeCart_EmptyGuestIsNoOp(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	user, token := seedTestUser(db, "noop-merge@test.com", "customer")
	product := seedProduct(db, "Noop Wardrobe", 9000)
	guestID := utils.NewGuestID()
	seedCart(db, user.ID.String(), false, product.ID, 1, 9000)
	seedEmptyCart(db, guestID, true)

	req := authRequest("POST", "/api/cart/merge", nil, token)
	req.Header.Set(middleware.GuestIDHeader, guestID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if len(resp["items"].([]interface{})) != 1 {
		t.Errorf("expected the user cart unchanged")
	}
	if resp["subtotal"].(float64) != 9000 {
		t.Errorf("expected subtotal 9000, got %v", resp["subtotal"])
	}
}

func TestMergeCart_RequiresGuestHeader(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)
	_, token := seedTestUser(db, "no-guest@test.com", "customer")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, authRequest("POST", "/api/cart/merge", nil, token))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a guest id, got %d", w.Code)
	}
}

func TestMergeCart_RequiresAuth(t *testing.T) {
	db := freshDB()
	r := setupCartRouter(db)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, guestRequest("POST", "/api/cart/merge", nil, utils.NewGuestID()))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}
