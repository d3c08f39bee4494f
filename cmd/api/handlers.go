package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"storefront/pkg/cart"
	"storefront/pkg/catalog"
	"storefront/pkg/checkout"
	"storefront/pkg/order"
	"storefront/pkg/otel"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// lineView is a cart line as shown on the cart page.
type lineView struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
	Subtotal string          `json:"subtotal"`
}

// cartView is the cart page model. Amounts are rupees with two decimals.
type cartView struct {
	Lines      []lineView `json:"lines"`
	Count      int        `json:"count"`
	TotalMinor int64      `json:"totalMinor,string"`
	Total      string     `json:"total"`
}

func newCartView(c *cart.Store) cartView {
	lines := c.Lines()
	v := cartView{
		Lines:      make([]lineView, 0, len(lines)),
		Count:      c.Count(),
		TotalMinor: c.TotalMinor(),
		Total:      c.TotalDisplay().StringFixed(2),
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, lineView{
			Product:  l.Product,
			Quantity: l.Quantity,
			Subtotal: rupees(l.Subtotal()),
		})
	}
	return v
}

func rupees(minor int64) string {
	return decimal.New(minor, -2).StringFixed(2)
}

type addItemRequest struct {
	ProductID catalog.ProductID `json:"productId,string"`
	Quantity  int               `json:"quantity"`
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

type checkoutRequest struct {
	Customer checkout.CustomerDetails `json:"customer"`
	Payment  order.Payment            `json:"payment"`
}

type checkoutResponse struct {
	OrderID order.ID `json:"orderId,string"`
}

func pathID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

// listCategoriesHandler lists categories.
// @Summary List categories
// @Produce json
// @Success 200 {array} catalog.Category
// @Router /categories [get]
func (s *server) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	cats, err := s.catalog.Categories(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "list categories", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load categories")
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

// listProductsHandler lists products, optionally filtered.
// @Summary List products
// @Produce json
// @Param q query string false "Name or description search"
// @Param category query string false "Category ID"
// @Param inStock query bool false "Only products in stock"
// @Success 200 {array} catalog.Product
// @Router /products [get]
func (s *server) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var category uint64
	if v := q.Get("category"); v != "" {
		var err error
		if category, err = strconv.ParseUint(v, 10, 64); err != nil {
			writeError(w, http.StatusBadRequest, "invalid category")
			return
		}
	}
	inStock, _ := strconv.ParseBool(q.Get("inStock"))

	products, err := s.catalog.Products(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "list products", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, catalog.Filter(products, q.Get("q"), catalog.CategoryID(category), inStock))
}

// getProductHandler retrieves a product by ID.
// @Summary Get product
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} catalog.Product
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [get]
func (s *server) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := s.catalog.Product(r.Context(), catalog.ProductID(id))
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "get product", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// getCartHandler returns the session cart.
// @Summary Get cart
// @Produce json
// @Success 200 {object} cartView
// @Router /cart [get]
func (s *server) getCartHandler(w http.ResponseWriter, r *http.Request) {
	_ = s.sessions.With(r.Context(), sessionID(r.Context()), func(c *cart.Store) error {
		writeJSON(w, http.StatusOK, newCartView(c))
		return nil
	})
}

// addCartItemHandler adds a catalog product to the session cart.
// @Summary Add to cart
// @Accept json
// @Produce json
// @Param item body addItemRequest true "Product and quantity"
// @Success 200 {object} cartView
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /cart/items [post]
func (s *server) addCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "addCartItemHandler")
	defer span.End()

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	p, err := s.catalog.Product(ctx, req.ProductID)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	if err != nil {
		s.log.Error(ctx, "load product for cart", "product_id", req.ProductID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	if !p.InStock {
		writeError(w, http.StatusConflict, "product is out of stock")
		return
	}

	_ = s.sessions.With(ctx, sessionID(ctx), func(c *cart.Store) error {
		c.AddItem(ctx, p, req.Quantity)
		writeJSON(w, http.StatusOK, newCartView(c))
		return nil
	})
}

// updateCartItemHandler sets the quantity of a cart line. Zero removes it.
// @Summary Update cart quantity
// @Accept json
// @Produce json
// @Param id path string true "Product ID"
// @Param item body updateItemRequest true "New quantity"
// @Success 200 {object} cartView
// @Failure 400 {object} errorResponse
// @Router /cart/items/{id} [put]
func (s *server) updateCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "updateCartItemHandler")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity == nil {
		writeError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	_ = s.sessions.With(ctx, sessionID(ctx), func(c *cart.Store) error {
		c.UpdateQuantity(ctx, catalog.ProductID(id), *req.Quantity)
		writeJSON(w, http.StatusOK, newCartView(c))
		return nil
	})
}

// removeCartItemHandler removes a line from the cart.
// @Summary Remove from cart
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} cartView
// @Failure 400 {object} errorResponse
// @Router /cart/items/{id} [delete]
func (s *server) removeCartItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "removeCartItemHandler")
	defer span.End()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	_ = s.sessions.With(ctx, sessionID(ctx), func(c *cart.Store) error {
		c.RemoveItem(ctx, catalog.ProductID(id))
		writeJSON(w, http.StatusOK, newCartView(c))
		return nil
	})
}

// clearCartHandler empties the cart.
// @Summary Clear cart
// @Success 204
// @Router /cart [delete]
func (s *server) clearCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "clearCartHandler")
	defer span.End()

	_ = s.sessions.With(ctx, sessionID(ctx), func(c *cart.Store) error {
		c.Clear(ctx)
		return nil
	})
	w.WriteHeader(http.StatusNoContent)
}

// checkoutHandler places an order from the session cart.
// @Summary Checkout
// @Accept json
// @Produce json
// @Param order body checkoutRequest true "Delivery details and payment method"
// @Success 201 {object} checkoutResponse
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Failure 422 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /checkout [post]
func (s *server) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "checkoutHandler")
	defer span.End()

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	var id order.ID
	err := s.sessions.With(ctx, sessionID(ctx), func(c *cart.Store) error {
		var err error
		id, err = s.checkout.PlaceOrder(ctx, c, req.Customer, req.Payment)
		return err
	})

	var fields checkout.FieldErrors
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, checkoutResponse{OrderID: id})
	case errors.As(err, &fields):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid checkout form", Fields: fields})
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(w, http.StatusBadRequest, "cart is empty")
	case errors.Is(err, order.ErrInvalidPayment):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrUnavailable), errors.Is(err, order.ErrQuantity):
		writeError(w, http.StatusConflict, err.Error())
	default:
		s.log.Error(ctx, "checkout", "error", err)
		writeError(w, http.StatusBadGateway, "order placement failed")
	}
}

// trackOrderHandler looks up an order by id and the phone used at checkout.
// @Summary Track order
// @Produce json
// @Param id path string true "Order ID"
// @Param phone query string true "Phone number given at checkout"
// @Success 200 {object} order.Order
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /orders/{id}/track [get]
func (s *server) trackOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "trackOrderHandler")
	defer span.End()

	id, ok := pathID(r)
	phone := r.URL.Query().Get("phone")
	if !ok || id == 0 || phone == "" {
		writeError(w, http.StatusBadRequest, "order id and phone are required")
		return
	}
	o, err := s.orders.Track(ctx, order.ID(id), phone)
	if errors.Is(err, order.ErrNotFound) {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	if err != nil {
		s.log.Error(ctx, "track order", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}
