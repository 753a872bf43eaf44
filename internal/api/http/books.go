package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/learnportal/internal/content"
	"github.com/mind-engage/learnportal/internal/rbac"
	"github.com/mind-engage/learnportal/internal/shop"
)

type bookReq struct {
	Title       string  `json:"title" validate:"required,notblank"`
	Author      string  `json:"author" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
	Description string  `json:"description"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

func (b bookReq) book(id string) content.Book {
	return content.Book{ID: id, Title: b.Title, Author: b.Author, Price: b.Price, ImageURL: b.ImageURL, Description: b.Description, Stock: b.Stock}
}

func ListBooksHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bs, err := store.ListBooks(r.Context())
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bs)
	}
}

func GetBookHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := store.GetBook(r.Context(), chi.URLParam(r, "bookID"))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		b, err := store.CreateBook(r.Context(), req.book(""))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func UpdateBookHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req bookReq
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		b, err := store.UpdateBook(r.Context(), req.book(chi.URLParam(r, "bookID")))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookHandler(store content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteBook(r.Context(), chi.URLParam(r, "bookID")); err != nil {
			fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ---- cart ----

func writeQuote(w http.ResponseWriter, r *http.Request, sh *shop.Shop, status int) {
	q, err := sh.Quote(r.Context(), rbac.SubjectFromContext(r.Context()))
	if err != nil {
		fail(w, err)
		return
	}
	writeJSON(w, status, q)
}

// GET /cart
func GetCartHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeQuote(w, r, sh, http.StatusOK)
	}
}

// POST /cart/items {"book_id": "..."} adds one copy.
func AddToCartHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BookID string `json:"book_id" validate:"required"`
		}
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		if err := sh.Add(r.Context(), rbac.SubjectFromContext(r.Context()), req.BookID); err != nil {
			fail(w, err)
			return
		}
		writeQuote(w, r, sh, http.StatusOK)
	}
}

// PUT /cart/items/{bookID} {"quantity": 3}; zero removes the line.
func SetCartQuantityHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity *int `json:"quantity" validate:"required"`
		}
		if err := decode(r, &req); err != nil {
			fail(w, err)
			return
		}
		bookID := chi.URLParam(r, "bookID")
		sh.With(rbac.SubjectFromContext(r.Context()), func(c *shop.Cart) { c.SetQuantity(bookID, *req.Quantity) })
		writeQuote(w, r, sh, http.StatusOK)
	}
}

// DELETE /cart/items/{bookID}
func RemoveFromCartHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bookID := chi.URLParam(r, "bookID")
		sh.With(rbac.SubjectFromContext(r.Context()), func(c *shop.Cart) { c.Remove(bookID) })
		writeQuote(w, r, sh, http.StatusOK)
	}
}

// DELETE /cart
func ClearCartHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sh.With(rbac.SubjectFromContext(r.Context()), func(c *shop.Cart) { c.Clear() })
		w.WriteHeader(http.StatusNoContent)
	}
}

// POST /cart/checkout
func CheckoutHandler(sh *shop.Shop) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := sh.Checkout(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, o)
	}
}
