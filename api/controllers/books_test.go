package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/pkg/db/models"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/pagination"
)

type stubBooksService struct {
	created *models.Book
	detail  books.BookDetail
	err     error
}

func (s stubBooksService) Create(ctx context.Context, input books.BookInput) (*models.Book, error) {
	return s.created, s.err
}

func (s stubBooksService) Update(ctx context.Context, id uuid.UUID, input books.BookInput) (*models.Book, error) {
	return s.created, s.err
}

func (s stubBooksService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s stubBooksService) Get(ctx context.Context, id uuid.UUID) (books.BookDetail, error) {
	return s.detail, s.err
}

func (s stubBooksService) List(ctx context.Context, params pagination.Params) (books.BookPage, error) {
	return books.BookPage{}, s.err
}

func TestBookCreateSuccess(t *testing.T) {
	categoryID := uuid.New()
	created := &models.Book{ID: uuid.New(), Title: "Laskar Pelangi"}
	handler := BookCreate(stubBooksService{created: created}, nil)

	body := `{
		"category_id": "` + categoryID.String() + `",
		"title": "Laskar Pelangi",
		"author": "Andrea Hirata",
		"publisher": "Bentang Pustaka",
		"year": 2005,
		"pages": 529,
		"stock": 3,
		"shelf_position": "A-12"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/books", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}

	var envelope struct {
		Message string      `json:"message"`
		Data    models.Book `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Message != "Buku berhasil ditambahkan." {
		t.Fatalf("unexpected message: %q", envelope.Message)
	}
	if envelope.Data.ID != created.ID {
		t.Fatalf("unexpected book id: %s", envelope.Data.ID)
	}
}

func TestBookCreateRejectsBadPayload(t *testing.T) {
	handler := BookCreate(stubBooksService{}, nil)

	body := `{"title": "", "category_id": "not-a-uuid"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/books", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookGetNotFound(t *testing.T) {
	handler := BookGet(stubBooksService{err: pkgerrors.New(pkgerrors.CodeNotFound, "book not found")}, nil)

	bookID := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/books/"+bookID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("bookId", bookID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}

func TestBookGetRejectsMalformedID(t *testing.T) {
	handler := BookGet(stubBooksService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/books/abc", nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("bookId", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestBookDeleteConflictWhileCopiesOut(t *testing.T) {
	handler := BookDelete(stubBooksService{err: pkgerrors.New(pkgerrors.CodeConflict, "book still has copies out on loan")}, nil)

	bookID := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/books/"+bookID.String(), nil)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("bookId", bookID.String())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeConflict) {
		t.Fatalf("unexpected error code: %s", envelope.Error.Code)
	}
}
