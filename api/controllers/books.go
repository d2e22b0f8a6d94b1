package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/api/responses"
	"github.com/perpusdesa/perpusdesa-backend/api/validators"
	"github.com/perpusdesa/perpusdesa-backend/internal/books"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
)

type bookPayload struct {
	CategoryID    string  `json:"category_id" validate:"required,uuid"`
	Title         string  `json:"title" validate:"required,max=255"`
	Author        string  `json:"author" validate:"required,max=255"`
	Publisher     string  `json:"publisher" validate:"required,max=255"`
	Year          int     `json:"year" validate:"required"`
	Pages         int     `json:"pages" validate:"required,gt=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
	ShelfPosition string  `json:"shelf_position" validate:"required,max=64"`
	Description   *string `json:"description" validate:"omitempty,max=2000"`
	ISBN          *string `json:"isbn" validate:"omitempty,max=32"`
	Status        string  `json:"status" validate:"omitempty,oneof=tersedia tidak_tersedia rusak"`
}

func (p bookPayload) toInput() books.BookInput {
	categoryID, _ := uuid.Parse(p.CategoryID)
	return books.BookInput{
		CategoryID:    categoryID,
		Title:         p.Title,
		Author:        p.Author,
		Publisher:     p.Publisher,
		Year:          p.Year,
		Pages:         p.Pages,
		Stock:         p.Stock,
		ShelfPosition: p.ShelfPosition,
		Description:   p.Description,
		ISBN:          p.ISBN,
		Status:        enums.BookStatus(p.Status),
	}
}

// BookList returns a paginated book page for administration.
func BookList(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := svc.List(ctx, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// BookGet returns one title with its borrowing history and open queue.
func BookGet(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}
		detail, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// BookCreate adds a title to the catalog.
func BookCreate(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		var payload bookPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		book, err := svc.Create(ctx, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "Buku berhasil ditambahkan.", book)
	}
}

// BookUpdate edits a title, shifting the shelf count with any stock change.
func BookUpdate(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}
		var payload bookPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		book, err := svc.Update(ctx, id, payload.toInput())
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "Buku berhasil diperbarui.", book)
	}
}

// BookDelete removes a title with no copies out.
func BookDelete(svc books.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "books service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}
		if err := svc.Delete(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "Buku berhasil dihapus.", nil)
	}
}
