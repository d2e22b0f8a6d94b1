package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/api/middleware"
	"github.com/perpusdesa/perpusdesa-backend/api/responses"
	"github.com/perpusdesa/perpusdesa-backend/api/validators"
	"github.com/perpusdesa/perpusdesa-backend/internal/catalog"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
)

const maxSearchTermLen = 120

// CatalogList serves the public, filterable catalog.
func CatalogList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryUUID(r, "category_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		filters := catalog.Filters{
			Search:     validators.SanitizeString(r.URL.Query().Get("q"), maxSearchTermLen),
			CategoryID: categoryID,
			Status:     enums.BookStatus(validators.SanitizeString(r.URL.Query().Get("status"), 32)),
		}

		page, err := svc.List(ctx, filters, params)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// CatalogDetail serves one title. When the caller is authenticated the
// response carries their own queue state.
func CatalogDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		bookID, err := uuid.Parse(chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid book id"))
			return
		}

		detail, err := svc.Detail(ctx, bookID, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
