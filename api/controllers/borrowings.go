package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/perpusdesa/perpusdesa-backend/api/responses"
	"github.com/perpusdesa/perpusdesa-backend/api/validators"
	"github.com/perpusdesa/perpusdesa-backend/internal/circulation"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
)

const dateLayout = "2006-01-02"

type issueBorrowingPayload struct {
	UserID       string  `json:"user_id" validate:"required,uuid"`
	BookID       string  `json:"book_id" validate:"required,uuid"`
	BorrowedDate string  `json:"borrowed_date" validate:"omitempty"`
	DueDate      string  `json:"due_date" validate:"required"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

type updateBorrowingPayload struct {
	DueDate      *string `json:"due_date" validate:"omitempty"`
	ReturnedDate *string `json:"returned_date" validate:"omitempty"`
	Status       *string `json:"status" validate:"omitempty,oneof=dipinjam dikembalikan terlambat"`
	Notes        *string `json:"notes" validate:"omitempty,max=500"`
}

func parseDate(field, value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+field+", expected YYYY-MM-DD")
	}
	return parsed, nil
}

func (p issueBorrowingPayload) toInput() (circulation.IssueInput, error) {
	userID, _ := uuid.Parse(p.UserID)
	bookID, _ := uuid.Parse(p.BookID)
	input := circulation.IssueInput{
		UserID: userID,
		BookID: bookID,
		Notes:  p.Notes,
	}
	if p.BorrowedDate != "" {
		borrowed, err := parseDate("borrowed_date", p.BorrowedDate)
		if err != nil {
			return circulation.IssueInput{}, err
		}
		input.BorrowedDate = borrowed
	}
	due, err := parseDate("due_date", p.DueDate)
	if err != nil {
		return circulation.IssueInput{}, err
	}
	input.DueDate = due
	return input, nil
}

func (p updateBorrowingPayload) toInput() (circulation.UpdateInput, error) {
	input := circulation.UpdateInput{Notes: p.Notes}
	if p.DueDate != nil {
		due, err := parseDate("due_date", *p.DueDate)
		if err != nil {
			return circulation.UpdateInput{}, err
		}
		input.DueDate = &due
	}
	if p.ReturnedDate != nil {
		returned, err := parseDate("returned_date", *p.ReturnedDate)
		if err != nil {
			return circulation.UpdateInput{}, err
		}
		input.ReturnedDate = &returned
	}
	if p.Status != nil {
		status := enums.BorrowingStatus(*p.Status)
		input.Status = &status
	}
	return input, nil
}

// BorrowingList returns the loan ledger page with live stats.
func BorrowingList(svc circulation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circulation service unavailable"))
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

// BorrowingGet returns one loan with its member and book attached.
func BorrowingGet(svc circulation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circulation service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "borrowingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid borrowing id"))
			return
		}
		borrowing, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, borrowing)
	}
}

// BorrowingCreate issues a loan, taking one copy off the shelf.
func BorrowingCreate(svc circulation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circulation service unavailable"))
			return
		}
		var payload issueBorrowingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		borrowing, err := svc.Issue(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusCreated, "Peminjaman berhasil dicatat.", borrowing)
	}
}

// BorrowingUpdate edits a loan; marking it returned puts the copy back.
func BorrowingUpdate(svc circulation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circulation service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "borrowingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid borrowing id"))
			return
		}
		var payload updateBorrowingPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		borrowing, err := svc.Update(ctx, id, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "Peminjaman berhasil diperbarui.", borrowing)
	}
}

// BorrowingDelete removes a ledger row, restoring stock for active loans.
func BorrowingDelete(svc circulation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "circulation service unavailable"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "borrowingId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid borrowing id"))
			return
		}
		if err := svc.Remove(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessMessage(w, http.StatusOK, "Peminjaman berhasil dihapus.", nil)
	}
}
