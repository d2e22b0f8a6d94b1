package controllers

import (
	"net/http"

	"github.com/perpusdesa/perpusdesa-backend/api/middleware"
	"github.com/perpusdesa/perpusdesa-backend/api/responses"
	"github.com/perpusdesa/perpusdesa-backend/internal/dashboard"
	"github.com/perpusdesa/perpusdesa-backend/pkg/enums"
	pkgerrors "github.com/perpusdesa/perpusdesa-backend/pkg/errors"
	"github.com/perpusdesa/perpusdesa-backend/pkg/logger"
)

// Dashboard serves the role-appropriate home screen: library-wide counters
// for administrators, personal lists for members.
func Dashboard(svc dashboard.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		if middleware.RoleFromContext(ctx) == enums.UserRoleAdmin {
			overview, err := svc.Admin(ctx)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			responses.WriteSuccess(w, overview)
			return
		}

		overview, err := svc.Member(ctx, middleware.UserIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
