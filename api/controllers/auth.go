package controllers

import (
	"net/http"
	"time"

	"github.com/mleong/mangobox-backend/api/responses"
	"github.com/mleong/mangobox-backend/api/validators"
	"github.com/mleong/mangobox-backend/internal/admins"
	pkgerrors "github.com/mleong/mangobox-backend/pkg/errors"
	"github.com/mleong/mangobox-backend/pkg/logger"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// AdminLogin exchanges admin credentials for an access token.
func AdminLogin(svc admins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload.Email, payload.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			Email:     result.User.Email,
			Role:      string(result.User.Role),
		})
	}
}
