package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/carbonquest/carbonquest/pkg/app/errors"
	apphttp "github.com/carbonquest/carbonquest/pkg/app/http"
	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/user"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers identity endpoints on the given chi router.
// Public: /register, /login. Authenticated: /logout, /me, /wallet/link.
func RegisterRoutes(r chi.Router, service Service, mw *auth.Middleware, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Post("/register", apphttp.HandleError(h.register))
	r.Post("/login", apphttp.HandleError(h.login))

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/logout", apphttp.HandleError(h.logout))
		r.Get("/me", apphttp.HandleError(h.me))
		r.Post("/wallet/link", apphttp.HandleError(h.linkWallet))
	})
}

func (h *HTTP) register(w http.ResponseWriter, r *http.Request) error {
	var req user.RegisterRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	usr, err := h.service.Register(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, user.ToResponse(usr))
	return nil
}

func (h *HTTP) login(w http.ResponseWriter, r *http.Request) error {
	var req user.LoginRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *HTTP) logout(w http.ResponseWriter, r *http.Request) error {
	if err := h.service.Logout(r.Context()); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

func (h *HTTP) me(w http.ResponseWriter, r *http.Request) error {
	usr, ok := auth.UserFromContext(r.Context())
	if !ok {
		return apperrors.UnauthorizedError(nil, "no active session")
	}
	apphttp.WriteJSON(w, http.StatusOK, user.ToResponse(usr))
	return nil
}

func (h *HTTP) linkWallet(w http.ResponseWriter, r *http.Request) error {
	var req user.LinkWalletRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	// Callers may only link a wallet to their own account; admins may link
	// to any account.
	caller, _ := auth.UserFromContext(r.Context())
	if req.UserID == "" {
		req.UserID = caller.ID
	}
	if req.UserID != caller.ID && !caller.IsAdmin() {
		return apperrors.ForbiddenError(nil, "cannot link wallet for another account")
	}

	usr, err := h.service.LinkWallet(r.Context(), &req)
	if err != nil {
		return err
	}
	if usr == nil {
		return apperrors.NotFoundError(nil, "user not found")
	}

	apphttp.WriteJSON(w, http.StatusOK, user.ToResponse(usr))
	return nil
}
