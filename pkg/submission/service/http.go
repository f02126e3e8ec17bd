package service

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/carbonquest/carbonquest/pkg/app/errors"
	apphttp "github.com/carbonquest/carbonquest/pkg/app/http"
	"github.com/carbonquest/carbonquest/pkg/auth"
	"github.com/carbonquest/carbonquest/pkg/submission"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers submission endpoints on the given chi router.
// Submitting and listing require authentication; metadata is public so
// NFT platforms can resolve token URIs; review endpoints require the
// admin role.
func RegisterRoutes(r chi.Router, service Service, mw *auth.Middleware, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/submissions/{id}/metadata", apphttp.HandleError(h.metadata))

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Post("/submissions", apphttp.HandleError(h.submit))
		r.Get("/submissions", apphttp.HandleError(h.list))
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAdmin)
		r.Get("/admin/submissions", apphttp.HandleError(h.listAll))
		r.Post("/admin/submissions/{id}/review", apphttp.HandleError(h.review))
	})
}

func (h *HTTP) submit(w http.ResponseWriter, r *http.Request) error {
	var req submission.SubmitRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	var userID string
	if caller, ok := auth.UserFromContext(r.Context()); ok {
		userID = caller.ID
		if req.WalletAddress == "" && caller.WalletAddress != "" {
			req.WalletAddress = caller.WalletAddress
		}
	}

	sub, err := h.service.SubmitActivity(r.Context(), &req, userID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusCreated, submission.ToResponse(sub))
	return nil
}

func (h *HTTP) list(w http.ResponseWriter, r *http.Request) error {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		apphttp.WriteJSON(w, http.StatusOK, []submission.Response{})
		return nil
	}

	// The caller may query by a connected wallet that is not the linked
	// one; without the parameter the linked wallet applies.
	wallet := r.URL.Query().Get("wallet_address")
	if wallet == "" {
		wallet = caller.WalletAddress
	} else if auth.ValidateEVMAddress(wallet) {
		wallet = auth.NormalizeAddress(wallet)
	} else {
		return apperrors.ValidationError(nil, "invalid wallet address")
	}

	subs, err := h.service.GetUserSubmissions(r.Context(), wallet, caller.ID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toResponses(subs))
	return nil
}

func (h *HTTP) listAll(w http.ResponseWriter, r *http.Request) error {
	subs, err := h.service.GetAllSubmissions(r.Context())
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toResponses(subs))
	return nil
}

func (h *HTTP) review(w http.ResponseWriter, r *http.Request) error {
	var req submission.ReviewRequest
	if err := apphttp.DecodeJSON(r, &req); err != nil {
		return err
	}

	sub, err := h.service.Review(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, submission.ToResponse(sub))
	return nil
}

func (h *HTTP) metadata(w http.ResponseWriter, r *http.Request) error {
	sub, err := h.service.GetSubmission(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, sub.Metadata())
	return nil
}

func toResponses(subs []*submission.Submission) []submission.Response {
	out := make([]submission.Response, 0, len(subs))
	for _, sub := range subs {
		out = append(out, submission.ToResponse(sub))
	}
	return out
}
