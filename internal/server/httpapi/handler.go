// Package httpapi exposes the user service over a thin JSON HTTP transport.
// Handlers decode the request, call the service, and shape the response;
// every policy decision lives in the service layer.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/logging"
	"github.com/avicente/cardholder/internal/server/models"
	"github.com/avicente/cardholder/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	users  *services.UserService
	logger logging.Logger

	// debugErrors attaches the underlying error detail to failure bodies.
	// Off by default; meant for local stacks only.
	debugErrors bool
}

func NewHandler(users *services.UserService, logger logging.Logger, debugErrors bool) *Handler {
	return &Handler{users: users, logger: logger, debugErrors: debugErrors}
}

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/ping", h.ping)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Route("/profile/{user_id}", func(r chi.Router) {
		r.Get("/", h.getProfile)
		r.Put("/", h.updateProfile)
		r.Post("/avatar", h.uploadAvatar)
	})
	return r
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type registerResponse struct {
	OK       bool             `json:"ok"`
	User     *models.Profile  `json:"user"`
	Warnings []models.Warning `json:"warnings,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, badBody(err))
		return
	}

	res, err := h.users.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, &registerResponse{OK: true, User: res.User, Warnings: res.Warnings})
}

type loginResponse struct {
	OK    bool            `json:"ok"`
	Token string          `json:"token"`
	User  *models.Profile `json:"user"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, badBody(err))
		return
	}

	res, err := h.users.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &loginResponse{OK: true, Token: res.Token, User: res.User})
}

type profileResponse struct {
	OK   bool            `json:"ok"`
	User *models.Profile `json:"user"`
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetProfile(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &profileResponse{OK: true, User: user})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, badBody(err))
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), chi.URLParam(r, "user_id"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &profileResponse{OK: true, User: user})
}

type avatarRequestBody struct {
	Image services.AvatarRequest `json:"image"`
}

type avatarResponse struct {
	OK        bool            `json:"ok"`
	User      *models.Profile `json:"user"`
	AvatarKey string          `json:"avatarKey"`
}

func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	var body avatarRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, r, badBody(err))
		return
	}

	res, err := h.users.UploadAvatar(r.Context(), chi.URLParam(r, "user_id"), &body.Image)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, &avatarResponse{OK: true, User: res.User, AvatarKey: res.AvatarKey})
}

func badBody(err error) error {
	return &services.StageError{
		Stage: services.StageValidate,
		Err:   errors.Join(common.ErrorValidation, err),
	}
}

type errorResponse struct {
	OK    bool       `json:"ok"`
	Where string     `json:"where,omitempty"`
	Error string     `json:"error"`
	Debug *debugInfo `json:"_debug,omitempty"`
}

type debugInfo struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

// statusFor maps a taxonomy sentinel to an HTTP status. Anything that does
// not unwrap to a known sentinel is a 500.
func statusFor(err error) (status int, code string, message string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest, "VALIDATION", "invalid request"
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials"
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "NOT_FOUND", "not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "CONFLICT", "already exists"
	case errors.Is(err, common.ErrorDependency):
		return http.StatusInternalServerError, "DEPENDENCY", "service unavailable"
	default:
		return http.StatusInternalServerError, "INTERNAL", "internal error"
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := statusFor(err)

	body := &errorResponse{Error: message}
	// Credential failures carry no stage attribution: unknown email and wrong
	// password must produce byte-identical bodies.
	var se *services.StageError
	if errors.As(err, &se) && !errors.Is(err, common.ErrorUnauthorized) {
		body.Where = se.Stage
	}
	if h.debugErrors {
		body.Debug = &debugInfo{Code: code, Msg: err.Error()}
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.logger.Debug(r.Context(), "request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
