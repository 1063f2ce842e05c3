package handler

import (
	"net/http"

	"github.com/AdamBeresnev/koe-contest/internal/contest"
	"github.com/AdamBeresnev/koe-contest/internal/httputil"
	"github.com/AdamBeresnev/koe-contest/internal/middleware"
	"github.com/AdamBeresnev/koe-contest/internal/service"
)

type AuthHandler struct {
	auth  *service.AuthService
	users *service.UserService
}

func NewAuthHandler(auth *service.AuthService, users *service.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	credential, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusOK, credential)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetAuthenticatedUser(r.Context())
	if user == nil {
		httputil.Error(w, r, contest.ErrUnauthenticated)
		return
	}
	httputil.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.Error(w, r, err)
		return
	}
	user, err := h.users.CreateUser(r.Context(), service.CreateUserInput(req))
	if err != nil {
		httputil.Error(w, r, err)
		return
	}
	httputil.JSON(w, http.StatusCreated, user)
}
