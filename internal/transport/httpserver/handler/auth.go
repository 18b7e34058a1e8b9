package handler

import (
	"errors"
	"net/http"
	"time"

	userdomain "community-grocery-go/internal/domain/user"
)

type registerRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Community *string   `json:"community"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.Users.Register(r.Context(), userdomain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log := h.logger(r.Context())
		switch {
		case errors.Is(err, userdomain.ErrEmailTaken):
			log.BusinessError("auth.register: email taken", err)
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case errors.Is(err, userdomain.ErrNameRequired),
			errors.Is(err, userdomain.ErrEmailRequired),
			errors.Is(err, userdomain.ErrPasswordTooShort):
			log.BusinessError("auth.register: invalid input", err)
			writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		default:
			log.InternalError("auth.register: register failed", err)
			writeInternal(w, "internal error", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	session, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, userdomain.ErrInvalidCredentials) {
			h.logger(r.Context()).BusinessError("auth.login: invalid credentials", err)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		h.logger(r.Context()).InternalError("auth.login: login failed", err)
		writeInternal(w, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(&session.User),
	})
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	current, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.Users.GetProfile(r.Context(), current.ID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			h.logger(r.Context()).BusinessError("auth.me: user not found", err, "user_id", current.ID)
			writeError(w, http.StatusNotFound, "user_not_found", "user not found")
			return
		}
		h.logger(r.Context()).InternalError("auth.me: get profile failed", err, "user_id", current.ID)
		writeInternal(w, "internal error", err)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func toUserResponse(user *userdomain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Community: user.CommunityID,
		CreatedAt: user.CreatedAt,
	}
}
