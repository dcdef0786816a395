package public

import (
	"context"
	"errors"
	"net/http"
	"time"

	accountapp "github.com/inspectify/inspectify/api/internal/account/application"
	"github.com/inspectify/inspectify/api/internal/interfaces/http/common"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message   string              `json:"message"`
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expiresAt"`
	User      common.UserResponse `json:"user"`
}

func (h *Handler) signupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := h.users.Signup(ctx, accountapp.SignupCommand{Name: req.Name, Email: req.Email, Password: req.Password})
		switch {
		case errors.Is(err, accountapp.ErrEmailTaken):
			common.WriteError(h.logger, w, http.StatusBadRequest, "User already exists!", "")
			return
		case errors.Is(err, accountapp.ErrValidation):
			common.WriteError(h.logger, w, http.StatusBadRequest, err.Error(), "")
			return
		case err != nil:
			h.logf("ユーザー登録に失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Server error", "")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusCreated, map[string]any{
			"message": "User registered successfully!",
			"user":    common.NewUserResponse(*user),
		})
	}
}

func (h *Handler) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := common.DecodeJSON(w, r, common.MaxJSONRequestBody, &req); err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, "Invalid request body", err.Error())
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result, err := h.users.Login(ctx, req.Email, req.Password)
		if errors.Is(err, accountapp.ErrInvalidCredentials) {
			common.WriteError(h.logger, w, http.StatusUnauthorized, "Invalid email or password", "")
			return
		}
		if err != nil {
			h.logf("ログインに失敗: %v", err)
			common.WriteError(h.logger, w, http.StatusInternalServerError, "Server error", "")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, loginResponse{
			Message:   "Login successful!",
			Token:     result.Token,
			ExpiresAt: result.ExpiresAt,
			User:      common.NewUserResponse(result.User),
		})
	}
}

func (h *Handler) authVerifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusInternalServerError, "認証情報の取得に失敗しました", "")
			return
		}

		common.WriteJSON(h.logger, w, http.StatusOK, map[string]any{
			"status": "ok",
			"user":   user,
		})
	}
}
