package handlers

import (
	"net/http"
	"taskBurst/internal/auth"
	"taskBurst/internal/handlers/dto"
	"taskBurst/internal/logger"
	"taskBurst/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CredentialsRequest
	if !decodeAuth(w, r, &request) {
		return
	}

	session, err := h.AuthService.SignUp(r.Context(), request.Email, request.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован", zap.String("user_id", session.User.ID.String()))
	writeJSON(w, http.StatusCreated, dto.FromSession(session))
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CredentialsRequest
	if !decodeAuth(w, r, &request) {
		return
	}

	session, err := h.AuthService.SignIn(r.Context(), request.Email, request.Password)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromSession(session))
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RefreshRequest
	if !decodeAuth(w, r, &request) {
		return
	}

	session, err := h.AuthService.Refresh(r.Context(), request.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FromSession(session))
}

// SignOut отзывает access-токен из заголовка и, если передан, refresh-токен
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	token := auth.BearerToken(r)
	if token == "" {
		responseWithError(w, http.StatusUnauthorized, service.CodeNotAuthenticated, "требуется токен доступа")
		return
	}

	var request dto.SignOutRequest
	if r.ContentLength != 0 && !decodeAuth(w, r, &request) {
		return
	}

	if err := h.AuthService.SignOut(r.Context(), token); err != nil {
		handleAuthError(w, err)
		return
	}
	if request.RefreshToken != "" {
		if err := h.AuthService.SignOut(r.Context(), request.RefreshToken); err != nil {
			handleAuthError(w, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, state := auth.FromContext(r.Context())
	if state != auth.StateSignedIn {
		responseWithJSON(w, http.StatusUnauthorized,
			toPayload("error", service.CodeNotAuthenticated),
			toPayload("state", state))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("user", dto.FromUser(u)),
		toPayload("state", state))
}

func decodeAuth(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
		return false
	}
	return true
}
