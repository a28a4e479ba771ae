package handlers

import (
	"errors"
	"net/http"
	"taskBurst/internal/auth"
	"taskBurst/internal/logger"
	"taskBurst/internal/notify"
	"taskBurst/internal/service"

	"go.uber.org/zap"
)

// handleBusinessError отвечает клиенту, если err бизнес-ошибка.
// n уведомление об ошибке, добавляется в тело для операций над задачами.
func handleBusinessError(w http.ResponseWriter, err error, n *notify.Notification) bool {
	businessErr, ok := service.AsBusinessError(err)
	if !ok {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	payload := []Payload{
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	}
	if n != nil {
		payload = append(payload, toPayload("notification", n))
	}
	responseWithJSON(w, statusCode, payload...)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeNotAuthenticated:
		return http.StatusUnauthorized
	case service.CodeBackend:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleAuthError переводит ошибки auth в HTTP-ответ
func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrPasswordTooLong):
		responseWithError(w, http.StatusBadRequest, service.CodeValidation, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		responseWithError(w, http.StatusConflict, "USER_EXISTS", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		responseWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrRevokedToken):
		responseWithError(w, http.StatusUnauthorized, service.CodeNotAuthenticated, err.Error())
	default:
		logger.Error("HTTP: ошибка Auth", err)
		responseWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "внутренняя ошибка сервера")
	}
}
