package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

type APIError struct {
	Code    int
	Message string
}

func NewError(code int, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// Created wraps a result that should be answered with 201.
type Created struct {
	Body any
}

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		render(ctx, func() (any, *APIError) { return h(ctx, user) })
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		render(ctx, func() (any, *APIError) { return h(ctx) })
	}
}

func render(ctx *gin.Context, call func() (any, *APIError)) {
	result, apiErr := call()
	if apiErr != nil {
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	if c, ok := result.(Created); ok {
		ctx.JSON(http.StatusCreated, c.Body)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// BindJSON decodes the body, mapping an oversized body to 413.
func BindJSON(ctx *gin.Context, dst any) *APIError {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		return bindError(err)
	}
	return nil
}

func bindError(err error) *APIError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return NewError(http.StatusRequestEntityTooLarge, "request body too large")
	}
	return NewError(http.StatusBadRequest, err.Error())
}

// BindError is bindError for handlers that parse forms themselves.
func BindError(err error) *APIError { return bindError(err) }
