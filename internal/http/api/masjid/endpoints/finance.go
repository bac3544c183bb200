package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/masjid/internal/http/api"
	"github.com/Nixie-Tech-LLC/masjid/internal/http/api/masjid/packets"
	"github.com/Nixie-Tech-LLC/masjid/internal/model"
)

// GET /api/finance
func (c *ContentController) listTransactions(_ *gin.Context) (any, *api.APIError) {
	txs, err := c.store.ListTransactions()
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not list transactions")
	}
	return txs, nil
}

// POST /api/finance
func (c *ContentController) createTransaction(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	var req packets.TransactionRequest
	if err := api.BindJSON(ctx, &req); err != nil {
		return nil, err
	}
	if !req.Type.Valid() {
		return nil, api.NewError(http.StatusBadRequest, "type must be income or expense")
	}
	if req.Amount <= 0 {
		return nil, api.NewError(http.StatusBadRequest, "amount must be positive")
	}

	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, api.NewError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) == "" {
		req.Category = nil
	}

	created, err := c.store.CreateTransaction(model.Transaction{
		Title:    strings.TrimSpace(req.Title),
		Amount:   req.Amount,
		Type:     req.Type,
		Date:     date,
		Category: req.Category,
	})
	if err != nil {
		return nil, api.NewError(http.StatusInternalServerError, "could not create transaction")
	}
	return api.Created{Body: created}, nil
}

// DELETE /api/finance/:id
func (c *ContentController) deleteTransaction(ctx *gin.Context, _ *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "finance")
	if apiErr != nil {
		return nil, apiErr
	}
	if err := c.store.DeleteTransaction(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, api.NewError(http.StatusNotFound, "Transaction not found")
		}
		return nil, api.NewError(http.StatusInternalServerError, "could not delete transaction")
	}
	return packets.MessageResponse{Message: "Transaction deleted successfully"}, nil
}
