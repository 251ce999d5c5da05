// README: Account handlers: register riders, top up wallets, list past rides.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"citycab/internal/modules/account"
	"citycab/internal/modules/history"
	"citycab/internal/types"
)

type RideLister interface {
	ListByRider(ctx context.Context, riderID types.ID) ([]history.Record, error)
}

type AccountHandler struct {
	accounts *account.Service
	rides    RideLister
}

func NewAccountHandler(accounts *account.Service, rides RideLister) *AccountHandler {
	return &AccountHandler{accounts: accounts, rides: rides}
}

type createAccountReq struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PaymentMethod  string `json:"payment_method"`
	InitialBalance int64  `json:"initial_balance"`
}

func (h *AccountHandler) Create(c *gin.Context) {
	var req createAccountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := account.RegisterCommand{
		ID:             types.ID(req.ID),
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
	}
	if req.PaymentMethod != "" {
		m, err := account.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		cmd.PaymentMethod = m
	}
	a, err := h.accounts.Register(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, a)
}

func (h *AccountHandler) Get(c *gin.Context) {
	a, err := h.accounts.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, a)
}

type topUpReq struct {
	Amount int64 `json:"amount"`
}

// TopUp credits the wallet; amount is in paise.
func (h *AccountHandler) TopUp(c *gin.Context) {
	var req topUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	balance, err := h.accounts.TopUp(c.Request.Context(), types.ID(c.Param("id")), req.Amount)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"balance": balance})
}

type paymentMethodReq struct {
	PaymentMethod string `json:"payment_method"`
}

func (h *AccountHandler) SetPaymentMethod(c *gin.Context) {
	var req paymentMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	m, err := account.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if err := h.accounts.ChangePaymentMethod(c.Request.Context(), types.ID(c.Param("id")), m); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, map[string]any{"payment_method": m})
}

func (h *AccountHandler) Rides(c *gin.Context) {
	rides, err := h.rides.ListByRider(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if rides == nil {
		rides = []history.Record{}
	}
	writeJSON(c, http.StatusOK, map[string]any{"rides": rides})
}
