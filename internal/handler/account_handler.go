package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"mibank/internal/domain"
	"mibank/internal/errors"
	"mibank/internal/service"
)

type AccountHandler struct {
	ledger *service.LedgerService
}

func NewAccountHandler(ledger *service.LedgerService) *AccountHandler {
	return &AccountHandler{
		ledger: ledger,
	}
}

type CreateAccountRequest struct {
	OwnerName string `json:"owner_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

type AccountResponse struct {
	AccountID int64  `json:"account_id"`
	OwnerName string `json:"owner_name"`
	Email     string `json:"email"`
	Balance   string `json:"balance"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID: a.ID,
		OwnerName: a.OwnerName,
		Email:     a.Email,
		Balance:   a.Balance.String(),
	}
}

func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if appErr := decodeRequest(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	account, err := h.ledger.RegisterAccount(req.OwnerName, req.Email)
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := service.ParseAccountID(mux.Vars(r)["account_id"])
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}

	account, err := h.ledger.GetAccount(id)
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (h *AccountHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.ledger.ListAccounts()
	response := make([]AccountResponse, 0, len(accounts))
	for i := range accounts {
		response = append(response, toAccountResponse(&accounts[i]))
	}
	writeJSON(w, http.StatusOK, response)
}
