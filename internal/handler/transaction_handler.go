package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"mibank/internal/errors"
	"mibank/internal/service"
)

type TransactionHandler struct {
	ledger *service.LedgerService
}

func NewTransactionHandler(ledger *service.LedgerService) *TransactionHandler {
	return &TransactionHandler{
		ledger: ledger,
	}
}

type TransferRequest struct {
	SenderID   json.Number `json:"sender_id" validate:"required"`
	ReceiverID json.Number `json:"receiver_id" validate:"required"`
	Amount     string      `json:"amount" validate:"required"`
}

type TransferResponse struct {
	TransactionID   string `json:"transaction_id"`
	SenderID        int64  `json:"sender_id"`
	ReceiverID      int64  `json:"receiver_id"`
	Amount          string `json:"amount"`
	SenderBalance   string `json:"sender_balance"`
	ReceiverBalance string `json:"receiver_balance"`
	CreatedAt       string `json:"created_at"`
}

func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if appErr := decodeRequest(r, &req); appErr != nil {
		writeError(w, appErr)
		return
	}

	senderID, err := service.ParseAccountID(req.SenderID.String())
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}
	receiverID, err := service.ParseAccountID(req.ReceiverID.String())
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}
	amount, err := service.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}

	receipt, err := h.ledger.Transfer(&service.TransferRequest{
		SenderID:   senderID,
		ReceiverID: receiverID,
		Amount:     amount,
	})
	if err != nil {
		writeError(w, errors.AsAppError(err))
		return
	}

	writeJSON(w, http.StatusCreated, TransferResponse{
		TransactionID:   receipt.TransactionID.String(),
		SenderID:        receipt.SenderID,
		ReceiverID:      receipt.ReceiverID,
		Amount:          receipt.Amount.String(),
		SenderBalance:   receipt.SenderBalance.String(),
		ReceiverBalance: receipt.ReceiverBalance.String(),
		CreatedAt:       receipt.CreatedAt.Format(time.RFC3339),
	})
}
