package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/financepro/financepro/internal/api/middleware"
	"github.com/financepro/financepro/internal/domain"
	"github.com/financepro/financepro/internal/report"
	"github.com/financepro/financepro/internal/state"
)

// TransactionsHandler handles transaction CRUD endpoints.
type TransactionsHandler struct {
	controller *state.Controller
	log        zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(controller *state.Controller, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{controller: controller, log: log}
}

// transactionRequest is the write payload for create and update.
type transactionRequest struct {
	Date           string `json:"date"`
	Category       string `json:"category"`
	Description    string `json:"description"`
	Amount         string `json:"amount"`
	PaymentMethod  string `json:"paymentMethod"`
	Type           string `json:"type"`
	Attachment     string `json:"attachment,omitempty"`
	AttachmentName string `json:"attachmentName,omitempty"`
}

func (req transactionRequest) toDomain() (domain.Transaction, string) {
	if req.Date == "" || req.Description == "" || req.Amount == "" {
		return domain.Transaction{}, "date, description and amount are required"
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return domain.Transaction{}, "invalid amount"
	}
	typ := domain.TransactionType(req.Type)
	if typ != domain.TypeIncome && typ != domain.TypeExpense {
		return domain.Transaction{}, "type must be INCOME or EXPENSE"
	}
	return domain.Transaction{
		Date:           req.Date,
		Category:       req.Category,
		Description:    req.Description,
		Amount:         amount.Abs(),
		PaymentMethod:  req.PaymentMethod,
		Type:           typ,
		Attachment:     req.Attachment,
		AttachmentName: req.AttachmentName,
	}, ""
}

// filterFromQuery builds a report filter from list query parameters.
func filterFromQuery(r *http.Request) report.Filter {
	q := r.URL.Query()
	return report.Filter{
		Category:      q.Get("category"),
		Type:          domain.TransactionType(q.Get("type")),
		PaymentMethod: q.Get("method"),
		From:          q.Get("from"),
		To:            q.Get("to"),
	}
}

// List handles GET /api/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	filtered := filterFromQuery(r).Apply(h.controller.Transactions())
	middleware.WriteJSON(w, http.StatusOK, filtered)
}

// Create handles POST /api/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, errMsg := req.toDomain()
	if errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	saved := h.controller.AddTransaction(r.Context(), tx)
	if saved == nil {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to save transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /api/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, errMsg := req.toDomain()
	if errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	updated := h.controller.UpdateTransaction(r.Context(), id, tx)
	if updated == nil {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.controller.DeleteTransaction(r.Context(), id) {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to delete transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// CategoriesHandler handles category CRUD endpoints.
type CategoriesHandler struct {
	controller *state.Controller
	log        zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(controller *state.Controller, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{controller: controller, log: log}
}

type categoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (req categoryRequest) validate() (string, domain.TransactionType, string) {
	if req.Name == "" {
		return "", "", "name is required"
	}
	typ := domain.TransactionType(req.Type)
	if typ != domain.TypeIncome && typ != domain.TypeExpense {
		return "", "", "type must be INCOME or EXPENSE"
	}
	return req.Name, typ, ""
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories := h.controller.Categories()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name, typ, errMsg := req.validate()
	if errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	saved := h.controller.AddCategory(r.Context(), name, typ)
	if saved == nil {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to save category")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, saved)
}

// Update handles PUT /api/categories/{id}
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request, id string) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	name, typ, errMsg := req.validate()
	if errMsg != "" {
		middleware.WriteError(w, http.StatusBadRequest, errMsg)
		return
	}

	updated := h.controller.UpdateCategory(r.Context(), id, name, typ)
	if updated == nil {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to update category")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/categories/{id}. Transactions referencing the
// deleted category keep its name.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request, id string) {
	if !h.controller.DeleteCategory(r.Context(), id) {
		middleware.WriteError(w, http.StatusBadGateway, "Failed to delete category")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
