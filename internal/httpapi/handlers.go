package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/transfa/corebank/internal/domain"
	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
	"github.com/transfa/corebank/internal/pipeline"
)

// Handlers holds the pipeline dependencies every HTTP handler calls
// through, a thin struct wrapping the command/query pipeline the way a
// service-backed HTTP handler wraps its service.
type Handlers struct {
	commands *pipeline.Commands
	queries  *pipeline.Queries
	execute  pipeline.Handler
}

func NewHandlers(commands *pipeline.Commands, queries *pipeline.Queries, execute pipeline.Handler) *Handlers {
	return &Handlers{commands: commands, queries: queries, execute: execute}
}

type createCustomerRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	DateOfBirth string `json:"date_of_birth"`
	BVN         string `json:"bvn"`
	CreditScore int    `json:"credit_score"`
}

func (h *Handlers) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		http.Error(w, "date_of_birth must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	cmd := pipeline.CreateCustomerCommand{
		FirstName: req.FirstName, LastName: req.LastName, Email: req.Email,
		Phone: req.Phone, Address: req.Address, DateOfBirth: dob,
		BVN: req.BVN, CreditScore: req.CreditScore,
	}
	writeResult(w, http.StatusCreated, h.execute(r.Context(), cmd))
}

type createAccountRequest struct {
	CustomerID            string `json:"customer_id"`
	Type                  string `json:"type"`
	InitialDepositMinor   int64  `json:"initial_deposit_minor"`
	Currency              string `json:"currency"`
}

func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	customerID, err := ids.ParseCustomerID(req.CustomerID)
	if err != nil {
		http.Error(w, "invalid customer_id", http.StatusBadRequest)
		return
	}
	cmd := pipeline.CreateAccountCommand{
		CustomerID:     customerID,
		Type:           domain.AccountType(req.Type),
		InitialDeposit: moneytype.New(req.InitialDepositMinor, req.Currency),
	}
	writeResult(w, http.StatusCreated, h.execute(r.Context(), cmd))
}

type transferMoneyRequest struct {
	SourceAccountNumber      string `json:"source_account_number"`
	DestinationAccountNumber string `json:"destination_account_number"`
	AmountMinor              int64  `json:"amount_minor"`
	Currency                 string `json:"currency"`
	Reference                string `json:"reference"`
	Description              string `json:"description"`
}

func (h *Handlers) TransferMoney(w http.ResponseWriter, r *http.Request) {
	var req transferMoneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cmd := pipeline.TransferMoneyCommand{
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
		Amount:                   moneytype.New(req.AmountMinor, req.Currency),
		Reference:                req.Reference,
		Description:              req.Description,
	}
	writeResult(w, http.StatusOK, h.execute(r.Context(), cmd))
}

func (h *Handlers) GetAccountDetails(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountRef")
	query := pipeline.GetAccountDetailsQuery{AccountNumber: accountNumber}
	writeResult(w, http.StatusOK, h.execute(r.Context(), query))
}

func (h *Handlers) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	accountID, err := ids.ParseAccountID(chi.URLParam(r, "accountRef"))
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return
	}
	start, end, err := parseDateRange(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	query := pipeline.GetTransactionHistoryQuery{AccountID: accountID, Start: start, End: end}
	writeResult(w, http.StatusOK, h.execute(r.Context(), query))
}

func (h *Handlers) GetCustomers(w http.ResponseWriter, r *http.Request) {
	writeResult(w, http.StatusOK, h.execute(r.Context(), pipeline.GetCustomersQuery{}))
}

func (h *Handlers) GetCustomerDetails(w http.ResponseWriter, r *http.Request) {
	customerID, err := ids.ParseCustomerID(chi.URLParam(r, "customerID"))
	if err != nil {
		http.Error(w, "invalid customerID", http.StatusBadRequest)
		return
	}
	query := pipeline.GetCustomerDetailsQuery{CustomerID: customerID}
	writeResult(w, http.StatusOK, h.execute(r.Context(), query))
}

func parseDateRange(r *http.Request) (time.Time, time.Time, error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return time.Time{}, time.Time{}, domainerr.Validation("start must be YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return time.Time{}, time.Time{}, domainerr.Validation("end must be YYYY-MM-DD")
	}
	return start, end, nil
}
