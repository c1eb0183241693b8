package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/transfa/corebank/internal/domainerr"
	"github.com/transfa/corebank/internal/pipeline"
)

func recordingExecute(result pipeline.Result) pipeline.Handler {
	return func(ctx context.Context, req pipeline.Request) pipeline.Result {
		return result
	}
}

func TestCreateCustomerRejectsMalformedBody(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.CreateCustomer(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateCustomerRejectsBadDateOfBirth(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	body := `{"first_name":"Ada","date_of_birth":"not-a-date"}`
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateCustomer(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestCreateCustomerWritesCreatedOnSuccess(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{Payload: map[string]string{"id": "abc"}}))
	body := `{"first_name":"Ada","last_name":"Lovelace","email":"ada@example.com","date_of_birth":"1990-01-01"}`
	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateCustomer(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var payload map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if payload["id"] != "abc" {
		t.Fatalf("payload = %+v, want id=abc", payload)
	}
}

func TestCreateAccountRejectsInvalidCustomerID(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	body := `{"customer_id":"not-a-uuid","type":"checking"}`
	req := httptest.NewRequest(http.MethodPost, "/accounts", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.CreateAccount(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetAccountDetailsMapsNotFoundToHTTPStatus(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{Err: domainerr.NotFound("account not found")}))
	r := chi.NewRouter()
	r.Get("/accounts/{accountRef}", h.GetAccountDetails)

	req := httptest.NewRequest(http.MethodGet, "/accounts/0123456789", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestGetTransactionHistoryRejectsInvalidAccountID(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	r := chi.NewRouter()
	r.Get("/accounts/{accountRef}/transactions", h.GetTransactionHistory)

	req := httptest.NewRequest(http.MethodGet, "/accounts/not-a-uuid/transactions?start=2024-01-01&end=2024-01-31", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetTransactionHistoryRejectsMissingDateRange(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	r := chi.NewRouter()
	r.Get("/accounts/{accountRef}/transactions", h.GetTransactionHistory)

	req := httptest.NewRequest(http.MethodGet, "/accounts/01234567-89ab-cdef-0123-456789abcdef/transactions", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestGetCustomerDetailsRejectsInvalidCustomerID(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	r := chi.NewRouter()
	r.Get("/customers/{customerID}", h.GetCustomerDetails)

	req := httptest.NewRequest(http.MethodGet, "/customers/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestTransferMoneyRejectsMalformedBody(t *testing.T) {
	h := NewHandlers(nil, nil, recordingExecute(pipeline.Result{}))
	req := httptest.NewRequest(http.MethodPost, "/transfers", strings.NewReader("not json"))
	w := httptest.NewRecorder()

	h.TransferMoney(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}
