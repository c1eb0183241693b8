package events

import (
	"testing"
	"time"

	"github.com/transfa/corebank/internal/ids"
	"github.com/transfa/corebank/internal/moneytype"
)

func TestEncodeDecodeRoundTripsAccountCreated(t *testing.T) {
	original := NewAccountCreated(ids.NewAccountID(), "0123456789", ids.NewCustomerID(), "checking", moneytype.New(1000, "NGN"))

	typeTag, payload, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if typeTag != "account.created" {
		t.Fatalf("typeTag = %q, want account.created", typeTag)
	}

	decoded, err := Decode(typeTag, payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := decoded.(AccountCreated)
	if !ok {
		t.Fatalf("Decode() returned %T, want AccountCreated value", decoded)
	}
	if got.AccountID != original.AccountID || got.AccountNumber != original.AccountNumber {
		t.Fatalf("decoded = %+v, want fields matching %+v", got, original)
	}
}

func TestEncodeDecodeRoundTripsMoneyTransferred(t *testing.T) {
	original := NewMoneyTransferred(ids.NewTransactionID(), "1111111111", "2222222222", moneytype.New(500, "NGN"), "ref-1", time.Now().UTC())

	typeTag, payload, err := Encode(original)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := Decode(typeTag, payload)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	got, ok := decoded.(MoneyTransferred)
	if !ok {
		t.Fatalf("Decode() returned %T, want MoneyTransferred value", decoded)
	}
	if got.Reference != original.Reference || got.Amount.AmountMinor != original.Amount.AmountMinor {
		t.Fatalf("decoded = %+v, want fields matching %+v", got, original)
	}
}

func TestDecodeUnrecognizedTypeTagReturnsNilWithoutError(t *testing.T) {
	decoded, err := Decode("something.unknown", []byte(`{}`))
	if err != nil {
		t.Fatalf("Decode() error = %v, want nil", err)
	}
	if decoded != nil {
		t.Fatalf("Decode() = %v, want nil for an unrecognized type tag", decoded)
	}
}

func TestDecodeMalformedPayloadReturnsError(t *testing.T) {
	_, err := Decode("account.created", []byte(`not json`))
	if err == nil {
		t.Fatal("expected an error decoding malformed JSON")
	}
}

func TestEventIDAndOccurredOnAreSet(t *testing.T) {
	event := NewInsufficientFunds("0123456789", moneytype.New(100, "NGN"), moneytype.New(10, "NGN"), "withdrawal")
	if event.EventID().String() == "" {
		t.Fatal("expected a non-empty event id")
	}
	if event.OccurredOn().IsZero() {
		t.Fatal("expected a non-zero occurred-on timestamp")
	}
}
