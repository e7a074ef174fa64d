// internal/domain/payment/entity.go
package payment

import "fmt"

// ProviderOrder is the opaque payment intent returned by the provider.
// Its ID is handed to the client UI and comes back at capture time.
type ProviderOrder struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ProviderError carries a non-success response from the payment provider.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider returned %d: %s", e.StatusCode, e.Message)
}

// tokenResponse is the provider's OAuth client-credentials response
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// amount is the provider's money representation: a currency code plus a
// decimal string with exactly two fractional digits.
type amount struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

type purchaseUnitRequest struct {
	ReferenceID string `json:"reference_id"`
	Amount      amount `json:"amount"`
}

type createOrderRequest struct {
	Intent        string                `json:"intent"`
	PurchaseUnits []purchaseUnitRequest `json:"purchase_units"`
}

// captureResponse mirrors the slice of the provider's capture payload we
// actually consume: overall status, payer email, and the captured amount.
type captureResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Payer  struct {
		EmailAddress string `json:"email_address"`
	} `json:"payer"`
	PurchaseUnits []struct {
		Payments struct {
			Captures []struct {
				Amount amount `json:"amount"`
			} `json:"captures"`
		} `json:"payments"`
	} `json:"purchase_units"`
}

func (r *captureResponse) capturedValue() string {
	if len(r.PurchaseUnits) == 0 {
		return ""
	}
	captures := r.PurchaseUnits[0].Payments.Captures
	if len(captures) == 0 {
		return ""
	}
	return captures[0].Amount.Value
}
