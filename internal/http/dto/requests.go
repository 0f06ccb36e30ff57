package dto

type CreateDealRequest struct {
	RecipientUserID string  `json:"recipient_user_id"`
	Title           *string `json:"title,omitempty"`
	AmountCents     int64   `json:"amount_cents"`
	Currency        string  `json:"currency"`
}

type SubmitFundingRequest struct {
	Method      string  `json:"method"` // bank / crypto
	AmountCents int64   `json:"amount_cents"`
	Currency    string  `json:"currency,omitempty"` // defaults to the deal currency
	Reference   *string `json:"reference,omitempty"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type OpenDisputeRequest struct {
	Reason string `json:"reason"`
}

type ResolveDisputeRequest struct {
	Action         string `json:"action"` // refund_buyer / release_seller
	ResolutionText string `json:"resolution_text"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type CreatePaymentMethodRequest struct {
	Method        string  `json:"method"` // bank / crypto
	Label         *string `json:"label,omitempty"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
	CryptoAddress *string `json:"crypto_address,omitempty"`
}
