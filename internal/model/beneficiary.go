package model

import "fmt"

// DefaultBankName se asume cuando el cliente no indica el banco del
// beneficiario.
const DefaultBankName = "BankDemo"

type Beneficiary struct {
	ID            int64  `json:"id" db:"id"`
	UserID        int64  `json:"user_id" db:"user_id"`
	Alias         string `json:"alias" db:"alias"`
	AccountNumber string `json:"account_number" db:"account_number"`
	BankName      string `json:"bank_name" db:"bank_name"`
	IsActive      bool   `json:"is_active" db:"is_active"`
}

type BeneficiaryCreateRequest struct {
	Alias         string `json:"alias"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

type BeneficiaryUpdateRequest struct {
	Alias         string `json:"alias"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

type BeneficiaryResponse struct {
	ID            int64  `json:"id"`
	Alias         string `json:"alias"`
	AccountNumber string `json:"account_number"`
	BankName      string `json:"bank_name"`
}

func (r *BeneficiaryCreateRequest) Validate() error {
	if r.AccountNumber == "" {
		return fmt.Errorf("el número de cuenta es obligatorio")
	}
	return nil
}
