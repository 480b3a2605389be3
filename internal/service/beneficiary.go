package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

type BeneficiaryService struct {
	beneficiaryStore BeneficiaryStore
	accountStore     AccountStore
	logger           *logrus.Logger
}

func NewBeneficiaryService(beneficiaryStore BeneficiaryStore, accountStore AccountStore, logger *logrus.Logger) *BeneficiaryService {
	return &BeneficiaryService{
		beneficiaryStore: beneficiaryStore,
		accountStore:     accountStore,
		logger:           logger,
	}
}

// Create registra un beneficiario. No se permite registrarse a uno mismo ni
// duplicar un beneficiario activo con el mismo número de cuenta.
func (s *BeneficiaryService) Create(ctx context.Context, userID int64, req *model.BeneficiaryCreateRequest) (*model.BeneficiaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	own, err := s.accountStore.ExistsByNumberAndUserID(ctx, req.AccountNumber, userID)
	if err != nil {
		return nil, err
	}
	if own {
		return nil, model.ErrOwnBeneficiary
	}

	exists, err := s.beneficiaryStore.ExistsActiveByUserAndNumber(ctx, userID, req.AccountNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrBeneficiaryExists
	}

	bankName := req.BankName
	if bankName == "" {
		bankName = model.DefaultBankName
	}

	beneficiary := &model.Beneficiary{
		UserID:        userID,
		Alias:         req.Alias,
		AccountNumber: req.AccountNumber,
		BankName:      bankName,
		IsActive:      true,
	}
	if err := s.beneficiaryStore.Create(ctx, beneficiary); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":        userID,
		"account_number": req.AccountNumber,
	}).Info("Beneficiario registrado")
	return mapBeneficiaryResponse(beneficiary), nil
}

func (s *BeneficiaryService) List(ctx context.Context, userID int64) ([]model.BeneficiaryResponse, error) {
	beneficiaries, err := s.beneficiaryStore.FindAllActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]model.BeneficiaryResponse, 0, len(beneficiaries))
	for i := range beneficiaries {
		out = append(out, *mapBeneficiaryResponse(&beneficiaries[i]))
	}
	return out, nil
}

// Update modifica alias, número o banco de un beneficiario propio.
func (s *BeneficiaryService) Update(ctx context.Context, userID, beneficiaryID int64, req *model.BeneficiaryUpdateRequest) (*model.BeneficiaryResponse, error) {
	beneficiary, err := s.findOwned(ctx, userID, beneficiaryID)
	if err != nil {
		return nil, err
	}

	if req.AccountNumber != "" && req.AccountNumber != beneficiary.AccountNumber {
		own, err := s.accountStore.ExistsByNumberAndUserID(ctx, req.AccountNumber, userID)
		if err != nil {
			return nil, err
		}
		if own {
			return nil, model.ErrOwnBeneficiary
		}
		beneficiary.AccountNumber = req.AccountNumber
	}
	if req.Alias != "" {
		beneficiary.Alias = req.Alias
	}
	if req.BankName != "" {
		beneficiary.BankName = req.BankName
	}

	if err := s.beneficiaryStore.Update(ctx, beneficiary); err != nil {
		return nil, err
	}
	return mapBeneficiaryResponse(beneficiary), nil
}

// Delete da de baja lógica al beneficiario; la fila se conserva porque los
// movimientos antiguos pueden referirla en sus descripciones.
func (s *BeneficiaryService) Delete(ctx context.Context, userID, beneficiaryID int64) error {
	beneficiary, err := s.findOwned(ctx, userID, beneficiaryID)
	if err != nil {
		return err
	}

	beneficiary.IsActive = false
	if err := s.beneficiaryStore.Update(ctx, beneficiary); err != nil {
		return err
	}
	s.logger.WithField("beneficiary_id", beneficiaryID).Info("Beneficiario eliminado")
	return nil
}

func (s *BeneficiaryService) findOwned(ctx context.Context, userID, beneficiaryID int64) (*model.Beneficiary, error) {
	beneficiary, err := s.beneficiaryStore.FindByID(ctx, beneficiaryID)
	if err != nil {
		return nil, err
	}
	if beneficiary.UserID != userID || !beneficiary.IsActive {
		return nil, model.ErrBeneficiaryNotFound
	}
	return beneficiary, nil
}

func mapBeneficiaryResponse(b *model.Beneficiary) *model.BeneficiaryResponse {
	return &model.BeneficiaryResponse{
		ID:            b.ID,
		Alias:         b.Alias,
		AccountNumber: b.AccountNumber,
		BankName:      b.BankName,
	}
}
