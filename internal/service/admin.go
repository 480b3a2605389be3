package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// lastBlockedLimit acota el listado de últimos bloqueados del panel.
const lastBlockedLimit = 3

// AdminService cubre el panel de administración: métricas, búsquedas
// auditadas y desbloqueo manual de usuarios.
type AdminService struct {
	userStore    UserStore
	txStore      TransactionStore
	attemptStore LoginAttemptStore
	transactions *TransactionService
	audit        *AuditLogService
	logger       *logrus.Logger
}

func NewAdminService(
	userStore UserStore,
	txStore TransactionStore,
	attemptStore LoginAttemptStore,
	transactions *TransactionService,
	audit *AuditLogService,
	logger *logrus.Logger,
) *AdminService {
	return &AdminService{
		userStore:    userStore,
		txStore:      txStore,
		attemptStore: attemptStore,
		transactions: transactions,
		audit:        audit,
		logger:       logger,
	}
}

// Dashboard arma las métricas del panel: usuarios retenidos (con más de una
// cuenta o movimientos recientes), total de clientes, bloqueados, últimos
// bloqueados y la curva diaria de movimientos por moneda.
func (s *AdminService) Dashboard(ctx context.Context) (*model.AdminDashboardResponse, error) {
	retained, err := s.txStore.CountRetainedUsers(ctx)
	if err != nil {
		return nil, err
	}
	totalClients, err := s.userStore.CountByRole(ctx, model.RoleClient)
	if err != nil {
		return nil, err
	}
	blocked, err := s.attemptStore.CountBlocked(ctx)
	if err != nil {
		return nil, err
	}
	lastBlocked, err := s.attemptStore.FindLastBlocked(ctx, lastBlockedLimit)
	if err != nil {
		return nil, err
	}
	curve, err := s.txStore.TransactionCurve(ctx)
	if err != nil {
		return nil, err
	}

	return &model.AdminDashboardResponse{
		RetainedUsersCount:     retained,
		TotalUsersCount:        totalClients,
		TotalBlockedUsersCount: blocked,
		LastUsersBlocked:       lastBlocked,
		TransactionCurve:       curve,
	}, nil
}

// SearchUsers lista clientes con filtros; la consulta queda auditada.
func (s *AdminService) SearchUsers(ctx context.Context, adminID int64, filter model.UserSearchFilter, page, size int, ipAddress, userAgent string) (*model.Page[model.UserAdminResponse], error) {
	users, total, err := s.userStore.SearchPage(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}

	s.audit.Log(adminID, model.AuditActionSearchUsers,
		fmt.Sprintf("Búsqueda de usuarios: %q", filter.Term), ipAddress, userAgent)
	return model.NewPage(users, page, size, total), nil
}

// SearchTransactions lista movimientos de todo el banco; la consulta queda
// auditada.
func (s *AdminService) SearchTransactions(ctx context.Context, adminID int64, filter model.TransactionFilter, page, size int, ipAddress, userAgent string) (*model.Page[model.TransactionResponse], error) {
	result, err := s.transactions.GetAllTransactions(ctx, filter, page, size)
	if err != nil {
		return nil, err
	}

	s.audit.Log(adminID, model.AuditActionSearchTransactions,
		fmt.Sprintf("Búsqueda de movimientos: cuenta %q", filter.AccountNumber), ipAddress, userAgent)
	return result, nil
}

// UnblockUser levanta el bloqueo manualmente y reinicia el contador.
func (s *AdminService) UnblockUser(ctx context.Context, adminID, userID int64, ipAddress, userAgent string) error {
	attempt, err := s.attemptStore.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if !attempt.IsBlocked {
		return model.ErrUserNotBlocked
	}

	attempt.IsBlocked = false
	attempt.Attempts = 0
	if err := s.attemptStore.Update(ctx, attempt); err != nil {
		return err
	}

	s.audit.Log(adminID, model.AuditActionUnblockUser,
		fmt.Sprintf("Desbloqueo del usuario %d", userID), ipAddress, userAgent)
	s.logger.WithFields(logrus.Fields{
		"admin_id": adminID,
		"user_id":  userID,
	}).Info("Usuario desbloqueado por administración")
	return nil
}
