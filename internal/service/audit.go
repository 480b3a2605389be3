package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/alvaro-chz/banking-core-api/internal/model"
)

// AuditStore persiste entradas de auditoría.
type AuditStore interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
}

// AuditLogService escribe la auditoría de forma asíncrona: las entradas se
// encolan y un worker las persiste fuera de la transacción que las originó.
// Un fallo de auditoría nunca bloquea ni revierte una operación financiera.
type AuditLogService struct {
	store   AuditStore
	logger  *logrus.Logger
	entries chan model.AuditLog
	done    chan struct{}
}

func NewAuditLogService(store AuditStore, logger *logrus.Logger) *AuditLogService {
	s := &AuditLogService{
		store:   store,
		logger:  logger,
		entries: make(chan model.AuditLog, 256),
		done:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *AuditLogService) run() {
	defer close(s.done)
	for entry := range s.entries {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.Insert(ctx, &entry); err != nil {
			s.logger.WithError(err).Warn("No se pudo persistir la entrada de auditoría")
		}
		cancel()
	}
}

// Log encola una entrada. Si la cola está llena la entrada se descarta con
// un aviso: la auditoría no debe frenar al resto del sistema.
func (s *AuditLogService) Log(userID int64, action model.AuditAction, description, ipAddress, agent string) {
	entry := model.AuditLog{
		UserID:      userID,
		Action:      action,
		Description: description + " | From: " + agent,
		IPAddress:   ipAddress,
		CreatedAt:   time.Now(),
	}

	select {
	case s.entries <- entry:
	default:
		s.logger.WithField("action", action).Warn("Cola de auditoría llena, entrada descartada")
	}
}

// Close drena la cola y detiene el worker.
func (s *AuditLogService) Close() {
	close(s.entries)
	<-s.done
}
