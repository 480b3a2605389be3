package service

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EmailSender envía notificaciones de movimientos. El envío es siempre
// fire-and-forget desde una goroutine: un SMTP caído no afecta la operación.
type EmailSender struct {
	dialer               *mail.Dialer
	logger               *logrus.Logger
	enabled              bool
	isInsecureSkipVerify bool
}

func NewEmailSender(logger *logrus.Logger) *EmailSender {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPortStr := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	enabled := os.Getenv("EMAIL_SENDER_ENABLED") == "true"
	isInsecureSkipVerify := os.Getenv("INSECURE_SKIP_VERIFY") == "true"

	smtpPort, err := strconv.Atoi(smtpPortStr)
	if err != nil {
		if enabled {
			logger.Fatalf("Error convirtiendo SMTP_PORT: %v", err)
		}
		smtpPort = 587
	}

	d := mail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPass)
	d.TLSConfig = &tls.Config{
		ServerName:         smtpHost,
		InsecureSkipVerify: isInsecureSkipVerify,
	}

	return &EmailSender{
		dialer:               d,
		logger:               logger,
		enabled:              enabled,
		isInsecureSkipVerify: isInsecureSkipVerify,
	}
}

// SendMovementNotification notifica un movimiento aplicado sobre una cuenta
// del usuario.
func (es *EmailSender) SendMovementNotification(email, movementType string, amount decimal.Decimal, currency, referenceCode string) error {
	if !es.enabled {
		es.logger.Debug("Envío de notificaciones deshabilitado")
		return nil
	}

	subject := fmt.Sprintf("Notificación de movimiento (%s)", movementType)
	content := fmt.Sprintf(`
		<h1>Notificación de movimiento</h1>
		<p>Tipo de operación: <strong>%s</strong></p>
		<p>Monto: <strong>%s %s</strong></p>
		<p>Código de referencia: <strong>%s</strong></p>
		<p>Fecha: <strong>%s</strong></p>
		<small>Este es un aviso automático, por favor no lo responda</small>`,
		movementType,
		amount.StringFixed(2),
		currency,
		referenceCode,
		time.Now().Format("02/01/2006 15:04"),
	)

	m := mail.NewMessage()
	m.SetHeader("From", es.dialer.Username)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", content)

	if err := es.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send notification email: %w", err)
	}

	es.logger.WithField("email", email).Info("Notificación de movimiento enviada")
	return nil
}
