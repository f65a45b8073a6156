package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"github.com/budgieapp/budgie-server/internal/config"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPurchaseReminder tells a user a scheduled purchase is due today
func (s *Sender) SendPurchaseReminder(to, username, itemName string, price float64, plannedDate time.Time) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Purchase Reminder"

	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"It's time to buy %s for %.2f!\n"+
			"Your plan scheduled this purchase for %s.\n"+
			"\nBest regards,\nBudgie",
		username, itemName, price, plannedDate.Format("2006-01-02"),
	)
	e.Text = []byte(body)

	return s.send(e)
}

// SendBalanceUpdate tells a user the reconciliation job adjusted their balance
func (s *Sender) SendBalanceUpdate(to, username string, netChange, newBalance float64, eventsProcessed int) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = "Balance Updated"

	sign := ""
	if netChange >= 0 {
		sign = "+"
	}
	body := fmt.Sprintf(
		"Dear %s,\n\n"+
			"Your balance was automatically updated: %s%.2f (%d events).\n"+
			"Current balance: %.2f\n"+
			"\nBest regards,\nBudgie",
		username, sign, netChange, eventsProcessed, newBalance,
	)
	e.Text = []byte(body)

	return s.send(e)
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %v: %v", e.To, err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.logger.Infof("Email sent to %v: %s", e.To, e.Subject)
	return nil
}
