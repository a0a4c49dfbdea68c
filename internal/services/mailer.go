package services

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"atelier_back_end/internal/models"
	"atelier_back_end/internal/utils"

	"github.com/wneessen/go-mail"
)

// Mailer envoie les e-mails transactionnels de la boutique.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to, name string, order models.Order) error
	SendOrderStatus(ctx context.Context, to string, order models.Order) error
	SendContactNotification(ctx context.Context, msg models.ContactMessage) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Inbox reçoit les messages du formulaire de contact.
	Inbox string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

type attachment struct {
	name string
	data []byte
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, html string, files ...attachment) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("expéditeur invalide: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("destinataire invalide: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, html)
	for _, f := range files {
		msg.AttachReader(f.name, bytes.NewReader(f.data))
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}
	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("client SMTP: %w", err)
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("envoi e-mail: %w", err)
	}
	return nil
}

func (m *SMTPMailer) SendOrderConfirmation(ctx context.Context, to, name string, order models.Order) error {
	html, err := utils.OrderConfirmationHTML(order, name)
	if err != nil {
		return err
	}
	qr, err := utils.OrderQRCode(order)
	if err != nil {
		return err
	}
	return m.send(ctx, to, "✅ Confirmation de votre commande - Atelier", html,
		attachment{name: "commande_" + order.ID + ".png", data: qr})
}

func (m *SMTPMailer) SendOrderStatus(ctx context.Context, to string, order models.Order) error {
	html, err := utils.OrderStatusHTML(order)
	if err != nil {
		return err
	}
	return m.send(ctx, to, utils.OrderStatusSubject(order.Status), html)
}

func (m *SMTPMailer) SendContactNotification(ctx context.Context, msg models.ContactMessage) error {
	if m.cfg.Inbox == "" {
		log.Printf("⚠️ CONTACT_INBOX vide, message %s non transféré", msg.ID)
		return nil
	}
	html, err := utils.ContactNotificationHTML(msg)
	if err != nil {
		return err
	}
	return m.send(ctx, m.cfg.Inbox, "📬 Nouveau message de "+msg.Name, html)
}

// LogMailer remplace l'envoi SMTP quand il n'est pas configuré.
type LogMailer struct{}

func (LogMailer) SendOrderConfirmation(_ context.Context, to, _ string, order models.Order) error {
	log.Printf("📧 [log] confirmation commande %s → %s (%.2f€)", order.ID, to, order.Total)
	return nil
}

func (LogMailer) SendOrderStatus(_ context.Context, to string, order models.Order) error {
	log.Printf("📧 [log] statut commande %s → %s : %s", order.ID, to, order.Status)
	return nil
}

func (LogMailer) SendContactNotification(_ context.Context, msg models.ContactMessage) error {
	log.Printf("📧 [log] message de contact %s de %s", msg.ID, msg.Email)
	return nil
}
