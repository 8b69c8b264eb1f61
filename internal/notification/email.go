package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"slot-booking-backend/config"
	"slot-booking-backend/internal/model"
)

// Recipient selects which EmailJS template a channel renders.
type Recipient string

const (
	RecipientCustomer Recipient = "customer"
	RecipientOwner    Recipient = "owner"
)

// EmailJSChannel posts a template send request to the EmailJS REST API.
type EmailJSChannel struct {
	recipient  Recipient
	endpoint   string
	serviceID  string
	templateID string
	publicKey  string
	privateKey string
	ownerEmail string
	client     *http.Client
}

// NewEmailJSChannel creates the channel for one recipient. A nil client uses http.DefaultClient.
func NewEmailJSChannel(cfg config.EmailConfig, recipient Recipient, client *http.Client) *EmailJSChannel {
	if client == nil {
		client = http.DefaultClient
	}
	template := cfg.CustomerTemplate
	if recipient == RecipientOwner {
		template = cfg.OwnerTemplate
	}
	return &EmailJSChannel{
		recipient:  recipient,
		endpoint:   cfg.Endpoint,
		serviceID:  cfg.ServiceID,
		templateID: template,
		publicKey:  cfg.PublicKey,
		privateKey: cfg.PrivateKey,
		ownerEmail: cfg.OwnerEmail,
		client:     client,
	}
}

func (c *EmailJSChannel) Name() string { return "email:" + string(c.recipient) }

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

func (c *EmailJSChannel) Send(ctx context.Context, r model.Reservation) error {
	body, err := json.Marshal(emailJSRequest{
		ServiceID:      c.serviceID,
		TemplateID:     c.templateID,
		UserID:         c.publicKey,
		AccessToken:    c.privateKey,
		TemplateParams: c.templateParams(r),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("emailjs returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// templateParams uses the variable names the EmailJS templates were written against.
func (c *EmailJSChannel) templateParams(r model.Reservation) map[string]string {
	params := map[string]string{
		"nome":     r.Name,
		"email":    r.Email,
		"telefone": r.Phone,
		"data":     displayDate(r.Date),
		"hora":     r.Time,
		"mensagem": "",
		"to_email": r.Email,
	}
	if r.Note != nil {
		params["mensagem"] = *r.Note
	}
	if c.recipient == RecipientOwner {
		params["to_email"] = c.ownerEmail
		params["resumo"] = ownerSummary(r)
	}
	return params
}
