package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message es un correo listo para enviar.
type Message struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
}

// Sender es el transporte de correo.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// sendFunc envía el mensaje armado y devuelve status y body de la respuesta.
type sendFunc func(ctx context.Context, message *sgmail.SGMailV3) (int, string, error)

// SendGridClient implementa Sender con la API de SendGrid.
type SendGridClient struct {
	apiKey string
	send   sendFunc
}

// NewSendGridClient crea el cliente. La key vacía se detecta al enviar.
func NewSendGridClient(apiKey string) *SendGridClient {
	client := &SendGridClient{apiKey: apiKey}
	client.send = func(ctx context.Context, message *sgmail.SGMailV3) (int, string, error) {
		response, err := sendgrid.NewSendClient(client.apiKey).SendWithContext(ctx, message)
		if err != nil {
			return 0, "", err
		}
		return response.StatusCode, response.Body, nil
	}
	return client
}

// Send implementa Sender.
func (client *SendGridClient) Send(ctx context.Context, message Message) error {
	if client.apiKey == "" {
		return errors.New("sendgrid: api key vacía")
	}
	if message.From == "" {
		return errors.New("sendgrid: remitente vacío")
	}
	if message.To == "" {
		return errors.New("sendgrid: destinatario vacío")
	}

	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(message.FromName, message.From),
		message.Subject,
		sgmail.NewEmail("", message.To),
		message.Text,
		message.HTML,
	)

	status, body, err := client.send(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("sendgrid: status=%d body=%s", status, body)
	}
	return nil
}
