// Package mail compone y envía la confirmación de pedido.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/Lelo88/tienda-golang/internal/checkout"
)

// Subject del correo de confirmación.
const Subject = "🚨 Pedido Confirmado - Stock Actualizado"

const orderHTML = `<div style="font-family: sans-serif;">
  <h1>Nuevo Pedido Recibido</h1>
  <p><strong>Pedido:</strong> {{.ID}}</p>
  <p><strong>Usuario:</strong> {{.Email}}</p>
  <ul>{{range .Lines}}<li>{{.Name}} (x{{.Quantity}}) - ${{.Subtotal}}</li>{{end}}</ul>
  <p><strong>Total:</strong> ${{.Total}}</p>
  <hr>
  <p style="color: green;"><em>El inventario se ha actualizado automáticamente.</em></p>
</div>
`

var orderTemplate = template.Must(template.New("order").Parse(orderHTML))

type orderView struct {
	ID    string
	Email string
	Lines []lineView
	Total string
}

type lineView struct {
	Name     string
	Quantity int
	Subtotal string
}

// OrderMailer implementa checkout.Notifier.
type OrderMailer struct {
	sender   Sender
	from     string
	fromName string
	notifyTo string
}

// NewOrderMailer crea el mailer. Si notifyTo está vacío el correo va al comprador.
func NewOrderMailer(sender Sender, from, fromName, notifyTo string) *OrderMailer {
	if fromName == "" {
		fromName = "Inventario"
	}
	return &OrderMailer{sender: sender, from: from, fromName: fromName, notifyTo: notifyTo}
}

// OrderConfirmed envía el resumen del pedido.
func (mailer *OrderMailer) OrderConfirmed(ctx context.Context, order checkout.Order) error {
	message, err := mailer.compose(order)
	if err != nil {
		return err
	}
	return mailer.sender.Send(ctx, message)
}

func (mailer *OrderMailer) compose(order checkout.Order) (Message, error) {
	html, err := renderHTML(order)
	if err != nil {
		return Message{}, err
	}

	to := mailer.notifyTo
	if to == "" {
		to = order.Email
	}

	return Message{
		FromName: mailer.fromName,
		From:     mailer.from,
		To:       to,
		Subject:  Subject,
		Text:     renderText(order),
		HTML:     html,
	}, nil
}

func newOrderView(order checkout.Order) orderView {
	view := orderView{
		ID:    order.ID,
		Email: order.Email,
		Total: order.Total.StringFixed(2),
	}
	for _, line := range order.Lines {
		view.Lines = append(view.Lines, lineView{
			Name:     line.Name,
			Quantity: line.Quantity,
			Subtotal: line.Subtotal().StringFixed(2),
		})
	}
	return view
}

func renderHTML(order checkout.Order) (string, error) {
	var buf bytes.Buffer
	if err := orderTemplate.Execute(&buf, newOrderView(order)); err != nil {
		return "", fmt.Errorf("mail: render: %w", err)
	}
	return buf.String(), nil
}

func renderText(order checkout.Order) string {
	view := newOrderView(order)

	var b strings.Builder
	fmt.Fprintf(&b, "Nuevo Pedido Recibido\n\nPedido: %s\nUsuario: %s\n\n", view.ID, view.Email)
	for _, line := range view.Lines {
		fmt.Fprintf(&b, "- %s (x%d) - $%s\n", line.Name, line.Quantity, line.Subtotal)
	}
	fmt.Fprintf(&b, "\nTotal: $%s\n\nEl inventario se ha actualizado automáticamente.\n", view.Total)
	return b.String()
}
