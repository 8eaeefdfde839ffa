package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Notifier envía la confirmación del pedido (mail.OrderMailer).
type Notifier interface {
	OrderConfirmed(ctx context.Context, order Order) error
}

// Publisher publica el evento de pedido confirmado (events.Publisher).
type Publisher interface {
	PublishOrderConfirmed(ctx context.Context, order Order) error
}

// Service orquesta el pedido: validación, transacción de stock, correo y evento.
type Service struct {
	store     Store
	notifier  Notifier
	publisher Publisher
	logger    *slog.Logger

	newID func() string
	now   func() time.Time
}

// NewService crea el service de pedidos. publisher puede ser nil.
func NewService(store Store, notifier Notifier, publisher Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// PlaceOrder descuenta el stock de todo el carrito en una sola transacción y
// después envía el correo. buyer es el email de la sesión verificada.
func (service *Service) PlaceOrder(ctx context.Context, request Request, buyer string) (Order, error) {
	order := Order{ID: service.newID(), Email: buyer}
	log := service.logger.With("order_id", order.ID, "email", buyer)
	log.Info("pedido recibido", "stage", StagePending, "lines", len(request.Products))

	if claimed := strings.TrimSpace(request.UserEmail); claimed != "" && !strings.EqualFold(claimed, buyer) {
		log.Warn("usuarioEmail no coincide con la sesión", "usuario_email", claimed)
	}

	lines, err := Normalize(request.Products)
	if err != nil {
		log.Info("pedido rechazado", "stage", StageAborted, "error", err)
		return Order{}, err
	}
	order.Lines = lines
	order.Total = Total(lines)

	if client, parseErr := decimal.NewFromString(strings.TrimSpace(request.Total)); parseErr == nil && !client.Equal(order.Total) {
		log.Warn("total del cliente distinto al calculado", "client_total", request.Total, "total", order.Total.StringFixed(2))
	}

	log.Debug("validando stock", "stage", StageValidating)
	err = service.store.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return Apply(ctx, tx, lines)
	})
	if err != nil {
		log.Info("pedido abortado", "stage", StageAborted, "error", err)
		return Order{}, err
	}
	order.CreatedAt = service.now().UTC()
	log.Info("stock actualizado", "stage", StageCommitted, "total", order.Total.StringFixed(2))

	if err := service.notifier.OrderConfirmed(ctx, order); err != nil {
		log.Error("fallo el envío del correo", "stage", StageCommitted, "error", err)
		return order, fmt.Errorf("no se pudo enviar el correo de confirmación: %w", err)
	}
	log.Info("correo enviado", "stage", StageEmailSent)

	if service.publisher != nil {
		if err := service.publisher.PublishOrderConfirmed(ctx, order); err != nil {
			log.Warn("no se pudo publicar el evento", "error", err)
		}
	}

	return order, nil
}
