package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

// Line es un ítem del carrito tal como lo envía el cliente.
// El carrito manda el producto completo; solo se leen estos campos.
type Line struct {
	ID       string          `json:"id"`
	Name     string          `json:"nombre"`
	Price    decimal.Decimal `json:"precio"`
	Quantity int             `json:"cantidad"`
}

// Subtotal es precio × cantidad.
func (line Line) Subtotal() decimal.Decimal {
	return line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// label es el nombre a mostrar en mensajes; si el cliente no lo mandó usa el id.
func (line Line) label() string {
	if line.Name != "" {
		return line.Name
	}
	return line.ID
}

// Request es el cuerpo de POST /api/enviar-pedido.
type Request struct {
	Products  []Line `json:"productos"`
	Total     string `json:"total"`
	UserEmail string `json:"usuarioEmail"`
}

// Order es un pedido confirmado (stock ya descontado).
type Order struct {
	ID        string
	Email     string
	Lines     []Line
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Stage es la etapa del pedido. Solo se usa en logs.
type Stage string

const (
	StagePending    Stage = "pending"
	StageValidating Stage = "validating"
	StageCommitted  Stage = "committed"
	StageEmailSent  Stage = "email_sent"
	StageAborted    Stage = "aborted"
)
