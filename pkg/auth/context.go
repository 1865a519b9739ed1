package auth

import (
	"context"

	apperrors "smartproduct-backend/pkg/errors"
)

// Ticket is the resolved caller identity. It is produced by the authorization
// collaborator (API Gateway authorizer or the local JWT validator) and treated
// as an opaque precondition by the services.
type Ticket struct {
	Sub    string
	Groups []string
}

// IsAdmin reports whether the caller belongs to the Admin group.
func (t *Ticket) IsAdmin() bool {
	for _, g := range t.Groups {
		if g == "Admin" {
			return true
		}
	}
	return false
}

type contextKey string

const ticketKey contextKey = "ticket"

// WithTicket attaches the resolved ticket to the request context.
func WithTicket(ctx context.Context, ticket *Ticket) context.Context {
	return context.WithValue(ctx, ticketKey, ticket)
}

// TicketFrom extracts the ticket from the context.
func TicketFrom(ctx context.Context) (*Ticket, error) {
	ticket, ok := ctx.Value(ticketKey).(*Ticket)
	if !ok || ticket == nil || ticket.Sub == "" {
		return nil, apperrors.NewAccessDenied("no caller identity in context")
	}
	return ticket, nil
}
