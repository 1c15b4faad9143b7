package repositories

import (
	"context"

	"github.com/dengun/assistant/server/domain/entities"
)

// Mailer delivers contact notifications to the admin mailbox
type Mailer interface {
	SendContactNotification(ctx context.Context, n entities.ContactNotification) error
}
