package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/events"
)

// publish is fire-and-forget: a bus failure never fails the request.
func publish(ctx context.Context, p events.Publisher, log logging.Logger, subject, actorID, targetID string) {
	err := p.Publish(ctx, events.Event{
		Subject:  subject,
		ActorID:  actorID,
		TargetID: targetID,
		At:       time.Now().UTC(),
	})
	if err != nil {
		log.Warn(ctx, "event publish failed", "subject", subject, "error", err)
	}
}
