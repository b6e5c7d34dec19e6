package service

import (
	"context"
	"strconv"

	"github.com/Skotchmaster/ecom/pkg/events"
	"github.com/Skotchmaster/ecom/pkg/logging"
)

// publish runs after commit; a broker outage never fails the request.
func publish(ctx context.Context, p events.Publisher, topic, key, typ string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, events.New(typ, payload)); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", typ, "key", key, "error", err)
	}
}

func idKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
