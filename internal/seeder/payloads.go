// Package seeder generates realistic sample event payloads for demos and
// for exercising the submission pipeline against a live environment.
package seeder

import (
	"encoding/json"
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

// EventTypes lists the payload shapes the seeder can generate.
var EventTypes = []string{
	"order.created",
	"user.signup",
	"payment.captured",
	"jira.ticket.created",
}

// Payload generates one sample payload of the given event type.
func Payload(eventType string) (json.RawMessage, error) {
	var fields map[string]any

	switch eventType {
	case "order.created":
		fields = map[string]any{
			"event_type": eventType,
			"order_id":   gofakeit.UUID(),
			"customer":   gofakeit.Name(),
			"amount":     gofakeit.Price(5, 500),
			"currency":   gofakeit.CurrencyShort(),
		}
	case "user.signup":
		fields = map[string]any{
			"event_type": eventType,
			"user_id":    gofakeit.UUID(),
			"username":   gofakeit.Username(),
			"email":      gofakeit.Email(),
			"source_ip":  gofakeit.IPv4Address(),
		}
	case "payment.captured":
		fields = map[string]any{
			"event_type": eventType,
			"payment_id": gofakeit.UUID(),
			"amount":     gofakeit.Price(1, 2000),
			"method":     gofakeit.CreditCardType(),
		}
	case "jira.ticket.created":
		fields = map[string]any{
			"event_type": eventType,
			"ticket_id":  fmt.Sprintf("OPS-%d", gofakeit.Number(100, 9999)),
			"summary":    gofakeit.Sentence(8),
			"reporter":   gofakeit.Username(),
		}
	default:
		return nil, fmt.Errorf("unknown event type %q", eventType)
	}

	return json.Marshal(fields)
}

// RandomType picks one of the supported event types.
func RandomType() string {
	return EventTypes[gofakeit.Number(0, len(EventTypes)-1)]
}
