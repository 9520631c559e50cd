package mq

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/messaging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DefaultAuditDestination is used when no destination is configured.
const DefaultAuditDestination = "otp.audit"

const (
	keyOfCorrelationID string = "cID"
	keyOfEventType     string = "type"
)

type Messaging struct {
	client      messaging.Publisher
	ins         instrument.Instrumentation
	destination string
}

func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = DefaultAuditDestination
	}
	return &Messaging{client: client, ins: ins, destination: destination}
}

// PublishAudit sends ev as JSON. Events of one account share a partition key
// so brokers that honor keys keep them in order.
func (m *Messaging) PublishAudit(ctx context.Context, ev entity.AuditEvent) error {
	ctx, span := m.ins.Tracer("otp.outbound.mq").Start(ctx, "PublishAudit")
	defer span.End()
	span.SetAttributes(attribute.String("event.type", ev.Type))

	body, err := json.Marshal(ev)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := m.client.Publish(ctx, m.destination, messaging.Message{
		Key:  strconv.FormatInt(ev.AccountID, 10),
		Body: body,
		Headers: map[string]string{
			keyOfCorrelationID: instrument.GetCorrelationID(ctx),
			keyOfEventType:     ev.Type,
		},
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
