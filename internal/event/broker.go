package event

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/eventlogger"
	"github.com/hashicorp/eventlogger/filters/encrypt"
	"github.com/hashicorp/eventlogger/sinks/writer"
	"github.com/hashicorp/go-hclog"
	wrapping "github.com/hashicorp/go-kms-wrapping/v2"
	"github.com/hashicorp/go-uuid"
	"github.com/operand/credvault/internal/errors"
)

// Broker fans domain events out to a notification sink and a warehouse
// sink.  Send never fails the caller; a sink problem is logged and dropped.
type Broker struct {
	broker *eventlogger.Broker
	logger hclog.Logger
}

// NewBroker registers one pipeline per event type per sink.  Every pipeline
// runs the payload through an encrypt filter keyed by filterWrapper, so
// sensitive fields never land in a sink in the clear.  A nil warehouse
// writer discards warehouse copies.
func NewBroker(ctx context.Context, logger hclog.Logger, filterWrapper wrapping.Wrapper, notification, warehouse io.Writer) (*Broker, error) {
	const op = "event.NewBroker"
	if logger == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing logger")
	}
	if filterWrapper == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing filter wrapper")
	}
	if notification == nil {
		return nil, errors.New(ctx, errors.InvalidParameter, op, "missing notification writer")
	}
	if warehouse == nil {
		warehouse = io.Discard
	}

	b, err := eventlogger.NewBroker()
	if err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to create broker"))
	}

	filterId := eventlogger.NodeID("encrypt-filter")
	if err := b.RegisterNode(filterId, &encrypt.Filter{Wrapper: filterWrapper}); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to register encrypt filter"))
	}
	fmtId := eventlogger.NodeID("json-format")
	if err := b.RegisterNode(fmtId, &eventlogger.JSONFormatter{}); err != nil {
		return nil, errors.Wrap(ctx, err, op, errors.WithMsg("unable to register formatter"))
	}
	sinks := []struct {
		id eventlogger.NodeID
		w  io.Writer
	}{
		{id: "notification-sink", w: notification},
		{id: "warehouse-sink", w: warehouse},
	}
	for _, s := range sinks {
		n := &writer.Sink{
			Format: string(eventlogger.JSONFormat),
			Writer: s.w,
		}
		if err := b.RegisterNode(s.id, n); err != nil {
			return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to register sink %s", s.id)))
		}
		for _, t := range eventTypes() {
			p := eventlogger.Pipeline{
				PipelineID: eventlogger.PipelineID(fmt.Sprintf("%s-%s", t, s.id)),
				EventType:  t,
				NodeIDs:    []eventlogger.NodeID{filterId, fmtId, s.id},
			}
			if err := b.RegisterPipeline(p); err != nil {
				return nil, errors.Wrap(ctx, err, op, errors.WithMsg(fmt.Sprintf("unable to register pipeline %s", p.PipelineID)))
			}
		}
	}
	return &Broker{broker: b, logger: logger}, nil
}

// Send publishes one event.  Failures are logged at warn and swallowed.
func (b *Broker) Send(ctx context.Context, t Type, p Payload) {
	const op = "event.(Broker).Send"
	if !t.Valid() {
		b.logger.Warn("dropping event with unknown type", "op", op, "type", t)
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	if p.EventId == "" {
		id, err := uuid.GenerateUUID()
		if err != nil {
			b.logger.Warn("unable to generate event id", "op", op, "error", err)
			return
		}
		p.EventId = id
	}
	// the encrypt filter rewrites payload fields in place, so it needs a
	// pointer
	if _, err := b.broker.Send(ctx, eventlogger.EventType(t), &p); err != nil {
		b.logger.Warn("unable to deliver event", "op", op, "type", t, "error", err)
	}
}
