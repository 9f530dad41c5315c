package listener

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avolut/retail-stock-service/internal/availability"
	"github.com/avolut/retail-stock-service/internal/batch"
	"github.com/avolut/retail-stock-service/internal/ledger"
	ledgerdto "github.com/avolut/retail-stock-service/internal/ledger/dto"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/reservation"
	resvdto "github.com/avolut/retail-stock-service/internal/reservation/dto"
	"github.com/avolut/retail-stock-service/pkg/broker"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"go.uber.org/zap"
)

// StockListener consumes sale and appointment events and turns them into
// ledger movements, reservations and releases.
type StockListener struct {
	consumer     *broker.KafkaConsumer
	ledgerUC     ledger.UseCase
	batches      batch.UseCase
	reservations reservation.UseCase
	avail        availability.UseCase
	logger       logger.ZapLogger
}

func NewStockListener(
	consumer *broker.KafkaConsumer,
	ledgerUC ledger.UseCase,
	batches batch.UseCase,
	reservations reservation.UseCase,
	avail availability.UseCase,
	log logger.ZapLogger,
) *StockListener {
	return &StockListener{
		consumer:     consumer,
		ledgerUC:     ledgerUC,
		batches:      batches,
		reservations: reservations,
		avail:        avail,
		logger:       log,
	}
}

func (l *StockListener) Start(ctx context.Context) {
	l.logger.Info("Starting stock event listener")
	for {
		select {
		case <-ctx.Done():
			l.logger.Info("Stopping stock event listener")
			return
		default:
			msg, err := l.consumer.ReadMessage(ctx)
			if err != nil {
				// Don't log context canceled error as error
				if ctx.Err() != nil {
					return
				}
				l.logger.Error("Failed to read kafka message", zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}
			l.processMessage(ctx, msg.Value)
		}
	}
}

type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

type SaleCompletedPayload struct {
	ID          string         `json:"id"`
	LocationID  string         `json:"location_id"`
	PerformedBy string         `json:"performed_by"`
	Items       []SaleItemData `json:"items"`
}

type SaleItemData struct {
	ProductID string  `json:"product_id"`
	BatchID   *string `json:"batch_id"`
	Quantity  int64   `json:"quantity"`
}

type AppointmentScheduledPayload struct {
	AppointmentID string     `json:"appointment_id"`
	ServiceID     string     `json:"service_id"`
	LocationID    string     `json:"location_id"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         time.Time  `json:"end_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type AppointmentCancelledPayload struct {
	AppointmentID string `json:"appointment_id"`
}

func (l *StockListener) processMessage(ctx context.Context, value []byte) {
	var event EventEnvelope
	if err := json.Unmarshal(value, &event); err != nil {
		l.logger.Error("Failed to unmarshal event", zap.Error(err))
		return
	}

	switch event.EventType {
	case "SaleCompleted":
		l.handleSaleCompleted(ctx, &event)
	case "AppointmentScheduled":
		l.handleAppointmentScheduled(ctx, &event)
	case "AppointmentCancelled":
		l.handleAppointmentCancelled(ctx, &event)
	}
}

func (l *StockListener) handleSaleCompleted(ctx context.Context, event *EventEnvelope) {
	var payload SaleCompletedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal SaleCompleted payload", zap.Error(err))
		return
	}

	l.logger.Info("Processing SaleCompleted event", zap.String("sale_id", payload.ID))

	performedBy := payload.PerformedBy
	if performedBy == "" {
		performedBy = "system"
	}

	for _, item := range payload.Items {
		for _, part := range l.splitAcrossLots(ctx, &item) {
			refID := payload.ID
			input := &ledgerdto.RecordMovementInput{
				ProductID:      item.ProductID,
				QuantityChange: -part.Quantity,
				Reason:         model.ReasonSale,
				PerformedBy:    performedBy,
				LocationID:     payload.LocationID,
				BatchID:        part.BatchID,
				ReferenceID:    &refID,
				Notes:          "sale completion",
			}

			if _, err := l.ledgerUC.Record(ctx, input); err != nil {
				l.logger.Error("Failed to record sale movement",
					zap.String("sale_id", payload.ID),
					zap.String("product_id", item.ProductID),
					zap.Error(err),
				)
				// TODO: route to a dead-letter topic instead of dropping
			}
		}
	}

	// Release any holds the order placed; the decrement above and this
	// release are intentionally independent operations.
	released, err := l.reservations.ReleaseFor(ctx, payload.ID, model.ReservedForOrder)
	if err != nil {
		l.logger.Error("Failed to release order reservations",
			zap.String("sale_id", payload.ID),
			zap.Error(err),
		)
		return
	}
	if released > 0 {
		l.logger.Info("Released order reservations",
			zap.String("sale_id", payload.ID),
			zap.Int("count", released),
		)
	}
}

type lotPart struct {
	BatchID  *string
	Quantity int64
}

// splitAcrossLots plans the decrement. Items already pinned to a lot, and
// products with no lots at all, pass through unchanged; otherwise the
// quantity is spread FIFO over sellable lots so the ledger carries the
// batch attribution.
func (l *StockListener) splitAcrossLots(ctx context.Context, item *SaleItemData) []lotPart {
	whole := []lotPart{{BatchID: item.BatchID, Quantity: item.Quantity}}
	if item.BatchID != nil {
		return whole
	}

	lots, err := l.batches.ListByProduct(ctx, item.ProductID)
	if err != nil {
		l.logger.Error("Failed to list lots, recording unbatched", zap.String("product_id", item.ProductID), zap.Error(err))
		return whole
	}
	if len(lots) == 0 {
		return whole
	}

	allocations, err := l.batches.PickForSale(ctx, item.ProductID, item.Quantity)
	if err != nil {
		l.logger.Warn("FIFO pick failed, recording unbatched",
			zap.String("product_id", item.ProductID),
			zap.Error(err),
		)
		return whole
	}

	parts := make([]lotPart, 0, len(allocations))
	for _, a := range allocations {
		batchID := a.BatchID
		parts = append(parts, lotPart{BatchID: &batchID, Quantity: a.Quantity})
	}
	return parts
}

func (l *StockListener) handleAppointmentScheduled(ctx context.Context, event *EventEnvelope) {
	var payload AppointmentScheduledPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal AppointmentScheduled payload", zap.Error(err))
		return
	}

	// Ask the calculator first; only then place holds (no override on the
	// automated path, a human decides overrides).
	svcAvail, err := l.avail.CheckService(ctx, payload.ServiceID, payload.LocationID)
	if err != nil {
		l.logger.Error("Service availability check failed",
			zap.String("appointment_id", payload.AppointmentID),
			zap.String("service_id", payload.ServiceID),
			zap.Error(err),
		)
		return
	}
	if !svcAvail.IsAvailable {
		l.logger.Warn("Appointment scheduled against unavailable service",
			zap.String("appointment_id", payload.AppointmentID),
			zap.Strings("unavailable_products", svcAvail.UnavailableProducts),
		)
		return
	}

	appointment := &model.Appointment{
		ID:      payload.AppointmentID,
		Status:  model.AppointmentScheduled,
		StartAt: payload.StartAt,
		EndAt:   payload.EndAt,
	}

	for _, item := range svcAvail.Items {
		result, err := l.reservations.CreateForAppointment(ctx, &resvdto.CreateReservationInput{
			ProductID:   item.ProductID,
			Quantity:    item.RequiredQuantity,
			LocationID:  payload.LocationID,
			Appointment: appointment,
			ExpiresAt:   payload.ExpiresAt,
		})
		if err != nil {
			l.logger.Error("Failed to create appointment reservation",
				zap.String("appointment_id", payload.AppointmentID),
				zap.String("product_id", item.ProductID),
				zap.Error(err),
			)
			continue
		}
		if !result.CanCreate {
			l.logger.Warn("Appointment reservation rejected",
				zap.String("appointment_id", payload.AppointmentID),
				zap.String("product_id", item.ProductID),
				zap.Strings("errors", result.Errors),
			)
		}
	}
}

func (l *StockListener) handleAppointmentCancelled(ctx context.Context, event *EventEnvelope) {
	var payload AppointmentCancelledPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		l.logger.Error("Failed to unmarshal AppointmentCancelled payload", zap.Error(err))
		return
	}

	released, err := l.reservations.ReleaseFor(ctx, payload.AppointmentID, model.ReservedForAppointment)
	if err != nil {
		l.logger.Error("Failed to release appointment reservations",
			zap.String("appointment_id", payload.AppointmentID),
			zap.Error(err),
		)
		return
	}
	l.logger.Info("Released appointment reservations",
		zap.String("appointment_id", payload.AppointmentID),
		zap.Int("count", released),
	)
}
