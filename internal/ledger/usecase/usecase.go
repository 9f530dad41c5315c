package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avolut/retail-stock-service/internal/ledger"
	"github.com/avolut/retail-stock-service/internal/ledger/dto"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/internal/product"
	"github.com/avolut/retail-stock-service/pkg/broker"
	"github.com/avolut/retail-stock-service/pkg/cache"
	"github.com/avolut/retail-stock-service/pkg/clock"
	"github.com/avolut/retail-stock-service/pkg/logger"
	"github.com/avolut/retail-stock-service/pkg/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const movementIndex = "stock_movements"

type ledgerUseCase struct {
	repo         ledger.Repository
	productRepo  product.Repository
	reservations ledger.ReservationReader
	cache        *cache.RedisClient
	es           *search.Client
	publisher    *broker.KafkaPublisher
	clock        clock.Clock
	logger       logger.ZapLogger
}

func NewLedgerUseCase(
	repo ledger.Repository,
	productRepo product.Repository,
	reservations ledger.ReservationReader,
	cache *cache.RedisClient,
	es *search.Client,
	publisher *broker.KafkaPublisher,
	clk clock.Clock,
	log logger.ZapLogger,
) ledger.UseCase {
	return &ledgerUseCase{
		repo:         repo,
		productRepo:  productRepo,
		reservations: reservations,
		cache:        cache,
		es:           es,
		publisher:    publisher,
		clock:        clk,
		logger:       log,
	}
}

func (uc *ledgerUseCase) Record(ctx context.Context, input *dto.RecordMovementInput) (*dto.RecordResult, error) {
	p, err := uc.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotFound, input.ProductID)
	}
	if !p.StockTracked {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotStockTracked, input.ProductID)
	}

	now := uc.clock.Now()
	m := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		QuantityChange: input.QuantityChange,
		Reason:         input.Reason,
		PerformedBy:    input.PerformedBy,
		LocationID:     input.LocationID,
		BatchID:        input.BatchID,
		ReferenceID:    input.ReferenceID,
		Notes:          input.Notes,
		CreatedAt:      now,
	}

	if m.IsDecrement() {
		unlock, err := uc.lockProduct(ctx, m.ProductID)
		if err != nil {
			return nil, err
		}
		defer unlock()

		available, err := uc.availableStock(ctx, m.ProductID, m.LocationID, now)
		if err != nil {
			return nil, err
		}

		result := ledger.ValidateLegality(m, p, &available)
		if !result.IsValid {
			return nil, fmt.Errorf("%w: %s", model.ErrInvalidMovement, strings.Join(result.Errors, "; "))
		}
		return uc.append(ctx, m, p, result.Warnings)
	}

	result := ledger.ValidateLegality(m, p, nil)
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidMovement, strings.Join(result.Errors, "; "))
	}
	return uc.append(ctx, m, p, result.Warnings)
}

func (uc *ledgerUseCase) append(ctx context.Context, m *model.StockMovement, p *model.Product, warnings []string) (*dto.RecordResult, error) {
	for _, w := range warnings {
		uc.logger.Warn("movement recorded with warning",
			zap.String("movement_id", m.ID),
			zap.String("product_id", m.ProductID),
			zap.String("warning", w),
		)
	}

	if err := uc.repo.Append(ctx, m); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), m)
	go uc.checkLowStock(context.Background(), m, p)

	return &dto.RecordResult{Movement: m, Warnings: warnings}, nil
}

func (uc *ledgerUseCase) Compensate(ctx context.Context, input *dto.CompensateInput) (*dto.RecordResult, error) {
	original, err := uc.repo.FindByID(ctx, input.OriginalMovementID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, fmt.Errorf("%w: movement %s", model.ErrNotFound, input.OriginalMovementID)
	}

	p, err := uc.productRepo.FindByID(ctx, original.ProductID)
	if err != nil {
		return nil, err
	}

	comp, err := ledger.Compensate(original, uuid.New().String(), input.PerformedBy, input.Reason, input.ReferenceID, uc.clock.Now())
	if err != nil {
		return nil, err
	}

	// Compensations are gated by the transactional guard only: correcting a
	// mistaken receipt must go through even when a naive availability read
	// would flag it, since the receipt being reversed never existed.
	result := ledger.ValidateLegality(comp, p, nil)
	if !result.IsValid {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidMovement, strings.Join(result.Errors, "; "))
	}

	return uc.append(ctx, comp, p, result.Warnings)
}

func (uc *ledgerUseCase) Transfer(ctx context.Context, input *dto.TransferInput) (*dto.RecordResult, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("%w: transfer quantity must be positive", model.ErrInvalidArgument)
	}
	if input.SourceLocation == "" || input.TargetLocation == "" || input.SourceLocation == input.TargetLocation {
		return nil, fmt.Errorf("%w: transfer needs two distinct locations", model.ErrInvalidArgument)
	}

	p, err := uc.productRepo.FindByID(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotFound, input.ProductID)
	}
	if !p.StockTracked {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotStockTracked, input.ProductID)
	}

	unlock, err := uc.lockProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := uc.clock.Now()
	transferRef := uuid.New().String()

	out := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		QuantityChange: -input.Quantity,
		Reason:         model.ReasonTransfer,
		PerformedBy:    input.PerformedBy,
		LocationID:     input.SourceLocation,
		ReferenceID:    &transferRef,
		Notes:          input.Notes,
		CreatedAt:      now,
	}
	in := &model.StockMovement{
		ID:             uuid.New().String(),
		ProductID:      input.ProductID,
		QuantityChange: input.Quantity,
		Reason:         model.ReasonTransfer,
		PerformedBy:    input.PerformedBy,
		LocationID:     input.TargetLocation,
		ReferenceID:    &transferRef,
		Notes:          input.Notes,
		CreatedAt:      now,
	}

	if err := uc.repo.AppendPair(ctx, out, in); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), out)
	go uc.syncToElastic(context.Background(), in)
	go uc.checkLowStock(context.Background(), out, p)

	return &dto.RecordResult{Movement: out}, nil
}

func (uc *ledgerUseCase) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	if f.SearchQuery != "" && uc.es != nil {
		items, count, err := uc.searchElastic(ctx, f)
		if err == nil {
			return items, count, nil
		}
		uc.logger.Error("ES movement search failed, falling back to DB", zap.Error(err))
	}
	return uc.repo.Search(ctx, f)
}

func (uc *ledgerUseCase) GetOnHand(ctx context.Context, productID, locationID string) (int64, error) {
	return uc.repo.GetOnHand(ctx, productID, locationID)
}

func (uc *ledgerUseCase) ListLowStock(ctx context.Context, page, pageSize int) ([]dto.LowStockItem, int, error) {
	return uc.repo.ListLowStock(ctx, uc.clock.Now(), page, pageSize)
}

func (uc *ledgerUseCase) Reconcile(ctx context.Context, productID, locationID string) (*dto.ReconciliationReport, error) {
	onHand, err := uc.repo.GetOnHand(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	sum, err := uc.repo.SumQuantity(ctx, productID, &locationID)
	if err != nil {
		return nil, err
	}

	report := &dto.ReconciliationReport{
		ProductID:  productID,
		LocationID: locationID,
		OnHand:     onHand,
		LedgerSum:  sum,
		Drift:      onHand - sum,
	}
	if report.Drift != 0 {
		uc.logger.Warn("stock level drifted from ledger sum",
			zap.String("product_id", productID),
			zap.String("location_id", locationID),
			zap.Int64("drift", report.Drift),
		)
	}
	return report, nil
}

// lockProduct serializes availability-gated writes per product so two
// concurrent sufficiency checks cannot both pass on the same stale figure.
// Reservation creation contends on the same key (cache.ProductLockKey).
func (uc *ledgerUseCase) lockProduct(ctx context.Context, productID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := cache.ProductLockKey(productID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !acquired {
		return nil, errors.New("system busy, please try again later (lock)")
	}

	return func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release lock", zap.Error(err))
		}
	}, nil
}

func (uc *ledgerUseCase) availableStock(ctx context.Context, productID, locationID string, referenceDate time.Time) (int64, error) {
	onHand, err := uc.repo.GetOnHand(ctx, productID, locationID)
	if err != nil {
		return 0, err
	}
	reserved, err := uc.reservations.SumActiveByProduct(ctx, productID, referenceDate)
	if err != nil {
		return 0, err
	}
	available := onHand - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

func (uc *ledgerUseCase) syncToElastic(ctx context.Context, m *model.StockMovement) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"product_id": { "type": "keyword" },
				"location_id": { "type": "keyword" },
				"reason": { "type": "keyword" },
				"quantity_change": { "type": "long" },
				"reference_id": { "type": "keyword" },
				"notes": { "type": "text" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, movementIndex, mapping)

	if err := uc.es.Index(ctx, movementIndex, m.ID, m); err != nil {
		uc.logger.Error("failed to index movement", zap.Error(err))
	}
}

func (uc *ledgerUseCase) searchElastic(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", f.SearchQuery),
				"fields": []string{"notes^2", "reference_id"},
			},
		},
	}
	if f.ProductID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"product_id": f.ProductID}})
	}
	if f.LocationID != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"location_id": f.LocationID}})
	}
	if f.Reason != "" {
		must = append(must, map[string]interface{}{"term": map[string]interface{}{"reason": f.Reason}})
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{"created_at": map[string]interface{}{"order": "desc"}},
		},
		"from": f.Offset(),
	}
	if f.PageSize > 0 {
		q["size"] = f.PageSize
	}

	res, err := uc.es.Search(ctx, movementIndex, q)
	if err != nil {
		return nil, 0, err
	}

	var items []model.StockMovement
	for _, hit := range res.Hits.Hits {
		var m model.StockMovement
		if err := json.Unmarshal(hit.Source, &m); err == nil {
			items = append(items, m)
		}
	}
	return items, res.Hits.Total.Value, nil
}

func (uc *ledgerUseCase) checkLowStock(ctx context.Context, m *model.StockMovement, p *model.Product) {
	if uc.publisher == nil {
		return
	}

	event, err := uc.lowStockEvent(ctx, m, p)
	if err != nil {
		uc.logger.Error("failed to read stock figures for alerting", zap.Error(err))
		return
	}
	if event == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := uc.publisher.Publish(ctx, []byte(m.ProductID), payload); err != nil {
		uc.logger.Error("failed to publish low stock event",
			zap.String("product_id", m.ProductID),
			zap.Error(err),
		)
	}
}

// lowStockEvent gates on available stock, not on-hand: units held by active
// reservations cannot be sold, so they don't count toward the threshold.
func (uc *ledgerUseCase) lowStockEvent(ctx context.Context, m *model.StockMovement, p *model.Product) (*dto.LowStockEvent, error) {
	if p.ReorderThreshold == nil {
		return nil, nil
	}

	onHand, err := uc.repo.GetOnHand(ctx, m.ProductID, m.LocationID)
	if err != nil {
		return nil, err
	}
	reserved, err := uc.reservations.SumActiveByProduct(ctx, m.ProductID, uc.clock.Now())
	if err != nil {
		return nil, err
	}
	available := onHand - reserved
	if available < 0 {
		available = 0
	}
	if available > *p.ReorderThreshold {
		return nil, nil
	}

	return &dto.LowStockEvent{
		EventType:        "StockLow",
		ProductID:        m.ProductID,
		LocationID:       m.LocationID,
		OnHand:           onHand,
		Available:        available,
		ReorderThreshold: *p.ReorderThreshold,
		Timestamp:        uc.clock.Now(),
	}, nil
}
