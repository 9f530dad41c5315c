package usecase

import (
	"context"
	"fmt"

	"github.com/avolut/retail-stock-service/internal/availability"
	"github.com/avolut/retail-stock-service/internal/model"
	"github.com/avolut/retail-stock-service/pkg/logger"
)

type availabilityUseCase struct {
	products     availability.ProductReader
	stock        availability.StockReader
	reservations availability.ReservationLister
	clock        availability.Clock
	logger       logger.ZapLogger
}

func NewAvailabilityUseCase(
	products availability.ProductReader,
	stock availability.StockReader,
	reservations availability.ReservationLister,
	clk availability.Clock,
	log logger.ZapLogger,
) availability.UseCase {
	return &availabilityUseCase{
		products:     products,
		stock:        stock,
		reservations: reservations,
		clock:        clk,
		logger:       log,
	}
}

func (uc *availabilityUseCase) CheckProduct(ctx context.Context, productID, locationID string, requiredQuantity int64) (*availability.ProductAvailability, error) {
	p, err := uc.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: product %s", model.ErrNotFound, productID)
	}

	// Non-tracked products skip the stock reads entirely.
	now := uc.clock.Now()
	if !p.StockTracked {
		return availability.CalculateProductAvailability(p, requiredQuantity, 0, nil, now)
	}

	onHand, err := uc.stock.GetOnHand(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	reservations, err := uc.reservations.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	return availability.CalculateProductAvailability(p, requiredQuantity, onHand, reservations, now)
}

func (uc *availabilityUseCase) CheckService(ctx context.Context, serviceID, locationID string) (*availability.ServiceAvailability, error) {
	svc, err := uc.products.FindServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, fmt.Errorf("%w: service %s", model.ErrNotFound, serviceID)
	}

	now := uc.clock.Now()
	if !svc.ConsumesInventory || len(svc.Items) == 0 {
		return availability.ValidateServiceAvailability(svc, nil, nil, nil, now)
	}

	ids := make([]string, 0, len(svc.Items))
	for _, item := range svc.Items {
		ids = append(ids, item.ProductID)
	}

	productList, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[string]*model.Product, len(productList))
	for i := range productList {
		products[productList[i].ID] = &productList[i]
	}

	onHand := make(map[string]int64, len(ids))
	var allReservations []model.Reservation
	for _, id := range ids {
		p := products[id]
		if p == nil || !p.StockTracked {
			continue
		}
		qty, err := uc.stock.GetOnHand(ctx, id, locationID)
		if err != nil {
			return nil, err
		}
		onHand[id] = qty

		res, err := uc.reservations.FindByProduct(ctx, id)
		if err != nil {
			return nil, err
		}
		allReservations = append(allReservations, res...)
	}

	return availability.ValidateServiceAvailability(svc, products, onHand, allReservations, now)
}
