package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/internal/events"
	"gitlab.com/digineat/trade-orders/internal/models"
	"gitlab.com/digineat/trade-orders/internal/staticerr"
)

type OrderStorage interface {
	Create(ctx context.Context, p models.PartialOrder) (models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	FindAll(ctx context.Context) ([]models.Order, error)
	Find(ctx context.Context, offset, limit int) ([]models.Order, error)
	Delete(ctx context.Context, id string) (*models.Order, error)
}

type OrderValidator interface {
	Validate(p models.PartialOrder) []string
	MarketPrices() map[string]decimal.Decimal
}

type Publisher interface {
	Publish(e events.Event)
}

type OrderService struct {
	storage   OrderStorage
	validator OrderValidator
	publisher Publisher
}

// NewOrderService wires the service. publisher may be nil.
func NewOrderService(storage OrderStorage, validator OrderValidator, publisher Publisher) *OrderService {
	return &OrderService{storage: storage, validator: validator, publisher: publisher}
}

func (s *OrderService) CreateOrder(ctx context.Context, p models.PartialOrder) (models.Order, error) {
	if errs := s.validator.Validate(p); len(errs) > 0 {
		logrus.WithField("pair", p.Pair).Infoln("Order rejected:", errs)
		return models.Order{}, staticerr.NewValidationError(errs)
	}

	order, err := s.storage.Create(ctx, p)
	if err != nil {
		logrus.Errorln("Creation order failed, reason: ", err.Error())
		return models.Order{}, err
	}

	logrus.WithField("orderId", order.ID).Infoln("Order created")
	s.publish(events.Created, order)
	return order, nil
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (models.Order, error) {
	order, err := s.storage.FindByID(ctx, id)
	if err != nil {
		return models.Order{}, err
	}
	if order == nil {
		return models.Order{}, staticerr.ErrNotFound
	}
	return *order, nil
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.storage.FindAll(ctx)
}

func (s *OrderService) GetOrders(ctx context.Context, offset, limit int) ([]models.Order, error) {
	return s.storage.Find(ctx, offset, limit)
}

// DeleteOrder soft-deletes the order and publishes the record as stored.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	order, err := s.storage.Delete(ctx, id)
	if err != nil {
		logrus.WithField("orderId", id).Errorln("Delete order failed, reason: ", err.Error())
		return err
	}
	if order == nil {
		return staticerr.ErrNotFound
	}

	logrus.WithField("orderId", id).Infoln("Order deleted")
	s.publish(events.Deleted, *order)
	return nil
}

func (s *OrderService) MarketPrices() map[string]decimal.Decimal {
	return s.validator.MarketPrices()
}

func (s *OrderService) publish(t events.Type, order models.Order) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(events.Event{Type: t, Order: order, Timestamp: time.Now().UTC()})
}
