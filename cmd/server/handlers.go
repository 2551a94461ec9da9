package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gitlab.com/digineat/trade-orders/cmd"
	"gitlab.com/digineat/trade-orders/internal/events"
	"gitlab.com/digineat/trade-orders/internal/models"
	"gitlab.com/digineat/trade-orders/internal/staticerr"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type orderService interface {
	CreateOrder(ctx context.Context, p models.PartialOrder) (models.Order, error)
	GetOrderByID(ctx context.Context, id string) (models.Order, error)
	GetAllOrders(ctx context.Context) ([]models.Order, error)
	GetOrders(ctx context.Context, offset, limit int) ([]models.Order, error)
	DeleteOrder(ctx context.Context, id string) error
	MarketPrices() map[string]decimal.Decimal
}

type pinger interface {
	Ping(ctx context.Context) error
}

type server struct {
	svc      orderService
	feed     *events.Hub
	db       pinger
	validate *validator.Validate
}

func newServer(svc orderService, feed *events.Hub, db pinger) *server {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &server{svc: svc, feed: feed, db: db, validate: validate}
}

func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", s.health)
	mux.HandleFunc("GET /api/v1/market-prices", s.marketPrices)
	mux.HandleFunc("GET /api/v1/trade-orders", s.listOrders)
	mux.HandleFunc("POST /api/v1/trade-orders", s.createOrder)
	mux.HandleFunc("GET /api/v1/trade-orders/all", s.allOrders)
	mux.HandleFunc("GET /api/v1/trade-orders/{id}", s.getOrder)
	mux.HandleFunc("DELETE /api/v1/trade-orders/{id}", s.deleteOrder)
	if s.feed != nil {
		mux.HandleFunc("GET /api/v1/trade-orders/feed", s.orderFeed)
	}
	mux.HandleFunc("/", s.notFound)

	return mux
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			logger.Errorln("Storage health check failed:", err)
			writeJSON(w, http.StatusInternalServerError, cmd.ErrorResponse{
				Status:  cmd.StatusError,
				Message: "Storage is unreachable",
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, cmd.HealthResponse{
		Status:    cmd.StatusSuccess,
		Message:   "Server is running!",
		Timestamp: time.Now().UTC(),
	})
}

func (s *server) marketPrices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, cmd.Response{
		Status: cmd.StatusSuccess,
		Data:   cmd.MarketPricesData{MarketPrices: s.svc.MarketPrices()},
	})
}

func (s *server) createOrder(w http.ResponseWriter, r *http.Request) {
	var req cmd.CreateOrderRequest
	if err := readJSON(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, cmd.ErrorResponse{
			Status:  cmd.StatusFail,
			Message: "Invalid request body",
			Errors:  []string{err.Error()},
		})
		return
	}

	if err := s.validate.Struct(req); err != nil {
		writeGateError(w, err)
		return
	}

	order, err := s.svc.CreateOrder(r.Context(), req.Partial())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, cmd.Response{
		Status: cmd.StatusSuccess,
		Data:   cmd.OrderData{TradeOrder: order},
	})
}

func (s *server) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := s.svc.GetOrderByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cmd.Response{
		Status: cmd.StatusSuccess,
		Data:   cmd.OrderData{TradeOrder: order},
	})
}

func (s *server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteOrder(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) allOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := s.svc.GetAllOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	results := len(orders)
	writeJSON(w, http.StatusOK, cmd.Response{
		Status:  cmd.StatusSuccess,
		Results: &results,
		Data:    cmd.OrdersData{TradeOrders: orders},
	})
}

func (s *server) listOrders(w http.ResponseWriter, r *http.Request) {
	q, err := parsePageQuery(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, cmd.ErrorResponse{
			Status:  cmd.StatusFail,
			Message: err.Error(),
			Errors:  []string{err.Error()},
		})
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeGateError(w, err)
		return
	}

	offset := (q.Page - 1) * q.Limit
	currentPage := q.Page
	if q.Init != nil {
		offset = *q.Init
		currentPage = offset/q.Limit + 1
	}

	orders, err := s.svc.GetOrders(r.Context(), offset, q.Limit)
	if err != nil {
		writeError(w, err)
		return
	}
	all, err := s.svc.GetAllOrders(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	totalCount := len(all)
	totalPages := (totalCount + q.Limit - 1) / q.Limit
	results := len(orders)

	writeJSON(w, http.StatusOK, cmd.Response{
		Status:  cmd.StatusSuccess,
		Results: &results,
		Pagination: &cmd.Pagination{
			CurrentPage:     currentPage,
			TotalPages:      totalPages,
			TotalCount:      totalCount,
			PageSize:        q.Limit,
			HasNextPage:     currentPage < totalPages,
			HasPreviousPage: currentPage > 1,
		},
		Data: cmd.OrdersData{TradeOrders: orders},
	})
}

func (s *server) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, cmd.ErrorResponse{
		Status:  cmd.StatusFail,
		Message: fmt.Sprintf("Can't find %s on this server!", r.URL.RequestURI()),
	})
}

func parsePageQuery(r *http.Request) (cmd.PageQuery, error) {
	q := cmd.PageQuery{Page: defaultPage, Limit: defaultLimit}
	values := r.URL.Query()

	parse := func(name, label string) (*int, error) {
		raw := values.Get(name)
		if raw == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number", label)
		}
		return &n, nil
	}

	page, err := parse("page", "Page")
	if err != nil {
		return q, err
	}
	limit, err := parse("limit", "Limit")
	if err != nil {
		return q, err
	}
	offsetArg, err := parse("init", "Init")
	if err != nil {
		return q, err
	}

	if page != nil {
		q.Page = *page
	}
	if limit != nil {
		q.Limit = *limit
	}
	q.Init = offsetArg
	return q, nil
}

func readJSON(_ http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorln("Failed to write response:", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var verr *staticerr.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, cmd.ErrorResponse{
			Status:  cmd.StatusFail,
			Message: verr.Error(),
			Errors:  verr.Messages,
		})
	case errors.Is(err, staticerr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, cmd.ErrorResponse{
			Status:  cmd.StatusFail,
			Message: staticerr.ErrNotFound.Error(),
		})
	default:
		logger.Errorln("Request failed:", err)
		writeJSON(w, http.StatusInternalServerError, cmd.ErrorResponse{
			Status:  cmd.StatusError,
			Message: "Something went wrong",
		})
	}
}

func writeGateError(w http.ResponseWriter, err error) {
	messages := gateMessages(err)
	writeJSON(w, http.StatusBadRequest, cmd.ErrorResponse{
		Status:  cmd.StatusFail,
		Message: strings.Join(messages, ", "),
		Errors:  messages,
	})
}

func gateMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	return lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		name := fe.Field()
		if name != "" {
			name = strings.ToUpper(name[:1]) + name[1:]
		}
		switch fe.Tag() {
		case "min":
			return fmt.Sprintf("%s must be at least %s", name, fe.Param())
		case "max":
			if fe.Kind() == reflect.String {
				return fmt.Sprintf("%s must be at most %s characters long", name, fe.Param())
			}
			return fmt.Sprintf("%s cannot exceed %s", name, fe.Param())
		}
		return fmt.Sprintf("%s is invalid", name)
	})
}
