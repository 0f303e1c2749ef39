package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/service"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
	"github.com/enesxunal/markaworld-g-sub000/pkg/response"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerResponse, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.CustomerResponse, error)
}

type PlanService interface {
	CreatePlan(ctx context.Context, req *domain.CreatePlanRequest) (*domain.CreatePlanResponse, error)
	ApprovePlan(ctx context.Context, token string) (*domain.CreatePlanResponse, error)
	CancelPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error)
}

type PaymentService interface {
	PayInstallment(ctx context.Context, planID, installmentID uuid.UUID, paymentDate time.Time) (*domain.PaymentResult, error)
}

type CheckRunner interface {
	RunAll(ctx context.Context) (*service.CheckReport, error)
}

type LedgerHandler struct {
	customers CustomerService
	plans     PlanService
	payments  PaymentService
	checks    CheckRunner
	validator *validator.Validate
	log       *logrus.Logger
}

func NewLedgerHandler(customers CustomerService, plans PlanService, payments PaymentService, checks CheckRunner, log *logrus.Logger) *LedgerHandler {
	return &LedgerHandler{
		customers: customers,
		plans:     plans,
		payments:  payments,
		checks:    checks,
		validator: newValidator(),
		log:       log,
	}
}

// newValidator teaches the validator to compare decimals numerically.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// Register mounts the ledger routes on an /api/v1 subrouter.
func (h *LedgerHandler) Register(api *mux.Router) {
	api.HandleFunc("/customers", h.CreateCustomer).Methods("POST")
	api.HandleFunc("/customers/{customerId}", h.GetCustomer).Methods("GET")
	api.HandleFunc("/plans", h.CreatePlan).Methods("POST")
	api.HandleFunc("/plans/approve", h.ApprovePlan).Methods("POST")
	api.HandleFunc("/plans/{planId}", h.GetPlan).Methods("GET")
	api.HandleFunc("/plans/{planId}/cancel", h.CancelPlan).Methods("POST")
	api.HandleFunc("/plans/{planId}/installments/{installmentId}/pay", h.PayInstallment).Methods("POST")
	api.HandleFunc("/checks/run", h.RunChecks).Methods("POST")
}

func (h *LedgerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if !h.decode(w, r, &req) {
		return
	}

	customer, err := h.customers.CreateCustomer(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Created(w, customer)
}

func (h *LedgerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "customerId")
	if !ok {
		return
	}

	customer, err := h.customers.GetCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, customer)
}

// CreatePlan handles both creation modes. Token-confirmed plans answer 202
// since nothing is debited until approval.
func (h *LedgerHandler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.plans.CreatePlan(r.Context(), &req)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if plan.Plan.Status == domain.PlanStatusPendingApproval {
		response.JSON(w, http.StatusAccepted, plan)
		return
	}
	response.Created(w, plan)
}

func (h *LedgerHandler) ApprovePlan(w http.ResponseWriter, r *http.Request) {
	var req domain.ApprovePlanRequest
	if !h.decode(w, r, &req) {
		return
	}

	plan, err := h.plans.ApprovePlan(r.Context(), req.Token)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, plan)
}

func (h *LedgerHandler) GetPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "planId")
	if !ok {
		return
	}

	details, err := h.plans.GetPlan(r.Context(), planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, details)
}

func (h *LedgerHandler) CancelPlan(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "planId")
	if !ok {
		return
	}

	details, err := h.plans.CancelPlan(r.Context(), planID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, details)
}

// PayInstallment accepts an empty body; payment_date defaults to today.
func (h *LedgerHandler) PayInstallment(w http.ResponseWriter, r *http.Request) {
	planID, ok := pathID(w, r, "planId")
	if !ok {
		return
	}
	installmentID, ok := pathID(w, r, "installmentId")
	if !ok {
		return
	}

	var req domain.PayInstallmentRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	var paymentDate time.Time
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	result, err := h.payments.PayInstallment(r.Context(), planID, installmentID, paymentDate)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, result)
}

// RunChecks runs the scheduled checks now.
func (h *LedgerHandler) RunChecks(w http.ResponseWriter, r *http.Request) {
	report, err := h.checks.RunAll(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}

	response.Success(w, report)
}

func (h *LedgerHandler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "Invalid JSON payload", err)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		response.BadRequest(w, "Validation failed", err)
		return false
	}
	return true
}

func (h *LedgerHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	entry := h.log.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err)

	if customError.CodeOf(err) == "" || errors.Is(err, customError.ErrPersistence) {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}

	response.FromError(w, err)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}
