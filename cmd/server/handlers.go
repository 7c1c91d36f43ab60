package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/yourorg/docdata-orchestrator/internal/adapter"
	"github.com/yourorg/docdata-orchestrator/internal/context"
	"github.com/yourorg/docdata-orchestrator/internal/journal"
	"github.com/yourorg/docdata-orchestrator/internal/monitor"
	"github.com/yourorg/docdata-orchestrator/internal/orchestrator"
	"github.com/yourorg/docdata-orchestrator/internal/reporting"
	"github.com/yourorg/docdata-orchestrator/internal/result"
)

// merchantHeader selects a merchant other than the configured default.
const merchantHeader = "X-Merchant-ID"

type server struct {
	orch            *orchestrator.Orchestrator
	journal         journal.Recorder
	contracts       map[string]*monitor.ContractMonitor
	defaultMerchant string
	log             *zap.Logger
}

func newServer(orch *orchestrator.Orchestrator, rec journal.Recorder, contracts map[string]*monitor.ContractMonitor, merchantID string, log *zap.Logger) *server {
	if log == nil {
		log = zap.NewNop()
	}
	return &server{orch: orch, journal: rec, contracts: contracts, defaultMerchant: merchantID, log: log}
}

// createOrderRequest is the body of POST /orders. A start section creates
// the order and starts a payment in one call.
type createOrderRequest struct {
	orchestrator.CreateInput
	Start *orchestrator.StartInput `json:"start,omitempty"`
}

type proceedRequest struct {
	AuthorizationResultType string            `json:"authorizationResultType"`
	AuthorizationResult     map[string]string `json:"authorizationResult"`
}

type refundRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func setupRouter(s *server) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName), cors.Default(), s.accessLog())

	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orders := router.Group("/orders")
	orders.POST("", s.createOrder)
	orders.POST("/:key/start", s.startPayment)
	orders.POST("/:key/capture", s.capture)
	orders.POST("/:key/proceed", s.proceed)
	orders.POST("/:key/refund", s.refund)
	orders.POST("/:key/cancel", s.cancel)
	orders.GET("/:key/status", s.status)

	router.GET("/notifications", s.notification)
	router.GET("/reports/retrospective", s.retrospective)
	return router
}

func (s *server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

func (s *server) merchant(c *gin.Context) string {
	if id := c.GetHeader(merchantHeader); id != "" {
		return id
	}
	return s.defaultMerchant
}

func traceContext(c *gin.Context) context.TraceContext {
	return context.NewTraceContext(c.Request.Context())
}

// bind checks the raw body against the named contract and decodes it into out.
// It writes the 400 response itself and reports whether the handler may go on.
func (s *server) bind(c *gin.Context, contract string, out interface{}) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return false
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	valid, validationErrs, err := s.contracts[contract].Validate(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": monitor.FormatErrors(validationErrs)})
		return false
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

// respond maps an operation outcome onto the HTTP response. Gateway reported
// failures are not HTTP errors: they come back as 200 with successful=false.
func (s *server) respond(c *gin.Context, res interface{}, err error) {
	var gatewayErr *result.GatewayError
	switch {
	case err == nil:
		if r, ok := res.(result.OperationResult); ok && errors.Is(orchestrator.ResultError(r), orchestrator.ErrNoActionableTarget) {
			c.JSON(http.StatusUnprocessableEntity, res)
			return
		}
		c.JSON(http.StatusOK, res)
	case errors.Is(err, orchestrator.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, context.ErrMerchantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, orchestrator.ErrNoActionableTarget):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "result": res})
	case adapter.IsTransportError(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.As(err, &gatewayErr):
		c.JSON(http.StatusOK, gin.H{
			"operation":  gatewayErr.Operation,
			"successful": false,
			"code":       gatewayErr.Code,
			"message":    gatewayErr.Message,
		})
	default:
		s.log.Error("unexpected operation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (s *server) createOrder(c *gin.Context) {
	var req createOrderRequest
	if !s.bind(c, monitor.ContractCreateOrder, &req) {
		return
	}
	req.MerchantID = s.merchant(c)

	if req.Start == nil {
		res, err := s.orch.Create(traceContext(c), req.CreateInput)
		s.respond(c, res, err)
		return
	}
	res, err := s.orch.CreateAndStart(traceContext(c), req.CreateInput, *req.Start)
	s.respond(c, res, err)
}

func (s *server) startPayment(c *gin.Context) {
	var in orchestrator.StartInput
	if !s.bind(c, monitor.ContractStartPayment, &in) {
		return
	}
	in.MerchantID = s.merchant(c)
	in.OrderKey = c.Param("key")
	res, err := s.orch.Start(traceContext(c), in)
	s.respond(c, res, err)
}

func (s *server) capture(c *gin.Context) {
	res, err := s.orch.Capture(traceContext(c), orchestrator.CaptureInput{
		MerchantID: s.merchant(c),
		OrderKey:   c.Param("key"),
	})
	s.respond(c, res, err)
}

func (s *server) proceed(c *gin.Context) {
	var req proceedRequest
	if !s.bind(c, monitor.ContractProceed, &req) {
		return
	}
	res, err := s.orch.Proceed(traceContext(c), orchestrator.ProceedInput{
		MerchantID:              s.merchant(c),
		OrderKey:                c.Param("key"),
		AuthorizationResultType: req.AuthorizationResultType,
		AuthorizationResult:     req.AuthorizationResult,
	})
	s.respond(c, res, err)
}

func (s *server) refund(c *gin.Context) {
	var req refundRequest
	if !s.bind(c, monitor.ContractRefund, &req) {
		return
	}
	res, err := s.orch.Refund(traceContext(c), orchestrator.RefundInput{
		MerchantID: s.merchant(c),
		OrderKey:   c.Param("key"),
		Amount:     req.Amount,
		Currency:   req.Currency,
	})
	s.respond(c, res, err)
}

func (s *server) cancel(c *gin.Context) {
	res, err := s.orch.Cancel(traceContext(c), orchestrator.CancelInput{
		MerchantID: s.merchant(c),
		OrderKey:   c.Param("key"),
	})
	s.respond(c, res, err)
}

func (s *server) status(c *gin.Context) {
	extended, _ := strconv.ParseBool(c.Query("extended"))
	s.fetchStatus(c, c.Param("key"), extended)
}

// notification handles the gateway's update callback, which only names the
// order. The current state is always fetched with a status call.
func (s *server) notification(c *gin.Context) {
	s.fetchStatus(c, c.Query("orderId"), false)
}

func (s *server) fetchStatus(c *gin.Context, orderKey string, extended bool) {
	res, err := s.orch.FetchStatus(traceContext(c), orchestrator.StatusInput{
		MerchantID: s.merchant(c),
		OrderKey:   orderKey,
		Extended:   extended,
	})
	s.respond(c, res, err)
}

func (s *server) retrospective(c *gin.Context) {
	entries, err := s.journal.List(c.Request.Context())
	if err != nil {
		s.log.Error("failed to list journal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read journal"})
		return
	}
	report, err := reporting.NewRetrospectiveReporter().GenerateRetrospective(entries)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
