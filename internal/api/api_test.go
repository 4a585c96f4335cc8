package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"payment-api/internal/config"
	"payment-api/internal/models"
	"payment-api/internal/momo"
	"payment-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testConfig = &config.Config{
	MoMo: config.MoMoConfig{
		PartnerCode:    "MOMO",
		AccessKey:      "F8BBA842ECF85",
		SecretKey:      "K951B6PE1waDMi640xX08PD3vg6EkVlz",
		RequestType:    "captureWallet",
		Lang:           "vi",
		OrderInfoBrand: "LeafLungs",
		Timeout:        30 * time.Second,
	},
	IPNProcessingTimeout: 5 * time.Second,
	AdminAPIKey:          "admin-key",
}

type recordingSubscriptions struct {
	calls []models.SubscriptionPatch
	err   error
}

func (r *recordingSubscriptions) Patch(_ context.Context, _ string, patch models.SubscriptionPatch) error {
	r.calls = append(r.calls, patch)
	return r.err
}

type noopEntitlements struct{}

func (noopEntitlements) UpgradeFromTrial(context.Context, string, string) error { return nil }

type stubCreator struct {
	in   services.CreatePaymentInput
	resp *momo.CreatePaymentResponse
	err  error
}

func (s *stubCreator) Create(_ context.Context, in services.CreatePaymentInput) (*momo.CreatePaymentResponse, error) {
	s.in = in
	return s.resp, s.err
}

type stubIssuer struct {
	req  services.UploadRequest
	cred *services.UploadCredential
	err  error
}

func (s *stubIssuer) IssueUploadURL(_ context.Context, req services.UploadRequest) (*services.UploadCredential, error) {
	s.req = req
	return s.cred, s.err
}

type stubManager struct {
	entries  []models.ReconciliationEntry
	resolved *models.ReconciliationEntry
	err      error
	filter   *bool
	limit    int
	fetched  uint
}

func (s *stubManager) List(_ context.Context, resolved *bool, limit int) ([]models.ReconciliationEntry, error) {
	s.filter = resolved
	s.limit = limit
	return s.entries, s.err
}

func (s *stubManager) Get(_ context.Context, id uint) (*models.ReconciliationEntry, error) {
	s.fetched = id
	return s.resolved, s.err
}

func (s *stubManager) Resolve(context.Context, uint, string, string) (*models.ReconciliationEntry, error) {
	return s.resolved, s.err
}

func newTestRouter(h Handlers) *gin.Engine {
	if h.Notifications == nil {
		verifier := services.NewNotificationVerifier(testConfig.MoMo, &panickingDispatcher{}, nil)
		h.Notifications = NewNotificationHandler(verifier, time.Second)
	}
	if h.Payments == nil {
		h.Payments = NewPaymentHandler(&stubCreator{})
	}
	if h.Reconciliation == nil {
		h.Reconciliation = NewReconciliationHandler(&stubManager{})
	}

	r := gin.New()
	SetupRoutes(r, h, testConfig)
	return r
}

type panickingDispatcher struct{}

func (panickingDispatcher) Apply(context.Context, *momo.ExtraData, *momo.Notification) services.EntitlementResult {
	panic("dispatcher must not be called")
}

func doRequest(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
