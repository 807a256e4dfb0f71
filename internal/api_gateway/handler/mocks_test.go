package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atm-ledger/internal/api_gateway/middleware"
	"github.com/atm-ledger/internal/domain/account"
	"github.com/atm-ledger/internal/domain/machine"
	"github.com/atm-ledger/internal/domain/transaction"
	"github.com/atm-ledger/internal/transaction_processor/components"
	processor "github.com/atm-ledger/internal/transaction_processor/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) Login(ctx context.Context, cardNumber, pin string) (*account.Account, string, error) {
	args := m.Called(ctx, cardNumber, pin)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*account.Account), args.String(1), args.Error(2)
}

func (m *MockSessionService) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSessionService) Resolve(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountDetails(ctx context.Context, accountID string) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockAccountService) GetTransactionHistory(ctx context.Context, accountID string, page, perPage int) ([]*transaction.Record, int64, error) {
	args := m.Called(ctx, accountID, page, perPage)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*transaction.Record), args.Get(1).(int64), args.Error(2)
}

type MockTransactionService struct {
	mock.Mock
}

func (m *MockTransactionService) result(args mock.Arguments) (*processor.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.Result), args.Error(1)
}

func (m *MockTransactionService) Deposit(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error) {
	return m.result(m.Called(ctx, accountID, amount))
}

func (m *MockTransactionService) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal) (*processor.Result, error) {
	return m.result(m.Called(ctx, accountID, amount))
}

func (m *MockTransactionService) Transfer(ctx context.Context, accountID, toCardNumber string, amount decimal.Decimal) (*processor.Result, error) {
	return m.result(m.Called(ctx, accountID, toCardNumber, amount))
}

func (m *MockTransactionService) PrintReceipt(ctx context.Context, req components.ReceiptRequest) *components.Receipt {
	return m.Called(ctx, req).Get(0).(*components.Receipt)
}

type MockTechnicianService struct {
	mock.Mock
}

func (m *MockTechnicianService) Authorize(code string) bool {
	return m.Called(code).Bool(0)
}

func (m *MockTechnicianService) ViewMachineStatus(ctx context.Context) (*machine.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*machine.State), args.Error(1)
}

func (m *MockTechnicianService) capability(args mock.Arguments) (*components.CapabilityResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*components.CapabilityResult), args.Error(1)
}

func (m *MockTechnicianService) RefillPaper(ctx context.Context, units int) (*components.CapabilityResult, error) {
	return m.capability(m.Called(ctx, units))
}

func (m *MockTechnicianService) RefillInk(ctx context.Context, units int) (*components.CapabilityResult, error) {
	return m.capability(m.Called(ctx, units))
}

func (m *MockTechnicianService) AddCash(ctx context.Context, amount decimal.Decimal) (*components.CapabilityResult, error) {
	return m.capability(m.Called(ctx, amount))
}

func (m *MockTechnicianService) CollectAllCash(ctx context.Context) (*components.CapabilityResult, error) {
	return m.capability(m.Called(ctx))
}

func (m *MockTechnicianService) UpdateFirmware(ctx context.Context, version string) (*components.CapabilityResult, error) {
	return m.capability(m.Called(ctx, version))
}

// setupTestRouter returns an engine whose requests run as the session of accountID
func setupTestRouter(accountID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	r.Use(func(c *gin.Context) {
		if accountID != "" {
			c.Set(middleware.AccountIDKey, accountID)
		}
		c.Next()
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Data          json.RawMessage `json:"data"`
	Error         *ErrorInfo      `json:"error"`
	CorrelationID string          `json:"correlation_id"`
	Meta          *MetaInfo       `json:"meta"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return env
}
