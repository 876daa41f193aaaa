package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/dto"
	"github.com/SscSPs/referral_ledger/internal/handlers"
	"github.com/SscSPs/referral_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const testJWTSecret = "handler-test-secret"

func decimalEq(want string) interface{} {
	w := decimal.RequireFromString(want)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(w) })
}

type HandlersTestSuite struct {
	suite.Suite
	router *gin.Engine

	distributor *MockDistributorService
	ledger      *MockLedgerService
	requests    *MockRequestService
	referrals   *MockReferralService
	levels      *MockLevelService
	reporting   *MockReportingService
	users       *MockUserService
	funds       *MockFundService

	triggerCalls int
}

func (s *HandlersTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.distributor = new(MockDistributorService)
	s.ledger = new(MockLedgerService)
	s.requests = new(MockRequestService)
	s.referrals = new(MockReferralService)
	s.levels = new(MockLevelService)
	s.reporting = new(MockReportingService)
	s.users = new(MockUserService)
	s.funds = new(MockFundService)
	s.triggerCalls = 0

	cfg := &config.Config{JWTSecret: testJWTSecret, AdminUserIDs: []string{"ops"}}
	container := &portssvc.ServiceContainer{
		Distributor: s.distributor,
		Requests:    s.requests,
		Ledger:      s.ledger,
		Referrals:   s.referrals,
		Levels:      s.levels,
		Funds:       s.funds,
		Users:       s.users,
		Reporting:   s.reporting,
	}
	trigger := func(c *gin.Context) {
		s.triggerCalls++
		c.Next()
	}

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, container, trigger))
}

func (s *HandlersTestSuite) TearDownTest() {
	s.distributor.AssertExpectations(s.T())
	s.ledger.AssertExpectations(s.T())
	s.requests.AssertExpectations(s.T())
	s.referrals.AssertExpectations(s.T())
	s.levels.AssertExpectations(s.T())
	s.reporting.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
	s.funds.AssertExpectations(s.T())
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (s *HandlersTestSuite) token(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	s.Require().NoError(err)
	return signed
}

func (s *HandlersTestSuite) do(method, path, userID, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+s.token(userID))
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlersTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func sampleResult(principal string) *domain.DistributionResult {
	return &domain.DistributionResult{
		EventID:    "evt-1",
		Principal:  principal,
		Debited:    decimal.NewFromInt(10),
		Credited:   decimal.Zero,
		NewBalance: decimal.NewFromInt(90),
		Plan: domain.Plan{
			Kind:   domain.EventBetLoss,
			Amount: decimal.NewFromInt(10),
			Shares: []domain.Share{
				{Recipient: "parent", Amount: decimal.RequireFromString("1.10"), Role: domain.RoleUpline, Depth: 1},
				{Recipient: domain.ReserveFund.Principal(), Amount: decimal.RequireFromString("7.90"), Role: domain.RoleReserveFund},
			},
			Unassigned: decimal.Zero,
		},
	}
}

// --- Auth boundary ---

func (s *HandlersTestSuite) TestHealthAndMetricsArePublic() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health", "", "").Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/metrics", "", "").Code)
}

func (s *HandlersTestSuite) TestMissingTokenIsUnauthorized() {
	w := s.do(http.MethodPost, "/api/v1/bets/loss", "", `{"amount":"10"}`)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Zero(s.triggerCalls)
}

// --- Distribution routes ---

func (s *HandlersTestSuite) TestBetLoss_Success() {
	s.distributor.On("ApplyBetLoss", mock.Anything, "child", decimalEq("10")).Return(sampleResult("child"), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/bets/loss", "child", `{"amount":"10.00"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.DistributionResponse
	s.decode(w, &resp)
	s.Equal("evt-1", resp.EventID)
	s.Equal(string(domain.EventBetLoss), resp.Kind)
	s.True(decimal.NewFromInt(9).Equal(resp.Distributed))
	s.Len(resp.Shares, 2)
	s.Equal(1, resp.Shares[0].Depth)
	s.Equal(1, s.triggerCalls)
}

func (s *HandlersTestSuite) TestBetLoss_AmountValidation() {
	for _, body := range []string{`{"amount":"0"}`, `{"amount":"-5"}`, `{}`, `{"amount":"ten"}`} {
		w := s.do(http.MethodPost, "/api/v1/bets/loss", "child", body)
		s.Equal(http.StatusBadRequest, w.Code, body)
	}
	s.distributor.AssertNotCalled(s.T(), "ApplyBetLoss", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HandlersTestSuite) TestBetLoss_ErrorKinds() {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{fmt.Errorf("%w: balance 5 is less than 10", apperrors.ErrInsufficientFunds), http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
		{fmt.Errorf("%w: user child", apperrors.ErrAccountInactive), http.StatusForbidden, "ACCOUNT_INACTIVE"},
		{fmt.Errorf("%w: amount 0.000001 has more than 5 decimal places", apperrors.ErrInvalidAmount), http.StatusBadRequest, "INVALID_AMOUNT"},
		{fmt.Errorf("%w: level 9", apperrors.ErrInvalidLevel), http.StatusBadRequest, "INVALID_LEVEL"},
		{fmt.Errorf("user child: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("gave up: %w", apperrors.ErrConcurrencyConflict), http.StatusConflict, "CONCURRENCY_CONFLICT"},
		{fmt.Errorf("attempt: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "TIMEOUT"},
		{apperrors.NewAppError(http.StatusInternalServerError, "commit failed", nil), http.StatusInternalServerError, "STORAGE_FAILURE"},
	}
	for _, tt := range tests {
		s.distributor.On("ApplyBetLoss", mock.Anything, "child", mock.Anything).Return(nil, tt.err).Once()
		w := s.do(http.MethodPost, "/api/v1/bets/loss", "child", `{"amount":"10"}`)
		s.Equal(tt.wantStatus, w.Code, tt.err.Error())

		var body map[string]string
		s.decode(w, &body)
		s.Equal(tt.wantCode, body["code"], tt.err.Error())
		s.NotEmpty(body["error"])
		s.NotContains(w.Body.String(), "child", tt.err.Error())
		s.NotContains(w.Body.String(), "balance 5", tt.err.Error())
	}
}

func (s *HandlersTestSuite) TestServerErrorsHideTheCause() {
	s.distributor.On("ApplyBetLoss", mock.Anything, "child", mock.Anything).
		Return(nil, apperrors.NewAppError(http.StatusInternalServerError, "pg: connection reset", nil)).Once()

	w := s.do(http.MethodPost, "/api/v1/bets/loss", "child", `{"amount":"10"}`)
	s.Equal(http.StatusInternalServerError, w.Code)
	s.NotContains(w.Body.String(), "connection reset")
}

func (s *HandlersTestSuite) TestConflictAsksClientToRetry() {
	s.distributor.On("ApplyBetLoss", mock.Anything, "child", mock.Anything).Return(nil, apperrors.ErrConcurrencyConflict).Once()

	w := s.do(http.MethodPost, "/api/v1/bets/loss", "child", `{"amount":"10"}`)
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("1", w.Header().Get("Retry-After"))
}

func (s *HandlersTestSuite) TestUpgrade() {
	s.distributor.On("ApplyUpgrade", mock.Anything, "child", 2).Return(sampleResult("child"), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/mlm/upgrade", "child", `{"level":2}`)
	s.Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/mlm/upgrade", "child", `{"level":0}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestBetWin() {
	s.distributor.On("ApplyBetWin", mock.Anything, "child", decimalEq("5"), decimalEq("12.5")).Return(sampleResult("child"), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/bets/win", "child", `{"stake":5,"payout":"12.50"}`)
	s.Equal(http.StatusOK, w.Code, w.Body.String())
}

func (s *HandlersTestSuite) TestRegistrationFee() {
	s.distributor.On("ChargeRegistrationFee", mock.Anything, "child").Return(sampleResult("child"), nil).Once()

	w := s.do(http.MethodPost, "/api/v1/wallet/registration-fee", "child", "")
	s.Equal(http.StatusOK, w.Code, w.Body.String())
	s.Equal(1, s.triggerCalls)
}

// --- Wallet routes ---

func (s *HandlersTestSuite) TestGetBalance() {
	s.ledger.On("GetBalance", mock.Anything, "child").Return(decimal.RequireFromString("42.5"), nil).Once()

	w := s.do(http.MethodGet, "/api/v1/wallet/balance", "child", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.BalanceResponse
	s.decode(w, &resp)
	s.Equal("child", resp.Principal)
	s.True(decimal.RequireFromString("42.5").Equal(resp.Balance))
	s.Zero(s.triggerCalls)
}

func (s *HandlersTestSuite) TestListTransactions_PassesToken() {
	next := "page-2"
	rows := []domain.Transaction{{
		TransactionID: "t1", Principal: "child", Amount: decimal.NewFromInt(3),
		Kind: domain.KindBetLoss, Status: domain.StatusCompleted, CreatedAt: time.Now(),
	}}
	s.ledger.On("ListTransactions", mock.Anything, "child", 5,
		mock.MatchedBy(func(tok *string) bool { return tok != nil && *tok == "page-1" })).
		Return(rows, &next, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/wallet/transactions?limit=5&nextToken=page-1", "child", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.ListTransactionsResponse
	s.decode(w, &resp)
	s.Require().Len(resp.Transactions, 1)
	s.Equal("BET_LOSS", resp.Transactions[0].Kind)
	s.Require().NotNil(resp.NextToken)
	s.Equal("page-2", *resp.NextToken)
}

func (s *HandlersTestSuite) TestListTransactions_DefaultsAndLimits() {
	s.ledger.On("ListTransactions", mock.Anything, "child", 20, (*string)(nil)).Return([]domain.Transaction{}, nil, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/wallet/transactions", "child", "")
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/wallet/transactions?limit=1000", "child", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestGetTransaction_NotFound() {
	s.ledger.On("GetTransaction", mock.Anything, "child", "other-row").Return(nil, apperrors.ErrNotFound).Once()

	w := s.do(http.MethodGet, "/api/v1/wallet/transactions/other-row", "child", "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlersTestSuite) TestRequestDepositAndWithdrawal() {
	pending := &domain.Transaction{
		TransactionID: "req-1", Principal: "child", Amount: decimal.NewFromInt(50),
		Kind: domain.KindDeposit, Status: domain.StatusPending, CreatedAt: time.Now(),
	}
	s.requests.On("RequestDeposit", mock.Anything, "child", decimalEq("50"), "bank transfer").Return(pending, nil).Once()
	s.requests.On("RequestWithdrawal", mock.Anything, "child", decimalEq("500"), "").Return(nil, apperrors.ErrInsufficientFunds).Once()

	w := s.do(http.MethodPost, "/api/v1/wallet/deposits", "child", `{"amount":"50","description":"bank transfer"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	s.decode(w, &resp)
	s.Equal("PENDING", resp.Status)

	w = s.do(http.MethodPost, "/api/v1/wallet/withdrawals", "child", `{"amount":"500"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal(2, s.triggerCalls)
}

func (s *HandlersTestSuite) TestListCommissions() {
	s.ledger.On("ListCommissions", mock.Anything, "parent", 20).Return([]domain.Commission{{
		CommissionID: "c1", Recipient: "parent", SourceUser: "child",
		Amount: decimal.RequireFromString("1.1"), Role: domain.RoleUpline, Depth: 1,
	}}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/wallet/commissions", "parent", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp []dto.CommissionResponse
	s.decode(w, &resp)
	s.Require().Len(resp, 1)
	s.Equal("child", resp[0].SourceUser)
}

// --- Referral routes ---

func (s *HandlersTestSuite) TestUpline_EmptyIsAnArray() {
	s.referrals.On("Upline", mock.Anything, "root", 5).Return(nil, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/mlm/upline", "root", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"userID":"root","upline":[]}`, w.Body.String())
}

func (s *HandlersTestSuite) TestTree() {
	tree := &domain.ReferralNode{UserID: "root", Active: true, Children: []*domain.ReferralNode{
		{UserID: "a", Level: 2, Active: true, Children: []*domain.ReferralNode{}},
	}}
	s.referrals.On("Downline", mock.Anything, "root", 2).Return(tree, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/mlm/tree?depth=2", "root", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp domain.ReferralNode
	s.decode(w, &resp)
	s.Require().Len(resp.Children, 1)
	s.Equal(2, resp.Children[0].Level)

	w = s.do(http.MethodGet, "/api/v1/mlm/tree?depth=11", "root", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestMyLevel() {
	s.levels.On("GetUserLevel", mock.Anything, "fresh").Return(nil, apperrors.ErrNotFound).Once()
	s.levels.On("GetUserLevel", mock.Anything, "member").Return(&domain.UserLevel{UserID: "member", Level: 2}, nil).Once()
	s.levels.On("GetLevel", mock.Anything, 2).Return(&domain.Level{Level: 2, Name: "Bronze"}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/mlm/level", "fresh", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.UserLevelResponse
	s.decode(w, &resp)
	s.Zero(resp.Level)

	w = s.do(http.MethodGet, "/api/v1/mlm/level", "member", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &resp)
	s.Equal(2, resp.Level)
	s.Equal("Bronze", resp.Name)
}

func (s *HandlersTestSuite) TestListLevels() {
	s.levels.On("ListLevels", mock.Anything).Return([]domain.Level{
		{Level: 1, Name: "Starter", Price: decimal.NewFromInt(100), CommissionPercent: decimal.NewFromInt(10)},
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/mlm/levels", "child", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp []dto.LevelResponse
	s.decode(w, &resp)
	s.Require().Len(resp, 1)
	s.Equal("Starter", resp[0].Name)
}

func (s *HandlersTestSuite) TestDashboard() {
	s.reporting.On("Dashboard", mock.Anything, "member").Return(&domain.DashboardStats{
		Balance: decimal.NewFromInt(111), TotalEarnings: decimal.NewFromInt(11), CurrentLevel: 2, DirectUsers: 1,
	}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/stats/dashboard", "member", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp dto.DashboardResponse
	s.decode(w, &resp)
	s.Equal(2, resp.CurrentLevel)
	s.True(decimal.NewFromInt(111).Equal(resp.Balance))
}

// --- Admin routes ---

func (s *HandlersTestSuite) TestAdminRoutesRequireAdmin() {
	w := s.do(http.MethodPost, "/api/v1/admin/requests/req-1/approve", "child", "")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersTestSuite) TestApproveAndReject() {
	reviewer := "ops"
	done := &domain.Transaction{
		TransactionID: "req-1", Principal: "child", Amount: decimal.NewFromInt(50),
		Kind: domain.KindDeposit, Status: domain.StatusCompleted, ReviewedBy: &reviewer, CreatedAt: time.Now(),
	}
	s.requests.On("Approve", mock.Anything, "req-1", "ops").Return(done, nil).Once()
	s.requests.On("Reject", mock.Anything, "req-1", "ops").Return(nil, apperrors.ErrAlreadyProcessed).Once()

	w := s.do(http.MethodPost, "/api/v1/admin/requests/req-1/approve", "ops", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.TransactionResponse
	s.decode(w, &resp)
	s.Equal("COMPLETED", resp.Status)
	s.Require().NotNil(resp.ReviewedBy)
	s.Equal("ops", *resp.ReviewedBy)

	w = s.do(http.MethodPost, "/api/v1/admin/requests/req-1/reject", "ops", "")
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersTestSuite) TestListPending() {
	s.requests.On("ListPending", mock.Anything, 10).Return([]domain.Transaction{}, nil).Once()

	w := s.do(http.MethodGet, "/api/v1/admin/requests/pending?limit=10", "ops", "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`[]`, w.Body.String())
}

func (s *HandlersTestSuite) TestUpsertUser() {
	referrer := "parent"
	s.users.On("UpsertUser", mock.Anything, "child",
		mock.MatchedBy(func(r *string) bool { return r != nil && *r == referrer }), true).
		Return(&domain.User{UserID: "child", ReferrerID: &referrer, CanTransact: true}, nil).Once()

	w := s.do(http.MethodPut, "/api/v1/admin/users/child", "ops", `{"referrerID":"parent","canTransact":true}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp dto.UserResponse
	s.decode(w, &resp)
	s.True(resp.CanTransact)

	w = s.do(http.MethodPut, "/api/v1/admin/users/child", "ops", `{"referrerID":"parent"}`)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersTestSuite) TestFunds() {
	s.funds.On("ListFunds", mock.Anything).Return([]domain.Account{
		{Principal: domain.SalaryFund.Principal(), Balance: decimal.NewFromInt(1)},
		{Principal: domain.ReserveFund.Principal(), Balance: decimal.NewFromInt(7)},
	}, nil).Once()
	s.funds.On("GetFund", mock.Anything, "nope").Return(nil, apperrors.ErrNotFound).Once()

	w := s.do(http.MethodGet, "/api/v1/admin/funds", "ops", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var resp []dto.FundResponse
	s.decode(w, &resp)
	s.Require().Len(resp, 2)
	s.Equal("salary_fund", resp[0].Name)
	s.Equal("reserve_fund", resp[1].Name)

	w = s.do(http.MethodGet, "/api/v1/admin/funds/nope", "ops", "")
	s.Equal(http.StatusNotFound, w.Code)
}
