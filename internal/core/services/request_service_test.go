package services_test

import (
	"testing"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/referral_ledger/internal/core/ports/services"
	"github.com/SscSPs/referral_ledger/internal/core/services"
	"github.com/stretchr/testify/suite"
)

type RequestServiceTestSuite struct {
	ledgerSuite
	service portssvc.RequestSvcFacade
}

func (s *RequestServiceTestSuite) SetupTest() {
	s.ledgerSuite.SetupTest()
	s.service = services.NewRequestService(s.repos.UnitOfWork, s.repos.UserRepo, s.repos.TransactionRepo)
	s.addUser("u1", "")
}

func TestRequestService(t *testing.T) {
	suite.Run(t, new(RequestServiceTestSuite))
}

func (s *RequestServiceTestSuite) TestDeposit_ApproveCreditsOnce() {
	req, err := s.service.RequestDeposit(s.ctx, "u1", dec("25"), "")
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, req.Status)
	s.assertBalance("u1", "0")

	approved, err := s.service.Approve(s.ctx, req.TransactionID, "admin")
	s.Require().NoError(err)
	s.Equal(domain.StatusCompleted, approved.Status)
	s.Require().NotNil(approved.ReviewedBy)
	s.Equal("admin", *approved.ReviewedBy)
	s.assertBalance("u1", "25")

	_, err = s.service.Approve(s.ctx, req.TransactionID, "admin")
	s.ErrorIs(err, apperrors.ErrAlreadyProcessed)
	_, err = s.service.Reject(s.ctx, req.TransactionID, "admin")
	s.ErrorIs(err, apperrors.ErrAlreadyProcessed)
	s.assertBalance("u1", "25")
}

func (s *RequestServiceTestSuite) TestDeposit_RejectHasNoBalanceEffect() {
	req, err := s.service.RequestDeposit(s.ctx, "u1", dec("25"), "bank transfer")
	s.Require().NoError(err)

	rejected, err := s.service.Reject(s.ctx, req.TransactionID, "admin")
	s.Require().NoError(err)
	s.Equal(domain.StatusRejected, rejected.Status)
	s.assertBalance("u1", "0")
}

func (s *RequestServiceTestSuite) TestWithdrawal_DebitsAtRequestTime() {
	s.fund("u1", "30")

	req, err := s.service.RequestWithdrawal(s.ctx, "u1", dec("20"), "")
	s.Require().NoError(err)
	s.Equal(domain.StatusPending, req.Status)
	s.assertBalance("u1", "10")

	_, err = s.service.Approve(s.ctx, req.TransactionID, "admin")
	s.Require().NoError(err)
	s.assertBalance("u1", "10")
}

func (s *RequestServiceTestSuite) TestWithdrawal_RejectRefunds() {
	s.fund("u1", "30")

	req, err := s.service.RequestWithdrawal(s.ctx, "u1", dec("20"), "")
	s.Require().NoError(err)

	_, err = s.service.Reject(s.ctx, req.TransactionID, "admin")
	s.Require().NoError(err)
	s.assertBalance("u1", "30")

	_, err = s.service.Reject(s.ctx, req.TransactionID, "admin")
	s.ErrorIs(err, apperrors.ErrAlreadyProcessed)
	s.assertBalance("u1", "30")
}

func (s *RequestServiceTestSuite) TestWithdrawal_InsufficientFunds() {
	s.fund("u1", "5")

	_, err := s.service.RequestWithdrawal(s.ctx, "u1", dec("20"), "")
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	s.assertBalance("u1", "5")
	s.Empty(s.rows())
}

func (s *RequestServiceTestSuite) TestReview_Rejections() {
	_, err := s.service.Approve(s.ctx, "missing", "admin")
	s.ErrorIs(err, apperrors.ErrNotFound)

	req, err := s.service.RequestDeposit(s.ctx, "u1", dec("1"), "")
	s.Require().NoError(err)
	_, err = s.service.Approve(s.ctx, req.TransactionID, "")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.RequestDeposit(s.ctx, "u1", dec("0"), "")
	s.ErrorIs(err, apperrors.ErrInvalidAmount)
	_, err = s.service.RequestDeposit(s.ctx, "ghost", dec("1"), "")
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RequestServiceTestSuite) TestListPending() {
	s.fund("u1", "50")
	first, err := s.service.RequestDeposit(s.ctx, "u1", dec("1"), "")
	s.Require().NoError(err)
	second, err := s.service.RequestWithdrawal(s.ctx, "u1", dec("2"), "")
	s.Require().NoError(err)

	pending, err := s.service.ListPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(pending, 2)

	_, err = s.service.Approve(s.ctx, first.TransactionID, "admin")
	s.Require().NoError(err)

	pending, err = s.service.ListPending(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal(second.TransactionID, pending[0].TransactionID)
}
