package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/referral_ledger/internal/apperrors"
	"github.com/SscSPs/referral_ledger/internal/core/domain"
	"github.com/SscSPs/referral_ledger/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockUserRepository is a mock type for the UserRepositoryFacade interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) ListReferrals(ctx context.Context, referrerID string) ([]domain.User, error) {
	args := m.Called(ctx, referrerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
}

func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (suite *UserServiceTestSuite) TestUpsertUser_New() {
	ctx := context.Background()
	referrer := "sponsor"
	suite.mockRepo.On("FindUserByID", ctx, "u1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == "u1" && u.ReferrerID != nil && *u.ReferrerID == "sponsor" && u.CanTransact
	})).Return(nil).Once()

	user, err := services.NewUserService(suite.mockRepo).UpsertUser(ctx, "u1", &referrer, true)
	suite.Require().NoError(err)
	suite.WithinDuration(time.Now(), user.CreatedAt, time.Second)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpsertUser_KeepsCreatedAt() {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	suite.mockRepo.On("FindUserByID", ctx, "u1").Return(&domain.User{UserID: "u1", CreatedAt: created}, nil).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.CreatedAt.Equal(created) && u.ReferrerID == nil && !u.CanTransact
	})).Return(nil).Once()

	empty := ""
	_, err := services.NewUserService(suite.mockRepo).UpsertUser(ctx, "u1", &empty, false)
	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpsertUser_Rejections() {
	ctx := context.Background()
	svc := services.NewUserService(suite.mockRepo)
	self := "u1"
	fund := domain.SalaryFund.Principal()

	_, err := svc.UpsertUser(ctx, "u1", &self, true)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = svc.UpsertUser(ctx, fund, nil, true)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = svc.UpsertUser(ctx, "u2", &fund, true)
	suite.ErrorIs(err, apperrors.ErrValidation)
	_, err = svc.UpsertUser(ctx, "", nil, true)
	suite.ErrorIs(err, apperrors.ErrValidation)

	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpsertUser_SaveError() {
	ctx := context.Background()
	boom := errors.New("db down")
	suite.mockRepo.On("FindUserByID", ctx, "u1").Return(nil, apperrors.ErrNotFound).Once()
	suite.mockRepo.On("SaveUser", ctx, mock.AnythingOfType("domain.User")).Return(boom).Once()

	_, err := services.NewUserService(suite.mockRepo).UpsertUser(ctx, "u1", nil, true)
	suite.ErrorIs(err, boom)
}
