package accountrepo_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/adapters/out/postgres/accountrepo"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// AccountRepositoryIntegrationTestSuite verifies account persistence against PostgreSQL.
type AccountRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *accountrepo.GormAccountRepository
}

func (suite *AccountRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *AccountRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
	suite.repository = accountrepo.NewGormAccountRepository(suite.pg.DB)
}

func (suite *AccountRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *AccountRepositoryIntegrationTestSuite) TestAdd_ThenGet_RestoresAllFields() {
	ctx := suite.T().Context()

	courier := suite.onlineCourier(3.8480, 11.5021)
	_, err := courier.Debit(decimal.RequireFromString("280.50"), account.ReasonCashCommission, nil, time.Now())
	suite.Require().NoError(err)
	courier.RecordOfferOutcome(true)
	courier.RecordOfferOutcome(false)

	suite.Require().NoError(suite.repository.Add(ctx, courier))

	loaded, err := suite.repository.Get(ctx, courier.ID())
	suite.Require().NoError(err)
	suite.Equal(courier.ID(), loaded.ID())
	suite.Equal(account.RoleCourier, loaded.Role())
	suite.Equal("-280.50", loaded.Balance().StringFixed(2))
	suite.Equal("5000.00", loaded.DebtCeiling().StringFixed(2))
	suite.True(loaded.IsVerified())
	suite.True(loaded.IsOnline())
	suite.Require().NotNil(loaded.Location())
	suite.InDelta(3.8480, loaded.Location().Lat(), 1e-9)
	suite.InDelta(11.5021, loaded.Location().Lon(), 1e-9)
	suite.Equal(2, loaded.OffersReceived())
	suite.Equal(1, loaded.OffersAccepted())
	suite.Nil(loaded.CurrentDeliveryID())
	suite.Equal(int64(0), loaded.Version())
}

func (suite *AccountRepositoryIntegrationTestSuite) TestGet_Missing_ReturnsNotFound() {
	_, err := suite.repository.Get(suite.T().Context(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *AccountRepositoryIntegrationTestSuite) TestUpdate_AdvancesVersion() {
	ctx := suite.T().Context()
	business := suite.business()
	suite.Require().NoError(suite.repository.Add(ctx, business))

	_, err := business.Credit(decimal.NewFromInt(10000), account.ReasonManualAdjustment, nil, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, business))

	suite.Equal(int64(1), business.Version())
	loaded, err := suite.repository.Get(ctx, business.ID())
	suite.Require().NoError(err)
	suite.Equal(int64(1), loaded.Version())
	suite.Equal("10000.00", loaded.Balance().StringFixed(2))
}

func (suite *AccountRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReturnsConcurrentModification() {
	ctx := suite.T().Context()
	business := suite.business()
	suite.Require().NoError(suite.repository.Add(ctx, business))

	first, err := suite.repository.Get(ctx, business.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, business.ID())
	suite.Require().NoError(err)

	_, err = first.Credit(decimal.NewFromInt(100), account.ReasonManualAdjustment, nil, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Update(ctx, first))

	_, err = second.Credit(decimal.NewFromInt(200), account.ReasonManualAdjustment, nil, time.Now())
	suite.Require().NoError(err)
	err = suite.repository.Update(ctx, second)

	suite.Require().ErrorIs(err, errs.ErrConcurrentModification)
	loaded, err := suite.repository.Get(ctx, business.ID())
	suite.Require().NoError(err)
	suite.Equal("100.00", loaded.Balance().StringFixed(2))
}

func (suite *AccountRepositoryIntegrationTestSuite) TestUpdate_Missing_ReturnsNotFound() {
	err := suite.repository.Update(suite.T().Context(), suite.business())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *AccountRepositoryIntegrationTestSuite) TestUpdate_PersistsZeroValues() {
	ctx := suite.T().Context()
	courier := suite.onlineCourier(3.8480, 11.5021)
	suite.Require().NoError(suite.repository.Add(ctx, courier))

	courier.GoOffline()
	suite.Require().NoError(suite.repository.Update(ctx, courier))

	loaded, err := suite.repository.Get(ctx, courier.ID())
	suite.Require().NoError(err)
	suite.False(loaded.IsOnline())
}

func (suite *AccountRepositoryIntegrationTestSuite) TestGetForUpdate_LockedRow_ReturnsConcurrentModification() {
	ctx := suite.T().Context()
	business := suite.business()
	suite.Require().NoError(suite.repository.Add(ctx, business))

	holder := suite.pg.DB.Begin()
	defer holder.Rollback()
	_, err := accountrepo.NewGormAccountRepository(holder).GetForUpdate(ctx, business.ID())
	suite.Require().NoError(err)

	waiter := suite.pg.DB.Begin()
	defer waiter.Rollback()
	suite.Require().NoError(waiter.Exec("SET LOCAL lock_timeout = '100ms'").Error)
	_, err = accountrepo.NewGormAccountRepository(waiter).GetForUpdate(ctx, business.ID())

	suite.Require().ErrorIs(err, errs.ErrConcurrentModification)
}

func (suite *AccountRepositoryIntegrationTestSuite) TestFindDispatchable_AppliesCoarseFilters() {
	ctx := suite.T().Context()

	near := suite.onlineCourier(3.8500, 11.5030)
	farAway := suite.onlineCourier(4.0511, 9.7679)
	offline := suite.onlineCourier(3.8490, 11.5025)
	offline.GoOffline()
	unverified, err := account.NewAccount(kernel.NewUUID(), account.RoleCourier, decimal.NewFromInt(5000))
	suite.Require().NoError(err)
	suite.Require().NoError(unverified.GoOnline(suite.location(3.8485, 11.5022)))
	busy := suite.onlineCourier(3.8481, 11.5020)
	suite.Require().NoError(busy.AssignDelivery(kernel.NewUUID()))
	indebted := suite.onlineCourier(3.8482, 11.5023)
	_, err = indebted.Debit(decimal.NewFromInt(5001), account.ReasonCashCommission, nil, time.Now())
	suite.Require().NoError(err)

	for _, a := range []*account.Account{near, farAway, offline, unverified, busy, indebted, suite.business()} {
		suite.Require().NoError(suite.repository.Add(ctx, a))
	}

	found, err := suite.repository.FindDispatchable(ctx, suite.location(3.8480, 11.5021), 8)

	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.Equal(near.ID(), found[0].ID())
}

func (suite *AccountRepositoryIntegrationTestSuite) onlineCourier(lat, lon float64) *account.Account {
	courier, err := account.NewAccount(kernel.NewUUID(), account.RoleCourier, decimal.NewFromInt(5000))
	suite.Require().NoError(err)
	courier.Verify()
	suite.Require().NoError(courier.GoOnline(suite.location(lat, lon)))
	return courier
}

func (suite *AccountRepositoryIntegrationTestSuite) business() *account.Account {
	business, err := account.NewAccount(kernel.NewUUID(), account.RoleBusiness, decimal.Zero)
	suite.Require().NoError(err)
	return business
}

func (suite *AccountRepositoryIntegrationTestSuite) location(lat, lon float64) kernel.Location {
	loc, err := kernel.NewLocation(lat, lon)
	suite.Require().NoError(err)
	return loc
}

func TestAccountRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AccountRepositoryIntegrationTestSuite))
}
