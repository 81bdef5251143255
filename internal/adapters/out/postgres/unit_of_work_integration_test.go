package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "dispatch/internal/adapters/out/postgres"
	"dispatch/internal/adapters/out/postgres/pgtest"
	"dispatch/internal/core/domain/model/account"
	"dispatch/internal/core/domain/model/delivery"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// UnitOfWorkIntegrationTestSuite verifies that a transition and its ledger
// postings commit or roll back together.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	pg      *pgtest.Database
	factory ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(pg.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWorkFactory_Create() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2, "Factory should create separate instances")
	suite.NotNil(uow1.AccountRepository())
	suite.NotNil(uow1.DeliveryRepository())
	suite.NotNil(uow1.OfferRepository())
	suite.NotNil(uow1.LedgerRepository())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionErrors() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "Should error when committing without active transaction")
	suite.Require().Error(uow.Rollback(ctx), "Should error when rolling back without active transaction")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitPersistsDeliveryAndPostings() {
	ctx := suite.T().Context()
	sender := suite.fundedBusiness(5000)
	d := suite.newDelivery(sender.ID())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	locked, err := uow.AccountRepository().GetForUpdate(ctx, sender.ID())
	suite.Require().NoError(err)
	deliveryID := d.ID()
	escrow, err := locked.Debit(d.Pricing().TotalPrice(), account.ReasonPrepayEscrow, &deliveryID, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.AccountRepository().Update(ctx, locked))
	suite.Require().NoError(uow.LedgerRepository().Append(ctx, escrow))
	suite.Require().NoError(uow.DeliveryRepository().Add(ctx, d))
	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	stored, err := reader.AccountRepository().Get(ctx, sender.ID())
	suite.Require().NoError(err)
	suite.Equal("3600.00", stored.Balance().StringFixed(2))
	sum, err := reader.LedgerRepository().SumByAccount(ctx, sender.ID())
	suite.Require().NoError(err)
	suite.True(stored.Balance().Equal(sum))
	_, err = reader.DeliveryRepository().Get(ctx, d.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEverything() {
	ctx := suite.T().Context()
	sender := suite.fundedBusiness(5000)
	d := suite.newDelivery(sender.ID())

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	locked, err := uow.AccountRepository().GetForUpdate(ctx, sender.ID())
	suite.Require().NoError(err)
	escrow, err := locked.Debit(decimal.NewFromInt(1400), account.ReasonPrepayEscrow, nil, time.Now())
	suite.Require().NoError(err)
	suite.Require().NoError(uow.AccountRepository().Update(ctx, locked))
	suite.Require().NoError(uow.LedgerRepository().Append(ctx, escrow))
	suite.Require().NoError(uow.DeliveryRepository().Add(ctx, d))
	suite.Require().NoError(uow.Rollback(ctx))

	reader := suite.factory.Create()
	stored, err := reader.AccountRepository().Get(ctx, sender.ID())
	suite.Require().NoError(err)
	suite.Equal("5000.00", stored.Balance().StringFixed(2))
	_, err = reader.DeliveryRepository().Get(ctx, d.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	entries, err := reader.LedgerRepository().ListByAccount(ctx, sender.ID(), 10)
	suite.Require().NoError(err)
	suite.Len(entries, 1, "only the funding entry should remain")
}

func (suite *UnitOfWorkIntegrationTestSuite) fundedBusiness(amount int64) *account.Account {
	ctx := suite.T().Context()
	business, err := account.NewAccount(kernel.NewUUID(), account.RoleBusiness, decimal.Zero)
	suite.Require().NoError(err)
	topUp, err := business.Credit(decimal.NewFromInt(amount), account.ReasonManualAdjustment, nil, time.Now())
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.AccountRepository().Add(ctx, business))
	suite.Require().NoError(uow.LedgerRepository().Append(ctx, topUp))
	suite.Require().NoError(uow.Commit(ctx))
	return business
}

func (suite *UnitOfWorkIntegrationTestSuite) newDelivery(senderID kernel.UUID) *delivery.Delivery {
	pickup, err := kernel.NewLocation(3.8480, 11.5021)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewLocation(3.8667, 11.5167)
	suite.Require().NoError(err)
	pricing, err := delivery.NewPricing(5, decimal.NewFromInt(1400), decimal.NewFromInt(280), decimal.NewFromInt(1120))
	suite.Require().NoError(err)

	d, err := delivery.NewDelivery(kernel.NewUUID(), senderID, pickup, dropoff, delivery.PaymentPrepaidWallet, pricing, time.Now())
	suite.Require().NoError(err)
	return d
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
