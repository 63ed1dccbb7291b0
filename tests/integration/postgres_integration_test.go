//go:build integration

package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vaibhavvyavahare/railtrace/config"
	"github.com/vaibhavvyavahare/railtrace/models"
	"github.com/vaibhavvyavahare/railtrace/services"
	"github.com/vaibhavvyavahare/railtrace/tests/testutil"
	"gorm.io/gorm"
)

const (
	pgImage = "postgres:17.0-alpine3.20"
	pgUser  = "railtrace"
	pgPass  = "railtrace-test"
	pgDB    = "railtrace_test"
)

// PostgresIntegrationTestSuite runs the services against a real PostgreSQL
// schema created by the goose migrations
type PostgresIntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *gorm.DB
}

func (suite *PostgresIntegrationTestSuite) SetupSuite() {
	suite.ctx = context.Background()

	container, err := postgres.Run(suite.ctx,
		pgImage,
		postgres.WithDatabase(pgDB),
		postgres.WithUsername(pgUser),
		postgres.WithPassword(pgPass),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(suite.ctx, "sslmode=disable")
	suite.Require().NoError(err)

	cfg := testutil.TestConfig()
	cfg.DatabaseURL = dsn
	cfg.DBMaxOpenConns = 10
	suite.Require().NoError(config.ConnectDatabase(cfg))
	suite.db = config.GetDB()

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	suite.Require().NoError(config.RunMigrations(sqlDB))

	version, err := config.MigrationVersion(sqlDB)
	suite.Require().NoError(err)
	suite.Equal(int64(2), version)
}

func (suite *PostgresIntegrationTestSuite) TearDownSuite() {
	if suite.db != nil {
		if sqlDB, err := suite.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if suite.container != nil {
		suite.NoError(tc.TerminateContainer(suite.container))
	}
}

func (suite *PostgresIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(`TRUNCATE maintenance_alerts, summary_reports, files,
		maintenance_records, installation_records, fittings, batches, lots, orders,
		workers, officers, vendors RESTART IDENTITY CASCADE`).Error)
}

// TestConcurrentGenerationAllocatesDistinctLots fires generate-qr for many
// orders of one vendor at once; every order must get its own lot number.
func (suite *PostgresIntegrationTestSuite) TestConcurrentGenerationAllocatesDistinctLots() {
	t := suite.T()
	testutil.CreateVendor(t, suite.db, "V-RACE")

	const orders = 8
	for i := 1; i <= orders; i++ {
		testutil.CreateOrder(t, suite.db, "V-RACE", fmt.Sprintf("ORD-RACE-%d", i), models.OrderTypeItemWise, 3)
	}

	svc := services.NewQRService(suite.db, services.NewPNGRenderer(64))
	var wg sync.WaitGroup
	errs := make(chan error, orders)
	for i := 1; i <= orders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.GenerateForOrder(suite.ctx, "V-RACE", fmt.Sprintf("ORD-RACE-%d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		suite.NoError(err)
	}

	var lots []models.Lot
	suite.Require().NoError(suite.db.Where("vendor_id = ?", "V-RACE").Order("lot_number").Find(&lots).Error)
	suite.Require().Len(lots, orders)
	numbers := lo.Map(lots, func(l models.Lot, _ int) int { return l.LotNumber })
	suite.Equal(lo.RangeFrom(1, orders), numbers)

	var fittings int64
	suite.Require().NoError(suite.db.Model(&models.Fitting{}).Count(&fittings).Error)
	suite.Equal(int64(orders*3), fittings)
}

func (suite *PostgresIntegrationTestSuite) TestInstallationAndOversightOnPostgres() {
	t := suite.T()
	testutil.CreateVendor(t, suite.db, "V-PG")
	testutil.CreateWorker(t, suite.db, "W-PG")
	testutil.CreateOrder(t, suite.db, "V-PG", "ORD-PG", models.OrderTypeItemWise, 2)

	_, err := services.NewQRService(suite.db, services.NewPNGRenderer(64)).GenerateForOrder(suite.ctx, "V-PG", "ORD-PG")
	suite.Require().NoError(err)

	fittingID := models.FittingIDFor("V-PG-LOT-1-B1", 1)
	_, err = services.NewFieldService(suite.db).RecordInstallation(suite.ctx, services.InstallationInput{
		FittingID: fittingID,
		WorkerID:  "W-PG",
	})
	suite.Require().NoError(err)

	_, err = services.NewFieldService(suite.db).RecordInstallation(suite.ctx, services.InstallationInput{
		FittingID: fittingID,
		WorkerID:  "W-PG",
	})
	suite.ErrorIs(err, services.ErrAlreadyInstalled)

	summary, err := services.NewOversightService(suite.db).Summary(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(int64(1), summary.Items)
	suite.Equal(int64(1), summary.InProgress)

	result, err := services.NewAlertService(suite.db).EvaluateForVendor(suite.ctx, "V-PG")
	suite.Require().NoError(err)
	suite.Equal(2, result.Created)
}

func TestPostgresIntegrationTestSuite(t *testing.T) {
	testutil.RequireTestEnvironment(t)
	suite.Run(t, new(PostgresIntegrationTestSuite))
}
