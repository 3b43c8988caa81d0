package cli

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kaitori/dispatch-go/internal/adapters/geocode"
	"github.com/kaitori/dispatch-go/internal/adapters/persistence"
	"github.com/kaitori/dispatch-go/internal/application/common"
	appexecution "github.com/kaitori/dispatch-go/internal/application/execution"
	appordering "github.com/kaitori/dispatch-go/internal/application/ordering"
	appplanning "github.com/kaitori/dispatch-go/internal/application/planning"
	approuting "github.com/kaitori/dispatch-go/internal/application/routing"
	"github.com/kaitori/dispatch-go/internal/infrastructure/config"
	"github.com/kaitori/dispatch-go/internal/infrastructure/database"
	"github.com/kaitori/dispatch-go/internal/infrastructure/logging"
)

// app bundles the wired dependencies every command needs
type app struct {
	cfg      *config.Config
	db       *gorm.DB
	logger   *zap.SugaredLogger
	mediator common.Mediator
}

// newApp loads configuration, connects the database and registers every
// command and query handler on the mediator
func newApp(configPath string) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	zlog, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, err
	}
	logger := zlog.Sugar()

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	uow := persistence.NewGormUnitOfWork(db)
	geocoder := geocode.NewNominatimClient(&cfg.Geocode, nil)

	m := common.NewMediator()
	if err := registerHandlers(m, uow, geocoder, logger); err != nil {
		return nil, err
	}

	return &app{cfg: cfg, db: db, logger: logger, mediator: m}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
	_ = database.Close(a.db)
}

func registerHandlers(m common.Mediator, uow common.UnitOfWork, geocoder common.Geocoder, logger *zap.SugaredLogger) error {
	registrations := []error{
		common.RegisterHandler[*appordering.IngestOrderCommand](m, appordering.NewIngestOrderHandler(uow, logger)),

		common.RegisterHandler[*appplanning.AssignDayCommand](m, appplanning.NewAssignDayHandler(uow, logger)),
		common.RegisterHandler[*appplanning.AssignToStaffCommand](m, appplanning.NewAssignToStaffHandler(uow, logger)),
		common.RegisterHandler[*appplanning.PlanDayCommand](m, appplanning.NewPlanDayHandler(uow, logger)),
		common.RegisterHandler[*appplanning.PurchaseListsByDateQuery](m, appplanning.NewPurchaseListsByDateHandler(uow)),

		common.RegisterHandler[*approuting.GenerateRoutesCommand](m, approuting.NewGenerateRoutesHandler(uow, logger)),
		common.RegisterHandler[*approuting.RecalculateRouteCommand](m, approuting.NewRecalculateRouteHandler(uow, logger)),
		common.RegisterHandler[*approuting.RecomputeMatrixCommand](m, approuting.NewRecomputeMatrixHandler(uow, geocoder, logger)),
		common.RegisterHandler[*approuting.NearestStoresQuery](m, approuting.NewNearestStoresHandler(uow, logger)),
		common.RegisterHandler[*approuting.GetRouteQuery](m, approuting.NewGetRouteHandler(uow)),

		common.RegisterHandler[*appexecution.UpdateStopCommand](m, appexecution.NewUpdateStopHandler(uow, logger)),
		common.RegisterHandler[*appexecution.RecordFailureCommand](m, appexecution.NewRecordFailureHandler(uow, logger)),
	}
	for _, err := range registrations {
		if err != nil {
			return fmt.Errorf("failed to register handler: %w", err)
		}
	}
	return nil
}
