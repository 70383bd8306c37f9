package container

import (
	"log/slog"

	"github.com/joshua-takyi/gylounge/internal/config"
	"github.com/joshua-takyi/gylounge/internal/helpers"
	"github.com/joshua-takyi/gylounge/internal/mailer"
	"github.com/joshua-takyi/gylounge/internal/models"
	"github.com/joshua-takyi/gylounge/internal/services"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	Store   models.Store
	Journal models.ReservationJournal
	Redis   *redis.Client
	Tokens  *helpers.TokenValidator

	Notifier           *services.Notifier
	MembershipService  *services.MembershipService
	ReservationService *services.ReservationService
	CatalogService     *services.CatalogService
	Reconciler         *services.Reconciler
}

// NewContainer wires the services. redisClient and tokens may be nil; rate
// limiting and the admin routes are then disabled.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	store models.Store,
	journal models.ReservationJournal,
	sender mailer.Sender,
	redisClient *redis.Client,
	tokens *helpers.TokenValidator,
) *Container {
	if journal == nil {
		journal = models.NewMemoryJournal()
	}

	notifier := services.NewNotifier(sender, helpers.SplitList(cfg.BookingNotificationEmails), logger)

	bank, bankErr := services.ParseBankTransferDetails(
		cfg.MembershipFeeGHS,
		cfg.BankTransferAccountName,
		cfg.BankTransferAccountNumber,
		cfg.BankTransferBankName,
		cfg.BankTransferInstructions,
	)
	if bankErr != nil {
		logger.Warn("bank transfer details incomplete, instruction emails will fail", "error", bankErr)
	}

	return &Container{
		Config:             cfg,
		Logger:             logger,
		Store:              store,
		Journal:            journal,
		Redis:              redisClient,
		Tokens:             tokens,
		Notifier:           notifier,
		MembershipService:  services.NewMembershipService(store, notifier, bank, bankErr, logger),
		ReservationService: services.NewReservationService(store, journal, notifier, logger),
		CatalogService:     services.NewCatalogService(store, logger),
		Reconciler:         services.NewReconciler(store, journal, logger),
	}
}
