package provider

import (
	"github.com/ysongh/SmartSpendGift/internal/authz"
	"github.com/ysongh/SmartSpendGift/internal/cache"
	"github.com/ysongh/SmartSpendGift/internal/config"
	"github.com/ysongh/SmartSpendGift/internal/custody"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/models"
	"github.com/ysongh/SmartSpendGift/internal/queue"
	"github.com/ysongh/SmartSpendGift/internal/repository"
	"github.com/ysongh/SmartSpendGift/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo           repository.AdminRepository
	GiftCardRepo        repository.GiftCardRepository
	MerchantRepo        repository.MerchantRepository
	CardEventRepo       repository.CardEventRepository
	CustodyTransferRepo repository.CustodyTransferRepository

	// Custody
	CustodyLedger custody.Ledger

	// Services
	AuthzService    *authz.Service
	AuthService     *service.AuthService
	GiftCardService *service.GiftCardService
	MerchantService *service.MerchantService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化托管网关适配器
	c.initCustodyLedger()

	// 3. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.GiftCardRepo = repository.NewGiftCardRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.CardEventRepo = repository.NewCardEventRepository(db)
	c.CustodyTransferRepo = repository.NewCustodyTransferRepository(db)
}

func (c *Container) initCustodyLedger() {
	ledger, err := custody.NewClient(custody.Config{
		GatewayURL:  c.Config.Custody.GatewayURL,
		AuthToken:   c.Config.Custody.AuthToken,
		PoolAccount: c.Config.Custody.PoolAccount,
		TimeoutMS:   c.Config.Custody.TimeoutMS,
	})
	if err != nil {
		logger.Errorw("provider_init_custody_ledger_failed", "error", err)
		panic(err)
	}
	c.CustodyLedger = ledger
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.MerchantService = service.NewMerchantService(c.MerchantRepo, c.CardEventRepo)
	c.GiftCardService = service.NewGiftCardService(
		c.GiftCardRepo,
		c.MerchantRepo,
		c.CardEventRepo,
		c.CustodyTransferRepo,
		c.CustodyLedger,
		c.QueueClient,
	)
}
