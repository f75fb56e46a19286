package router

import (
	"fmt"
	"strings"

	"github.com/ysongh/SmartSpendGift/internal/cache"
	"github.com/ysongh/SmartSpendGift/internal/config"
	"github.com/ysongh/SmartSpendGift/internal/constants"
	adminhandlers "github.com/ysongh/SmartSpendGift/internal/http/handlers/admin"
	publichandlers "github.com/ysongh/SmartSpendGift/internal/http/handlers/public"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按对外/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)

	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	// 资金接口按账户限流，创建/核销/退款共用同一规则
	fundsRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:funds", redisPrefix),
		WindowSeconds: cfg.Security.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RateLimit.MaxRequests,
	}
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.RateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RateLimit.MaxRequests,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开查询接口
		public := apiV1.Group("/public")
		{
			public.GET("/gift-cards", publicHandler.GetGiftCards)
			public.GET("/gift-cards/:id", publicHandler.GetGiftCard)
			public.GET("/gift-cards/:id/events", publicHandler.GetGiftCardEvents)
			public.GET("/gift-cards/:id/merchants/:address", publicHandler.GetGiftCardMerchant)
			public.GET("/merchants", publicHandler.GetMerchants)
			public.GET("/merchants/:address", publicHandler.GetMerchant)
		}

		// 账户接口（需账户令牌）
		account := apiV1.Group("")
		account.Use(AccountJWTAuthMiddleware(cfg.AccountJWT.SecretKey))
		{
			account.POST("/merchants", publicHandler.RegisterMerchant)
			account.POST("/gift-cards",
				RateLimitMiddleware(redisClient, fundsRule, KeyByAccount),
				publicHandler.CreateGiftCard)
			account.POST("/gift-cards/:id/redeem",
				RateLimitMiddleware(redisClient, fundsRule, KeyByAccount),
				publicHandler.RedeemGiftCard)
			account.POST("/gift-cards/:id/refund",
				RateLimitMiddleware(redisClient, fundsRule, KeyByAccount),
				publicHandler.RefundGiftCard)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIP), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(AdminJWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminProfile)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 礼品卡与流水
				authorized.GET("/gift-cards", adminHandler.GetAdminGiftCards)
				authorized.GET("/gift-cards/:id", adminHandler.GetAdminGiftCard)
				authorized.GET("/card-events", adminHandler.GetAdminCardEvents)
				authorized.GET("/custody-transfers", adminHandler.GetAdminCustodyTransfers)
				authorized.POST("/custody-transfers/:id/reconcile", adminHandler.ReconcileCustodyTransfer)

				// 商户与令牌
				authorized.GET("/merchants", adminHandler.GetAdminMerchants)
				authorized.GET("/merchants/:address", adminHandler.GetAdminMerchant)
				authorized.POST("/account-tokens", adminHandler.IssueAccountToken)

				// 权限管理
				authorized.GET("/authz/roles", adminHandler.GetAuthzRoles)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/roles/:role/policies", adminHandler.GrantAuthzRolePolicy)
				authorized.DELETE("/authz/roles/:role/policies", adminHandler.RevokeAuthzRolePolicy)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
