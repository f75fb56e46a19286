package main

import (
	"fmt"

	"github.com/ysongh/SmartSpendGift/internal/config"
	"github.com/ysongh/SmartSpendGift/internal/logger"
	"github.com/ysongh/SmartSpendGift/internal/models"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加演示商户（地址一次性认领，已存在则跳过）
	merchants := []models.Merchant{
		{
			Address: "acct_demo_grocery_0001",
			Name:    "演示商户-日用百货",
		},
		{
			Address: "acct_demo_books_0002",
			Name:    "演示商户-图书文具",
		},
		{
			Address: "acct_demo_dining_0003",
			Name:    "演示商户-连锁餐饮",
		},
	}

	created := 0
	for _, m := range merchants {
		var existing models.Merchant
		if err := models.DB.Where("address = ?", m.Address).First(&existing).Error; err != nil {
			if err := models.DB.Create(&m).Error; err != nil {
				stdLog.Printf("Failed to create merchant %s: %v", m.Address, err)
			} else {
				stdLog.Printf("Created merchant: %s (%s)", m.Name, m.Address)
				created++
			}
		} else {
			stdLog.Printf("Merchant already exists: %s", m.Address)
		}
	}

	fmt.Println("\n✅ Seed finished!")
	fmt.Printf("- %d merchants created, %d total in seed set\n", created, len(merchants))
}
