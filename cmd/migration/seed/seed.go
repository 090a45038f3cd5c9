package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/pawaovo/nfc-bracelet-fortune/internal/database"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/logger"
	"github.com/pawaovo/nfc-bracelet-fortune/internal/models"

	"github.com/shopspring/decimal"
)

// Development fixtures: products across all three recommendation price
// bands and a batch of provisioned, unbound bracelets.
var seedProducts = []models.Product{
	{
		Name:        "星语入门手绳",
		Description: "编织红绳，内嵌NFC芯片，适合日常佩戴。",
		ImageURL:    "https://cdn.example.com/products/entry-rope.jpg",
		Price:       decimal.NewFromInt(99),
		StoreURL:    "https://shop.example.com/p/entry-rope",
	},
	{
		Name:        "流光银饰手链",
		Description: "925银链身，磨砂NFC吊坠。",
		ImageURL:    "https://cdn.example.com/products/silver-chain.jpg",
		Price:       decimal.NewFromInt(159),
		StoreURL:    "https://shop.example.com/p/silver-chain",
	},
	{
		Name:        "月相钛钢手环",
		Description: "钛钢环体，激光月相纹理，IP67防水。",
		ImageURL:    "https://cdn.example.com/products/moon-bangle.jpg",
		Price:       decimal.NewFromInt(299),
		StoreURL:    "https://shop.example.com/p/moon-bangle",
	},
	{
		Name:        "星轨陶瓷手镯",
		Description: "高温陶瓷，手工星轨釉面。",
		ImageURL:    "https://cdn.example.com/products/ceramic-orbit.jpg",
		Price:       decimal.NewFromInt(399),
		StoreURL:    "https://shop.example.com/p/ceramic-orbit",
	},
	{
		Name:        "辰砂鎏金限定款",
		Description: "限量鎏金工艺，附收藏证书。",
		ImageURL:    "https://cdn.example.com/products/gilt-limited.jpg",
		Price:       decimal.NewFromInt(699),
		StoreURL:    "https://shop.example.com/p/gilt-limited",
	},
	{
		Name:        "天衍白金典藏款",
		Description: "白金链身镶嵌母贝，典藏编号独一。",
		ImageURL:    "https://cdn.example.com/products/platinum-collect.jpg",
		Price:       decimal.NewFromInt(1299),
		StoreURL:    "https://shop.example.com/p/platinum-collect",
	},
}

// Run loads fixtures, skipping anything that already exists so the seed
// is safe to re-run.
func Run(db database.DB) error {
	log := logger.New("seed").Function("Run")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sql := db.SQLWithContext(ctx)

	for _, product := range seedProducts {
		var count int64
		if err := sql.Model(&models.Product{}).
			Where("name = ?", product.Name).
			Count(&count).Error; err != nil {
			return log.Err("failed to check product", err, "name", product.Name)
		}
		if count > 0 {
			continue
		}
		if err := sql.Create(&product).Error; err != nil {
			return log.Err("failed to seed product", err, "name", product.Name)
		}
	}
	log.Info("Seeded products", "count", len(seedProducts))

	for i := 1; i <= 20; i++ {
		nfcID := fmt.Sprintf("NFC-DEV-%04d", i)
		var count int64
		if err := sql.Model(&models.Bracelet{}).
			Where("nfc_id = ?", nfcID).
			Count(&count).Error; err != nil {
			return log.Err("failed to check bracelet", err, "nfcID", nfcID)
		}
		if count > 0 {
			continue
		}
		if err := sql.Create(&models.Bracelet{NfcID: nfcID}).Error; err != nil {
			return log.Err("failed to seed bracelet", err, "nfcID", nfcID)
		}
	}
	log.Info("Seeded bracelets", "count", 20)

	return nil
}
