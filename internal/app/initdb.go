package app

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/pkg/common"
)

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "openmall"

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default admin password", zap.Error(err))
		return
	}

	var admin domain.User
	err = a.gormDB.Where("username = ?", superUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Password:  string(hash),
			Name:      "administrator",
			Role:      domain.RoleAdmin,
			LastLogin: time.Now(),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default admin account", zap.String("username", superUsername))
		}
		return
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(admin.Password) == ""
	resetRole := !strings.EqualFold(admin.Role, domain.RoleAdmin)

	if !resetPassword && !resetRole {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hash)
	}
	if resetRole {
		updates["role"] = domain.RoleAdmin
	}

	if err := a.gormDB.Model(&domain.User{}).Where("id = ?", admin.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default admin account",
		zap.String("username", superUsername),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("roleReset", resetRole))
}

type configSchema struct {
	Key         string
	Default     string
	Description string
}

var defaultConfigSchemas = []configSchema{
	{Key: "shop.CartRetentionDays", Default: "30", Description: "Days before abandoned cart lines are pruned"},
	{Key: "shop.OrderMailEnabled", Default: "false", Description: "Send order confirmation mail after checkout"},
	{Key: "shop.OrderMailSubject", Default: "Your order has been placed", Description: "Order confirmation mail subject"},
	{Key: "system.SiteTitle", Default: "openmall", Description: "Storefront display title"},
}

func (a *Application) checkSettings() {
	for sortid, schema := range defaultConfigSchemas {
		parts := strings.SplitN(schema.Key, ".", 2)
		if len(parts) != 2 {
			zap.L().Warn("invalid config key format", zap.String("key", schema.Key))
			continue
		}

		category := parts[0]
		name := parts[1]

		// Check whether the configuration already exists
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

// checkCategories initializes demo catalog categories (debug only)
func (a *Application) checkCategories() {
	defaultCategories := []domain.Category{
		{Name: "Electronics", Slug: "electronics", Description: "Gadgets and devices"},
		{Name: "Clothing", Slug: "clothing", Description: "Apparel and fashion"},
	}

	for _, cat := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("slug = ?", cat.Slug).Count(&count)
		if count == 0 {
			cat.CreatedAt = time.Now()
			cat.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&cat).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("slug", cat.Slug), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("slug", cat.Slug))
			}
		}
	}
}

// checkProducts initializes demo catalog products (debug only)
func (a *Application) checkProducts() {
	categoryID := func(slug string) *int64 {
		var cat domain.Category
		if err := a.gormDB.Where("slug = ?", slug).First(&cat).Error; err != nil {
			return nil
		}
		return &cat.ID
	}

	defaultProducts := []domain.Product{
		{
			CategoryID:  categoryID("electronics"),
			Name:        "Smartphone X",
			Description: "Latest model with high-res camera",
			Price:       decimal.NewFromFloat(999.00),
			Stock:       50,
			ImageURL:    "https://placehold.co/600x400?text=Smartphone",
		},
		{
			CategoryID:  categoryID("electronics"),
			Name:        "Laptop Pro",
			Description: "Powerful laptop for professionals",
			Price:       decimal.NewFromFloat(1499.00),
			Stock:       20,
			ImageURL:    "https://placehold.co/600x400?text=Laptop",
		},
		{
			CategoryID:  categoryID("clothing"),
			Name:        "Classic T-Shirt",
			Description: "Cotton t-shirt",
			Price:       decimal.NewFromFloat(29.99),
			Stock:       100,
			ImageURL:    "https://placehold.co/600x400?text=T-Shirt",
		},
	}

	for _, p := range defaultProducts {
		var count int64
		a.gormDB.Model(&domain.Product{}).Where("name = ?", p.Name).Count(&count)
		if count == 0 {
			p.CreatedAt = time.Now()
			p.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&p).Error; err != nil {
				zap.L().Error("failed to create default product", zap.String("name", p.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default product", zap.String("name", p.Name))
			}
		}
	}
}
