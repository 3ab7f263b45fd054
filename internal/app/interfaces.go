package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/openmall/openmall/config"
	"github.com/openmall/openmall/internal/notify"
	"github.com/openmall/openmall/internal/store"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// StoreProvider provides the storefront data stores
type StoreProvider interface {
	Catalog() *store.CatalogStore
	Cart() *store.CartStore
	Orders() *store.OrderStore
	Stats() *store.StatsStore
	Users() *store.UserStore
}

// AppContext combines all provider interfaces for full application context
// Services should depend on specific providers or this combined interface
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	StoreProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// Mailer returns the notification dispatcher
	Mailer() *notify.Mailer
}
