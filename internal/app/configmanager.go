package app

import (
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/openmall/openmall/internal/domain"
)

const configCacheTTL = 30 * time.Second

// ConfigManager reads runtime settings from the sys_config table with a
// short refresh interval so admin edits take effect without a restart.
type ConfigManager struct {
	app DBProvider

	mu       sync.RWMutex
	values   map[string]map[string]string
	loadedAt time.Time
}

func NewConfigManager(app DBProvider) *ConfigManager {
	cm := &ConfigManager{app: app}
	cm.refresh()
	return cm
}

func (cm *ConfigManager) refresh() {
	var rows []domain.SysConfig
	if err := cm.app.DB().Find(&rows).Error; err != nil {
		zap.L().Error("failed to load sys_config", zap.Error(err))
		return
	}

	values := make(map[string]map[string]string)
	for _, row := range rows {
		if _, ok := values[row.Type]; !ok {
			values[row.Type] = make(map[string]string)
		}
		values[row.Type][row.Name] = row.Value
	}

	cm.mu.Lock()
	cm.values = values
	cm.loadedAt = time.Now()
	cm.mu.Unlock()
}

func (cm *ConfigManager) get(category, name string) string {
	cm.mu.RLock()
	stale := time.Since(cm.loadedAt) > configCacheTTL
	cm.mu.RUnlock()
	if stale {
		cm.refresh()
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if group, ok := cm.values[category]; ok {
		return group[name]
	}
	return ""
}

func (cm *ConfigManager) GetString(category, name string) string {
	return cm.get(category, name)
}

func (cm *ConfigManager) GetInt(category, name string) int {
	return cast.ToInt(cm.get(category, name))
}

func (cm *ConfigManager) GetInt64(category, name string) int64 {
	return cast.ToInt64(cm.get(category, name))
}

func (cm *ConfigManager) GetBool(category, name string) bool {
	return cast.ToBool(cm.get(category, name))
}

// SetValue upserts one setting.
func (cm *ConfigManager) SetValue(category, name, value string) error {
	db := cm.app.DB()
	var count int64
	db.Model(&domain.SysConfig{}).Where("type = ? and name = ?", category, name).Count(&count)
	var err error
	if count == 0 {
		err = db.Create(&domain.SysConfig{Type: category, Name: name, Value: value}).Error
	} else {
		err = db.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Update("value", value).Error
	}
	if err != nil {
		return err
	}
	cm.refresh()
	return nil
}

// ShopSettings is the typed view of the "shop" settings group.
type ShopSettings struct {
	CartRetentionDays int    `mapstructure:"CartRetentionDays"`
	OrderMailEnabled  bool   `mapstructure:"OrderMailEnabled"`
	OrderMailSubject  string `mapstructure:"OrderMailSubject"`
}

// ShopSettings decodes the shop settings group into its typed form.
func (cm *ConfigManager) ShopSettings() ShopSettings {
	cm.mu.RLock()
	group := cm.values["shop"]
	cm.mu.RUnlock()

	settings := ShopSettings{CartRetentionDays: 30}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return settings
	}
	if err := decoder.Decode(group); err != nil {
		zap.L().Warn("failed to decode shop settings", zap.Error(err))
	}
	return settings
}
