package app

import (
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/openmall/openmall/config"
)

func getDatabase(dbcfg config.DBConfig, workdir string) *gorm.DB {
	loglevel := logger.Silent
	if dbcfg.Debug {
		loglevel = logger.Info
	}
	gormcfg := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(loglevel),
	}

	var dialector gorm.Dialector
	switch dbcfg.Type {
	case "sqlite":
		dialector = sqlite.Open(filepath.Join(workdir, "data", dbcfg.Name+".db"))
	default:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable TimeZone=Asia/Shanghai",
			dbcfg.Host, dbcfg.User, dbcfg.Passwd, dbcfg.Name, dbcfg.Port)
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormcfg)
	if err != nil {
		zap.S().Panicf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		zap.S().Panicf("failed to get database handle: %v", err)
	}
	if dbcfg.MaxConn > 0 {
		sqlDB.SetMaxOpenConns(dbcfg.MaxConn)
	}
	if dbcfg.IdleConn > 0 {
		sqlDB.SetMaxIdleConns(dbcfg.IdleConn)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)
	return db
}
