package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openmall/openmall/internal/domain"
	"github.com/openmall/openmall/pkg/common"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache DSN keeps the in-memory database alive
	// across the pooled connections gorm opens.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, role string) *domain.User {
	t.Helper()
	user := domain.User{
		ID:       common.UUIDint64(),
		Username: username,
		Password: "x",
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price string, stock int) *domain.Product {
	t.Helper()
	p := domain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return &p
}
