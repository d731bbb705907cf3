package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// 지원하는 DB 드라이버
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// OpenConfig: DB 연결 설정
type OpenConfig struct {
	Driver     string
	DSN        string
	MaxOpen    int
	MaxIdle    int
	MaxLifeSec int
}

// Open: 드라이버에 맞는 GORM 연결을 열고 풀을 설정한 뒤 Ping 한다.
func Open(ctx context.Context, cfg OpenConfig) (*gorm.DB, *sql.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, nil, fmt.Errorf("unsupported db driver: %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open %s failed: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("get sql db failed: %w", err)
	}
	if cfg.Driver == DriverSQLite {
		// 단일 커넥션이어야 in-memory DB 가 공유되고 쓰기 잠금 충돌이 없다
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpen > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpen)
		}
		if cfg.MaxIdle > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdle)
		}
		if cfg.MaxLifeSec > 0 {
			sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifeSec) * time.Second)
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("ping %s failed: %w", cfg.Driver, err)
	}
	return db, sqlDB, nil
}
