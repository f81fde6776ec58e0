package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"unisphere/config"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Provider 进程级数据库连接池
// 首次 Get 时初始化，之后复用同一个 *gorm.DB；由 main 创建并注入各仓储
type Provider struct {
	cfg       config.DatabaseConfig
	dialector gorm.Dialector

	once sync.Once
	db   *gorm.DB
	err  error
}

// NewProvider 创建 MySQL 连接池提供者（此时不建立连接）
func NewProvider(cfg config.DatabaseConfig) *Provider {
	return &Provider{cfg: cfg, dialector: mysql.Open(cfg.DSN())}
}

// NewProviderWithDialector 使用自定义方言创建提供者（测试中接入 sqlite/sqlmock）
func NewProviderWithDialector(cfg config.DatabaseConfig, dialector gorm.Dialector) *Provider {
	return &Provider{cfg: cfg, dialector: dialector}
}

// Get 获取数据库实例，只初始化一次；初始化失败后持续返回同一错误
func (p *Provider) Get() (*gorm.DB, error) {
	p.once.Do(func() {
		p.db, p.err = open(p.cfg, p.dialector)
	})
	return p.db, p.err
}

func open(cfg config.DatabaseConfig, dialector gorm.Dialector) (*gorm.DB, error) {
	logLevel := logger.Warn
	if cfg.LogSQL {
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),

		// 禁用默认事务（提高性能）
		SkipDefaultTransaction: true,

		// 把唯一索引冲突翻译为 gorm.ErrDuplicatedKey
		TranslateError: true,

		NamingStrategy: schema.NamingStrategy{
			SingularTable: true,
		},
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取数据库实例失败: %w", err)
	}

	// 固定上限的连接池，超出的调用方在 database/sql 内排队等待
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}

	return db, nil
}

// Close 关闭数据库连接（未初始化时为空操作）
func (p *Provider) Close() error {
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库实例失败: %w", err)
	}
	return sqlDB.Close()
}

// HealthCheck 数据库健康检查
func (p *Provider) HealthCheck(ctx context.Context) error {
	db, err := p.Get()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("获取数据库实例失败: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// AutoMigrate 自动迁移数据库表结构
func (p *Provider) AutoMigrate(models ...interface{}) error {
	db, err := p.Get()
	if err != nil {
		return err
	}
	return db.AutoMigrate(models...)
}

// IsDuplicateKey 判断是否为唯一索引冲突
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysqldriver.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// RandomOrder 返回当前方言的随机排序表达式
func RandomOrder(db *gorm.DB) string {
	if db.Dialector.Name() == "mysql" {
		return "RAND()"
	}
	return "RANDOM()"
}
