package db

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewMySQL returns a connected GORM DB instance. SQL is logged at warn level
// only.
func NewMySQL(dsn string, log *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.New(
		zap.NewStdLog(log.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))),
		logger.Config{LogLevel: logger.Warn, IgnoreRecordNotFoundError: true},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("connect mysql: %w", err)
	}
	return db, nil
}
