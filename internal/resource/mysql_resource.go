package resource

import (
	"sync"

	"gorm.io/gorm"

	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/logger"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/repository"
)

var (
	mysqlResourceOnce      sync.Once
	singletonMysqlResource *MysqlResource
)

// MysqlResource 主库连接
type MysqlResource struct {
	db *repository.Database
}

func DefaultMysqlResource() *MysqlResource {
	assert.NotCircular()
	mysqlResourceOnce.Do(func() {
		singletonMysqlResource = &MysqlResource{}
	})
	assert.NotNil(singletonMysqlResource)
	return singletonMysqlResource
}

func (r *MysqlResource) MustOpen() {
	if r.db != nil {
		return
	}
	cfg := config.GetGlobalConfig()
	if cfg == nil {
		panic("global config not initialized before MysqlResource")
	}
	db, err := repository.NewDatabase(&cfg.Database)
	if err != nil {
		panic("failed to connect mysql: " + err.Error())
	}
	r.db = db
	logger.Info("MySQL resource initialized", map[string]interface{}{
		"host":     cfg.Database.Host,
		"database": cfg.Database.Database,
	})
}

// MainDB 未打开时 panic，避免 DAO 拿到 nil 连接
func (r *MysqlResource) MainDB() *gorm.DB {
	if r.db == nil || r.db.Self == nil {
		panic("mysql resource is not opened")
	}
	return r.db.Self
}

func (r *MysqlResource) Close() {
	r.db.Close()
	r.db = nil
}

type MySqlResourcePlugin struct{}

func (p *MySqlResourcePlugin) Name() string {
	return "mysqlResource"
}

func (p *MySqlResourcePlugin) MustCreateResource() manager.Resource {
	return DefaultMysqlResource()
}
