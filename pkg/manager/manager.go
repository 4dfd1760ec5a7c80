package manager

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"livestream-pipeline/pkg/config"
	"livestream-pipeline/pkg/logger"
)

// Resource 需要显式打开/关闭的外部资源（数据库、缓存、对象存储、消息队列）
type Resource interface {
	MustOpen()
	Close()
}

type ResourcePlugin interface {
	Name() string
	MustCreateResource() Resource
}

// Component 随服务启动的后台组件
type Component interface {
	Start() error
	Stop() error
	GetName() string
}

type ComponentPlugin interface {
	Name() string
	MustCreateComponent(deps *Dependencies) Component
}

// Controller 注册 HTTP 路由
type Controller interface {
	RegisterRoutes(engine *gin.Engine)
}

type ControllerPlugin interface {
	Name() string
	MustCreateController() Controller
}

// Dependencies 依赖注入容器
type Dependencies struct {
	DB     *gorm.DB
	Config *config.Config
}

var (
	mu                sync.Mutex
	resourcePlugins   []ResourcePlugin
	componentPlugins  []ComponentPlugin
	controllerPlugins []ControllerPlugin

	openedResources   []Resource
	startedComponents []Component
)

func RegisterResourcePlugin(p ResourcePlugin) {
	mu.Lock()
	defer mu.Unlock()
	resourcePlugins = append(resourcePlugins, p)
}

func RegisterComponentPlugin(p ComponentPlugin) {
	mu.Lock()
	defer mu.Unlock()
	componentPlugins = append(componentPlugins, p)
}

func RegisterControllerPlugin(p ControllerPlugin) {
	mu.Lock()
	defer mu.Unlock()
	controllerPlugins = append(controllerPlugins, p)
}

// MustInitResources 按注册顺序打开所有资源
func MustInitResources() {
	mu.Lock()
	plugins := append([]ResourcePlugin(nil), resourcePlugins...)
	mu.Unlock()

	for _, p := range plugins {
		r := p.MustCreateResource()
		r.MustOpen()
		mu.Lock()
		openedResources = append(openedResources, r)
		mu.Unlock()
		logger.Infof("Resource opened name=%s", p.Name())
	}
}

// CloseResources 逆序关闭资源
func CloseResources() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(openedResources) - 1; i >= 0; i-- {
		openedResources[i].Close()
	}
	openedResources = nil
}

// MustInitComponents 创建并启动所有组件
func MustInitComponents(deps *Dependencies) {
	mu.Lock()
	plugins := append([]ComponentPlugin(nil), componentPlugins...)
	mu.Unlock()

	for _, p := range plugins {
		c := p.MustCreateComponent(deps)
		if c == nil {
			continue
		}
		if err := c.Start(); err != nil {
			panic(fmt.Sprintf("failed to start component %s: %v", p.Name(), err))
		}
		mu.Lock()
		startedComponents = append(startedComponents, c)
		mu.Unlock()
		logger.Infof("Component started name=%s", c.GetName())
	}
}

// RegisterAllRoutes 注册所有控制器路由
func RegisterAllRoutes(engine *gin.Engine) {
	mu.Lock()
	plugins := append([]ControllerPlugin(nil), controllerPlugins...)
	mu.Unlock()

	for _, p := range plugins {
		p.MustCreateController().RegisterRoutes(engine)
		logger.Debug("Controller routes registered", map[string]interface{}{"controller": p.Name()})
	}
}

// Shutdown 逆序停止组件
func Shutdown() {
	mu.Lock()
	defer mu.Unlock()
	for i := len(startedComponents) - 1; i >= 0; i-- {
		c := startedComponents[i]
		if err := c.Stop(); err != nil {
			logger.Warnf("Component stop failed name=%s error=%v", c.GetName(), err)
		}
	}
	startedComponents = nil
}
