package app

import (
	"context"

	"livestream-pipeline/ddd/adapter/component"
	httpAdapter "livestream-pipeline/ddd/adapter/http"
	appsvc "livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/infrastructure/worker"
	"livestream-pipeline/pkg/manager"
)

// registerPlugins 控制器与后台组件，资源插件在 internal/resource 的 init 中注册
func registerPlugins() {
	manager.RegisterControllerPlugin(&httpAdapter.PipelineControllerPlugin{})

	manager.RegisterComponentPlugin(&component.TranscriptFinalizedConsumerPlugin{})
	manager.RegisterComponentPlugin(&component.UserLivestreamConsumerPlugin{})
	manager.RegisterComponentPlugin(&worker.BatchSchedulerPlugin{NewRunner: batchRunner})
}

func batchRunner() worker.BatchRunFunc {
	batchApp := appsvc.DefaultBatchTranscriptionApp()
	return func(ctx context.Context) error {
		_, err := batchApp.RunBatch(ctx)
		return err
	}
}
