package http

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/pkg/assert"
	"livestream-pipeline/pkg/manager"
	"livestream-pipeline/pkg/restapi"
)

var (
	pipelineControllerOnce      sync.Once
	singletonPipelineController manager.Controller
)

type PipelineControllerPlugin struct{}

func (p *PipelineControllerPlugin) Name() string {
	return "pipelineControllerPlugin"
}

func (p *PipelineControllerPlugin) MustCreateController() manager.Controller {
	assert.NotCircular()
	pipelineControllerOnce.Do(func() {
		singletonPipelineController = NewPipelineController(app.DefaultPipelineApp(), app.DefaultStatsApp())
	})
	assert.NotNil(singletonPipelineController)
	return singletonPipelineController
}

type pipelineController struct {
	pipelineApp app.PipelineApp
	statsApp    app.StatsApp
}

func NewPipelineController(pipelineApp app.PipelineApp, statsApp app.StatsApp) manager.Controller {
	return &pipelineController{pipelineApp: pipelineApp, statsApp: statsApp}
}

func (p *pipelineController) RegisterRoutes(engine *gin.Engine) {
	// 手动触发，同步等待流程结束
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		engine.Handle(method, "/transcription", p.TriggerTranscription)
		engine.Handle(method, "/chapterization", p.TriggerChapterization)
	}

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/livestreams/:id/status", p.GetStatus)
		v1.GET("/livestreams/:id/chapters", p.ListChapters)
		v1.GET("/stats/:rootType/:rootId", p.GetRollup)
	}
}

// bindTrigger query 优先，POST 时再读 body
func bindTrigger(ctx *gin.Context) *cqe.TriggerCqe {
	var req cqe.TriggerCqe
	_ = ctx.ShouldBindQuery(&req)
	if req.LivestreamID == "" && ctx.Request.Method == http.MethodPost && ctx.Request.ContentLength != 0 {
		_ = ctx.ShouldBind(&req)
	}
	return &req
}

func (p *pipelineController) TriggerTranscription(ctx *gin.Context) {
	req := bindTrigger(ctx)
	if err := p.pipelineApp.TriggerTranscription(ctx.Request.Context(), req); err != nil {
		restapi.TriggerFailed(ctx, req.LivestreamID, err)
		return
	}
	restapi.TriggerSucceeded(ctx, restapi.TriggerResponse{
		Message:      "Transcription completed",
		LivestreamID: req.LivestreamID,
	})
}

func (p *pipelineController) TriggerChapterization(ctx *gin.Context) {
	req := bindTrigger(ctx)
	chapters, err := p.pipelineApp.TriggerChapterization(ctx.Request.Context(), req)
	if err != nil {
		restapi.TriggerFailed(ctx, req.LivestreamID, err)
		return
	}
	restapi.TriggerSucceeded(ctx, restapi.TriggerResponse{
		Message:      "Chapterization completed",
		LivestreamID: req.LivestreamID,
		Chapters:     chapters,
	})
}

func (p *pipelineController) GetStatus(ctx *gin.Context) {
	status, err := p.pipelineApp.GetStatus(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, status)
}

func (p *pipelineController) ListChapters(ctx *gin.Context) {
	chapters, err := p.pipelineApp.ListChapters(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, chapters)
}

func (p *pipelineController) GetRollup(ctx *gin.Context) {
	rollup, err := p.statsApp.GetRollup(ctx.Request.Context(), ctx.Param("rootType"), ctx.Param("rootId"))
	if err != nil {
		restapi.Failed(ctx, err)
		return
	}
	restapi.Success(ctx, rollup)
}
