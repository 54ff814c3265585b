package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/elikita/backend/config"
	"github.com/elikita/backend/internal/chat"
	"github.com/elikita/backend/internal/consultation"
	"github.com/elikita/backend/internal/eventbus"
	"github.com/elikita/backend/internal/handler"
	"github.com/elikita/backend/internal/pkg/database"
	"github.com/elikita/backend/internal/pkg/llm"
	"github.com/elikita/backend/internal/repository"
	"github.com/elikita/backend/internal/router"
	"github.com/elikita/backend/internal/service"
)

func main() {
	// 初始化 klog
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	klog.V(6).Info("服务启动中...")

	cfg := config.GetConfig()

	if cfg.Database.Type != "mysql" {
		if err := os.MkdirAll(filepath.Dir(cfg.Database.DSN), 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	// 初始化数据库
	db, err := database.InitDB(cfg.Database.Type, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化 Repository
	convRepo := repository.NewConversationRepository(db)

	// 初始化外部协作方
	llmClient := llm.NewClient(cfg)
	suggestionService := service.NewSuggestionService(llmClient)
	analysisService := service.NewAnalysisService(cfg, llmClient)
	translatorService := service.NewTranslatorService(cfg)

	agentService, err := service.NewAgentService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize agent service: %v", err)
	}

	// 初始化问诊核心：Store、覆盖层、协调器
	store := consultation.NewStore(consultation.DefaultPatient())
	overlay := consultation.NewOverlay()
	resolver := consultation.NewResolver(store, overlay)

	consultationService := service.NewConsultationService(
		store,
		resolver,
		&consultation.StaticTranscriber{Transcript: "[Voice input transcription]"},
		&consultation.NoopSynthesizer{},
		cfg.LLM.Enabled,
	)

	bus := eventbus.NewBus()
	registerTaskNoticeLogger(bus)

	coordinator := consultation.NewCoordinator(
		store,
		overlay,
		suggestionService,
		analysisService,
		translatorService,
		consultationService.AIEnabled,
		bus,
	)
	consultationService.SetCoordinator(coordinator)
	defer consultationService.Close()

	// 初始化聊天会话管理器
	conversationStore := service.NewConversationStore(convRepo)
	chatManager := chat.NewManager(cfg.Chat.UserID, agentService, conversationStore)
	if err := chatManager.RefreshSessions(); err != nil {
		klog.V(6).Infof("启动时会话列表加载失败: %v", err)
	}

	// 初始化 Handler
	consultationHandler := handler.NewConsultationHandler(consultationService)
	chatHandler := handler.NewChatHandler(chatManager)
	configHandler := handler.NewConfigHandler(cfg, consultationService)

	// 设置路由
	r := router.Setup(cfg, consultationHandler, chatHandler, configHandler)

	log.Printf("Server starting on port %s...", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// registerTaskNoticeLogger 把任务状态事件落到日志，作为用户可见通知的出口
func registerTaskNoticeLogger(bus *eventbus.Bus) {
	bus.Subscribe(eventbus.TaskEventDone, func(ctx context.Context, event eventbus.TaskEvent) error {
		klog.V(6).Infof("任务完成: kind=%s, key=%s", event.Kind, event.Key)
		return nil
	})
	bus.Subscribe(eventbus.TaskEventFailed, func(ctx context.Context, event eventbus.TaskEvent) error {
		klog.Errorf("任务失败: kind=%s, key=%s, reason=%s", event.Kind, event.Key, event.Reason)
		return nil
	})
}
