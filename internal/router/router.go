package router

import (
	"github.com/elikita/backend/config"
	"github.com/elikita/backend/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func Setup(
	cfg *config.Config,
	consultationHandler *handler.ConsultationHandler,
	chatHandler *handler.ChatHandler,
	configHandler *handler.ConfigHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	api := r.Group("/api")
	{
		consult := api.Group("/consultation")
		{
			consult.GET("", consultationHandler.GetView)
			consult.PUT("/sections/:key", consultationHandler.SetSection)
			consult.POST("/sections/:key/suggest", consultationHandler.Suggest)
			consult.POST("/sections/:key/voice", consultationHandler.VoiceInput)
			consult.POST("/sections/:key/speak", consultationHandler.Speak)
			consult.POST("/suggestions/apply-all", consultationHandler.SuggestAll)
			consult.POST("/analysis", consultationHandler.Analyze)
			consult.POST("/language", consultationHandler.ChangeLanguage)
			consult.POST("/precheck/:id/toggle", consultationHandler.TogglePrecheck)
		}

		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("/sessions", chatHandler.NewSession)
			chatGroup.GET("/sessions", chatHandler.ListSessions)
			chatGroup.GET("/sessions/:id/messages", chatHandler.LoadSession)
			chatGroup.POST("/messages", chatHandler.SendMessage)
		}

		api.GET("/config", configHandler.Get)
		api.POST("/config/ai", configHandler.SetAI)
	}

	return r
}
