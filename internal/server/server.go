package server

import (
	"log"
	"time"

	"github.com/iceymoss/news-hub/internal/conf"
	"github.com/iceymoss/news-hub/internal/gnews"
	"github.com/iceymoss/news-hub/internal/handler"
	"github.com/iceymoss/news-hub/internal/recommend"
	"github.com/iceymoss/news-hub/internal/scheduler"
	"github.com/iceymoss/news-hub/internal/store"
	"github.com/iceymoss/news-hub/internal/trend"
	"github.com/iceymoss/news-hub/internal/trendcache"
	pkgconf "github.com/iceymoss/news-hub/pkg/config"
	"github.com/iceymoss/news-hub/pkg/db"

	"github.com/gin-gonic/gin"
)

type Server struct {
	engine    *gin.Engine
	scheduler *scheduler.Scheduler
}

func NewServer(cfg *conf.Config) *Server {
	database := db.GetDatabase()

	articles := store.NewArticleRepo(database, db.CollArticles)
	stats := store.NewStatsRepo(database, db.CollArticleStats)
	users := store.NewUserRepo(database, db.CollUsers)

	recorder := trend.NewRecorder(stats)
	syncer := trend.NewSyncer(articles, stats)
	reaper := trend.NewReaper(articles, stats)
	recommender := recommend.NewRecommender(articles, users)

	news := gnews.NewClient(pkgconf.ServiceConf.GNews.APIKey, pkgconf.ServiceConf.GNews.BaseURL)
	cache := trendcache.New(db.GetRedisConn(), time.Duration(cfg.Cache.TrendingTTLSeconds)*time.Second)

	sched := newScheduler(cfg, syncer, reaper)

	articleHandler := handler.NewArticleHandler(articles, users, news, syncer, recommender)
	statsHandler := handler.NewStatsHandler(recorder, syncer, stats, articles, cache)

	router := gin.Default()

	api := router.Group("/api")
	{
		api.GET("/fetch-news", articleHandler.FetchAndSaveNews)
		api.GET("/articles", articleHandler.ListArticles)
		api.POST("/articles/:id/like", articleHandler.LikeArticle)
		api.POST("/articles/:id/unlike", articleHandler.UnlikeArticle)
		api.POST("/sources/:name/follow", articleHandler.FollowSource)
		api.POST("/sources/:name/unfollow", articleHandler.UnfollowSource)
		api.GET("/recommended-articles", articleHandler.RecommendedArticles)
		api.GET("/users/:id", articleHandler.GetUserData)
		api.GET("/check-category", articleHandler.CheckCategory)
		api.GET("/search-news", articleHandler.SearchNews)
		api.GET("/search-local", articleHandler.SearchLocal)
		api.POST("/save-article", articleHandler.SaveArticle)

		api.POST("/articles/:id/view", statsHandler.ViewArticle)
		api.GET("/articles/:id/stats", statsHandler.GetArticleStats)
		api.GET("/trending", statsHandler.GetTrending)
		api.GET("/sync-likes", statsHandler.SyncLikes)

		// 调度器状态与手动触发
		api.GET("/jobs", func(c *gin.Context) {
			c.JSON(200, gin.H{"data": sched.Stats.GetAll()})
		})
		api.POST("/jobs/:name/run", func(c *gin.Context) {
			if err := sched.ManualRun(c.Param("name")); err != nil {
				c.JSON(400, gin.H{"error": err.Error()})
				return
			}
			c.JSON(200, gin.H{"message": "Triggered"})
		})
	}

	return &Server{engine: router, scheduler: sched}
}

// newScheduler 注册三个周期任务；启动后延迟首跑一轮
// 点赞同步和热度刷新，给存储连接留出建立时间
func newScheduler(cfg *conf.Config, syncer *trend.Syncer, reaper *trend.Reaper) *scheduler.Scheduler {
	sched := scheduler.New(time.Duration(cfg.Jobs.StartupDelaySeconds) * time.Second)

	register(sched, &scheduler.Job{
		Name: "trending:refresh",
		Cron: cfg.Jobs.TrendingCron,
		Run:  syncer.RefreshScores,
	})
	register(sched, &scheduler.Job{
		Name: "likes:sync",
		Cron: cfg.Jobs.SyncLikesCron,
		Run:  syncer.SyncAll,
	})
	register(sched, &scheduler.Job{
		Name: "stats:cleanup",
		Cron: cfg.Jobs.CleanupCron,
		Run:  reaper.Reap,
	})

	sched.RunAtStartup("likes:sync", "trending:refresh")
	return sched
}

func register(sched *scheduler.Scheduler, job *scheduler.Job) {
	if err := sched.AddJob(job); err != nil {
		log.Printf("⚠️ Failed to schedule %s: %v", job.Name, err)
	} else {
		log.Printf("✅ Job scheduled: %s [%s]", job.Name, job.Cron)
	}
}

func (s *Server) Run(addr string) error {
	// 启动任务调度器
	s.scheduler.Start()

	// 启动 web server
	return s.engine.Run(addr)
}

func (s *Server) Shutdown() {
	s.scheduler.Stop()
}
