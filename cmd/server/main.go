package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/bus"
	"github.com/iliyamo/auction-bin-tracker/internal/config"
	"github.com/iliyamo/auction-bin-tracker/internal/database"
	"github.com/iliyamo/auction-bin-tracker/internal/handler"
	"github.com/iliyamo/auction-bin-tracker/internal/history"
	"github.com/iliyamo/auction-bin-tracker/internal/middleware"
	"github.com/iliyamo/auction-bin-tracker/internal/model"
	"github.com/iliyamo/auction-bin-tracker/internal/queue"
	"github.com/iliyamo/auction-bin-tracker/internal/repository"
	"github.com/iliyamo/auction-bin-tracker/internal/router"
	notifier "github.com/iliyamo/auction-bin-tracker/internal/service"
	"github.com/iliyamo/auction-bin-tracker/internal/show"
	"github.com/iliyamo/auction-bin-tracker/internal/ws"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the vars directly

	cfg := config.Load()
	tierBins := config.LoadTierBins()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	subs := repository.NewSubscriptionRepo(db)

	tier, maxBins := bootTier(cfg, subs, tierBins)
	eng := show.NewEngine(show.Options{Tier: tier, MaxBins: maxBins})
	log.Printf("show engine ready (tier=%s, max_bins=%d)", tier, maxBins)

	// state-change fan-out: the engine's refresh hook runs synchronously,
	// every sink gets its own goroutine per event
	b := bus.New(eng.Refresh)

	hub := ws.NewHub(eng.Latest)
	go hub.Run()
	b.Attach(hub)

	if cfg.ChatWebhookURL != "" {
		b.Attach(notifier.New(queue.BrokerURL()))
		go queue.StartNotificationConsumer(cfg.ChatWebhookURL)
	} else {
		log.Printf("CHAT_WEBHOOK_URL not set; chat notifications disabled")
	}

	eng.AttachBus(b)

	store := history.NewStore(cfg.LogDir)

	e := echo.New()

	// redis-backed rate limiting and response caching; both degrade to
	// no-ops when redis is unreachable
	rdb := config.NewRedisClient()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	latest := handler.NewLatestHandler(eng, hub)
	router.RegisterRoutes(e, latest)
	auth := handler.NewAuthHandler(cfg, users, tokens)
	router.RegisterAuth(e, auth)
	router.RegisterShow(e, router.ShowDeps{
		Auth:          auth,
		Transactions:  handler.NewTransactionHandler(eng),
		Views:         handler.NewViewHandler(eng),
		Stats:         handler.NewStatsHandler(eng),
		Show:          handler.NewShowHandler(eng, store),
		Subscription:  handler.NewSubscriptionHandler(eng, subs, tierBins),
		Announcements: handler.NewAnnouncementHandler(eng, cfg.GiveawayAnnouncement, cfg.TopBuyerShoutout),
	}, cfg.JWTSecret, cacheMW)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

// bootTier restores the tier from the subscriptions table so a paid
// upgrade survives a restart.  With no stored row the configured default
// applies.  Unknown tier names are fatal; a typo here would silently run
// the show on the wrong bin quota.
func bootTier(cfg config.Config, subs *repository.SubscriptionRepo, tierBins map[model.Tier]int) (model.Tier, int) {
	tier, ok := model.ParseTier(cfg.Tier)
	if !ok {
		log.Fatalf("invalid SUBSCRIPTION_TIER: %q", cfg.Tier)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if sub, err := subs.GetAny(ctx); err == nil {
		tier = sub.Tier
	} else if err != repository.ErrNotFound {
		log.Printf("subscription restore failed, using %s: %v", tier, err)
	}

	maxBins, ok := tierBins[tier]
	if !ok {
		log.Fatalf("no bin quota configured for tier %s", tier)
	}
	return tier, maxBins
}
