package main // Entry point package

import (
	"context"       // context cancels the maintenance goroutine on shutdown
	"log"           // Logging library
	"os"            // directory bootstrap
	"path/filepath" // joining data sub-directories

	"github.com/joho/godotenv"    // loads .env into the environment before config runs
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/food-court-orders/internal/config"
	"github.com/iliyamo/food-court-orders/internal/handler"
	"github.com/iliyamo/food-court-orders/internal/repository"
	"github.com/iliyamo/food-court-orders/internal/router"
	"github.com/iliyamo/food-court-orders/internal/service"
)

func main() {
	_ = godotenv.Load() // a missing .env is fine; real env vars win anyway
	cfg := config.Load()
	rl := config.LoadRateLimitConfig()

	// The data layout is fixed: per-role credential tables, one JSON record
	// per store, one ledger per store. Create the skeleton up front so a
	// fresh deployment starts from empty directories instead of ENOENT.
	for _, dir := range []string{
		filepath.Join(cfg.UsersDir(), "client"),
		filepath.Join(cfg.UsersDir(), "seller"),
		cfg.StoresDir(),
		cfg.OrdersDir(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("creating %s: %v", dir, err)
		}
	}

	// One lock table serializes every per-store mutation, whether it lands
	// in the store record or the ledger.
	locks := repository.NewKeyedMutex()
	orders := repository.NewOrderRepo(cfg.OrdersDir(), locks)
	stores := repository.NewStoreRepo(cfg.StoresDir(), locks, orders)
	users := repository.NewUserRepo(cfg.UsersDir())

	placement := service.NewPlacement(stores, orders)
	status := service.NewStatus(orders)

	// Weekly ledger clear runs on its own ticker for the whole process
	// lifetime. It has no HTTP trigger.
	clearer := service.NewClearer(orders, cfg.ClearWeekday, cfg.ClearHour, cfg.ClearMinute)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go clearer.Run(ctx, cfg.ClearTick)

	e := echo.New()
	router.RegisterRoutes(e,
		handler.NewAuthHandler(cfg, users, stores),
		handler.NewStoreHandler(stores),
		handler.NewOrderHandler(stores, orders, placement, status),
		cfg.JWTSecret, rl)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, data=%s)", addr, cfg.Env, cfg.DataDir)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
