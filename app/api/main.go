package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gomodule/redigo/redis"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/x-xyz/marketplace/app/api/docs"
	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/database/mongoclient"
	"github.com/x-xyz/marketplace/base/database/redisclient"
	"github.com/x-xyz/marketplace/base/goroutine"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/base/metrics"
	bValidator "github.com/x-xyz/marketplace/base/validator"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	domainLedger "github.com/x-xyz/marketplace/domain/ledger"
	"github.com/x-xyz/marketplace/domain/listing"
	domainRegistrar "github.com/x-xyz/marketplace/domain/registrar"
	"github.com/x-xyz/marketplace/domain/settlement"
	"github.com/x-xyz/marketplace/domain/token"
	mmiddleware "github.com/x-xyz/marketplace/middleware"
	"github.com/x-xyz/marketplace/service/cache"
	"github.com/x-xyz/marketplace/service/cache/provider"
	"github.com/x-xyz/marketplace/service/cache/provider/compound"
	"github.com/x-xyz/marketplace/service/cache/provider/primitive"
	cacheRedis "github.com/x-xyz/marketplace/service/cache/provider/redis"
	"github.com/x-xyz/marketplace/service/chain"
	"github.com/x-xyz/marketplace/service/chain/contract"
	"github.com/x-xyz/marketplace/service/erc721"
	"github.com/x-xyz/marketplace/service/ledger"
	"github.com/x-xyz/marketplace/service/query"
	"github.com/x-xyz/marketplace/service/registrar"
	auth_delivery "github.com/x-xyz/marketplace/stores/auth/delivery/http"
	auth_middleware "github.com/x-xyz/marketplace/stores/auth/delivery/http/middleware"
	auth_usecase "github.com/x-xyz/marketplace/stores/auth/usecase"
	collection_delivery "github.com/x-xyz/marketplace/stores/collection/delivery/http"
	collection_repository "github.com/x-xyz/marketplace/stores/collection/repository"
	collection_usecase "github.com/x-xyz/marketplace/stores/collection/usecase"
	hc_delivery "github.com/x-xyz/marketplace/stores/healthcheck/delivery/http"
	hc_repo "github.com/x-xyz/marketplace/stores/healthcheck/repository"
	hc_usecase "github.com/x-xyz/marketplace/stores/healthcheck/usecase"
	listing_delivery "github.com/x-xyz/marketplace/stores/listing/delivery/http"
	listing_repository "github.com/x-xyz/marketplace/stores/listing/repository"
	listing_usecase "github.com/x-xyz/marketplace/stores/listing/usecase"
	settlement_repository "github.com/x-xyz/marketplace/stores/settlement/repository"
)

func init() {
	pflag.String("config", "infra/configs/config.yaml", "config file")
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)

	viper.SetConfigType("yaml")
	viper.SetConfigFile(viper.GetString("config"))
	err := viper.ReadInConfig()
	if err != nil {
		panic(err)
	}

	if viper.GetBool(`debug`) {
		log.SetDebug(true)
		log.Log().Info("Service RUN on DEBUG mode")
	}
}

func mustEther(key string) domain.Amount {
	a, err := domain.ParseEther(viper.GetString(key))
	if err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key}).Panic("invalid ether config")
	}
	return a
}

func marketplaceConfig() listing.Config {
	return listing.Config{
		Escrow:              domain.Address(viper.GetString("marketplace.escrow")).ToLower(),
		FeeRecipient:        domain.Address(viper.GetString("marketplace.feeRecipient")).ToLower(),
		PlatformFee:         mustEther("marketplace.platformFee").BigInt(),
		MinimumDuration:     viper.GetDuration("marketplace.minimumDuration"),
		MinimalListingValue: mustEther("marketplace.minimalListingValue").BigInt(),
		AuctionStep:         mustEther("marketplace.auctionStep").BigInt(),
	}
}

func mustConnectRedis() *redis.Pool {
	return redisclient.MustConnect(redisclient.Config{
		URI:            viper.GetString("redis.uri"),
		Password:       viper.GetString("redis.password"),
		PoolMultiplier: viper.GetFloat64("redis.poolMultiplier"),
		Retries:        3,
	})
}

// nonceProvider is redis only when shared, a local copy could let a nonce
// consumed on another replica be replayed here
func nonceProvider(pool *redis.Pool) provider.Provider {
	if pool == nil {
		return primitive.NewPrimitive("nonce", 8)
	}
	return cacheRedis.NewRedis(pool, viper.GetString("cache.redisPrefix"))
}

func httpCacheProvider(pool *redis.Pool) provider.Provider {
	local := primitive.NewPrimitive("httpCacheMiddleware", 64)
	if pool == nil {
		return local
	}
	return compound.NewCompound(local, cacheRedis.NewRedis(pool, viper.GetString("cache.redisPrefix")))
}

// @title			Marketplace API
// @version		1.0
// @description	Listings, auctions and settlement for erc721 collections.
//
// @securityDefinitions.apikey	ApiKeyAuth
// @in							header
// @name						Authorization
// @description				retrieve token from #/auth/post_auth_sign and apply with `bearer {token}`
func main() {
	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{}))
	e.Use(middleware.RequestID())
	middL := mmiddleware.InitMiddleware()
	e.Use(middL.AddContext())
	e.Use(middL.ResponseLogger())
	e.Use(middleware.CORS())
	e.Validator = bValidator.NewCustomValidator(bValidator.New())

	context := ctx.Background()
	clk := clock.New()
	cfg := marketplaceConfig()

	var (
		mongoClient    *mongoclient.Client
		redisPool      *redis.Pool
		listingRepo    listing.Repo
		collectionRepo collection.Repo
		settlementRepo settlement.Repo
	)

	var cachePool *redis.Pool
	switch backend := viper.GetString("cache.backend"); backend {
	case "redis":
		redisPool = mustConnectRedis()
		cachePool = redisPool
	case "local", "":
	default:
		panic(fmt.Sprintf("unknown cache backend %q", backend))
	}

	switch store := viper.GetString("store"); store {
	case "mongo":
		context.Info("init mongo")
		mongoClient = mongoclient.MustConnect(mongoclient.Config{
			URI:            viper.GetString("mongo.uri"),
			AuthDB:         viper.GetString("mongo.authDBName"),
			DB:             viper.GetString("mongo.dbName"),
			TLS:            viper.GetBool("mongo.enableSSL"),
			Majority:       true,
			PoolMultiplier: 2,
		})
		q := query.New(mongoClient, metrics.New("query"), viper.GetBool("mongo.checkIndex"))
		for _, ensure := range []func(ctx.Ctx, query.Mongo) error{
			listing_repository.EnsureIndexes,
			collection_repository.EnsureIndexes,
			settlement_repository.EnsureIndexes,
		} {
			if err := ensure(context, q); err != nil {
				context.WithField("err", err).Panic("EnsureIndexes failed")
			}
		}
		listingRepo = listing_repository.NewListing(q)
		collectionRepo = collection_repository.NewCollection(q)
		settlementRepo = settlement_repository.NewSettlement(q)
	case "memory", "":
		listingRepo = listing_repository.NewMemory()
		collectionRepo = collection_repository.NewMemory()
		settlementRepo = settlement_repository.NewMemory()
	default:
		panic(fmt.Sprintf("unknown store %q", store))
	}

	// value ledger, deposits seed local balances
	var (
		led     domainLedger.Ledger
		deposit func(ctx.Ctx, domain.Address, domain.Amount) error
	)
	switch backend := viper.GetString("ledger.backend"); backend {
	case "redis":
		context.Info("init redis ledger")
		if redisPool == nil {
			redisPool = mustConnectRedis()
		}
		r := ledger.NewRedis(&ledger.RedisCfg{
			Pool:    redisPool,
			Prefix:  viper.GetString("ledger.prefix"),
			Metrics: metrics.New("ledger"),
		})
		led = r
		deposit = func(c ctx.Ctx, a domain.Address, v domain.Amount) error { return r.Deposit(c, a, v.BigInt()) }
	case "memory", "":
		m := ledger.NewMemory()
		led = m
		deposit = func(c ctx.Ctx, a domain.Address, v domain.Amount) error { return m.Deposit(c, a, v.BigInt()) }
	default:
		panic(fmt.Sprintf("unknown ledger backend %q", backend))
	}
	for addr := range viper.GetStringMapString("ledger.deposits") {
		if err := deposit(context, domain.Address(addr), mustEther("ledger.deposits."+addr)); err != nil {
			context.WithFields(log.Fields{"err": err, "address": addr}).Panic("deposit failed")
		}
	}

	// chain, optional
	chainId := viper.GetInt32("chain.chainId")
	var chainClient chain.Client
	if rpcUrl := viper.GetString("chain.rpcUrl"); rpcUrl != "" {
		c, err := chain.NewClient(context, &chain.ClientCfg{
			RpcUrls:            map[int32]string{chainId: rpcUrl},
			MaxConcurrentCalls: viper.GetInt("chain.maxConcurrentCalls"),
		})
		if err != nil {
			context.WithField("err", err).Warn("chain client started with error")
		}
		chainClient = c
	}

	var reg domainRegistrar.Registrar
	switch backend := viper.GetString("registrar.backend"); backend {
	case "chain":
		if chainClient == nil {
			panic("registrar backend chain needs chain.rpcUrl")
		}
		reg = registrar.NewChain(chainClient, chainId, domain.Address(viper.GetString("registrar.address")), metrics.New("registrar"))
	case "allowlist", "":
		allow := registrar.NewAllowList()
		grants := []struct {
			Name    string
			Holders []string
		}{}
		if err := viper.UnmarshalKey("registrar.allowList", &grants); err != nil {
			context.WithField("err", err).Panic("invalid registrar.allowList")
		}
		for _, g := range grants {
			for _, h := range g.Holders {
				if err := allow.Grant(g.Name, domain.Address(h)); err != nil {
					context.WithFields(log.Fields{"err": err, "name": g.Name}).Panic("allowList.Grant failed")
				}
			}
		}
		reg = allow
	default:
		panic(fmt.Sprintf("unknown registrar backend %q", backend))
	}

	// imported contracts are mirrored from chain, without one only contracts
	// deployed in process resolve
	dir := erc721.NewDirectory()
	checkers := []token.InterfaceChecker{dir}
	if chainClient != nil {
		erc := contract.NewErc721(chainClient, chainId)
		dir.MirrorFrom(erc)
		checkers = []token.InterfaceChecker{erc}
	}

	collectionUC := collection_usecase.NewCollection(&collection_usecase.CollectionUseCaseCfg{
		CollectionRepo:    collectionRepo,
		Factory:           erc721.NewFactory(domain.Address(viper.GetString("marketplace.factory")), cfg.Escrow, dir),
		Directory:         dir,
		Tracker:           dir,
		InterfaceCheckers: checkers,
		Cache: cache.New(cache.ServiceConfig{
			Pfx:   "collection",
			Cache: primitive.NewPrimitive("collection", 16),
		}),
		Clock: clk,
	})
	listingUC := listing_usecase.New(&listing_usecase.ListingUseCaseCfg{
		Config:         cfg,
		ListingRepo:    listingRepo,
		SettlementRepo: settlementRepo,
		CollectionUC:   collectionUC,
		Registrar:      reg,
		Ledger:         led,
		Clock:          clk,
		Metrics:        metrics.New("listing"),
	})
	auth := auth_usecase.New(&auth_usecase.AuthUseCaseCfg{
		JwtSecret:          viper.GetString("auth.jwtSecret"),
		SigningMsgTemplate: viper.GetString("auth.signatureMsg"),
		Nonces: cache.New(cache.ServiceConfig{
			Ttl:   viper.GetDuration("auth.nonceTtl"),
			Pfx:   "nonce",
			Cache: nonceProvider(cachePool),
		}),
		Clock:    clk,
		TokenTtl: viper.GetDuration("auth.tokenTtl"),
	})
	hc := hc_usecase.New(viper.GetDuration("health.timeout"), hc_repo.Pingers(mongoClient, redisPool, led, cfg.Escrow)...)

	httpCache := cache.New(cache.ServiceConfig{
		Ttl:   viper.GetDuration("http.cacheTtl"),
		Pfx:   "httpCacheMiddleware",
		Cache: httpCacheProvider(cachePool),
	})

	authMiddleware := auth_middleware.New(auth)

	hc_delivery.New(e, hc)
	auth_delivery.New(e, auth)
	collection_delivery.New(e, collectionUC, authMiddleware, httpCache)
	listing_delivery.New(e, listingUC, authMiddleware, clk)

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	keeperCtx, stopKeeper := ctx.WithCancel(context)
	defer stopKeeper()
	if viper.GetBool("keeper.enabled") {
		keeper := listing_usecase.NewKeeper(&listing_usecase.KeeperCfg{
			Listing:  listingUC,
			Operator: cfg.Escrow,
			Interval: viper.GetDuration("keeper.interval"),
			Workers:  viper.GetInt("keeper.workers"),
			Clock:    clk,
			Metrics:  metrics.New("listing"),
		})
		goroutine.RecoverableGo(func() { keeper.Run(keeperCtx) }, goroutine.WithName("keeper"))
	}

	go func() {
		if err := e.Start(viper.GetString("server.address")); err != nil && err != http.ErrServerClosed {
			log.Log().WithField("err", err).Error("shutting down the server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 10 seconds.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	sig := <-quit
	log.Log().WithField("signal", sig).Info("received signal")
	stopKeeper()
	ctx, cancel := ctx.WithTimeout(context, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Log().WithField("err", err).Error("shutting down the server")
	} else {
		log.Log().Info("shutdown server successfully")
	}
}
