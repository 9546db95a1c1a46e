package server

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	valkey "github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/reputrace/social-link/platforms"
	"github.com/reputrace/social-link/store"
)

// Server wires the link service and its collaborators behind the HTTP API.
type Server struct {
	Config   *AppConfig
	Registry *platforms.Registry
	Builder  *platforms.AuthorizeURLBuilder
	Links    *platforms.LinkService
	Accounts platforms.AccountStore
}

// NewServer constructs a fully wired server from configuration. Valkey-backed
// collaborators are attached only when an address is configured.
func NewServer(cfg *AppConfig) (*Server, error) {
	registry := platforms.NewRegistry(cfg.BaseURL, cfg.PlatformCredentials())
	for id, ep := range cfg.Endpoints {
		if err := registry.Override(id, ep.AuthorizeURL, ep.TokenURL, ep.ProfileURL); err != nil {
			return nil, fmt.Errorf("endpoint override for %s: %w", id, err)
		}
	}

	states := &platforms.StateCodec{
		SigningKey: []byte(cfg.StateSigningKey),
		MaxAge:     cfg.StateTTL(),
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sealingKey, err := cfg.SealingKey()
	if err != nil {
		return nil, fmt.Errorf("decode token sealing key: %w", err)
	}
	cipher := store.NoopTokenCipher()
	if len(sealingKey) > 0 {
		if cipher, err = store.NewTokenCipher(sealingKey); err != nil {
			return nil, fmt.Errorf("token cipher: %w", err)
		}
	}
	accounts := store.NewSealedLinkedAccountStore(db, cipher)

	links := &platforms.LinkService{
		States:   states,
		Exchange: platforms.NewExchanger(registry, cfg.HTTPTimeout()),
		Profiles: platforms.NewFetcher(registry, cfg.HTTPTimeout()),
		Accounts: accounts,
	}

	if cfg.Valkey.Addr != "" {
		cli, err := valkey.NewClient(valkey.ClientOption{InitAddress: []string{cfg.Valkey.Addr}})
		if err != nil {
			return nil, fmt.Errorf("valkey client: %w", err)
		}
		links.TokenCache = store.NewTokenCacheWithClient(cli, cfg.Valkey.Prefix)
		links.StateGuard = store.NewStateCacheWithClient(cli, cfg.Valkey.Prefix, cfg.StateTTL())
		log.Printf("[server] valkey attached at %s", cfg.Valkey.Addr)
	}

	return &Server{
		Config:   cfg,
		Registry: registry,
		Builder:  &platforms.AuthorizeURLBuilder{Registry: registry, States: states},
		Links:    links,
		Accounts: accounts,
	}, nil
}

// NewGinEngine builds a Gin router with all link routes registered.
func NewGinEngine(s *Server) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())

	r.GET("/api/social/platforms", s.HandleListPlatformsGin)
	r.GET("/api/social/connect/:platform", s.HandleConnectGin)
	r.GET("/api/auth/callback/:platform", s.HandleCallbackGin)
	r.GET("/api/social/accounts", s.HandleListAccountsGin)
	r.DELETE("/api/social/accounts/:platform", s.HandleDisconnectGin)
	r.POST("/api/social/accounts/:platform/refresh", s.HandleRefreshGin)

	return r
}
