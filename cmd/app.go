package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/lucybot/internal/chat"
	"github.com/Shivanand-hulikatti/lucybot/internal/config"
	"github.com/Shivanand-hulikatti/lucybot/internal/database"
	"github.com/Shivanand-hulikatti/lucybot/internal/knowledge"
	"github.com/Shivanand-hulikatti/lucybot/internal/llm"
	"github.com/Shivanand-hulikatti/lucybot/internal/repository"
	"github.com/Shivanand-hulikatti/lucybot/internal/search"
	"github.com/Shivanand-hulikatti/lucybot/internal/service"
	"github.com/Shivanand-hulikatti/lucybot/internal/wizard"
)

const (
	maxWizardSessions = 256
	maxConfirmations  = 256
	maxChatSessions   = 256
)

// openStore connects to PostgreSQL when DATABASE_URL is set and to SQLite
// otherwise, applying pending migrations either way.
func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (service.Store, func(), error) {
	if cfg.UsePostgres() {
		pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		applied, err := database.MigratePostgres(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("connected to PostgreSQL", zap.Strings("migrations_applied", applied))
		return repository.NewPostgresRepository(pool), pool.Close, nil
	}

	db, err := database.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	applied, err := database.MigrateSQLite(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	logger.Info("opened SQLite", zap.String("path", cfg.SQLitePath), zap.Strings("migrations_applied", applied))
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.Warn("close SQLite", zap.Error(err))
		}
	}
	return repository.NewSQLiteRepository(db), closeDB, nil
}

func openKnowledge(cfg config.Config, logger *zap.Logger) (*knowledge.Store, error) {
	kb, err := knowledge.Open(cfg.KnowledgePath, logger)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	return kb, nil
}

// newAssistant builds the chat assistant. Without GEMINI_API_KEY it still
// handles macro registration; model calls fail with llm.ErrNotConfigured.
func newAssistant(ctx context.Context, cfg config.Config, kb *knowledge.Store, logger *zap.Logger) (*chat.Assistant, error) {
	var client llm.Client = llm.Disabled{}
	if cfg.LLMEnabled() {
		gemini, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil && !errors.Is(err, llm.ErrNotConfigured) {
			return nil, err
		}
		if err == nil {
			client = gemini
		}
	}
	return chat.NewAssistant(client, search.NewClient(cfg.SearchRegion, cfg.SearchMaxResults), kb, chat.Options{
		Sessions:  maxChatSessions,
		Exchanges: cfg.HistoryExchanges,
		Location:  cfg.Location(),
	}, logger)
}

func newWizards(cfg config.Config) (*wizard.Manager, error) {
	catalog, err := wizard.DefaultCatalog()
	if err != nil {
		return nil, err
	}
	return wizard.NewManager(catalog, maxWizardSessions, cfg.WizardTTL), nil
}

func newConfirmations() *knowledge.Confirmations {
	return knowledge.NewConfirmations(maxConfirmations, knowledge.ConfirmWindow)
}
