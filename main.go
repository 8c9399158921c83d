package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	classifierx "github.com/tanpawarit/sierra-agent/agent/agents/classifier"
	responderx "github.com/tanpawarit/sierra-agent/agent/agents/responder"
	catalogx "github.com/tanpawarit/sierra-agent/agent/catalog"
	contractx "github.com/tanpawarit/sierra-agent/agent/contract"
	llmx "github.com/tanpawarit/sierra-agent/agent/llm"
	ordersx "github.com/tanpawarit/sierra-agent/agent/orders"
	orchestratorx "github.com/tanpawarit/sierra-agent/agent/orchestrator"
	promptx "github.com/tanpawarit/sierra-agent/agent/prompt"
	routerx "github.com/tanpawarit/sierra-agent/agent/router"
	statex "github.com/tanpawarit/sierra-agent/agent/state"
	alertsx "github.com/tanpawarit/sierra-agent/pkg/alerts"
	configx "github.com/tanpawarit/sierra-agent/pkg/config"
	_ "github.com/tanpawarit/sierra-agent/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/sierra-agent/pkg/openrouter"
)

type AppConfig struct {
	CatalogPath string `envconfig:"CATALOG_PATH" default:"data/ProductCatalog.json"`
	OrdersPath  string `envconfig:"ORDERS_PATH" default:"data/CustomerOrders.json"`
	PostgresDSN string `envconfig:"POSTGRES_DSN"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	prompts := promptx.LoadPromptSet()

	classifierCfg := llmCfg.OpenRouterFor(contractx.AgentTypeClassifier)
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create classifier model")
	}
	classifier, err := classifierx.New(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		log.Fatal().Err(err).Msg("build classifier")
	}

	responderClient := openrouterx.NewClient(llmCfg.OpenRouterFor(contractx.AgentTypeResponder))
	responder, err := responderx.New(responderClient, llmCfg.ResponderModelName(), prompts.Persona, llmCfg.ResponderTemperature)
	if err != nil {
		log.Fatal().Err(err).Msg("build responder")
	}

	catalogStore, err := buildCatalogStore(appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open catalog store")
	}
	items, err := catalogStore.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load catalog")
	}

	orders, err := buildOrderLookup(appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("open order store")
	}

	store := buildSessionStore()
	publisher := buildAlertPublisher()

	orch, err := orchestratorx.New(store, routerx.New(classifier), orders, responder, items, orchestratorx.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	runChatLoop(ctx, orch, publisher)
}

func buildCatalogStore(cfg *AppConfig) (catalogx.Store, error) {
	return catalogx.NewFileStore(cfg.CatalogPath)
}

func buildOrderLookup(cfg *AppConfig) (contractx.OrderLookup, error) {
	if strings.TrimSpace(cfg.PostgresDSN) != "" {
		db, err := ordersx.OpenPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return ordersx.NewBunStore(db)
	}
	return ordersx.NewFileStore(cfg.OrdersPath)
}

func buildSessionStore() statex.Store {
	redisCfg, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
	if err != nil {
		log.Debug().Msg("no redis session store configured, using in-memory sessions")
		return statex.NewMemoryStore()
	}
	store, err := statex.NewUpstashRedisStore(*redisCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("build redis session store")
	}
	return store
}

func buildAlertPublisher() *alertsx.Publisher {
	cfg := configx.MustNew[alertsx.Config]("ALERTS")
	if !cfg.Enabled() {
		return nil
	}
	return alertsx.MustNew(*cfg)
}

func runChatLoop(ctx context.Context, orch *orchestratorx.Orchestrator, publisher *alertsx.Publisher) {
	sessionID := uuid.NewString()

	fmt.Println("🌲 Welcome to Sierra Outfitters! Ask me anything. (Type 'exit' to quit)")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("🧗 You: ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if lowered := strings.ToLower(input); lowered == "exit" || lowered == "quit" {
			fmt.Println("🏕️ Sierra: Until next time — stay wild out there!")
			if err := orch.EndSession(ctx, sessionID); err != nil {
				log.Warn().Err(err).Msg("end session")
			}
			return
		}

		reply, diag := orch.HandleTurn(ctx, sessionID, input)
		if diag != nil {
			log.Warn().Err(diag).Str("session_id", sessionID).Msg("turn completed with diagnostic")
			if publisher != nil {
				if alertErr := publisher.Notify(ctx, "collaborator_failure", map[string]any{
					"session_id": sessionID,
					"error":      diag.Error(),
				}); alertErr != nil {
					log.Warn().Err(alertErr).Msg("publish alert")
				}
			}
		}
		fmt.Println("🏔️ Sierra:", reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}
