// Command memomate runs the tutoring bot: it polls Twilio Conversations
// for new messages and drives onboarding and quiz sessions against the
// persistence API and the content providers.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/memomate/memomate/core/bootstrap"
	"github.com/memomate/memomate/core/bot"
	"github.com/memomate/memomate/core/chat"
	"github.com/memomate/memomate/core/config"
	"github.com/memomate/memomate/core/content"
	"github.com/memomate/memomate/core/lang"
	"github.com/memomate/memomate/core/logger"
	"github.com/memomate/memomate/core/session"
	"github.com/memomate/memomate/core/store"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("memomate: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	if err := bootstrap.InitLogging(cfg); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	baseLang, err := lang.ParseLanguage(cfg.Bot.BaseLanguage)
	if err != nil {
		return err
	}
	upstreamTimeout := time.Duration(cfg.Bot.UpstreamTimeoutSeconds) * time.Second

	channel, err := chat.NewTwilioChannel(chat.TwilioOptions{
		AccountSID:      cfg.Twilio.AccountSID,
		APIKey:          cfg.Twilio.APIKey,
		APISecret:       cfg.Twilio.APISecret,
		ConversationSID: cfg.Twilio.ConversationServiceSID,
		SystemAuthor:    cfg.Twilio.SystemAuthor,
	})
	if err != nil {
		return err
	}

	storeClient := store.NewClient(cfg.Store.BaseURL, upstreamTimeout)
	generator := content.NewOpenAIGenerator(cfg.Providers.OpenAI.APIKey, cfg.Providers.OpenAI.BaseURL, cfg.Providers.OpenAI.Model)
	translator := content.NewDeepLTranslator(cfg.Providers.DeepL.APIKey, cfg.Providers.DeepL.BaseURL, upstreamTimeout)
	provider := content.NewProvider(generator, translator)

	dispatcher, err := bot.NewDispatcher(bot.DispatcherOptions{
		Channel:      channel,
		Sessions:     session.NewStore(),
		Onboarding:   bot.NewOnboarding(storeClient, provider, baseLang, cfg.Bot.VocabularySize),
		Quiz:         bot.NewQuiz(storeClient, cfg.Bot.RandomWordAttempts),
		SystemAuthor: cfg.Twilio.SystemAuthor,
		PollInterval: time.Duration(cfg.Bot.PollIntervalSeconds) * time.Second,
		Workers:      cfg.Bot.Workers,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return dispatcher.Run(ctx)
}
