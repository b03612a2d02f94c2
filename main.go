package main

import (
	"context"
	"os"

	firebase "firebase.google.com/go/v4"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/katatrina/eduhub-BE/api"
	"github.com/katatrina/eduhub-BE/internal/db"
	"github.com/katatrina/eduhub-BE/internal/directory"
	"github.com/katatrina/eduhub-BE/internal/dispatch"
	"github.com/katatrina/eduhub-BE/internal/event"
	"github.com/katatrina/eduhub-BE/internal/mailer"
	"github.com/katatrina/eduhub-BE/internal/notification"
	"github.com/katatrina/eduhub-BE/internal/push"
	"github.com/katatrina/eduhub-BE/internal/session"
	"github.com/katatrina/eduhub-BE/internal/sms"
	"github.com/katatrina/eduhub-BE/internal/util"
	"github.com/katatrina/eduhub-BE/internal/worker"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := context.Background()

	// Load configurations
	config, err := util.LoadConfig("./app.env")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config file 😣")
	}

	log.Info().Msg("configurations loaded successfully ✅")

	// Create connection pool
	connPool, err := pgxpool.New(ctx, config.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to validate db connection string 😣")
	}

	if pingErr := connPool.Ping(ctx); pingErr != nil {
		log.Fatal().Err(pingErr).Msg("failed to connect to db 😣")
	}
	log.Info().Msg("connected to db ✅")

	store := db.NewStore(connPool)

	redisDb := redis.NewClient(&redis.Options{
		Addr:     config.RedisServerAddress,
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	firebaseApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(config.FirebaseCredentialsFile))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firebase app 😣")
	}

	inbox, err := notification.NewInboxWriter(ctx, firebaseApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create firestore inbox writer 😣")
	}

	mailService, err := mailer.NewSMTPSender(config.SMTPHost, config.SMTPPort,
		config.SMTPUsername, config.SMTPPassword, config.EmailSenderName, config.EmailSenderAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create mailer service 😣")
	}

	fcmSender, err := push.NewFCMSender(ctx, firebaseApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create FCM sender 😣")
	}

	var webPushSender push.WebSender
	if config.WebPushRelayURL != "" {
		webPushSender = push.NewWebPushSender(config.WebPushRelayURL, config.WebPushRelayAPIKey)
	}

	smsSender := newSMSSender(config)

	sessions := session.NewRedisRegistry(redisDb)
	eventSender := event.NewSSEServer()
	go eventSender.Run()

	redisOpt := asynq.RedisClientOpt{Addr: config.RedisServerAddress}
	taskDistributor := worker.NewTaskDistributor(redisOpt)
	taskInspector := worker.NewTaskInspector(redisOpt)

	engine := dispatch.NewEngine(
		store,
		dispatch.NewResolver(directory.NewStoreDirectory(store)),
		dispatch.NewPreferenceFilter(store),
		[]dispatch.ChannelDispatcher{
			dispatch.NewInAppDispatcher(sessions, eventSender, inbox, config.RecipientConcurrency),
			dispatch.NewEmailDispatcher(store, mailService, config.RecipientConcurrency),
			dispatch.NewSMSDispatcher(store, smsSender, config.RecipientConcurrency),
			dispatch.NewPushDispatcher(store, fcmSender, webPushSender, config.RecipientConcurrency),
			dispatch.NewWebhookDispatcher(store, config.WebhookSigningKey, config.RecipientConcurrency),
		},
		config.ChannelTimeout,
	)

	processor := worker.NewRedisTaskProcessor(redisOpt, engine)
	go func() {
		if err := processor.Start(); err != nil {
			log.Fatal().Err(err).Msg("failed to start task processor 😣")
		}
	}()
	log.Info().Msg("task processor started ✅")

	sweeper, err := worker.NewScheduledSweeper(store, taskDistributor, taskInspector)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduled sweeper 😣")
	}
	if err = sweeper.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduled sweeper 😣")
	}
	log.Info().Msg("scheduled sweeper started ✅")

	runHTTPServer(&config, store, taskDistributor, taskInspector, eventSender, sessions, inbox)
}

// newSMSSender picks the configured SMS transport: the HTTP gateway when
// provisioned, the Discord relay in development, or nil so the SMS channel
// is skipped entirely.
func newSMSSender(config util.Config) sms.Sender {
	if config.SMSGatewayURL != "" {
		return sms.NewHTTPGatewaySender(config.SMSGatewayURL, config.SMSGatewayAPIKey)
	}
	if config.DiscordBotToken != "" && config.DiscordChannelID != "" {
		relay, err := sms.NewDiscordRelay(config.DiscordBotToken, config.DiscordChannelID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to create Discord SMS relay, SMS channel disabled")
			return nil
		}
		return relay
	}
	return nil
}

func runHTTPServer(config *util.Config, store db.Store, taskDistributor worker.TaskDistributor, taskInspector worker.TaskInspector, eventSender event.EventSender, sessions session.Registry, inbox api.InboxReader) {
	server, err := api.NewServer(store, config, taskDistributor, taskInspector, eventSender, sessions, inbox)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HTTP server 😣")
	}

	err = server.Start(config.HTTPServerAddress)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start HTTP server 😣")
	}
}
