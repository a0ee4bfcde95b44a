package api

import (
	"context"
	"fmt"
	"log/slog"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	redisAdapter "tavern/adapters/redis"
	internalS3 "tavern/adapters/s3"
	"tavern/adapters/sse"
	"tavern/trade"
)

type ServerImpl struct {
	engines     map[trade.Class]*trade.Engine
	sseManager  sse.IConnectionManager[Event]
	s3Operator  *internalS3.S3Operator
	htmlChecker *bluemonday.Policy
	redisClient *redis.Client
	consumer    redisAdapter.IConsumer[sse.PublishRequest[Event]]
	producer    *redisAdapter.Producer[sse.PublishRequest[Event]]
	db          *gorm.DB

	config ServerConfig
}

func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化S3客戶端
	s3Cfg, err := awsCfg.LoadDefaultConfig(
		context.Background(),
		awsCfg.WithBaseEndpoint(config.S3.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKeyID, config.S3.SecretAccessKey, "")),
		awsCfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	s3Operator, err := internalS3.NewS3Operator(s3.NewFromConfig(s3Cfg), config.S3.Bucket, config.S3.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create S3 operator, err=%w", op, err)
	}

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}

	// 初始化Redis連線
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})

	// 初始化SSE管理器
	// 事件經由 Redis Stream 在實例之間廣播：
	// producer 把本實例的推送寫進 stream，consumer 把 stream 的事件轉發給本地連線
	consumer, err := redisAdapter.NewConsumer[sse.PublishRequest[Event]](
		redisClient,
		config.Redis.StreamKeys.Events,
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create consumer, err=%w", op, err)
	}
	producer, err := redisAdapter.NewProducer[sse.PublishRequest[Event]](
		redisClient,
		config.Redis.StreamKeys.Events,
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create producer, err=%w", op, err)
	}
	sseManager, err := sse.NewConnectionManager[Event](
		sse.WithLogger[Event](slog.Default()),
		sse.WithSubscriber[Event](consumer),
		sse.WithPublisher[Event](producer),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create sse connection manager, err=%w", op, err)
	}

	// 每個物品類別各建一個協商服務實例，共用同一個推送出口
	notifier := newPushNotifier(sseManager, slog.Default())
	engines := make(map[trade.Class]*trade.Engine, 3)
	for _, adapter := range []trade.OwnershipAdapter{
		trade.WeaponAdapter{},
		trade.ArmorAdapter{},
		trade.ItemAdapter{},
	} {
		engines[adapter.Class()] = trade.NewEngine(
			db,
			adapter,
			trade.WithNotifier(notifier),
			trade.WithLogger(slog.Default()),
		)
	}

	return &ServerImpl{
		engines:     engines,
		sseManager:  sseManager,
		s3Operator:  s3Operator,
		htmlChecker: bluemonday.UGCPolicy(),
		redisClient: redisClient,
		consumer:    consumer,
		producer:    producer,
		db:          db,
		config:      config,
	}, nil
}

func (impl *ServerImpl) Start() {
	// 啟動producer
	impl.producer.Start()
	// 啟動consumer
	impl.consumer.Start()
	// 啟動sse connection manager
	impl.sseManager.Start()
}

func (impl *ServerImpl) Close() {
	// 關閉consumer
	impl.consumer.Close()
	// 關閉producer
	impl.producer.Close()
	// 關閉sse connection manager
	impl.sseManager.Done()
}

// RegisterRoutes 註冊所有HTTP路由
func (impl *ServerImpl) RegisterRoutes(router gin.IRouter) {
	router.Use(impl.SessionMiddleware())

	router.POST("/auth/join", impl.PostAuthJoin)
	router.GET("/auth/logout", impl.GetAuthLogout)

	router.PUT("/trade/:class", impl.PutTrade)
	router.POST("/trade/:class", impl.PostTrade)
	router.DELETE("/trade/:class", impl.DeleteTrade)

	router.GET("/events", impl.GetEvents)
	router.GET("/events/observers", impl.GetObserverEvents)

	router.POST("/characters", impl.PostCharacter)
	router.GET("/characters/:characterID", impl.GetCharacter)
	router.PATCH("/characters/:characterID", impl.PatchCharacter)
	router.POST("/characters/:characterID/portrait", impl.PostCharacterPortrait)

	router.POST("/characters/:characterID/skills", impl.PostSkill)
	router.PATCH("/skills/:skillID", impl.PatchSkill)
	router.DELETE("/skills/:skillID", impl.DeleteSkill)

	router.POST("/characters/:characterID/spells", impl.PostSpell)
	router.PATCH("/spells/:spellID", impl.PatchSpell)
	router.DELETE("/spells/:spellID", impl.DeleteSpell)

	router.POST("/characters/:characterID/notes", impl.PostNote)
	router.PATCH("/notes/:noteID", impl.PatchNote)
	router.DELETE("/notes/:noteID", impl.DeleteNote)

	router.GET("/catalog/:class", impl.GetCatalog)
	router.POST("/inventory/:class/grant", impl.PostInventoryGrant)
}
