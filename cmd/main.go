package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/mcjkurz/step-translate/api"
	"github.com/mcjkurz/step-translate/api/handler"
	"github.com/mcjkurz/step-translate/api/middleware"
	appconfig "github.com/mcjkurz/step-translate/config"
	"github.com/mcjkurz/step-translate/internal/cache"
	"github.com/mcjkurz/step-translate/internal/database"
	"github.com/mcjkurz/step-translate/internal/llm"
	"github.com/mcjkurz/step-translate/internal/repository"
	"github.com/mcjkurz/step-translate/internal/services"
	"github.com/mcjkurz/step-translate/pkg/storage"
	"github.com/mcjkurz/step-translate/pkg/taskqueue"
)

func main() {
	// .env文件中的环境变量先于配置加载
	if err := godotenv.Load(); err == nil {
		fmt.Println("Loaded environment from .env file")
	}

	configFile := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 0, "Server port (overrides config)")
	mode := flag.String("mode", "release", "Run mode (debug/release)")
	flag.Parse()

	cfg, err := appconfig.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Port = *port
	}

	// 设置Gin模式
	gin.SetMode(*mode)

	// 初始化日志
	if err := middleware.InitLogger(cfg.Log.Dir); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := middleware.GetLogger()
	logger.Info("Starting Step Translate server...")

	// 初始化数据库
	if err := setupDatabase(cfg, logger); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// 创建文件存储服务
	fileStorage, err := setupStorage(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}

	// 启动清理：上传目录和过期日志
	cleanupUploads(fileStorage, logger)
	cleanupOldLogs(cfg.Log.Dir, cfg.Cleanup.LogsDays, logger)

	// 创建翻译缓存
	cacheService, err := setupCache(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize cache: %v", err)
	}

	// 加载提示词配置
	prompts, err := services.LoadPrompts(cfg.Prompts.Path)
	if err != nil {
		logger.WithError(err).Warnf("Failed to load prompts from %s, using defaults", cfg.Prompts.Path)
	}

	// 创建翻译服务
	translateService, err := setupTranslateService(cfg, cacheService, prompts, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize translate service: %v", err)
	}

	// 创建文档和导出服务
	documentService := services.NewDocumentService(fileStorage,
		services.WithDocumentLogger(logger),
		services.WithMaxUploadMB(cfg.Upload.MaxUploadMB),
	)
	exportService := services.NewExportService(
		services.WithExportLogger(logger),
		services.WithExportFont(cfg.Export.FontPath),
	)

	// 初始化任务队列和工作者（如果启用）
	jobRepo := repository.NewJobRepository()
	var queue taskqueue.Queue
	var worker taskqueue.Worker
	if cfg.Queue.Enable {
		queue, worker, err = setupTaskQueue(cfg, jobRepo, fileStorage, translateService, logger)
		if err != nil {
			logger.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer queue.Close()

		if err := worker.Start(); err != nil {
			logger.Fatalf("Failed to start task worker: %v", err)
		}
		defer worker.Stop()
		logger.Info("Task queue and worker started successfully")
	}

	// 初始化API处理器
	docHandler := handler.NewDocumentHandler(documentService)
	translateHandler := handler.NewTranslateHandler(translateService)
	exportHandler := handler.NewExportHandler(exportService)

	// 队列未启用时任务API仍提供只读查询，创建任务会返回错误
	jobHandler := handler.NewJobHandler(services.NewJobService(jobRepo, queue,
		services.WithJobLogger(logger)))

	// 设置路由
	r := api.SetupRouter(docHandler, translateHandler, exportHandler, jobHandler)

	// 启动HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // 批量导出和上游模型调用可能较慢
	}

	// 优雅关闭
	go func() {
		logger.Infof("Server is running on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待终止信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// 关闭时清空上传目录，上传文件只在会话期间保留
	cleanupUploads(fileStorage, logger)

	logger.Info("Server exited")
}

// setupDatabase 初始化数据库连接
func setupDatabase(cfg *appconfig.Config, logger *logrus.Logger) error {
	dbConfig := &database.Config{
		Type: cfg.Database.Type,
		DSN:  cfg.Database.DSN,
	}
	return database.Setup(dbConfig, logger)
}

// setupStorage 创建文件存储服务
func setupStorage(cfg *appconfig.Config) (storage.Storage, error) {
	switch cfg.Storage.Type {
	case "minio":
		return storage.NewMinioStorage(storage.MinioConfig{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			Bucket:    cfg.Storage.Bucket,
			UseSSL:    cfg.Storage.UseSSL,
		})
	default:
		return storage.NewLocalStorage(storage.LocalConfig{
			Path: cfg.Storage.Path,
		})
	}
}

// setupCache 创建翻译缓存
func setupCache(cfg *appconfig.Config) (cache.Cache, error) {
	if !cfg.Cache.Enable {
		return nil, nil
	}

	return cache.NewCache(cache.Config{
		Type:          cfg.Cache.Type,
		RedisAddr:     cfg.Cache.Address,
		RedisPassword: cfg.Cache.Password,
		RedisDB:       cfg.Cache.DB,
		DefaultTTL:    time.Duration(cfg.Cache.TTL) * time.Second,
	})
}

// setupTranslateService 创建翻译服务
// 没有配置API密钥时服务仍可启动，请求必须携带自己的密钥
func setupTranslateService(cfg *appconfig.Config, cacheService cache.Cache, prompts *services.Prompts, logger *logrus.Logger) (*services.TranslateService, error) {
	opts := []services.TranslateOption{
		services.WithTranslateLogger(logger),
		services.WithPrompts(prompts),
	}
	if cacheService != nil {
		opts = append(opts, services.WithTranslateCache(cacheService))
	}

	if cfg.LLM.APIKey != "" {
		client, err := llm.NewClient(cfg.LLM.Provider,
			llm.WithAPIKey(cfg.LLM.APIKey),
			llm.WithBaseURL(chatEndpoint(cfg.LLM.Endpoint)),
			llm.WithModel(cfg.LLM.Model),
			llm.WithTemperature(cfg.LLM.Temperature),
			llm.WithMaxTokens(cfg.LLM.MaxTokens),
		)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithDefaultClient(client, cfg.LLM.APIKey, cfg.LLM.Endpoint, cfg.LLM.Model))
	} else {
		logger.Warn("No API key configured, translation requests must provide their own key")
	}

	return services.NewTranslateService(opts...), nil
}

// chatEndpoint 将基础端点补全为chat completions URL
func chatEndpoint(endpoint string) string {
	trimmed := strings.TrimRight(endpoint, "/")
	if strings.HasSuffix(trimmed, "/chat/completions") {
		return trimmed
	}
	return trimmed + "/chat/completions"
}

// setupTaskQueue 创建任务队列和批量翻译工作者
func setupTaskQueue(cfg *appconfig.Config, jobRepo repository.JobRepository, fileStorage storage.Storage, translateService *services.TranslateService, logger *logrus.Logger) (taskqueue.Queue, taskqueue.Worker, error) {
	queueCfg := &taskqueue.Config{
		RedisAddr:     cfg.Queue.RedisAddr,
		RedisPassword: cfg.Queue.RedisPassword,
		RedisDB:       cfg.Queue.RedisDB,
		Concurrency:   cfg.Queue.Concurrency,
		RetryLimit:    cfg.Queue.RetryLimit,
		RetryDelay:    time.Duration(cfg.Queue.RetryDelay) * time.Second,
		Queues:        map[string]int{"default": 1},
	}

	queue, err := taskqueue.NewQueue(cfg.Queue.Type, queueCfg)
	if err != nil {
		return nil, nil, err
	}

	redisQueue, ok := queue.(*taskqueue.RedisQueue)
	if !ok {
		return nil, nil, fmt.Errorf("queue type %s does not support workers", cfg.Queue.Type)
	}

	worker := taskqueue.NewRedisWorker(redisQueue, queueCfg)
	translateHandler := services.NewTranslateDocumentHandler(jobRepo, fileStorage, translateService, logger)
	for _, taskType := range translateHandler.GetTaskTypes() {
		worker.RegisterHandler(taskType, translateHandler)
	}

	return queue, worker, nil
}

// cleanupUploads 清空上传目录
// 上传文件只在服务运行期间有效
func cleanupUploads(fileStorage storage.Storage, logger *logrus.Logger) {
	files, err := fileStorage.List()
	if err != nil {
		logger.WithError(err).Warn("Failed to list uploaded files for cleanup")
		return
	}
	if len(files) == 0 {
		return
	}

	if err := fileStorage.ClearAll(); err != nil {
		logger.WithError(err).Warn("Failed to clear uploads")
		return
	}
	logger.Infof("Cleared %d uploaded file(s)", len(files))
}

// cleanupOldLogs 删除超过保留期的日志文件
func cleanupOldLogs(logDir string, retentionDays int, logger *logrus.Logger) {
	if retentionDays <= 0 || logDir == "" {
		return
	}

	entries, err := os.ReadDir(logDir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("Failed to read log directory for cleanup")
		}
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(logDir, entry.Name())); err == nil {
				deleted++
			}
		}
	}

	if deleted > 0 {
		logger.Infof("Cleaned %d log file(s) older than %d days", deleted, retentionDays)
	}
}
