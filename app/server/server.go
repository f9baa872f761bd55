package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"pdfchat/app/agent"
	"pdfchat/app/api"
	"pdfchat/history"
	"pdfchat/ingest"
	"pdfchat/model"
	"pdfchat/store"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	// Whole PDFs arrive in one multipart body.
	BodyLimit: 50 * 1024 * 1024,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
}

func NewServer(addr string) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

// Run builds every external client once, wires the pipelines and blocks on
// the listener. Client lifecycle is process start to process shutdown.
func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database: ", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables: ", err)
		return
	}

	embedder, err := model.NewOpenAIEmbedder(
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("EMBEDDING_MODEL"),
	)
	if err != nil {
		log.Fatal("error to create embedding client: ", err)
		return
	}

	llm, err := model.NewOpenAICompleter(
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENAI_API_KEY"),
		os.Getenv("LLM_MODEL"),
	)
	if err != nil {
		log.Fatal("error to create completion client: ", err)
		return
	}

	transcripts, err := history.NewBadgerStore(os.Getenv("HISTORY_DIR"))
	if err != nil {
		log.Fatal("error to open transcript store: ", err)
		return
	}
	defer transcripts.Close()

	pipeline, err := ingest.NewPipeline(pool, embedder, llm)
	if err != nil {
		log.Fatal("error to build ingestion pipeline: ", err)
		return
	}

	answerer, err := agent.New(pool, embedder, llm)
	if err != nil {
		log.Fatal("error to build query agent: ", err)
		return
	}

	var (
		app             = fiber.New(config)
		checkHandler    = api.NewCheckHandler()
		uploadHandler   = api.NewUploadHandler(pipeline)
		questionHandler = api.NewQuestionHandler(answerer)
		historyHandler  = api.NewHistoryHandler(transcripts)
		check           = app.Group("/check")
		apiv1           = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/upload", uploadHandler.HandleUpload)
	apiv1.Post("/question", questionHandler.HandleQuestion)
	apiv1.Get("/history/:documentId", historyHandler.HandleGet)
	apiv1.Post("/history/:documentId", historyHandler.HandleAppend)
	apiv1.Delete("/history/:documentId", historyHandler.HandleClear)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
