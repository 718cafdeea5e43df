package main

import (
	"context"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"eduvid-pipeline/config"
	"eduvid-pipeline/llm"
	"eduvid-pipeline/pipeline"
	"eduvid-pipeline/types"
)

type jobStatus struct {
	Status      string `json:"status"`
	VideoPath   string `json:"video_path,omitempty"`
	Elaboration string `json:"elaboration,omitempty"`
	Narration   string `json:"narration,omitempty"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type server struct {
	pipe *pipeline.Pipeline

	mu   sync.Mutex
	jobs map[string]*jobStatus
}

func main() {
	// Load .env (local dev only)
	_ = godotenv.Load()

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)

	cfg := config.Default()
	if _, err := os.Stat("config.yaml"); err == nil {
		loaded, err := config.Load("config.yaml")
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}

	ctx := context.Background()
	client, err := llm.NewGeminiClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize generator: %v (set GEMINI_API_KEY in .env)", err)
	}

	s := &server{
		pipe: pipeline.New(cfg, client),
		jobs: make(map[string]*jobStatus),
	}

	router := gin.Default()
	router.POST("/api/generate", s.handleGenerate)
	router.GET("/api/status/:id", s.handleStatus)
	router.GET("/api/download/:id", s.handleDownload)
	router.GET("/api/health", s.handleHealth)

	log.Infof("Educational video generator listening on %s", cfg.Server.Addr)
	if err := router.Run(cfg.Server.Addr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// handleGenerate runs the whole pipeline synchronously for one request
func (s *server) handleGenerate(c *gin.Context) {
	var req struct {
		Text      string `json:"text"`
		SceneMode string `json:"scene_mode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no text provided"})
		return
	}

	videoID := uuid.NewString()
	s.setJob(videoID, &jobStatus{
		Status:    "processing",
		CreatedAt: time.Now().Format(time.RFC3339),
	})

	log.Infof("Starting video generation for ID: %s", videoID)

	result, err := s.pipe.Run(c.Request.Context(), types.GenerationRequest{
		Topic:      req.Text,
		SceneMode:  types.SceneMode(req.SceneMode),
		OutputName: "video_" + videoID,
	})
	if err != nil {
		s.setJob(videoID, &jobStatus{
			Status:    "failed",
			Error:     err.Error(),
			CreatedAt: time.Now().Format(time.RFC3339),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate video: " + err.Error()})
		return
	}

	s.setJob(videoID, &jobStatus{
		Status:      "completed",
		VideoPath:   result.VideoPath,
		Elaboration: result.Elaboration,
		Narration:   result.Narration,
		CreatedAt:   time.Now().Format(time.RFC3339),
	})

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"video_id":     videoID,
		"message":      "Video generated successfully!",
		"download_url": "/api/download/" + videoID,
		"elaboration":  result.Elaboration,
		"narration":    result.Narration,
	})
}

func (s *server) handleStatus(c *gin.Context) {
	job, ok := s.getJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video ID not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *server) handleDownload(c *gin.Context) {
	job, ok := s.getJob(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "video ID not found"})
		return
	}
	if job.Status != "completed" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "video is still processing"})
		return
	}
	if _, err := os.Stat(job.VideoPath); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "video file not found"})
		return
	}
	c.FileAttachment(job.VideoPath, "video.mp4")
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "Educational Video Generator API",
	})
}

func (s *server) setJob(id string, st *jobStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[id] = st
}

func (s *server) getJob(id string) (*jobStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.jobs[id]
	return st, ok
}
