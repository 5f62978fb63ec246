package search

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

// EmbeddingProvider generates embeddings for similarity search. A nil
// provider is valid: callers fall back to lexical-only search (§4.3, the
// vector layer is allowed to be unavailable).
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

const localEmbeddingDimension = 384

// LocalEmbedderConfig configures a local ONNX embedding model.
type LocalEmbedderConfig struct {
	ModelPath       string
	OnnxLibraryPath string
	Timeout         time.Duration
}

// DefaultLocalEmbedderConfig returns sane defaults pointing at a MiniLM-class
// model directory under ./models.
func DefaultLocalEmbedderConfig() LocalEmbedderConfig {
	return LocalEmbedderConfig{
		ModelPath:       "./models/all-MiniLM-L6-v2",
		OnnxLibraryPath: os.Getenv("SCREEN_ONNX_LIBRARY_PATH"),
		Timeout:         30 * time.Second,
	}
}

// LocalEmbedder wraps a Hugot feature-extraction pipeline as an
// EmbeddingProvider. It is safe for concurrent use.
type LocalEmbedder struct {
	mu       sync.RWMutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	ready    bool
	cfg      LocalEmbedderConfig
}

// NewLocalEmbedder initializes a Hugot session and pipeline from cfg.
// Returns an error if the model path is missing or the pipeline fails to
// build; callers are expected to treat that as "run without vector search"
// rather than a hard failure (§4.3's embedding_unavailable error kind).
func NewLocalEmbedder(cfg LocalEmbedderConfig) (*LocalEmbedder, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	e := &LocalEmbedder{cfg: cfg}
	if err := e.initialize(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewLocalEmbedderGraceful is like NewLocalEmbedder but returns a nil
// EmbeddingProvider (not an error) on failure, logging a warning, matching
// the teacher's graceful-degradation pattern for optional ML components.
func NewLocalEmbedderGraceful(cfg LocalEmbedderConfig) EmbeddingProvider {
	e, err := NewLocalEmbedder(cfg)
	if err != nil {
		log.Printf("search: local embedder unavailable, falling back to lexical-only search: %v", err)
		return nil
	}
	return e
}

func (e *LocalEmbedder) initialize() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := os.Stat(e.cfg.ModelPath); err != nil {
		if os.Getenv("SCREEN_AUTO_DOWNLOAD_MODEL") != "true" {
			return fmt.Errorf("search: embedding model path does not exist: %s", e.cfg.ModelPath)
		}
		if err := EnsureEmbeddingModelDownloaded(e.cfg.ModelPath); err != nil {
			return fmt.Errorf("search: auto-downloading embedding model: %w", err)
		}
	}

	session, err := e.createSession()
	if err != nil {
		return fmt.Errorf("search: creating hugot session: %w", err)
	}
	e.session = session

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: e.cfg.ModelPath,
		Name:      "sanctions-name-embedder",
	})
	if err != nil {
		_ = session.Destroy()
		return fmt.Errorf("search: creating feature extraction pipeline: %w", err)
	}

	e.pipeline = pipeline
	e.ready = true
	return nil
}

func (e *LocalEmbedder) createSession() (*hugot.Session, error) {
	if e.cfg.OnnxLibraryPath != "" {
		if s, err := hugot.NewORTSession(options.WithOnnxLibraryPath(e.cfg.OnnxLibraryPath)); err == nil {
			return s, nil
		}
	}
	return hugot.NewGoSession()
}

// Dimension returns the embedding width produced by the underlying model.
func (e *LocalEmbedder) Dimension() int {
	return localEmbeddingDimension
}

// Embed produces a single embedding vector for text.
func (e *LocalEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.ready || e.pipeline == nil {
		return nil, fmt.Errorf("search: local embedder not ready")
	}
	result, err := e.pipeline.RunPipeline([]string{text})
	if err != nil {
		return nil, fmt.Errorf("search: embedding generation failed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("search: no embedding returned")
	}
	return result.Embeddings[0], nil
}

// Close releases the underlying ONNX session.
func (e *LocalEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = false
	if e.session != nil {
		return e.session.Destroy()
	}
	return nil
}

// ResolveModelPath joins a base directory with the standard MiniLM model
// filename, used by callers wiring LocalEmbedderConfig from a config file.
func ResolveModelPath(baseDir string) string {
	return filepath.Join(baseDir, "all-MiniLM-L6-v2")
}
