package search

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/dustin/go-humanize"
)

// DefaultEmbeddingModelRepo is the HuggingFace repository for the sentence
// embedding model used by LocalEmbedder.
const DefaultEmbeddingModelRepo = "sentence-transformers/all-MiniLM-L6-v2"

// embeddingModelFiles lists the minimal files needed for ONNX inference of
// the sentence-embedding model.
var embeddingModelFiles = []struct {
	Name     string
	Required bool
}{
	{"model.onnx", true},
	{"tokenizer.json", true},
	{"config.json", true},
	{"tokenizer_config.json", true},
	{"special_tokens_map.json", false},
}

var downloadMutex sync.Mutex

// EnsureEmbeddingModelDownloaded checks whether a usable embedding model
// exists at modelPath and downloads it from DefaultEmbeddingModelRepo if
// not. Safe to call from multiple goroutines: the first caller downloads,
// the rest observe the already-populated directory.
func EnsureEmbeddingModelDownloaded(modelPath string) error {
	if modelPath == "" {
		modelPath = DefaultLocalEmbedderConfig().ModelPath
	}

	if EmbeddingModelExists(modelPath) {
		return nil
	}

	downloadMutex.Lock()
	defer downloadMutex.Unlock()

	if EmbeddingModelExists(modelPath) {
		return nil
	}

	log.Printf("Embedding model not found at %s, downloading %s (one-time, ~90MB)...", modelPath, DefaultEmbeddingModelRepo)
	return downloadEmbeddingModel(DefaultEmbeddingModelRepo, modelPath)
}

// EmbeddingModelExists reports whether the ONNX model and tokenizer are
// both present at modelPath.
func EmbeddingModelExists(modelPath string) bool {
	if _, err := os.Stat(filepath.Join(modelPath, "model.onnx")); err != nil {
		return false
	}
	if _, err := os.Stat(filepath.Join(modelPath, "tokenizer.json")); err != nil {
		return false
	}
	return true
}

func downloadEmbeddingModel(repoID, destPath string) error {
	if err := os.MkdirAll(destPath, 0o755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	baseURL := fmt.Sprintf("https://huggingface.co/%s/resolve/main", repoID)

	for _, file := range embeddingModelFiles {
		fileURL := fmt.Sprintf("%s/%s", baseURL, file.Name)
		destFile := filepath.Join(destPath, file.Name)

		if _, err := os.Stat(destFile); err == nil {
			log.Printf("  %s already present", file.Name)
			continue
		}

		log.Printf("  downloading %s...", file.Name)
		if err := downloadFile(fileURL, destFile); err != nil {
			if file.Required {
				return fmt.Errorf("failed to download %s: %w", file.Name, err)
			}
			log.Printf("  optional file %s unavailable: %v", file.Name, err)
			continue
		}
		log.Printf("  %s downloaded", file.Name)
	}

	log.Printf("embedding model ready at %s (%s)", destPath, EmbeddingModelSize(destPath))
	return nil
}

func downloadFile(url, destPath string) error {
	tmpPath := destPath + ".tmp"
	defer func() { _ = os.Remove(tmpPath) }()

	out, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = out.Close() }()

	resp, err := http.Get(url) //nolint:gosec // repo URL is a fixed constant, not user input
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("http %d: %s", resp.StatusCode, resp.Status)
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	_ = out.Close()

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to finalize download: %w", err)
	}
	return nil
}

// EmbeddingModelSize returns the total on-disk size of the downloaded model
// in human-readable form (e.g. "87 MB").
func EmbeddingModelSize(modelPath string) string {
	var totalBytes int64
	_ = filepath.Walk(modelPath, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalBytes += info.Size()
		}
		return nil
	})
	return humanize.Bytes(uint64(totalBytes))
}
