package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"alfredoptarigan/career-roadmap/internal/config"
	"alfredoptarigan/career-roadmap/internal/logger"
	"alfredoptarigan/career-roadmap/internal/services"
)

// Ingests curated learning material (pdf, txt, md) into the resource collection
// used for roadmap prompts. Usage: go run scripts/ingest_resources.go [dir]
func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	dir := "./resources"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}
	log.Info("🚀 Starting resource ingestion...", "dir", dir)

	ctx := context.Background()

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini", "error", err)
	}

	qdrant, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Qdrant", "error", err)
	}
	if err := qdrant.InitCollection(ctx); err != nil {
		log.Fatal("❌ Failed to initialize collection", "error", err)
	}

	files, err := resourceFiles(dir)
	if err != nil {
		log.Fatal("❌ Failed to list resources", "error", err)
	}

	pdfParser := services.NewPDFParserService()
	chunker := services.NewTextChunker()

	successCount, failCount := 0, 0
	for _, path := range files {
		name := filepath.Base(path)
		fileLog := log.With("file", name)

		text, err := readResource(path, pdfParser)
		if err != nil {
			fileLog.Error("❌ Failed to extract text", "error", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		fileLog.Info("✂️  Chunked resource", "chars", len(text), "chunks", len(chunks))

		// re-ingesting a file replaces its previous chunks
		if err := qdrant.DeleteResource(ctx, name); err != nil {
			fileLog.Warn("⚠️  Failed to clear previous chunks", "error", err)
		}

		stored := 0
		for i, chunk := range chunks {
			embedding, err := gemini.GenerateEmbedding(ctx, chunk)
			if err != nil {
				fileLog.Error("❌ Failed to embed chunk", "chunk", i+1, "error", err)
				continue
			}
			if err := qdrant.UpsertResource(ctx, name, services.DocTypeLearningResource, chunk, embedding); err != nil {
				fileLog.Error("❌ Failed to store chunk", "chunk", i+1, "error", err)
				continue
			}
			stored++
		}

		if stored == 0 {
			failCount++
			continue
		}
		fileLog.Info("✅ Ingested resource", "stored", stored, "chunks", len(chunks))
		successCount++
	}

	log.Info("📊 Ingestion summary", "successful", successCount, "failed", failCount)
	if failCount > 0 {
		log.Warn("⚠️  Some resources failed to ingest. Please check the logs above.")
		os.Exit(1)
	}
	log.Info("✅ All resources ingested successfully!")
}

func resourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".txt", ".md":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

func readResource(path string, pdfParser services.PDFParserService) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		content, err := pdfParser.ExtractPages(path)
		if err != nil {
			return "", err
		}
		return content.Text(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
