// Package backup serves plan document export and restore, plus the
// at-rest encryption switch for the data directory.
package backup

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"careplan/internal/config"
	"careplan/internal/services/storage"
	"careplan/internal/web"
)

var (
	cfg   *config.Config
	store *storage.Storage
)

// Initialize sets up the backup package with required dependencies
func Initialize(c *config.Config, s *storage.Storage) {
	cfg = c
	store = s
}

// RegisterRoutes registers all backup routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/backup", handleExport)
	r.Post("/api/backup/restore", handleRestore)
	r.Post("/api/storage/encrypt", handleEnableEncryption)
}

// handleExport streams a zip of every plan and schema document in the
// data directory. Archive contents are always plaintext for portability,
// regardless of at-rest encryption.
func handleExport(w http.ResponseWriter, r *http.Request) {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("careplan_backup_%s.zip", timestamp)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))

	zw := zip.NewWriter(w)
	defer zw.Close()

	dataDir := cfg.DataDirectory
	err := filepath.Walk(dataDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		base := filepath.Base(path)
		if base == ".encrypted" || base == ".encryption-verify" {
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(base), ".json") {
			return nil
		}

		relPath, err := filepath.Rel(dataDir, path)
		if err != nil {
			return err
		}

		f, err := zw.Create(filepath.ToSlash(relPath))
		if err != nil {
			return err
		}

		// Read via storage so encrypted documents come out decrypted
		file, err := store.OpenFile(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(f, file)
		return err
	})

	if err != nil {
		// Headers are already on the wire, so the best we can do is log
		log.Printf("Error creating backup: %v", err)
	}
}

// handleRestore extracts plan documents from an uploaded zip back into the
// data directory, preserving the archive's relative layout
func handleRestore(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(50 << 20); err != nil {
		web.ErrorResponse(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		web.ErrorResponse(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		web.ErrorResponse(w, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		web.ErrorResponse(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		web.ErrorResponse(w, "Invalid ZIP file", http.StatusBadRequest)
		return
	}

	restoredCount := 0
	for _, zipFile := range zipReader.File {
		if zipFile.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(zipFile.Name), ".json") {
			continue
		}

		relPath := filepath.FromSlash(zipFile.Name)
		if filepath.IsAbs(relPath) || strings.Contains(relPath, "..") {
			continue
		}

		rc, err := zipFile.Open()
		if err != nil {
			log.Printf("Error opening zip entry %s: %v", zipFile.Name, err)
			continue
		}

		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			log.Printf("Error reading zip entry %s: %v", zipFile.Name, err)
			continue
		}

		destPath := filepath.Join(cfg.DataDirectory, relPath)
		if err := store.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			log.Printf("Error creating directory for %s: %v", destPath, err)
			continue
		}
		// Write via storage so restored documents pick up at-rest encryption
		if err := store.WriteFile(destPath, data, 0644); err != nil {
			log.Printf("Error writing file %s: %v", destPath, err)
			continue
		}

		restoredCount++
		log.Printf("Restored document: %s", relPath)
	}

	if restoredCount == 0 {
		web.ErrorResponse(w, "No plan documents found in backup", http.StatusBadRequest)
		return
	}

	log.Printf("Restore complete: %d documents restored", restoredCount)
	web.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"restored": restoredCount,
	})
}

type encryptRequest struct {
	Password string `json:"password"`
}

// handleEnableEncryption turns on at-rest encryption for the data
// directory and re-writes existing plan documents encrypted
func handleEnableEncryption(w http.ResponseWriter, r *http.Request) {
	var req encryptRequest
	if err := web.DecodeJSON(r, &req); err != nil {
		web.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if store.IsEncrypted() {
		web.ErrorResponse(w, "Storage is already encrypted", http.StatusConflict)
		return
	}

	if err := store.EnableEncryption(req.Password); err != nil {
		web.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Println("At-rest encryption enabled")
	web.RespondJSON(w, http.StatusOK, map[string]string{"status": "encrypted"})
}
