package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/term"

	json "github.com/goccy/go-json"

	"careplan/internal/config"
	"careplan/internal/handlers/backup"
	"careplan/internal/handlers/estimate"
	"careplan/internal/handlers/plans"
	"careplan/internal/handlers/wizard"
	"careplan/internal/models"
	"careplan/internal/services/plan"
	"careplan/internal/services/schema"
	"careplan/internal/services/storage"
	"careplan/internal/version"
)

var (
	cfg      *config.Config
	store    *storage.Storage
	resolved *models.ResolvedSchema
	mgr      *plan.Manager
)

func main() {
	cfg = config.Load()
	log.Printf("Starting Care Planner on %s", cfg.ListenAddr)
	log.Printf("Data directory: %s", cfg.DataDirectory)
	if warning := version.Get().Check(); warning != "" {
		log.Print(warning)
	}

	var err error
	store, err = storage.New(cfg.DataDirectory)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}

	if store.IsEncrypted() {
		if err := unlockStorage(store); err != nil {
			log.Fatalf("Failed to unlock storage: %v", err)
		}
		log.Printf("Storage unlocked")
	}

	if err := SetupDependencies(cfg); err != nil {
		log.Fatalf("%v", err)
	}

	r := SetupRouter()

	log.Printf("Server starting on %s", cfg.ListenAddr)
	log.Fatal(http.ListenAndServe(cfg.ListenAddr, r))
}

// unlockStorage prompts for the password on a terminal, falling back to
// CARE_STORAGE_PASSWORD for non-interactive runs
func unlockStorage(store *storage.Storage) error {
	if password := os.Getenv("CARE_STORAGE_PASSWORD"); password != "" {
		return store.Unlock(password)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("storage is encrypted; set CARE_STORAGE_PASSWORD or run interactively")
	}

	fmt.Fprint(os.Stderr, "Storage password: ")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	return store.Unlock(string(password))
}

// SetupDependencies loads the schema documents, resolves them, and wires
// the service layer. A schema problem here is fatal: the form cannot
// render without a valid resolved schema.
func SetupDependencies(c *config.Config) error {
	cfg = c

	if store == nil {
		var err error
		store, err = storage.New(c.DataDirectory)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
	}

	base, err := schema.LoadFile(store, c.BaseSchemaFile)
	if err != nil {
		return fmt.Errorf("base schema: %w", err)
	}

	var overlay *models.Overlay
	if _, err := store.Stat(c.OverlayFile); err == nil {
		overlay, err = schema.LoadOverlayFile(store, c.OverlayFile)
		if err != nil {
			return fmt.Errorf("overlay: %w", err)
		}
	}

	resolved, err = schema.Resolve(base, overlay)
	if err != nil {
		return fmt.Errorf("resolve schema: %w", err)
	}
	log.Printf("Resolved schema: %d groups, %d fields", len(resolved.Groups), len(resolved.Fields()))

	mgr = plan.NewManager(store, resolved, c.CurrentPlanFile)
	if err := mgr.Load(); err != nil {
		// a broken working plan should not block startup
		log.Printf("Warning: could not load saved plan, starting from defaults: %v", err)
	}

	wizard.Initialize(mgr, resolved)
	estimate.Initialize(mgr, resolved)
	plans.Initialize(cfg, store, mgr, resolved)
	backup.Initialize(cfg, store)

	return nil
}

// SetupRouter builds the chi router with all routes registered
func SetupRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	wizard.RegisterRoutes(r)
	estimate.RegisterRoutes(r)
	plans.RegisterRoutes(r)
	backup.RegisterRoutes(r)

	r.Get("/api/health", handleHealth)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": version.Get(),
	})
}
