package main

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"gengallery/internal/api"
	"gengallery/internal/auth"
	"gengallery/internal/config"
	"gengallery/internal/preview"
	"gengallery/internal/store"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load(os.Getenv("GALLERY_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.SessionSecret == "" {
		// Without a configured secret, sessions do not survive a
		// restart.
		cfg.Auth.SessionSecret = randomSecret()
		log.Warn("auth.session_secret not set, generated an ephemeral one")
	}

	// Admin account bootstrap: first run creates the account file from
	// the configured credentials.
	accounts := auth.NewAccountStore(cfg.Auth.AccountFile)
	if !accounts.Exists() {
		if cfg.Auth.AdminPassword == "" {
			log.Warn("no admin account and auth.admin_password not set; review endpoints stay locked")
		} else {
			if err := os.MkdirAll(cfg.Dirs.Data, 0755); err != nil {
				log.Fatalf("failed to create data directory: %v", err)
			}
			if err := accounts.Create(cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
				log.Fatalf("failed to create admin account: %v", err)
			}
			log.Infof("created admin account %q", cfg.Auth.AdminUsername)
		}
	}

	decoder := preview.NewFFmpegDecoder()
	if !decoder.Available() {
		log.Warn("ffmpeg not found on PATH, video thumbnails disabled")
	}
	previews := preview.NewGenerator(cfg.Dirs.Thumbnails, decoder, log)

	recordStore, err := store.New(store.Config{
		DataDir:      cfg.Dirs.Data,
		UploadDir:    cfg.Dirs.Uploads,
		GeneratedDir: cfg.Dirs.Generated,
	}, previews, log)
	if err != nil {
		log.Fatalf("failed to initialize record store: %v", err)
	}

	apiServer := api.NewServer(cfg, recordStore, accounts, log)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	log.Infof("starting gallery server on %s", addr)
	log.Infof("gallery UI: http://localhost:%s/", cfg.Server.Port)
	log.Infof("records API: http://localhost:%s/api/records", cfg.Server.Port)

	if err := http.ListenAndServe(addr, apiServer.GetRouter()); err != nil {
		log.Fatalf("HTTP server failed: %v", err)
	}
}

func randomSecret() string {
	b := make([]byte, 32)
	rand.Read(b)
	return hex.EncodeToString(b)
}
