package main

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"log"
	"os"

	"tilemask/internal/config"
	"tilemask/internal/maps"
	"tilemask/internal/rules"
	"tilemask/internal/server"
	"tilemask/internal/telemetry"
	"tilemask/internal/world"
)

func main() {
	log.SetFlags(log.Ltime | log.Lshortfile)

	cfg := config.Load()
	ctx := context.Background()

	tracer := telemetry.NoopTracer()
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			log.Printf("Warning: telemetry setup failed: %v", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Printf("Error shutting down telemetry: %v", err)
				}
			}()
			tracer = telemetry.Tracer("inspector")
		}
	}

	// Generate host key if it doesn't exist
	if err := ensureHostKey(cfg.HostKey); err != nil {
		log.Fatalf("Host key error: %v", err)
	}

	reg, err := loadRules(cfg.RulesDir)
	if err != nil {
		log.Fatalf("Failed to load rules from %s: %v", cfg.RulesDir, err)
	}
	log.Printf("Rule tables: %v", reg.Names())

	allMaps, err := maps.LoadMaps(cfg.MapsDir)
	if err != nil || len(allMaps) == 0 {
		log.Printf("Could not load maps from %s: %v, using default map", cfg.MapsDir, err)
		dm := maps.DefaultMap()
		allMaps = map[string]*maps.Map{dm.Name: dm}
	}
	for name, m := range allMaps {
		log.Printf("Map loaded: %s (%dx%d, %d kinds)", name, m.Width, m.Height, len(m.Kinds))
	}

	w, err := world.New(allMaps, reg)
	if err != nil {
		log.Fatalf("Failed to build tilemaps: %v", err)
	}

	sshServer := server.NewSSHServer(cfg.Addr, cfg.HostKey, w, tracer)
	log.Printf("Starting tilemask inspector, try: ssh -p %s localhost list", portOf(cfg.Addr))
	if err := sshServer.Start(); err != nil {
		log.Fatalf("SSH server error: %v", err)
	}
}

// loadRules falls back to the built-in tables when the rules directory is
// absent.
func loadRules(dir string) (*rules.Registry, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return rules.Builtin()
	}
	return rules.LoadDir(dir)
}

func portOf(addr string) string {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[i+1:]
		}
	}
	return addr
}

func ensureHostKey(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil // key already exists
	}

	log.Println("Generating new host key...")
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}

	keyBytes, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return err
	}

	pemBlock := &pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: keyBytes,
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	return pem.Encode(f, pemBlock)
}
