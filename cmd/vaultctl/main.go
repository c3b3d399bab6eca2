package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/MrSnakeDoc/vault/internal/catalog"
	"github.com/MrSnakeDoc/vault/internal/cli"
	"github.com/MrSnakeDoc/vault/internal/config"
	"github.com/MrSnakeDoc/vault/internal/logger"
	"github.com/MrSnakeDoc/vault/internal/session"
	"github.com/MrSnakeDoc/vault/internal/utils"
	"github.com/MrSnakeDoc/vault/internal/vaultclient"
	"github.com/MrSnakeDoc/vault/internal/version"
	"github.com/MrSnakeDoc/vault/internal/voice"
)

func main() {
	cfg := config.LoadClient()

	server := flag.String("server", cfg.ServerURL, "vault server base URL")
	confirmURL := flag.String("confirm-url", "", "payment return address to apply on start")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("vaultctl", version.String())
		return
	}
	cfg.ServerURL = strings.TrimRight(*server, "/")

	lg := logger.New(cfg.LogLevel, true)
	defer func() { _ = lg.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := vaultclient.New(cfg.ServerURL, cfg.HTTPTimeout, lg)

	personas := catalog.Default()
	if remote, err := api.Personas(ctx); err != nil {
		lg.Warn("using built-in persona catalog", logger.Error(err))
	} else if c, err := catalog.New(remote); err != nil {
		lg.Warn("server persona catalog rejected", logger.Error(err))
	} else {
		personas = c
	}

	ctrl := session.New(session.Config{
		Personas: personas,
		Journal:  api,
		Billing:  api,
		Chat:     api,
		Health:   api,
		Logger:   lg,
	})
	if err := ctrl.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "⚠️  vault server not fully reachable at %s: %v\n", cfg.ServerURL, err)
	}

	var dictation *voice.Session
	if cfg.DictationFile != "" {
		f, err := os.Open(cfg.DictationFile)
		if err != nil {
			log.Fatalf("❌ open dictation source: %v", err)
		}
		defer utils.LogClose(lg, "dictation source", f)
		dictation = voice.NewSession(voice.NewLineRecognizer(f), lg)
	}

	scanner := bufio.NewScanner(os.Stdin)
	app := cli.NewApp(ctrl, cli.Options{
		Email:   cfg.Email,
		Voice:   dictation,
		Logger:  lg,
		Out:     os.Stdout,
		Confirm: cli.ScannerConfirm(scanner),
	})

	if *confirmURL != "" {
		if u, err := url.Parse(*confirmURL); err != nil {
			lg.Warn("ignoring malformed -confirm-url", logger.Error(err))
		} else if conf, _ := ctrl.ApplyPendingConfirmation(u); conf.Applied {
			fmt.Println("★ " + conf.Message)
		}
	}

	app.Root(ctx, scanner)
}
