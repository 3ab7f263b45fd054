package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/openmall/openmall/config"
	"github.com/openmall/openmall/internal/app"
	"github.com/openmall/openmall/internal/shopapi"
	"github.com/openmall/openmall/internal/webserver"
)

var (
	cfile    = flag.String("c", "/etc/openmall.yml", "config file")
	initdb   = flag.Bool("initdb", false, "drop and recreate the database schema")
	showVer  = flag.Bool("v", false, "show version")
	version  = "dev"
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Println("openmall", version)
		return
	}

	_ = godotenv.Load()

	cfg := config.LoadConfig(*cfile)
	cfg.InitDirs()

	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initdb {
		application.InitDb()
		zap.S().Info("database initialized")
		return
	}

	server := webserver.Init(application)
	shopapi.InitRouter()

	errchan := make(chan error, 1)
	go func() {
		errchan <- server.Listen()
	}()

	sigchan := make(chan os.Signal, 1)
	signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errchan:
		if err != nil {
			zap.S().Errorf("web server error: %v", err)
		}
	case sig := <-sigchan:
		zap.S().Infof("received signal %s, shutting down", sig)
	}
}
