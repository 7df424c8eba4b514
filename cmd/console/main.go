package main

import (
	"log"
	"os"

	"github.com/benbeisheim/shadowchess/internal/config"
	"github.com/benbeisheim/shadowchess/internal/console"
)

func main() {
	cfg, err := config.Load(os.Args[0], os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	driver := console.NewDriver(os.Stdin, os.Stdout, cfg.WhiteName, cfg.BlackName)
	if _, err := driver.Run(); err != nil {
		log.Fatal(err)
	}
}
