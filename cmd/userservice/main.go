package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/chatapp/internal/userservice"
	"github.com/dmitrijs2005/chatapp/internal/userservice/config"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := userservice.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
