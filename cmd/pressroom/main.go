package main

import (
	"pressroom/cmd/handlers"
	"pressroom/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
