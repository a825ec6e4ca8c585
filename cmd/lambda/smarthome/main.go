package main

import (
	"smarthome-skill-bridge/internal/config"
	"smarthome-skill-bridge/pkg/server"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

var manager = server.GetConnectionManager()

func init() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := manager.Initialize(cfg); err != nil {
		panic(err.Error())
	}
}

func main() {
	awslambda.Start(manager.Handle)
}
