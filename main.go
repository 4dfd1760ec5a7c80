package main

import (
	"livestream-pipeline/app"
	"livestream-pipeline/pkg/observability"
)

func main() {
	stop := observability.StartProfiling("livestream-pipeline")
	defer stop()
	app.Run()
}
