package main

import (
	"fmt"
	"log"
	"net/http"

	"go.uber.org/zap"

	"github.com/caseworks/appraisal-case-api/api/handlers"
	"github.com/caseworks/appraisal-case-api/api/scheduler"
	"github.com/caseworks/appraisal-case-api/config"
)

func main() {
	a := handlers.App{}
	a.Config = *config.New()

	err := a.Initialize() //initialize databases, engine and router
	if err != nil {
		log.Fatal(err)
	}

	s := scheduler.NewScheduler(a.Store, a.Coordinator, &a.Config)
	s.Start()
	defer s.Stop()

	zap.S().Infow("appraisal-case-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
