package main

import (
	"context"
	"log"
	"net/http"

	"repairx/bizerror"
	"repairx/domain"
	"repairx/domain/job"
	"repairx/domain/job/checklist"
	"repairx/es"
	"repairx/event"
	"repairx/indices"
	"repairx/infra/tracing"
	"repairx/notify"
	"repairx/persistence"
	"repairx/servehttp"
	"repairx/session"

	"github.com/gin-gonic/gin"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(context.Background()).AutoMigrate(
		&domain.Job{}, &domain.JobTransition{}, &job.JobNumberSequence{},
		&checklist.CheckItem{}, &event.EventRecord{}, &notify.Record{}).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	tracerCfg, err := jaegercfg.FromEnv()
	if err != nil {
		log.Fatalf("parse tracing config failed %v\n", err)
	}
	tracerCloser, err := tracerCfg.InitGlobalTracer("repairx")
	if err != nil {
		log.Fatalf("tracer init failed %v\n", err)
	}
	defer tracerCloser.Close()

	if err := notify.BootstrapGatewayFromEnv(); err != nil {
		log.Fatalf("notification gateway bootstrap failed %v\n", err)
	}
	if err := es.BootstrapESClientFromEnv(); err != nil {
		log.Fatalf("elasticsearch bootstrap failed %v\n", err)
	}
	event.EventHandlers = append(event.EventHandlers, indices.IndexJobEventHandle)

	notifyCron := notify.StartRedeliveryCron()
	defer notifyCron.Stop()
	indicesCron := indices.StartCron()
	defer indicesCron.Stop()

	engine := gin.New()
	engine.Use(gin.Logger(), tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "repairx")
	})

	servehttp.RegisterJobsRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterJobTransitionsRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterCheckItemsRestAPI(engine, session.SimpleAuthFilter())
	servehttp.RegisterIndicesRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
