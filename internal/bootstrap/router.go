package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/filmschedule/filmschedule-backend/internal/api/http"
	"github.com/filmschedule/filmschedule-backend/internal/api/http/middleware"
	projecthttp "github.com/filmschedule/filmschedule-backend/internal/projects/http"
	"github.com/filmschedule/filmschedule-backend/internal/projects/service"
	"github.com/filmschedule/filmschedule-backend/internal/uploads"
	uploadhttp "github.com/filmschedule/filmschedule-backend/internal/uploads/http"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	APIPrefix      string
	CORSOrigins    []string
	RateLimitRPS   int
	RateLimitBurst int
	Projects       *service.ProjectService
	Logos          *uploads.LogoService
	Metrics        *middleware.Metrics
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	if dep.Metrics != nil {
		r.Use(dep.Metrics.Middleware())
		r.GET("/metrics", dep.Metrics.Handler())
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.Projects)
	healthHandler.RegisterRoutes(r)

	api := r.Group(dep.APIPrefix)
	if dep.RateLimitRPS > 0 {
		api.Use(middleware.NewRateLimiter(float64(dep.RateLimitRPS), dep.RateLimitBurst).Middleware())
	}
	healthHandler.RegisterRoutes(api)

	projectHandler := projecthttp.New(dep.Projects)
	projectHandler.Register(api.Group("/projects"))

	uploadHandler := uploadhttp.New(dep.Logos)
	uploadHandler.Register(api)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
