package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/launchpadhq/schoolhub/internal/config"
	"github.com/launchpadhq/schoolhub/internal/domain/profile"
	"github.com/launchpadhq/schoolhub/internal/http/handlers"
	"github.com/launchpadhq/schoolhub/internal/http/middlewares"
	"github.com/launchpadhq/schoolhub/internal/observability"
)

// Deps carries everything the router wires; main builds it once.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Prom     *observability.Prom
	Registry *prometheus.Registry
	Auth     *middlewares.AuthMiddleware
	Ping     func() error

	Students      *handlers.StudentHandler
	Teachers      *handlers.TeacherHandler
	AdminStudents *handlers.AdminStudentsHandler
	AdminTeachers *handlers.AdminTeachersHandler
	AdminClasses  *handlers.AdminClassesHandler
	Subjects      *handlers.SubjectsHandler
	Reports       *handlers.ReportsHandler
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(otelgin.Middleware("schoolhub"))
	r.Use(RequestLogger(d.Log))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.AllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20)) // 1 MiB

	limiter := middlewares.NewRateLimiter(300, time.Minute)
	r.Use(limiter.Middleware(middlewares.KeyBySubjectOrIP))

	// health + metrics
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// student routes
	student := r.Group("/student", d.Auth.RequireAuth(), d.Auth.RequireRole(profile.RoleStudent))
	student.GET("/profile", d.Students.GetProfile)
	student.POST("/work-experience", d.Students.AddWorkExperience)
	student.POST("/assessment", d.Students.SubmitAssessment)

	// teacher routes
	teacher := r.Group("/teacher", d.Auth.RequireAuth(), d.Auth.RequireRole(profile.RoleTeacher))
	teacher.GET("/students", d.Teachers.ListStudents)
	teacher.GET("/students/:id", d.Teachers.GetStudent)
	teacher.PUT("/comments", d.Teachers.SaveComment)
	teacher.GET("/students/:id/classes/:classId/comment", d.Teachers.GetComment)
	teacher.DELETE("/students/:id/classes/:classId/comment", d.Teachers.DeleteComment)

	// admin routes
	admin := r.Group("/admin", d.Auth.RequireAuth(), d.Auth.RequireRole(profile.RoleAdmin))

	admin.GET("/students", d.AdminStudents.List)
	admin.GET("/students/:id", d.AdminStudents.Get)
	admin.POST("/students", d.AdminStudents.Add)
	admin.PUT("/students/:id", d.AdminStudents.Update)
	admin.DELETE("/students/:id", d.AdminStudents.Delete)

	admin.GET("/teachers", d.AdminTeachers.List)
	admin.GET("/teachers/:id", d.AdminTeachers.Get)
	admin.POST("/teachers", d.AdminTeachers.Add)
	admin.PUT("/teachers/:id", d.AdminTeachers.Update)
	admin.DELETE("/teachers/:id", d.AdminTeachers.Delete)

	admin.GET("/subjects", d.Subjects.List)

	admin.GET("/classes", d.AdminClasses.List)
	admin.POST("/classes", d.AdminClasses.Create)
	admin.PUT("/classes/:id", d.AdminClasses.Update)
	admin.DELETE("/classes/:id", d.AdminClasses.Delete)

	admin.GET("/stats", d.Reports.Stats)
	admin.GET("/reports/summary", d.Reports.Summary)

	return r
}
