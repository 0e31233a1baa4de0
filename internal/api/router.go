package api

import (
	"hunter_api/internal/cache"      // List cache
	"hunter_api/internal/middleware" // Auth middleware
	"hunter_api/internal/tasks"      // Notification jobs
	"net/http"                       // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// Deps are the shared backends every handler draws from
type Deps struct {
	DB     *gorm.DB         // Entity store
	Lists  *cache.ListCache // List page cache
	Jobs   tasks.Enqueuer   // Notification queue
	Tokens TokenSettings    // JWT settings
}

// access says who may call a group of routes
type access int

const (
	anyone access = iota
	authenticated
	staff
)

// resource wires the five CRUD routes of one entity
type resource struct {
	path   string
	read   access
	list   gin.HandlerFunc
	get    gin.HandlerFunc
	create gin.HandlerFunc
	update func(partial bool) gin.HandlerFunc
	delete gin.HandlerFunc
}

// RegisterRoutes mounts the API on r
func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.JWTAuthMiddleware(d.Tokens.Secret)         // Token required
	optional := middleware.OptionalJWTMiddleware(d.Tokens.Secret) // Token checked when present
	staffOnly := middleware.StaffOnlyMiddleware(d.DB)             // Staff flag required

	guards := map[access][]gin.HandlerFunc{
		anyone:        {optional},
		authenticated: {auth},
		staff:         {auth, staffOnly},
	}

	apiGroup := r.Group("/api")
	// Token routes
	apiGroup.POST("/token", TokenHandler(d.DB, d.Tokens))                // Obtain access and refresh tokens
	apiGroup.POST("/token/refresh", RefreshHandler(d.DB, d.Tokens))      // Exchange a refresh token
	apiGroup.POST("/verify-password", auth, VerifyPasswordHandler(d.DB)) // Check the caller's password

	resources := []resource{
		{
			path:   "/hunters",
			read:   anyone,
			list:   ListHuntersHandler(d.DB, d.Lists),
			get:    GetHunterHandler(d.DB),
			create: CreateHunterHandler(d.DB, d.Lists, d.Jobs),
			update: func(p bool) gin.HandlerFunc { return UpdateHunterHandler(d.DB, d.Lists, p) },
			delete: DeleteHunterHandler(d.DB, d.Lists),
		},
		{
			path:   "/guilds",
			read:   authenticated,
			list:   ListGuildsHandler(d.DB, d.Lists),
			get:    GetGuildHandler(d.DB),
			create: CreateGuildHandler(d.DB, d.Lists, d.Jobs),
			update: func(p bool) gin.HandlerFunc { return UpdateGuildHandler(d.DB, d.Lists, p) },
			delete: DeleteGuildHandler(d.DB, d.Lists),
		},
		{
			path:   "/skills",
			read:   anyone,
			list:   ListSkillsHandler(d.DB, d.Lists),
			get:    GetSkillHandler(d.DB),
			create: CreateSkillHandler(d.DB, d.Lists),
			update: func(p bool) gin.HandlerFunc { return UpdateSkillHandler(d.DB, d.Lists, p) },
			delete: DeleteSkillHandler(d.DB, d.Lists),
		},
		{
			path:   "/dungeons",
			read:   anyone,
			list:   ListDungeonsHandler(d.DB, d.Lists),
			get:    GetDungeonHandler(d.DB),
			create: CreateDungeonHandler(d.DB, d.Lists),
			update: func(p bool) gin.HandlerFunc { return UpdateDungeonHandler(d.DB, d.Lists, p) },
			delete: DeleteDungeonHandler(d.DB, d.Lists),
		},
		{
			path:   "/raids",
			read:   anyone,
			list:   ListRaidsHandler(d.DB, d.Lists),
			get:    GetRaidHandler(d.DB),
			create: CreateRaidHandler(d.DB, d.Lists, d.Jobs),
			update: func(p bool) gin.HandlerFunc { return UpdateRaidHandler(d.DB, d.Lists, p) },
			delete: DeleteRaidHandler(d.DB, d.Lists),
		},
		{
			path:   "/raid-participations",
			read:   authenticated,
			list:   ListParticipationsHandler(d.DB, d.Lists),
			get:    GetParticipationHandler(d.DB),
			create: CreateParticipationHandler(d.DB, d.Lists),
			update: func(p bool) gin.HandlerFunc { return UpdateParticipationHandler(d.DB, d.Lists, p) },
			delete: DeleteParticipationHandler(d.DB, d.Lists),
		},
	}
	for _, res := range resources {
		reads := apiGroup.Group(res.path, guards[res.read]...)
		reads.GET("", res.list)
		reads.GET("/:id", res.get)

		writes := apiGroup.Group(res.path, guards[staff]...)
		writes.POST("", res.create)
		writes.PUT("/:id", res.update(false))
		writes.PATCH("/:id", res.update(true))
		writes.DELETE("/:id", res.delete)
	}

	// Invitations
	apiGroup.POST("/guild-invite", auth, GuildInviteHandler(d.DB, d.Jobs))          // Leader invites a hunter
	apiGroup.POST("/raid-invite", auth, staffOnly, RaidInviteHandler(d.DB, d.Jobs)) // Staff invites a hunter
}
