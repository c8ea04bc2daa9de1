package handler

import (
	"net/http"

	"acupuntos/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo-contrib/pprof"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do"
)

type Config struct {
	Container *do.Injector
	Mode      string
	Origins   []string
}

func New(cfg *Config) (http.Handler, error) {
	r := echo.New()
	r.Pre(middleware.RemoveTrailingSlash())
	if cfg.Mode == "debug" {
		r.Debug = true
		pprof.Register(r)
	}

	r.JSONSerializer = httpx.SegmentJSONSerializer{}
	r.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339}\t${method}\t${uri}\t${status}\t${latency_human}\n",
	}))
	r.Use(middleware.Recover())

	r.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, "⭐")
	})

	routesAPIv1 := r.Group("/api/v1")
	{
		authentication, err := do.Invoke[*services.Authentication](cfg.Container)
		if err != nil {
			return nil, err
		}
		cors := middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     cfg.Origins,
			AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
			AllowCredentials: true,
			MaxAge:           60 * 60,
		})

		routesAPIv1.Use(cors)
		routesAPIv1.Use(Authn(authentication)) // Authn will NOT terminate unauthenticated requests.
		routesAPIv1.GET("", Hello)

		u := groupUser{cfg.Container}
		routesAPIv1.GET("/user/me", u.Me)
		routesAPIv1.GET("/users", u.Search)
		routesAPIv1.GET("/user/:id", u.Show)

		le := groupLedger{cfg.Container}
		routesAPIv1.GET("/balance", le.GetBalance)
		routesAPIv1.GET("/transactions", le.GetTransactions)
		routesAPIv1.POST("/transfer", le.Transfer)

		g := groupGamification{cfg.Container}
		routesAPIv1.POST("/checkin", g.DailyCheckIn)
		routesAPIv1.GET("/stats", g.GetStats)
		routesAPIv1.GET("/badges", g.GetUserBadges)
		routesAPIv1.GET("/badges/catalog", g.GetActiveBadges)
		routesAPIv1.GET("/badges/feed", g.GetBadgeFeed)
		routesAPIv1.PUT("/badges/:id/display", g.SetBadgeDisplayed)

		rw := groupReward{cfg.Container}
		routesAPIv1.GET("/rewards", rw.GetActiveRewards)
		routesAPIv1.POST("/rewards/:id/redeem", rw.Redeem)
		routesAPIv1.GET("/redemptions", rw.GetMyRedemptions)

		lb := groupLeaderboard{cfg.Container}
		routesAPIv1.GET("/leaderboard", lb.GetTop)
		routesAPIv1.GET("/leaderboard/me", lb.GetMyRank)

		routesAPIv1Admin := routesAPIv1.Group("/admin")
		{
			a := groupAdmin{cfg.Container}
			routesAPIv1Admin.GET("/statistics", a.GetStatistics)
			routesAPIv1Admin.GET("/users", a.GetUsers)
			routesAPIv1Admin.POST("/points/assign", a.AssignPoints)
			routesAPIv1Admin.GET("/redemptions", a.GetRedemptions)
			routesAPIv1Admin.PUT("/redemptions/:id/status", a.SetRedemptionStatus)
			routesAPIv1Admin.GET("/rewards", a.GetRewards)
			routesAPIv1Admin.POST("/rewards", a.CreateReward)
			routesAPIv1Admin.PUT("/rewards/:id", a.UpdateReward)
			routesAPIv1Admin.DELETE("/rewards/:id", a.DeleteReward)
			routesAPIv1Admin.GET("/badges", a.GetBadges)
			routesAPIv1Admin.POST("/badges", a.CreateBadge)
			routesAPIv1Admin.PUT("/badges/:id", a.UpdateBadge)
			routesAPIv1Admin.PUT("/config/:key", a.SetConfig)
		}
	}

	return r, nil
}

func Hello(c echo.Context) error {
	return httpx.RestAbort(c, "hello world", nil)
}
