package handler

import (
	"acupuntos/internal/models"
	"acupuntos/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupAdmin struct {
	container *do.Injector
}

type assignPointsPayload struct {
	UserID      string `json:"userId"`
	Points      int    `json:"points"`
	Description string `json:"description"`
}

type redemptionStatusPayload struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

type configPayload struct {
	Value string `json:"value"`
}

func (gr *groupAdmin) GetStatistics(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	stats, err := serviceUser.GetStatistics(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, stats, nil)
}

func (gr *groupAdmin) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceUser, err := do.Invoke[*services.ServiceUser](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	users, err := serviceUser.ListUsers(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, users, nil)
}

// AssignPoints credits points to any user, recorded as a reward
// transaction.
func (gr *groupAdmin) AssignPoints(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload assignPointsPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceLedger, err := do.Invoke[*services.ServiceLedger](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	record, err := serviceLedger.AssignPoints(ctx, payload.UserID, payload.Points, payload.Description)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, record, nil)
}

func (gr *groupAdmin) GetRedemptions(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceRedemption, err := do.Invoke[*services.ServiceRedemption](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	var redemptions []*models.Redemption
	if c.QueryParam("status") == models.RedemptionPending {
		redemptions, err = serviceRedemption.GetPendingRedemptions(ctx)
	} else {
		redemptions, err = serviceRedemption.GetAllRedemptions(ctx)
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, redemptions, nil)
}

func (gr *groupAdmin) SetRedemptionStatus(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload redemptionStatusPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceRedemption, err := do.Invoke[*services.ServiceRedemption](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	redemption, err := serviceRedemption.SetStatus(ctx, c.Param("id"), payload.Status, payload.Notes)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, redemption, nil)
}

func (gr *groupAdmin) GetRewards(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	rewards, err := serviceReward.GetAllRewards(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, rewards, nil)
}

func (gr *groupAdmin) CreateReward(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var reward models.Reward
	if err := c.Bind(&reward); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	created, err := serviceReward.CreateReward(ctx, &reward)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, created, nil)
}

func (gr *groupAdmin) UpdateReward(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var reward models.Reward
	if err := c.Bind(&reward); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	reward.ID = c.Param("id")

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	updated, err := serviceReward.UpdateReward(ctx, &reward)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, updated, nil)
}

func (gr *groupAdmin) DeleteReward(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceReward, err := do.Invoke[*services.ServiceReward](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	if err := serviceReward.DeleteReward(ctx, c.Param("id")); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, "success", nil)
}

func (gr *groupAdmin) GetBadges(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	badges, err := serviceGamification.GetAllBadges(ctx)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, badges, nil)
}

func (gr *groupAdmin) CreateBadge(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var badge models.Badge
	if err := c.Bind(&badge); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	created, err := serviceGamification.CreateBadge(ctx, &badge)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, created, nil)
}

func (gr *groupAdmin) UpdateBadge(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var badge models.Badge
	if err := c.Bind(&badge); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}
	badge.ID = c.Param("id")

	serviceGamification, err := do.Invoke[*services.ServiceGamification](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	updated, err := serviceGamification.UpdateBadge(ctx, &badge)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, updated, nil)
}

func (gr *groupAdmin) SetConfig(c echo.Context) error {
	ctx := c.Request().Context()

	if _, err := ResolveAdmin(ctx, gr.container); err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload configPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	serviceConfig, err := do.Invoke[*services.ServiceConfig](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	config, err := serviceConfig.SetConfig(ctx, c.Param("key"), payload.Value)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	return httpx.RestAbort(c, config, nil)
}
