package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-workorder-service/entity"
	"github.com/tnqbao/gau-workorder-service/utils"
)

const availabilityDateLayout = "2006-01-02"

// GetAvailability answers "who is free for this range". The result is a
// snapshot: assignment re-validates, so a stale answer can only produce a
// conflict error, never a double booking.
func (ctrl *Controller) GetAvailability(c *gin.Context) {
	ctx := c.Request.Context()

	role := entity.UserRole(c.Query("role"))
	if role != entity.UserRoleLead && role != entity.UserRoleTech {
		utils.JSON400(c, "role must be lead or tech")
		return
	}

	start, err := time.Parse(availabilityDateLayout, c.Query("start"))
	if err != nil {
		utils.JSON400(c, "start must be a date formatted YYYY-MM-DD")
		return
	}
	end, err := time.Parse(availabilityDateLayout, c.Query("end"))
	if err != nil {
		utils.JSON400(c, "end must be a date formatted YYYY-MM-DD")
		return
	}

	users, err := ctrl.Engine.AvailableUsers(ctx, role, start, end, c.Query("exclude_job"))
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Availability] Resolve failed: %v", err)
		respondEngineError(c, err)
		return
	}

	utils.JSON200(c, gin.H{"available": users})
}
