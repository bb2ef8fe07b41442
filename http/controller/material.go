package controller

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tnqbao/gau-workorder-service/entity"
	"github.com/tnqbao/gau-workorder-service/http/controller/dto"
	"github.com/tnqbao/gau-workorder-service/infra"
	"github.com/tnqbao/gau-workorder-service/utils"
)

const (
	materialCatalogCacheKey = "workorder:materials:catalog"
	materialCatalogCacheTTL = 5 * time.Minute
)

func (ctrl *Controller) CreateMaterial(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateMaterialRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Material] Failed to bind JSON: %v", err)
		utils.JSON400(c, "Invalid request payload")
		return
	}

	material := &entity.Material{
		ID:       uuid.New(),
		Name:     req.Name,
		Category: req.Category,
		Unit:     req.Unit,
		Stock:    req.Stock,
	}
	if err := ctrl.Repository.MaterialRepo.Create(ctx, material); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Material] Failed to create material: %v", err)
		utils.JSON500(c, "Failed to create material")
		return
	}

	if err := ctrl.Infra.Redis.Delete(ctx, materialCatalogCacheKey); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Material] Failed to invalidate catalog cache: %v", err)
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[Material] Created material %s (%s)", material.Name, material.ID)
	utils.JSON201(c, gin.H{
		"message":  "Material created",
		"material": material,
	})
}

func (ctrl *Controller) ListMaterials(c *gin.Context) {
	ctx := c.Request.Context()

	var cached []entity.Material
	if err := ctrl.Infra.Redis.Get(ctx, materialCatalogCacheKey, &cached); err == nil {
		utils.JSON200(c, gin.H{"materials": cached})
		return
	} else if err != infra.ErrCacheMiss {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Material] Catalog cache read failed: %v", err)
	}

	materials, err := ctrl.Engine.ListMaterials(ctx)
	if err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[Material] Failed to list materials: %v", err)
		utils.JSON500(c, "Failed to list materials")
		return
	}

	if err := ctrl.Infra.Redis.Set(ctx, materialCatalogCacheKey, materials, materialCatalogCacheTTL); err != nil {
		ctrl.Infra.Logger.WarningWithContextf(ctx, "[Material] Catalog cache write failed: %v", err)
	}

	utils.JSON200(c, gin.H{"materials": materials})
}

func (ctrl *Controller) GetMaterial(c *gin.Context) {
	ctx := c.Request.Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.JSON400(c, "Invalid material id")
		return
	}

	material, err := ctrl.Engine.GetMaterial(ctx, id)
	if err != nil {
		respondEngineError(c, err)
		return
	}
	utils.JSON200(c, gin.H{"material": material})
}

func (ctrl *Controller) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateUserRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSON400(c, "Invalid request payload")
		return
	}

	user := &entity.User{
		ID:         uuid.New(),
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Role:       entity.UserRole(req.Role),
	}
	if err := ctrl.Repository.UserRepo.Create(ctx, user); err != nil {
		ctrl.Infra.Logger.ErrorWithContextf(ctx, err, "[User] Failed to create user: %v", err)
		utils.JSON500(c, "Failed to create user")
		return
	}

	ctrl.Infra.Logger.InfoWithContextf(ctx, "[User] Created %s %s (%s)", user.Role, user.Name, user.ID)
	utils.JSON201(c, gin.H{
		"message": "User created",
		"user":    user,
	})
}
