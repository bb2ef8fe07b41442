package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-workorder-service/http/controller"
	middlewares "github.com/tnqbao/gau-workorder-service/http/middleware"
)

func SetupRouter(ctrl *controller.Controller) *gin.Engine {
	r := gin.Default()
	middles, err := middlewares.NewMiddlewares(ctrl)
	if err != nil {
		panic(err)
	}

	r.Use(middles.CORSMiddleware)

	apiRoutes := r.Group("/api/v1/workorder")
	{
		apiRoutes.Use(middles.AuthMiddleware)

		jobRoutes := apiRoutes.Group("/jobs")
		{
			jobRoutes.POST("/", ctrl.CreateJob)
			jobRoutes.GET("/", ctrl.ListJobs)
			jobRoutes.GET("/:id", ctrl.GetJob)
			jobRoutes.PUT("/:id", ctrl.UpdateJob)
			jobRoutes.DELETE("/:id", ctrl.DeleteJob)
			jobRoutes.POST("/:id/acknowledge", ctrl.AcknowledgeJob)
			jobRoutes.POST("/:id/complete", ctrl.CompleteJob)
			jobRoutes.POST("/:id/lead", ctrl.AssignLead)
			jobRoutes.POST("/:id/technicians", ctrl.AssignTechnicians)

			// Task pipeline (nested under job)
			jobRoutes.POST("/:id/tasks", ctrl.CreateTask)
			jobRoutes.POST("/:id/tasks/:task_id/advance", ctrl.AdvanceTask)
			jobRoutes.POST("/:id/tasks/:task_id/reject", ctrl.RejectTask)
			jobRoutes.POST("/:id/tasks/:task_id/progress", ctrl.SubmitTaskProgress)
			jobRoutes.POST("/:id/tasks/:task_id/materials", ctrl.WithdrawMaterials)
		}

		materialRoutes := apiRoutes.Group("/materials")
		{
			materialRoutes.POST("/", ctrl.CreateMaterial)
			materialRoutes.GET("/", ctrl.ListMaterials)
			materialRoutes.GET("/:id", ctrl.GetMaterial)
		}

		userRoutes := apiRoutes.Group("/users")
		{
			userRoutes.POST("/", ctrl.CreateUser)
		}

		apiRoutes.GET("/availability", ctrl.GetAvailability)
		apiRoutes.POST("/images", ctrl.UploadTaskImage)
	}
	return r
}
