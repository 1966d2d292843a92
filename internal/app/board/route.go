package board

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	boards := rg.Group("/boards/:slug")
	{
		boards.GET("", handler.GetBoard)
		boards.POST("/reload", handler.Reload)

		boards.POST("/columns", handler.AddColumn)
		boards.PATCH("/columns/order", handler.ReorderColumns)
		boards.PATCH("/columns/:id", handler.RenameColumn)
		boards.DELETE("/columns/:id", handler.DeleteColumn)

		boards.POST("/tasks", handler.AddTask)
		boards.PATCH("/tasks/move", handler.MoveTask)
		boards.PUT("/tasks/:id", handler.EditTask)
		boards.DELETE("/tasks/:id", handler.DeleteTask)
		boards.DELETE("/tasks/:id/attachments", handler.DeleteAttachment)
	}
}
