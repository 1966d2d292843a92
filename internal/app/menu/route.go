package menu

import "github.com/gin-gonic/gin"

func RegisterRoutes(rg *gin.RouterGroup, handler Handler) {
	menu := rg.Group("/menu")
	{
		menu.GET("", handler.GetMenu)
		menu.POST("", handler.CreateItem)
		menu.PATCH("/order", handler.ReorderItems)
		menu.DELETE("/:id", handler.DeleteItem)
	}
}
