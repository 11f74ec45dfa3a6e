package routes

import (
	"net/http"

	"vanita/auth"
	"vanita/filemgr"
	"vanita/menu"
	"vanita/middleware"
	"vanita/notify"
	"vanita/orders"
	"vanita/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddAuthRoutes(router *httprouter.Router) {
	router.POST("/api/login", auth.Login)
	router.POST("/api/logout", middleware.Authenticate(auth.Logout))
	router.POST("/api/auth/refresh", auth.Refresh)
	router.GET("/api/auth/user", middleware.Authenticate(auth.CurrentUser))
}

func AddMenuRoutes(router *httprouter.Router) {
	router.GET("/api/menu", menu.GetPublicMenu)

	router.GET("/api/admin/menu", middleware.AdminOnly(menu.GetMenuItems))
	router.POST("/api/admin/menu", middleware.AdminOnly(menu.CreateMenuItem))
	router.PUT("/api/admin/menu/:id", middleware.AdminOnly(menu.UpdateMenuItem))
	router.DELETE("/api/admin/menu/:id", middleware.AdminOnly(menu.DeleteMenuItem))
}

func AddOrderRoutes(router *httprouter.Router, h *orders.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/orders", rl.Limit(h.PlaceOrder))
	router.GET("/api/orders/:id", h.GetOrder)
	router.GET("/api/orders/:id/receipt", h.Receipt)

	router.GET("/api/admin/orders", middleware.AdminOnly(h.ListOrders))
	router.GET("/api/admin/orders/:id", middleware.AdminOnly(h.GetOrder))
	router.PUT("/api/admin/orders/:id/status", middleware.AdminOnly(h.UpdateStatus))
	router.GET("/api/admin/stats", middleware.AdminOnly(h.GetStats))
}

func AddNotifyRoutes(router *httprouter.Router, hub *notify.Hub) {
	router.GET("/ws", notify.WebSocketHandler(hub))
}

func AddStaticRoutes(router *httprouter.Router) {
	router.ServeFiles("/uploads/*filepath", http.Dir(filemgr.UploadDir))
}
