package httpserver

import (
	authmw "github.com/Skotchmaster/shopcore/internal/middleware/auth"
	"github.com/labstack/echo/v4"
)

type Deps struct {
	JWTSecret []byte

	Health        *HealthHTTP
	Auth          *AuthHTTP
	Products      *ProductHTTP
	Cart          *CartHTTP
	Orders        *OrderHTTP
	Coupons       *CouponHTTP
	Notifications *NotificationHTTP
	VaccineStock  *VaccineStockHTTP
	Socket        *SocketHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", d.Health.Live)
	e.GET("/health/ready", d.Health.Ready)

	requireAuth := authmw.RequireAuth(d.JWTSecret)
	admin := authmw.RequireAdmin

	e.GET("/ws", d.Socket.Serve, requireAuth)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, requireAuth)

	products := api.Group("/products")
	products.GET("", d.Products.GetProducts)
	products.GET("/search", d.Products.Search)
	products.GET("/:id", d.Products.GetProduct)
	products.GET("/:id/reviews", d.Products.ListReviews)
	products.POST("/:id/reviews", d.Products.AddReview, requireAuth)
	products.POST("", d.Products.CreateProduct, requireAuth, admin)
	products.PATCH("/:id", d.Products.PatchProduct, requireAuth, admin)
	products.DELETE("/:id", d.Products.DeleteProduct, requireAuth, admin)

	cart := api.Group("/cart", requireAuth)
	cart.POST("/add", d.Cart.AddToCart)
	cart.POST("/clear", d.Cart.Clear)
	cart.POST("/checkout", d.Cart.Checkout)
	cart.GET("/:userId", d.Cart.GetCart)
	cart.PUT("/:userId/items/:productId", d.Cart.UpdateItem)
	cart.DELETE("/:userId/items/:productId", d.Cart.RemoveItem)

	orders := api.Group("/orders", requireAuth)
	orders.GET("", d.Orders.ListOrders)
	orders.GET("/:orderId", d.Orders.GetOrder)
	orders.POST("/:orderId/pay", d.Orders.Pay)
	orders.PUT("/:orderId/ship", d.Orders.Ship, admin)
	orders.PUT("/:orderId/cancel", d.Orders.Cancel)
	orders.PUT("/:orderId/reopen", d.Orders.Reopen)
	orders.PUT("/:orderId/deliver", d.Orders.Deliver)
	orders.PUT("/:orderId/review", d.Orders.Review)
	orders.POST("/:orderId/reorder-to-cart", d.Orders.ReorderToCart)
	orders.DELETE("/:orderId", d.Orders.DeleteOrder)

	coupon := api.Group("/coupon")
	coupon.POST("/generate-and-store", d.Coupons.GenerateAndStore, requireAuth, admin)
	coupon.GET("/:code", d.Coupons.GetByCode)

	notifications := api.Group("/notifications", requireAuth)
	notifications.GET("", d.Notifications.List)
	notifications.GET("/unread-count", d.Notifications.UnreadCount)
	notifications.PUT("/read-all", d.Notifications.MarkAllRead)
	notifications.PUT("/:id/read", d.Notifications.MarkRead)
	notifications.DELETE("", d.Notifications.DeleteAll)
	notifications.POST("/broadcast", d.Notifications.Broadcast, admin)

	stock := api.Group("/vaccine-stock")
	stock.GET("", d.VaccineStock.List)
	stock.PUT("", d.VaccineStock.Set, requireAuth, admin)
	stock.POST("/adjust", d.VaccineStock.Adjust, requireAuth, admin)
}
