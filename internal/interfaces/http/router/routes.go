package router

import (
	"github.com/gin-gonic/gin"

	"github.com/sevenext/backend/internal/interfaces/http/handler"
)

// Handlers are the storefront API handlers
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Return   *handler.ReturnHandler
	Content  *handler.ContentHandler
	Shipping *handler.ShippingHandler
	Coupon   *handler.CouponHandler
}

// Guards are the per-route middleware. AuthLimit may be nil.
type Guards struct {
	RequireAuth  gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
}

// Storefront builds the route groups of the public API.
// Credential endpoints sit behind AuthLimit; catalog reads resolve the
// audience from an optional token; account, order and return routes require one.
func Storefront(h Handlers, g Guards) []*DomainGroup {
	authRoutes := NewDomainGroup("auth", "/auth")
	authRoutes.POST("/signup", g.AuthLimit, h.Auth.Signup)
	authRoutes.POST("/login", g.AuthLimit, h.Auth.Login)
	authRoutes.POST("/register/b2c", g.AuthLimit, h.Auth.RegisterB2C)
	authRoutes.POST("/register/b2b", g.AuthLimit, h.Auth.RegisterB2B)
	authRoutes.POST("/refresh", g.AuthLimit, h.Auth.RefreshToken)
	authRoutes.POST("/logout", g.RequireAuth, h.Auth.Logout)
	authRoutes.POST("/otp/request", g.AuthLimit, h.Auth.RequestOTP)
	authRoutes.POST("/otp/verify", g.AuthLimit, h.Auth.VerifyOTP)

	userRoutes := NewDomainGroup("users", "/users").Use(g.RequireAuth)
	userRoutes.GET("/me", h.User.GetProfile)
	userRoutes.PUT("/me", h.User.UpdateProfile)
	userRoutes.DELETE("/me", h.User.DeleteAccount)
	userRoutes.GET("/addresses", h.User.ListAddresses)
	userRoutes.POST("/addresses", h.User.CreateAddress)
	userRoutes.PUT("/addresses/:id", h.User.UpdateAddress)
	userRoutes.DELETE("/addresses/:id", h.User.DeleteAddress)

	productRoutes := NewDomainGroup("products", "/products")
	productRoutes.GET("", g.OptionalAuth, h.Product.List)
	productRoutes.GET("/search", g.OptionalAuth, h.Product.Search)
	productRoutes.GET("/section/:name", g.OptionalAuth, h.Product.Section)
	productRoutes.GET("/:id", g.OptionalAuth, h.Product.Get)
	productRoutes.GET("/:id/reviews", h.Product.ListReviews)
	productRoutes.POST("/:id/review", g.RequireAuth, h.Product.CreateReview)

	orderRoutes := NewDomainGroup("orders", "/orders").Use(g.RequireAuth)
	orderRoutes.GET("", h.Order.ListMine)
	orderRoutes.POST("/place", h.Order.Place)
	orderRoutes.GET("/user/:email", h.Order.ListByEmail)

	returnRoutes := NewDomainGroup("returns", "/returns").Use(g.RequireAuth)
	returnRoutes.POST("", h.Return.Create)
	returnRoutes.GET("", h.Return.List)
	returnRoutes.GET("/:id", h.Return.Get)
	returnRoutes.POST("/:id/cancel", h.Return.Cancel)

	cmsRoutes := NewDomainGroup("cms", "/cms")
	cmsRoutes.GET("/pages/:slug", h.Content.GetPage)
	cmsRoutes.GET("/contents", h.Content.List)

	shippingRoutes := NewDomainGroup("shipping", "/shipping")
	shippingRoutes.POST("/estimate", h.Shipping.Estimate)

	couponRoutes := NewDomainGroup("coupons", "/coupons")
	couponRoutes.POST("/apply", h.Coupon.Apply)

	return []*DomainGroup{
		authRoutes,
		userRoutes,
		productRoutes,
		orderRoutes,
		returnRoutes,
		cmsRoutes,
		shippingRoutes,
		couponRoutes,
	}
}
