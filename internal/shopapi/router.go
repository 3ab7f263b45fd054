package shopapi

// InitRouter registers every storefront API route. Must be called after
// webserver.Init.
func InitRouter() {
	registerAuthRoutes()
	registerProductRoutes()
	registerCategoryRoutes()
	registerCartRoutes()
	registerOrderRoutes()
	registerStatsRoutes()
}
