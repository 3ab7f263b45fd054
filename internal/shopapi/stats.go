package shopapi

import (
	"github.com/labstack/echo/v4"

	"github.com/openmall/openmall/internal/webserver"
	"github.com/openmall/openmall/pkg/metrics"
)

// registerStatsRoutes registers the admin dashboard aggregates.
func registerStatsRoutes() {
	webserver.ApiGET("/stats", getStats, webserver.RequireAdmin)
}

func getStats(c echo.Context) error {
	stats, err := GetApp(c).Stats().GetStats(c.Request().Context())
	if err != nil {
		return failStore(c, err, "stats")
	}
	return ok(c, map[string]interface{}{
		"total_users":         stats.TotalUsers,
		"total_orders":        stats.TotalOrders,
		"total_revenue":       stats.TotalRevenue,
		"average_order_value": stats.AverageOrderValue,
		"median_order_value":  stats.MedianOrderValue,
		"http_requests":       metrics.GetCounter("http_requests"),
	})
}
