package handlers

import (
	"net/http"

	"fleet-backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Сводная статистика для дашборда
func AnalyticsDashboard(stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dashboard, err := stats.Dashboard()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"timestamp":   dashboard.Timestamp,
			"summary":     dashboard.Summary,
			"today":       dashboard.Today,
			"performance": dashboard.Performance,
		})
	}
}

// Показатели по операторам
func AnalyticsOperators(stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := stats.OperatorsReport()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"operators": report,
			"total":     len(report),
		})
	}
}

// Показатели использования грузовиков
func AnalyticsTrucks(stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := stats.TrucksReport()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"trucks":  report,
			"total":   len(report),
		})
	}
}

// Оповещения по порогам (усталость, задержки, техобслуживание)
func AnalyticsAlerts(stats *services.StatsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		alerts, err := stats.Alerts()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ошибка базы данных"})
			return
		}

		bySeverity := map[string]int{
			services.SeverityHigh:   0,
			services.SeverityMedium: 0,
			services.SeverityLow:    0,
		}
		for _, alert := range alerts {
			bySeverity[alert.Severity]++
		}

		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"alerts":      alerts,
			"total":       len(alerts),
			"by_severity": bySeverity,
		})
	}
}
