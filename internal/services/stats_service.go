package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"fleet-backend/internal/config"
	"fleet-backend/internal/models"
	"fleet-backend/internal/repository"
)

// StatsService вычисляет агрегированные показатели по текущему состоянию
// парка. Все значения пересчитываются при каждом запросе, кэширования нет.
type StatsService struct {
	store repository.Store
	cfg   *config.Business
	now   func() time.Time
}

func NewStatsService(store repository.Store, cfg *config.Business) *StatsService {
	return &StatsService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
	}
}

type TruckSummary struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Resting     int `json:"resting"`
	Maintenance int `json:"maintenance"`
}

type OperatorSummary struct {
	Total     int `json:"total"`
	Working   int `json:"working"`
	Resting   int `json:"resting"`
	Available int `json:"available"`
	Offline   int `json:"offline"`
}

type CycleSummary struct {
	Total      int `json:"total"`
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

type DashboardStats struct {
	Timestamp time.Time `json:"timestamp"`
	Summary   struct {
		Trucks    TruckSummary    `json:"trucks"`
		Operators OperatorSummary `json:"operators"`
		Cycles    CycleSummary    `json:"cycles"`
	} `json:"summary"`
	Today struct {
		CyclesCount        int     `json:"cycles_count"`
		AvgDurationMinutes int     `json:"avg_duration_minutes"`
		TotalEarnings      float64 `json:"total_earnings"`
	} `json:"today"`
	Performance struct {
		AvgCycleTimeMinutes int `json:"avg_cycle_time_minutes"`
		EfficiencyScore     int `json:"efficiency_score"`
		TargetTimeMinutes   int `json:"target_time_minutes"`
	} `json:"performance"`
}

// Dashboard собирает сводку по статусам, показатели за сегодня и
// показатель эффективности (доля завершенных циклов быстрее порога).
func (s *StatsService) Dashboard() (*DashboardStats, error) {
	trucks, err := s.store.ListTrucks()
	if err != nil {
		return nil, err
	}
	operators, err := s.store.ListOperators()
	if err != nil {
		return nil, err
	}
	cycles, err := s.store.ListCycles(repository.CycleFilter{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &DashboardStats{Timestamp: now}

	stats.Summary.Trucks.Total = len(trucks)
	for _, truck := range trucks {
		switch truck.Status {
		case models.TruckStatusActive:
			stats.Summary.Trucks.Active++
		case models.TruckStatusResting:
			stats.Summary.Trucks.Resting++
		case models.TruckStatusMaintenance:
			stats.Summary.Trucks.Maintenance++
		}
	}

	stats.Summary.Operators.Total = len(operators)
	for _, operator := range operators {
		switch operator.Status {
		case models.OperatorStatusWorking:
			stats.Summary.Operators.Working++
		case models.OperatorStatusResting:
			stats.Summary.Operators.Resting++
		case models.OperatorStatusAvailable:
			stats.Summary.Operators.Available++
		case models.OperatorStatusOffline:
			stats.Summary.Operators.Offline++
		}
	}

	stats.Summary.Cycles.Total = len(cycles)
	for _, cycle := range cycles {
		switch cycle.Status {
		case models.CycleStatusInProgress:
			stats.Summary.Cycles.InProgress++
		case models.CycleStatusCompleted:
			stats.Summary.Cycles.Completed++
		case models.CycleStatusCancelled:
			stats.Summary.Cycles.Cancelled++
		}
	}

	// Показатели за сегодня: циклы, начатые с начала текущих суток
	// по локальному времени сервера
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var todayDurations, todayCount int
	var todayWithDuration int
	for _, cycle := range cycles {
		if cycle.StartTime.Before(startOfDay) {
			continue
		}
		todayCount++
		stats.Today.TotalEarnings += cycle.Earnings
		if cycle.DurationMinutes != nil {
			todayDurations += *cycle.DurationMinutes
			todayWithDuration++
		}
	}
	stats.Today.CyclesCount = todayCount
	stats.Today.TotalEarnings = round2(stats.Today.TotalEarnings)
	if todayWithDuration > 0 {
		stats.Today.AvgDurationMinutes = int(math.Round(float64(todayDurations) / float64(todayWithDuration)))
	}

	var completedDurations, completedCount, fastCount int
	for _, cycle := range cycles {
		if cycle.Status != models.CycleStatusCompleted || cycle.DurationMinutes == nil {
			continue
		}
		completedCount++
		completedDurations += *cycle.DurationMinutes
		if *cycle.DurationMinutes < s.cfg.EfficiencyThresholdMinutes {
			fastCount++
		}
	}
	if completedCount > 0 {
		stats.Performance.AvgCycleTimeMinutes = int(math.Round(float64(completedDurations) / float64(completedCount)))
		stats.Performance.EfficiencyScore = int(math.Round(float64(fastCount) / float64(completedCount) * 100))
	}
	stats.Performance.TargetTimeMinutes = s.cfg.TargetCycleTimeMinutes

	return stats, nil
}

type OperatorMetrics struct {
	Operator struct {
		ID     uint                  `json:"id"`
		Code   string                `json:"code"`
		Name   string                `json:"name"`
		Status models.OperatorStatus `json:"status"`
	} `json:"operator"`
	Stats struct {
		TotalCycles         int     `json:"total_cycles"`
		TotalHours          float64 `json:"total_hours"`
		TotalEarnings       float64 `json:"total_earnings"`
		AvgCycleTime        int     `json:"avg_cycle_time"`
		BestCycleTime       int     `json:"best_cycle_time"`
		AvgEarningsPerCycle float64 `json:"avg_earnings_per_cycle"`
	} `json:"stats"`
}

// OperatorsReport возвращает показатели по каждому оператору,
// отсортированные по количеству циклов.
func (s *StatsService) OperatorsReport() ([]OperatorMetrics, error) {
	operators, err := s.store.ListOperators()
	if err != nil {
		return nil, err
	}
	cycles, err := s.store.ListCycles(repository.CycleFilter{Status: models.CycleStatusCompleted})
	if err != nil {
		return nil, err
	}

	metrics := make([]OperatorMetrics, 0, len(operators))
	for _, operator := range operators {
		var m OperatorMetrics
		m.Operator.ID = operator.ID
		m.Operator.Code = operator.Code
		m.Operator.Name = operator.Name
		m.Operator.Status = operator.Status
		m.Stats.TotalCycles = operator.TotalCycles
		m.Stats.TotalHours = operator.TotalHours
		m.Stats.TotalEarnings = operator.TotalEarnings

		var sum, count, best int
		for _, cycle := range cycles {
			if cycle.OperatorID != operator.ID || cycle.DurationMinutes == nil {
				continue
			}
			count++
			sum += *cycle.DurationMinutes
			if best == 0 || *cycle.DurationMinutes < best {
				best = *cycle.DurationMinutes
			}
		}
		if count > 0 {
			m.Stats.AvgCycleTime = int(math.Round(float64(sum) / float64(count)))
			m.Stats.BestCycleTime = best
		}
		if operator.TotalCycles > 0 {
			m.Stats.AvgEarningsPerCycle = round2(operator.TotalEarnings / float64(operator.TotalCycles))
		}
		metrics = append(metrics, m)
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].Stats.TotalCycles > metrics[j].Stats.TotalCycles
	})
	return metrics, nil
}

type TruckMetrics struct {
	Truck struct {
		ID     string             `json:"id"`
		Plate  string             `json:"plate"`
		Status models.TruckStatus `json:"status"`
	} `json:"truck"`
	Stats struct {
		TotalCycles     int     `json:"total_cycles"`
		AvgCycleTime    int     `json:"avg_cycle_time"`
		TotalRevenue    float64 `json:"total_revenue"`
		RevenuePerCycle float64 `json:"revenue_per_cycle"`
	} `json:"stats"`
}

// TrucksReport возвращает показатели использования каждого грузовика.
func (s *StatsService) TrucksReport() ([]TruckMetrics, error) {
	trucks, err := s.store.ListTrucks()
	if err != nil {
		return nil, err
	}
	cycles, err := s.store.ListCycles(repository.CycleFilter{Status: models.CycleStatusCompleted})
	if err != nil {
		return nil, err
	}

	metrics := make([]TruckMetrics, 0, len(trucks))
	for _, truck := range trucks {
		var m TruckMetrics
		m.Truck.ID = truck.ID
		m.Truck.Plate = truck.Plate
		m.Truck.Status = truck.Status
		m.Stats.TotalCycles = truck.TotalCycles

		var sum, count int
		var revenue float64
		for _, cycle := range cycles {
			if cycle.TruckID != truck.ID || cycle.DurationMinutes == nil {
				continue
			}
			count++
			sum += *cycle.DurationMinutes
			revenue += cycle.Earnings
		}
		if count > 0 {
			m.Stats.AvgCycleTime = int(math.Round(float64(sum) / float64(count)))
		}
		m.Stats.TotalRevenue = round2(revenue)
		if truck.TotalCycles > 0 {
			m.Stats.RevenuePerCycle = round2(revenue / float64(truck.TotalCycles))
		}
		metrics = append(metrics, m)
	}
	return metrics, nil
}

// Уровни серьезности оповещений
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

var severityRank = map[string]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
}

type Alert struct {
	Type           string                 `json:"type"`
	Severity       string                 `json:"severity"`
	Entity         string                 `json:"entity"`
	EntityID       string                 `json:"entity_id"`
	Message        string                 `json:"message"`
	Details        map[string]interface{} `json:"details,omitempty"`
	Recommendation string                 `json:"recommendation"`
	Timestamp      time.Time              `json:"timestamp"`
}

// Alerts сканирует сущности по настраиваемым порогам и возвращает
// оповещения, отсортированные по убыванию серьезности. При равной
// серьезности сохраняется порядок генерации: усталость операторов,
// затянувшиеся циклы, техобслуживание, затянувшийся отдых.
func (s *StatsService) Alerts() ([]Alert, error) {
	trucks, err := s.store.ListTrucks()
	if err != nil {
		return nil, err
	}
	operators, err := s.store.ListOperators()
	if err != nil {
		return nil, err
	}
	cycles, err := s.store.ListCycles(repository.CycleFilter{Status: models.CycleStatusInProgress})
	if err != nil {
		return nil, err
	}

	now := s.now()
	alerts := []Alert{}

	// Операторы, работающие дольше порога усталости. Сравнение строгое:
	// смена ровно в FATIGUE_THRESHOLD_HOURS оповещение еще не дает.
	fatigueCutoff := now.Add(-time.Duration(s.cfg.FatigueThresholdHours) * time.Hour)
	for _, operator := range operators {
		if operator.Status != models.OperatorStatusWorking || operator.ShiftStart == nil {
			continue
		}
		if operator.ShiftStart.Before(fatigueCutoff) {
			alerts = append(alerts, Alert{
				Type:     "fatigue_risk",
				Severity: SeverityHigh,
				Entity:   "operator",
				EntityID: operator.Code,
				Message: fmt.Sprintf("Оператор %s (%s) работает более %d часов",
					operator.Code, operator.Name, s.cfg.FatigueThresholdHours),
				Recommendation: "Отправьте оператора на отдых",
				Timestamp:      now,
			})
		}
	}

	// Циклы, выполняющиеся дольше ожидаемого
	delayedCutoff := now.Add(-time.Duration(s.cfg.DelayedCycleThresholdHours) * time.Hour)
	for _, cycle := range cycles {
		if !cycle.StartTime.Before(delayedCutoff) {
			continue
		}
		runningMinutes := int(math.Round(now.Sub(cycle.StartTime).Minutes()))
		details := map[string]interface{}{
			"duration_minutes": runningMinutes,
		}
		if cycle.Truck != nil {
			details["truck"] = cycle.Truck.Plate
		}
		if cycle.Operator != nil {
			details["operator"] = cycle.Operator.Code
		}
		alerts = append(alerts, Alert{
			Type:           "delayed_cycle",
			Severity:       SeverityMedium,
			Entity:         "cycle",
			EntityID:       cycle.ID,
			Message:        fmt.Sprintf("Цикл %s выполняется уже %d минут", cycle.ID, runningMinutes),
			Details:        details,
			Recommendation: "Проверьте причину задержки",
			Timestamp:      now,
		})
	}

	// Грузовики на техобслуживании
	for _, truck := range trucks {
		if truck.Status != models.TruckStatusMaintenance {
			continue
		}
		alerts = append(alerts, Alert{
			Type:           "maintenance",
			Severity:       SeverityLow,
			Entity:         "truck",
			EntityID:       truck.ID,
			Message:        fmt.Sprintf("Грузовик %s на техобслуживании", truck.Plate),
			Recommendation: "Вместимость парка снижена",
			Timestamp:      now,
		})
	}

	// Операторы, отдыхающие дольше порога
	restCutoff := now.Add(-time.Duration(s.cfg.ExtendedRestThresholdHours) * time.Hour)
	for _, operator := range operators {
		if operator.Status != models.OperatorStatusResting {
			continue
		}
		if operator.UpdatedAt.Before(restCutoff) {
			alerts = append(alerts, Alert{
				Type:     "extended_rest",
				Severity: SeverityLow,
				Entity:   "operator",
				EntityID: operator.Code,
				Message: fmt.Sprintf("Оператор %s отдыхает более %d часов",
					operator.Code, s.cfg.ExtendedRestThresholdHours),
				Recommendation: "Проверьте доступность оператора",
				Timestamp:      now,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] > severityRank[alerts[j].Severity]
	})
	return alerts, nil
}
