package usecase

import (
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
)

const (
	trendThreshold      = 0.10
	confidenceVariance  = 100.0
	mediumConfidenceMin = 3
	highConfidenceMin   = 6
)

// Variance is the population variance of values, 0 for no values
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return sq / float64(len(values))
}

func ConfidenceLevel(n int, variance float64) types.Confidence {
	switch {
	case n < mediumConfidenceMin:
		return types.ConfidenceLow
	case n < highConfidenceMin:
		if variance < confidenceVariance {
			return types.ConfidenceMedium
		}
		return types.ConfidenceLow
	default:
		if variance < confidenceVariance {
			return types.ConfidenceHigh
		}
		return types.ConfidenceMedium
	}
}

// CalculateBurnRate divides story points of completed items by the hours
// spent on them
func CalculateBurnRate(items []*model.WorkItem) model.BurnRate {
	var r model.BurnRate
	var estimate float64
	for _, item := range items {
		if !item.StatusCategory.IsDone() {
			continue
		}
		r.CompletedIssues++
		r.StoryPointsCompleted += item.StoryPoints
		r.HoursSpent += item.TimeSpentHours
		estimate += item.OriginalEstimateHours
	}

	r.StoryPointsCompleted = model.Round2(r.StoryPointsCompleted)
	r.HoursSpent = model.Round2(r.HoursSpent)
	if r.HoursSpent > 0 {
		r.Rate = model.Round2(r.StoryPointsCompleted / r.HoursSpent)
		r.EstimateAccuracy = model.Round2(estimate / r.HoursSpent * 100)
	}
	return r
}

// CalculateMemberBurnRates computes the burn rate of each bucket, in bucket
// order
func CalculateMemberBurnRates(buckets []*model.AssigneeBucket) []model.MemberBurnRate {
	rates := make([]model.MemberBurnRate, 0, len(buckets))
	for _, b := range buckets {
		rates = append(rates, model.MemberBurnRate{
			Assignee: b.Key,
			MemberID: b.MemberID,
			Name:     b.DisplayName,
			BurnRate: CalculateBurnRate(b.Items),
		})
	}
	return rates
}

// CalculateTrend compares burn rates. A change beyond 10% either way is a
// trend; a previous rate of 0 is always stable.
func CalculateTrend(previousRate, currentRate float64) types.Trend {
	if previousRate == 0 {
		return types.TrendStable
	}
	change := (currentRate - previousRate) / previousRate
	switch {
	case change > trendThreshold:
		return types.TrendImproving
	case change < -trendThreshold:
		return types.TrendDeclining
	default:
		return types.TrendStable
	}
}

// PredictHours estimates hours as the mean of historical actuals
func PredictHours(history []float64) model.Prediction {
	p := model.Prediction{SampleSize: len(history)}
	if len(history) == 0 {
		p.Confidence = types.ConfidenceLow
		return p
	}

	var sum float64
	for _, h := range history {
		sum += h
	}
	variance := Variance(history)

	p.PredictedHours = model.Round2(sum / float64(len(history)))
	p.Variance = model.Round2(variance)
	p.Confidence = ConfidenceLevel(len(history), variance)
	return p
}
