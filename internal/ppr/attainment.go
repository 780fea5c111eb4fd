package ppr

import (
	"math"
	"sort"

	"ppr/internal/domain"
)

// Attainment returns the share of the goal's PPR weight earned by approved
// launches, rounded to two decimals. Every quota period carries the same
// slice of the weight whether or not it was reported.
func Attainment(goal domain.Goal, launches []domain.Launch) float64 {
	quota := MaxLaunches(goal.Frequency)
	if quota == 0 {
		return 0
	}
	weightPerLaunch := goal.PPRWeight / float64(quota)

	var curve waterfall
	if goal.InputType != domain.InputCategorical {
		curve = numericWaterfall(goal.Levels)
	}

	var sum float64
	for _, launch := range launches {
		if launch.Status != domain.LaunchStatusApproved {
			continue
		}
		var percent float64
		if goal.InputType == domain.InputCategorical {
			percent = categoricalPercent(goal.Levels, launch.Value)
		} else {
			percent = curve.percent(launch.Value)
		}
		sum += (percent / 100) * weightPerLaunch
	}
	return round2(sum)
}

// LevelPercent is the reward tier a single value reaches under the goal's levels.
func LevelPercent(goal domain.Goal, value domain.Value) float64 {
	if goal.InputType == domain.InputCategorical {
		return categoricalPercent(goal.Levels, value)
	}
	return numericWaterfall(goal.Levels).percent(value)
}

func categoricalPercent(levels []domain.AchievementLevel, value domain.Value) float64 {
	label := value.String()
	for _, level := range levels {
		if level.TargetValue.String() == label {
			return level.Percentage
		}
	}
	return 0
}

type point struct {
	Target  float64
	Percent float64
}

type waterfall struct {
	Inverse bool
	Points  []point
}

// numericWaterfall orders levels from the highest reward down. Levels whose
// target is not a number are skipped.
func numericWaterfall(levels []domain.AchievementLevel) waterfall {
	points := make([]point, 0, len(levels))
	for _, level := range levels {
		target, ok := level.TargetValue.Float()
		if !ok {
			continue
		}
		points = append(points, point{Target: target, Percent: level.Percentage})
	}
	if len(points) == 0 {
		return waterfall{}
	}

	ascending := make([]point, len(points))
	copy(ascending, points)
	sort.SliceStable(ascending, func(i, j int) bool { return ascending[i].Percent < ascending[j].Percent })
	lowest := ascending[0]
	highest := ascending[len(ascending)-1]

	sort.SliceStable(points, func(i, j int) bool { return points[i].Percent > points[j].Percent })
	return waterfall{Inverse: lowest.Target > highest.Target, Points: points}
}

func (w waterfall) percent(value domain.Value) float64 {
	current, ok := value.Float()
	if !ok {
		return 0
	}
	for _, p := range w.Points {
		if w.Inverse && current <= p.Target {
			return p.Percent
		}
		if !w.Inverse && current >= p.Target {
			return p.Percent
		}
	}
	return 0
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
