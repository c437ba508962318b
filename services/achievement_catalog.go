package services

import (
	"fmt"

	"backend/models"
)

// AchievementCatalog is the full static badge catalogue. It is validated once
// at process start; a definition referencing an unknown condition type or
// metric is a defect in this table and panics immediately rather than being
// tolerated at runtime.
var AchievementCatalog = []models.AchievementDefinition{
	// hydration
	{Code: "first_sip", Title: "First Sip", Category: "hydration", XPReward: 10,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "water", Target: 1}},
	{Code: "hydration_hero", Title: "Hydration Hero", Category: "hydration", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "water", Target: 100}},

	// nutrition
	{Code: "first_meal", Title: "First Meal Logged", Category: "nutrition", XPReward: 10,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "meal", Target: 1}},
	{Code: "mindful_eater", Title: "Mindful Eater", Category: "nutrition", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "meal", Target: 50}},

	// fitness
	{Code: "first_workout", Title: "First Workout", Category: "fitness", XPReward: 10,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "exercise", Target: 1}},
	{Code: "iron_will", Title: "Iron Will", Category: "fitness", XPReward: 100,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "exercise", Target: 100}},

	// sleep & mind
	{Code: "dream_keeper", Title: "Dream Keeper", Category: "sleep", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "sleep", Target: 30}},
	{Code: "dear_diary", Title: "Dear Diary", Category: "mind", XPReward: 25,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "journal", Target: 10}},
	{Code: "mood_mapper", Title: "Mood Mapper", Category: "mind", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "mood", Target: 30}},

	// habits
	{Code: "habit_starter", Title: "Habit Starter", Category: "habits", XPReward: 10,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "habit", Target: 1}},
	{Code: "habit_century", Title: "Habit Century", Category: "habits", XPReward: 100,
		Condition: models.AchievementCondition{Type: models.ConditionCount, Metric: "habit", Target: 100}},

	// streaks
	{Code: "week_warrior", Title: "Week Warrior", Category: "streaks", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionStreak, Target: 7}},
	{Code: "fortnight_force", Title: "Fortnight Force", Category: "streaks", XPReward: 100,
		Condition: models.AchievementCondition{Type: models.ConditionStreak, Target: 14}},
	{Code: "unstoppable", Title: "Unstoppable", Category: "streaks", XPReward: 200,
		Condition: models.AchievementCondition{Type: models.ConditionStreak, Target: 30}},

	// progression
	{Code: "level_5", Title: "Getting Serious", Category: "progression", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionLevel, Target: 5}},
	{Code: "level_10", Title: "Double Digits", Category: "progression", XPReward: 100,
		Condition: models.AchievementCondition{Type: models.ConditionLevel, Target: 10}},
	{Code: "level_25", Title: "Halfway Up", Category: "progression", XPReward: 250,
		Condition: models.AchievementCondition{Type: models.ConditionLevel, Target: 25}},
	{Code: "xp_1000", Title: "Point Collector", Category: "progression", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionTotalXP, Target: 1000}},
	{Code: "xp_10000", Title: "Point Hoarder", Category: "progression", XPReward: 200,
		Condition: models.AchievementCondition{Type: models.ConditionTotalXP, Target: 10000}},

	// special
	{Code: "busy_bee", Title: "Busy Bee", Category: "special", XPReward: 25,
		Condition: models.AchievementCondition{Type: models.ConditionSpecial, Metric: models.MetricDailyActions, Target: 5}},
	{Code: "well_rounded", Title: "Well Rounded", Category: "special", XPReward: 50,
		Condition: models.AchievementCondition{Type: models.ConditionSpecial, Metric: models.MetricModulesUsed, Target: 4}},
	{Code: "daily_devotion", Title: "Daily Devotion", Category: "special", XPReward: 75,
		Condition: models.AchievementCondition{Type: models.ConditionSpecial, Metric: models.MetricAnyAction, Target: 7}},
}

func init() {
	if err := validateCatalog(AchievementCatalog); err != nil {
		panic(err)
	}
}

func validateCatalog(defs []models.AchievementDefinition) error {
	seen := map[string]bool{}
	for _, def := range defs {
		if def.Code == "" || seen[def.Code] {
			return fmt.Errorf("achievement catalogue: duplicate or empty code %q", def.Code)
		}
		seen[def.Code] = true
		if def.Condition.Target <= 0 {
			return fmt.Errorf("achievement %s: target must be positive", def.Code)
		}
		switch def.Condition.Type {
		case models.ConditionCount:
			if !models.EventKind(def.Condition.Metric).Valid() {
				return fmt.Errorf("achievement %s: unknown count metric %q", def.Code, def.Condition.Metric)
			}
		case models.ConditionStreak, models.ConditionLevel, models.ConditionTotalXP:
			// numeric-only conditions carry no metric
		case models.ConditionSpecial:
			switch def.Condition.Metric {
			case models.MetricDailyActions, models.MetricModulesUsed, models.MetricAnyAction:
			default:
				return fmt.Errorf("achievement %s: unknown special metric %q", def.Code, def.Condition.Metric)
			}
		default:
			return fmt.Errorf("achievement %s: unknown condition type %q", def.Code, def.Condition.Type)
		}
	}
	return nil
}
