package coach

import (
	"math"
	"strings"

	"github.com/jbrinkw/coachbyte/internal/models"
)

// Input limits.
const (
	MaxReps         = 100
	MaxLoad         = 2000
	MaxRelativeLoad = 150
	MaxRest         = 600
	MaxHistoryDays  = 365
	MaxTimerMinutes = 180
	MaxTimerSeconds = MaxTimerMinutes * 60
	maxExerciseName = 100
)

func cleanExercise(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("exercise is required")
	}
	if len(name) > maxExerciseName {
		return "", invalid("exercise name longer than %d characters", maxExerciseName)
	}
	return name, nil
}

func checkReps(reps int) error {
	if reps < 1 || reps > MaxReps {
		return invalid("reps must be between 1 and %d, got %d", MaxReps, reps)
	}
	return nil
}

func checkLoad(load float64, relative bool) error {
	if math.IsNaN(load) || math.IsInf(load, 0) {
		return invalid("load must be a number")
	}
	if relative {
		if load <= 0 || load > MaxRelativeLoad {
			return invalid("relative load must be above 0 and at most %d percent, got %g", MaxRelativeLoad, load)
		}
		return nil
	}
	if load < 0 || load > MaxLoad {
		return invalid("load must be between 0 and %d, got %g", MaxLoad, load)
	}
	return nil
}

func checkRest(rest int) error {
	if rest < 0 || rest > MaxRest {
		return invalid("rest must be between 0 and %d seconds, got %d", MaxRest, rest)
	}
	return nil
}

func checkWeekday(day int) error {
	if day < 0 || day > 6 {
		return invalid("day_of_week must be between 0 and 6, got %d", day)
	}
	return nil
}

func checkPlannedInput(in models.PlannedSetInput) (models.PlannedSetInput, error) {
	name, err := cleanExercise(in.Exercise)
	if err != nil {
		return in, err
	}
	in.Exercise = name
	if err := checkReps(in.Reps); err != nil {
		return in, err
	}
	if err := checkLoad(in.Load, in.Relative); err != nil {
		return in, err
	}
	rest := in.RestSeconds()
	if err := checkRest(rest); err != nil {
		return in, err
	}
	in.Rest = &rest
	return in, nil
}

func checkPlannedSet(set models.PlannedSet) error {
	if err := checkReps(set.Reps); err != nil {
		return err
	}
	if err := checkLoad(set.Load, set.Relative); err != nil {
		return err
	}
	return checkRest(set.Rest)
}

func checkSplitInput(in models.SplitSetInput) (models.SplitSetInput, error) {
	if err := checkWeekday(in.Weekday); err != nil {
		return in, err
	}
	planned, err := checkPlannedInput(models.PlannedSetInput{
		Exercise: in.Exercise,
		Reps:     in.Reps,
		Load:     in.Load,
		Rest:     in.Rest,
		Relative: in.Relative,
	})
	if err != nil {
		return in, err
	}
	in.Exercise = planned.Exercise
	in.Rest = planned.Rest
	return in, nil
}

func checkCompletion(in models.CompletionInput) (models.CompletionInput, error) {
	if in.PlannedSetID == nil || strings.TrimSpace(in.Exercise) != "" {
		name, err := cleanExercise(in.Exercise)
		if err != nil {
			return in, err
		}
		in.Exercise = name
	}
	if err := checkReps(in.RepsDone); err != nil {
		return in, err
	}
	if err := checkLoad(in.LoadDone, false); err != nil {
		return in, err
	}
	return in, nil
}
