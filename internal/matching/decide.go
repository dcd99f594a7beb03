package matching

import "fmt"

// Outcome is the result of one assignment attempt: either Assigned with a
// score and record, or rejected with a Reason.
type Outcome struct {
	Assigned    bool
	Score       float64
	RecordIndex int
	Reason      Reason
}

// Assigned builds an assigned outcome.
func Assigned(score float64, recordIndex int) Outcome {
	return Outcome{Assigned: true, Score: score, RecordIndex: recordIndex}
}

// Rejected builds a rejected outcome.
func Rejected(reason Reason) Outcome {
	return Outcome{Reason: reason, RecordIndex: -1}
}

func (o Outcome) String() string {
	if o.Assigned {
		return fmt.Sprintf("assigned(%g)", o.Score)
	}
	return fmt.Sprintf("rejected(%s)", o.Reason)
}

// Decide applies the decision policy to the best and second-best guarded
// scores. comparable is false when no record shared a non-empty slot with
// the artifact. An assigned result carries RecordIndex -1; the caller fills
// in the record.
func Decide(best, second float64, comparable bool, s Settings) Outcome {
	switch {
	case !comparable:
		return Rejected(ReasonNoMatch)
	case best == 100 && second == 100:
		return Rejected(ReasonMultiplePerfect)
	case best == 100:
		return Assigned(100, -1)
	case best < float64(s.FuzzinessThreshold):
		return Rejected(ReasonNoMatch)
	case best-second < 1:
		return Rejected(ReasonFuzzyTie)
	case best-second < float64(s.ConfirmationTolerance) && s.FuzzyMatchPolicy == PolicyRequestConfirmation:
		return Rejected(ReasonTooCloseToCall)
	case s.FuzzyMatchPolicy == PolicyReject:
		return Rejected(ReasonFuzzyRejectedByPolicy)
	}
	return Assigned(best, -1)
}
