package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/dicechamber/dicechamber/internal/models"
)

// Outcome is the derived result of a validated roll payload. Total and
// ResultText are computed from the client-supplied die values; the payload
// itself is persisted and re-broadcast verbatim.
type Outcome struct {
	Total      int
	ResultText string

	// Private marks a roll that is persisted but echoed only to its sender
	Private bool
}

type checkPayload struct {
	HopeValue      *int `json:"hopeValue"`
	FearValue      *int `json:"fearValue"`
	AdvantageValue int  `json:"advantageValue"`
	Modifier       int  `json:"modifier"`
}

type damagePayload struct {
	DiceType      *int  `json:"diceType"`
	DiceValues    []int `json:"diceValues"`
	BonusDieValue int   `json:"bonusDieValue"`
	Critical      bool  `json:"critical"`
	Resistance    bool  `json:"resistance"`
}

type gmPayload struct {
	D20Value       *int `json:"d20Value"`
	AdvantageValue int  `json:"advantageValue"`
	Modifier       int  `json:"modifier"`
	Private        bool `json:"private"`
}

// EvaluateRoll validates that payload carries the required fields for the
// declared roll type and derives the roll outcome. Unknown extra fields are
// ignored here and preserved by the caller.
func EvaluateRoll(rollType models.RollType, payload json.RawMessage) (*Outcome, error) {
	switch rollType {
	case models.RollTypeCheck:
		return evaluateCheck(payload)
	case models.RollTypeDamage:
		return evaluateDamage(payload)
	case models.RollTypeGM:
		return evaluateGM(payload)
	default:
		return nil, ErrUnknownRollType
	}
}

func evaluateCheck(payload json.RawMessage) (*Outcome, error) {
	var p checkPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrMalformedPayload
	}

	if p.HopeValue == nil || *p.HopeValue < 1 || *p.HopeValue > 12 {
		return nil, ErrMissingHopeValue
	}
	if p.FearValue == nil || *p.FearValue < 1 || *p.FearValue > 12 {
		return nil, ErrMissingFearValue
	}

	total := *p.HopeValue + *p.FearValue + p.AdvantageValue + p.Modifier

	var text string
	switch {
	case *p.HopeValue == *p.FearValue:
		text = fmt.Sprintf("%d - Critical Success!", total)
	case *p.HopeValue > *p.FearValue:
		text = fmt.Sprintf("%d with Hope", total)
	default:
		text = fmt.Sprintf("%d with Fear", total)
	}

	return &Outcome{Total: total, ResultText: text}, nil
}

func evaluateDamage(payload json.RawMessage) (*Outcome, error) {
	var p damagePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrMalformedPayload
	}

	if p.DiceType == nil || *p.DiceType < 1 {
		return nil, ErrMissingDiceType
	}
	if len(p.DiceValues) == 0 {
		return nil, ErrMissingDiceValues
	}

	total := p.BonusDieValue
	for _, v := range p.DiceValues {
		if v < 1 || v > *p.DiceType {
			return nil, ErrDieValueOutOfRange
		}
		total += v
	}

	// A critical deals max damage on top of the rolled dice.
	if p.Critical {
		total += len(p.DiceValues) * *p.DiceType
	}
	if p.Resistance {
		total /= 2
	}

	return &Outcome{Total: total, ResultText: fmt.Sprintf("%d damage", total)}, nil
}

func evaluateGM(payload json.RawMessage) (*Outcome, error) {
	var p gmPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, ErrMalformedPayload
	}

	if p.D20Value == nil || *p.D20Value < 1 || *p.D20Value > 20 {
		return nil, ErrMissingD20Value
	}

	total := *p.D20Value + p.AdvantageValue + p.Modifier

	return &Outcome{
		Total:      total,
		ResultText: fmt.Sprintf("rolled %d", total),
		Private:    p.Private,
	}, nil
}
