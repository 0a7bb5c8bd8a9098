package models

import "time"

// CostType controls how a habit's cost is labelled and whether it counts
// toward money saved.
type CostType string

const (
	CostMoney  CostType = "money"
	CostTime   CostType = "time"
	CostHealth CostType = "health"
)

type GoalType string

const (
	GoalTime  GoalType = "time"
	GoalMoney GoalType = "money"
)

type GoalUnit string

const (
	UnitHours   GoalUnit = "hours"
	UnitDays    GoalUnit = "days"
	UnitWeeks   GoalUnit = "weeks"
	UnitMonths  GoalUnit = "months"
	UnitDollars GoalUnit = "dollars"
)

// CostTypes lists the accepted cost types in display order.
var CostTypes = []CostType{CostMoney, CostTime, CostHealth}

// GoalUnits lists the accepted goal units in display order.
var GoalUnits = []GoalUnit{UnitHours, UnitDays, UnitWeeks, UnitMonths, UnitDollars}

func (c CostType) Valid() bool {
	switch c {
	case CostMoney, CostTime, CostHealth:
		return true
	}
	return false
}

func (g GoalType) Valid() bool {
	return g == GoalTime || g == GoalMoney
}

func (u GoalUnit) Valid() bool {
	switch u {
	case UnitHours, UnitDays, UnitWeeks, UnitMonths, UnitDollars:
		return true
	}
	return false
}

// Goal is the target a habit is measured against.
type Goal struct {
	Type  GoalType `json:"type"`
	Value float64  `json:"value"`
	Unit  GoalUnit `json:"unit,omitempty"`
}

// DefaultGoal is used whenever a stored goal is absent or malformed.
func DefaultGoal() Goal {
	return Goal{Type: GoalTime, Value: 1, Unit: UnitDays}
}

// RelapseEvent records one engagement. A zero Date means the stored date
// could not be parsed.
type RelapseEvent struct {
	Date time.Time `json:"date"`
	Text string    `json:"text,omitempty"`
}

// Habit is a tracked habit. JSON names match the persisted collection format.
type Habit struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Icon        string         `json:"icon"`
	Cost        float64        `json:"cost"`
	CostType    CostType       `json:"costType"`
	LastEngaged time.Time      `json:"lastEngaged"`
	CreatedAt   time.Time      `json:"createdAt"`
	Goal        *Goal          `json:"goal,omitempty"`
	Notes       []RelapseEvent `json:"notes,omitempty"`
}

// Clone returns a deep copy so callers can mutate without touching the store.
func (h Habit) Clone() Habit {
	c := h
	if h.Goal != nil {
		g := *h.Goal
		c.Goal = &g
	}
	if h.Notes != nil {
		c.Notes = make([]RelapseEvent, len(h.Notes))
		copy(c.Notes, h.Notes)
	}
	return c
}
