package models

import "time"

// BuyerTypeID identifies a score-banded buyer tier.
type BuyerTypeID string

const (
	BuyerTypeSeriousBuyer  BuyerTypeID = "serious_buyer"
	BuyerTypeActiveLooker  BuyerTypeID = "active_looker"
	BuyerTypeEarlyExplorer BuyerTypeID = "early_explorer"
	BuyerTypeInfoSeeker    BuyerTypeID = "info_seeker"
)

// PersonaID identifies a qualitative buyer archetype.
type PersonaID string

const (
	PersonaFamilyFocused    PersonaID = "family_focused"
	PersonaInvestmentMinded PersonaID = "investment_minded"
	PersonaLuxurySeeker     PersonaID = "luxury_seeker"
	PersonaFirstTimer       PersonaID = "first_timer"
	PersonaValueHunter      PersonaID = "value_hunter"
	PersonaUpgrader         PersonaID = "upgrader"
	PersonaGeneralBuyer     PersonaID = "general_buyer"
)

// UrgencyLevelID identifies how quickly a lead needs attention.
type UrgencyLevelID string

const (
	UrgencyHigh     UrgencyLevelID = "high"
	UrgencyModerate UrgencyLevelID = "moderate"
	UrgencyLow      UrgencyLevelID = "low"
)

// BuyerType classifies a lead by readiness, derived from the lead score.
type BuyerType struct {
	Type        BuyerTypeID `json:"type"`
	Label       string      `json:"label"`
	Description string      `json:"description"`
	Priority    string      `json:"priority"`
	FollowUp    string      `json:"follow_up"`
}

// Persona is the qualitative archetype matched from answer patterns.
type Persona struct {
	Type     PersonaID `json:"type"`
	Label    string    `json:"label"`
	KeyNeeds []string  `json:"key_needs"`
}

// Urgency captures how soon the lead should be contacted.
type Urgency struct {
	Level  UrgencyLevelID `json:"level"`
	Label  string         `json:"label"`
	Action string         `json:"action"`
	Reason string         `json:"reason,omitempty"`
}

// Recommendations is the fixed-lookup handling advice for a lead.
type Recommendations struct {
	AgentType        string   `json:"agent_type"`
	InitialAction    string   `json:"initial_action"`
	PropertiesToShow string   `json:"properties_to_show"`
	FollowUpStrategy string   `json:"follow_up_strategy"`
	KeyTalkingPoints []string `json:"key_talking_points"`
}

// Assessment is the full categorization result for one session. It is a
// derived view, always recomputable from the answer set, never authoritative
// state.
type Assessment struct {
	LeadScore       int             `json:"lead_score"`
	BuyerType       BuyerType       `json:"buyer_type"`
	Persona         Persona         `json:"persona"`
	UrgencyLevel    Urgency         `json:"urgency_level"`
	ServiceNeeds    []string        `json:"service_needs"`
	Recommendations Recommendations `json:"recommendations"`
	CategorizedAt   time.Time       `json:"categorized_at"`
}
