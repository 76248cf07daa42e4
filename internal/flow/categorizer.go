package flow

import (
	"log/slog"
	"time"

	"github.com/easybuydubai/leadflow/internal/models"
)

// Scoring rubric weights, documented for traceability. The branch rules below
// hardcode the per-answer point values; these constants record the maximum
// contribution of each factor.
const (
	weightTimeline        = 30 // how soon they want to buy
	weightBudgetClarity   = 20 // clear budget vs flexible
	weightFinancingReady  = 15 // cash or pre-approved
	weightPropertyClarity = 15 // know what they want
	weightDecisionSpeed   = 10 // can decide quickly
	weightEngagement      = 10 // completeness of responses
)

// Lead score tier thresholds, evaluated high to low.
const (
	scoreSeriousBuyer  = 80
	scoreActiveLooker  = 60
	scoreEarlyExplorer = 40
)

// answerValue returns the single-string value recorded for a question id, or
// "" when unanswered. List answers also yield "", which keeps every
// comparison below a plain string check.
func answerValue(responses map[string]models.Answer, questionID string) string {
	return responses[questionID].Value.String()
}

// Categorize derives a full lead assessment from the collected answers and
// notes. It is a pure function: total over any input, including the empty
// answer set, and never fails for missing answers — absent lookups contribute
// zero score or fall through to defaults.
func Categorize(responses map[string]models.Answer, notes map[models.CategoryID][]models.CategoryNote) models.Assessment {
	score := leadScore(responses)
	buyerType := classifyBuyerType(score)
	persona := identifyPersona(responses)
	urgency := determineUrgency(responses)
	serviceNeeds := identifyServiceNeeds(responses)

	slog.Debug("Categorize: assessment computed",
		"lead_score", score, "buyer_type", buyerType.Type, "persona", persona.Type, "urgency", urgency.Level)

	return models.Assessment{
		LeadScore:       score,
		BuyerType:       buyerType,
		Persona:         persona,
		UrgencyLevel:    urgency,
		ServiceNeeds:    serviceNeeds,
		Recommendations: buildRecommendations(buyerType, persona),
		CategorizedAt:   time.Now(),
	}
}

// leadScore computes the 0-100 composite readiness score.
func leadScore(responses map[string]models.Answer) int {
	score := 0

	// Timeline (30 points max)
	switch answerValue(responses, "timeline_1") {
	case "asap":
		score += 30
	case "3_months":
		score += 25
	case "3_6_months":
		score += 15
	case "6_12_months":
		score += 10
	case "planning":
		score += 5
	}

	// Budget clarity (20 points max)
	switch budget := answerValue(responses, "budget_1"); {
	case budget == "flexible":
		score += 10
	case budget != "":
		score += 20
	}

	// Financing readiness (15 points max)
	payment := answerValue(responses, "budget_2")
	bankStatus := answerValue(responses, "budget_3")
	needsFinancing := payment == "mortgage" || payment == "mix"
	switch {
	case payment == "cash":
		score += 15
	case bankStatus == "pre_approved":
		score += 15
	case needsFinancing && bankStatus == "planning":
		score += 10
	case needsFinancing:
		score += 5
	}

	// Property clarity (15 points max)
	if propertyType := answerValue(responses, "property_1"); propertyType != "" && propertyType != "open" {
		score += 8
	}
	if answerValue(responses, "property_2") != "" {
		score += 7
	}

	// Decision speed (10 points max)
	switch answerValue(responses, "decision_1") {
	case "quick_decision":
		score += 10
	case "partner_discuss":
		score += 7
	case "family_approval":
		score += 5
	case "think_about":
		score += 3
	}

	// Engagement (10 points max)
	switch total := len(responses); {
	case total >= 20:
		score += 10
	case total >= 15:
		score += 8
	case total >= 10:
		score += 5
	default:
		score += 3
	}

	if score > 100 {
		score = 100
	}
	return score
}

// classifyBuyerType maps a lead score onto the fixed buyer tiers.
func classifyBuyerType(score int) models.BuyerType {
	switch {
	case score >= scoreSeriousBuyer:
		return models.BuyerType{
			Type:        models.BuyerTypeSeriousBuyer,
			Label:       "Serious Buyer",
			Description: "Ready to purchase, clear requirements, financing sorted",
			Priority:    "high",
			FollowUp:    "immediate",
		}
	case score >= scoreActiveLooker:
		return models.BuyerType{
			Type:        models.BuyerTypeActiveLooker,
			Label:       "Active Looker",
			Description: "Actively searching, some clarity needed",
			Priority:    "medium-high",
			FollowUp:    "within_24_hours",
		}
	case score >= scoreEarlyExplorer:
		return models.BuyerType{
			Type:        models.BuyerTypeEarlyExplorer,
			Label:       "Early Explorer",
			Description: "Researching options, longer timeline",
			Priority:    "medium",
			FollowUp:    "within_week",
		}
	default:
		return models.BuyerType{
			Type:        models.BuyerTypeInfoSeeker,
			Label:       "Information Seeker",
			Description: "Just browsing, gathering information",
			Priority:    "low",
			FollowUp:    "nurture_campaign",
		}
	}
}

// identifyPersona matches the buyer archetype. The predicates run in a fixed
// order and the first match wins; later matches are intentionally discarded.
func identifyPersona(responses map[string]models.Answer) models.Persona {
	whoLiving := answerValue(responses, "profile_3")
	firstTime := answerValue(responses, "profile_2")
	budget := answerValue(responses, "budget_1")
	propertyType := answerValue(responses, "property_1")
	schools := answerValue(responses, "lifestyle_1")
	investmentGoal := answerValue(responses, "investment_1")

	switch {
	case whoLiving == "family" || schools == "very_important" || schools == "somewhat":
		return models.Persona{
			Type:     models.PersonaFamilyFocused,
			Label:    "Family-Focused Buyer",
			KeyNeeds: []string{"schools", "safe_community", "family_amenities"},
		}
	case whoLiving == "investment" || investmentGoal != "":
		return models.Persona{
			Type:     models.PersonaInvestmentMinded,
			Label:    "Investment-Minded",
			KeyNeeds: []string{"roi_potential", "rental_yield", "location_growth"},
		}
	case (budget == "3.5m_5m" || budget == "5m_plus") && propertyType == "villa":
		return models.Persona{
			Type:     models.PersonaLuxurySeeker,
			Label:    "Luxury Seeker",
			KeyNeeds: []string{"premium_locations", "high_end_amenities", "exclusivity"},
		}
	case firstTime == "first_time":
		return models.Persona{
			Type:     models.PersonaFirstTimer,
			Label:    "First-Time Buyer",
			KeyNeeds: []string{"guidance", "education", "trusted_advisor"},
		}
	case (budget == "under_1m" || budget == "1m_2m") && whoLiving != "investment":
		return models.Persona{
			Type:     models.PersonaValueHunter,
			Label:    "Value Hunter",
			KeyNeeds: []string{"affordable_options", "payment_plans", "emerging_areas"},
		}
	case firstTime == "owns_property":
		return models.Persona{
			Type:     models.PersonaUpgrader,
			Label:    "Property Upgrader",
			KeyNeeds: []string{"better_location", "more_space", "lifestyle_upgrade"},
		}
	default:
		return models.Persona{
			Type:     models.PersonaGeneralBuyer,
			Label:    "General Buyer",
			KeyNeeds: []string{"suitable_property", "fair_price", "good_location"},
		}
	}
}

// determineUrgency derives contact urgency from move-in timeline and market
// motivation.
func determineUrgency(responses map[string]models.Answer) models.Urgency {
	timeline := answerValue(responses, "timeline_1")
	reason := answerValue(responses, "timeline_2")

	immediateTimeline := timeline == "asap" || timeline == "3_months"
	pressingReason := reason == "lease_ending" || reason == "new_to_dubai"

	switch {
	case immediateTimeline || pressingReason:
		return models.Urgency{Level: models.UrgencyHigh, Label: "High Urgency", Action: "immediate_attention", Reason: reason}
	case timeline == "3_6_months":
		return models.Urgency{Level: models.UrgencyModerate, Label: "Moderate Urgency", Action: "regular_follow_up", Reason: reason}
	default:
		return models.Urgency{Level: models.UrgencyLow, Label: "Low Urgency", Action: "nurture_campaign", Reason: reason}
	}
}

// identifyServiceNeeds collects the services the lead will want. Checks are
// independent; when none match, a default pair is returned.
func identifyServiceNeeds(responses map[string]models.Answer) []string {
	var services []string

	payment := answerValue(responses, "budget_2")
	bankStatus := answerValue(responses, "budget_3")
	if payment == "mortgage" || payment == "mix" {
		switch bankStatus {
		case "need_guidance":
			services = append(services, "mortgage_assistance")
		case "planning":
			services = append(services, "bank_introduction")
		}
	}

	if answerValue(responses, "profile_2") == "first_time" {
		services = append(services, "full_guidance", "legal_assistance")
	}

	switch answerValue(responses, "decision_2") {
	case "virtual_first":
		services = append(services, "virtual_tours")
	case "in_person":
		services = append(services, "property_viewings")
	}

	if answerValue(responses, "profile_3") == "investment" {
		services = append(services, "investment_analysis", "rental_management")
	}

	if len(services) == 0 {
		services = []string{"property_matching", "viewing_arrangement"}
	}
	return services
}

// buildRecommendations maps buyer tier and persona onto fixed handling
// advice. Pure lookup, no further scoring.
func buildRecommendations(buyerType models.BuyerType, persona models.Persona) models.Recommendations {
	rec := models.Recommendations{FollowUpStrategy: buyerType.FollowUp}

	switch persona.Type {
	case models.PersonaInvestmentMinded:
		rec.AgentType = "Investment specialist"
	case models.PersonaLuxurySeeker:
		rec.AgentType = "Luxury property expert"
	case models.PersonaFamilyFocused:
		rec.AgentType = "Family homes specialist"
	default:
		rec.AgentType = "General property consultant"
	}

	switch buyerType.Type {
	case models.BuyerTypeSeriousBuyer:
		rec.InitialAction = "Call immediately and arrange viewings"
		rec.PropertiesToShow = "5-7 best matches, ready to visit"
	case models.BuyerTypeActiveLooker:
		rec.InitialAction = "Send curated property selection"
		rec.PropertiesToShow = "3-5 strong options"
	default:
		rec.InitialAction = "Send welcome email with market guide"
		rec.PropertiesToShow = "2-3 examples to gauge interest"
	}

	switch persona.Type {
	case models.PersonaFamilyFocused:
		rec.KeyTalkingPoints = []string{
			"School proximity and quality",
			"Safe, family-friendly communities",
			"Parks and recreational facilities",
		}
	case models.PersonaInvestmentMinded:
		rec.KeyTalkingPoints = []string{
			"ROI and rental yields",
			"Growth potential areas",
			"Developer reputation and track record",
		}
	case models.PersonaFirstTimer:
		rec.KeyTalkingPoints = []string{
			"Step-by-step buying process",
			"Ownership laws and regulations",
			"Hidden costs and fees",
		}
	default:
		rec.KeyTalkingPoints = []string{
			"Property features and amenities",
			"Location advantages",
			"Value proposition",
		}
	}

	return rec
}
