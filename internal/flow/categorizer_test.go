package flow

import (
	"testing"
	"time"

	"github.com/easybuydubai/leadflow/internal/models"
)

func ans(value string) models.Answer {
	return models.Answer{Value: models.StringValue(value), Timestamp: time.Now()}
}

func TestCategorizeEmptyInput(t *testing.T) {
	a := Categorize(map[string]models.Answer{}, nil)

	// Only the engagement floor contributes.
	if a.LeadScore != 3 {
		t.Errorf("expected score 3 for empty input, got %d", a.LeadScore)
	}
	if a.BuyerType.Type != models.BuyerTypeInfoSeeker {
		t.Errorf("expected info_seeker, got %s", a.BuyerType.Type)
	}
	if a.Persona.Type != models.PersonaGeneralBuyer {
		t.Errorf("expected general_buyer, got %s", a.Persona.Type)
	}
	if a.UrgencyLevel.Level != models.UrgencyLow {
		t.Errorf("expected low urgency, got %s", a.UrgencyLevel.Level)
	}
	if len(a.ServiceNeeds) != 2 || a.ServiceNeeds[0] != "property_matching" || a.ServiceNeeds[1] != "viewing_arrangement" {
		t.Errorf("expected default service pair, got %v", a.ServiceNeeds)
	}
}

func TestCategorizeSeriousCashBuyer(t *testing.T) {
	responses := map[string]models.Answer{
		"timeline_1": ans("asap"),          // 30
		"budget_1":   ans("5m_plus"),       // 20
		"budget_2":   ans("cash"),          // 15
		"property_1": ans("villa"),         // 8
		"property_2": ans("5br_plus"),      // 7
		"decision_1": ans("quick_decision"), // 10
		"profile_3":  ans("couple"),
	}
	a := Categorize(responses, nil)

	// 90 from the factors above plus the engagement floor of 3.
	if a.LeadScore != 93 {
		t.Errorf("expected score 93, got %d", a.LeadScore)
	}
	if a.BuyerType.Type != models.BuyerTypeSeriousBuyer {
		t.Errorf("expected serious_buyer, got %s", a.BuyerType.Type)
	}
	if a.BuyerType.FollowUp != "immediate" {
		t.Errorf("expected immediate follow-up, got %s", a.BuyerType.FollowUp)
	}
	if a.Persona.Type != models.PersonaLuxurySeeker {
		t.Errorf("expected luxury_seeker, got %s", a.Persona.Type)
	}
	if a.UrgencyLevel.Level != models.UrgencyHigh {
		t.Errorf("expected high urgency, got %s", a.UrgencyLevel.Level)
	}
	if a.Recommendations.AgentType != "Luxury property expert" {
		t.Errorf("unexpected agent type %q", a.Recommendations.AgentType)
	}
	if a.Recommendations.PropertiesToShow != "5-7 best matches, ready to visit" {
		t.Errorf("unexpected properties to show %q", a.Recommendations.PropertiesToShow)
	}
}

func TestPersonaFamilyWinsOverInvestment(t *testing.T) {
	responses := map[string]models.Answer{
		"profile_3":    ans("family"),
		"investment_1": ans("rental"),
	}
	a := Categorize(responses, nil)
	if a.Persona.Type != models.PersonaFamilyFocused {
		t.Errorf("family predicate should win, got %s", a.Persona.Type)
	}
	if a.Recommendations.AgentType != "Family homes specialist" {
		t.Errorf("unexpected agent type %q", a.Recommendations.AgentType)
	}
}

func TestPersonaFirstTimer(t *testing.T) {
	responses := map[string]models.Answer{
		"profile_2": ans("first_time"),
		"profile_3": ans("single"),
	}
	a := Categorize(responses, nil)
	if a.Persona.Type != models.PersonaFirstTimer {
		t.Errorf("expected first_timer, got %s", a.Persona.Type)
	}
	if len(a.Recommendations.KeyTalkingPoints) != 3 || a.Recommendations.KeyTalkingPoints[0] != "Step-by-step buying process" {
		t.Errorf("unexpected talking points %v", a.Recommendations.KeyTalkingPoints)
	}
}

func TestUrgencyPressingReasonOverridesTimeline(t *testing.T) {
	responses := map[string]models.Answer{
		"timeline_1": ans("planning"),
		"timeline_2": ans("lease_ending"),
	}
	a := Categorize(responses, nil)
	if a.UrgencyLevel.Level != models.UrgencyHigh {
		t.Errorf("lease_ending should force high urgency, got %s", a.UrgencyLevel.Level)
	}
	if a.UrgencyLevel.Reason != "lease_ending" {
		t.Errorf("expected reason echoed, got %q", a.UrgencyLevel.Reason)
	}
}

func TestUrgencyModerate(t *testing.T) {
	responses := map[string]models.Answer{
		"timeline_1": ans("3_6_months"),
	}
	a := Categorize(responses, nil)
	if a.UrgencyLevel.Level != models.UrgencyModerate {
		t.Errorf("expected moderate urgency, got %s", a.UrgencyLevel.Level)
	}
}

func TestServiceNeedsUnion(t *testing.T) {
	responses := map[string]models.Answer{
		"budget_2":   ans("mortgage"),
		"budget_3":   ans("need_guidance"),
		"profile_2":  ans("first_time"),
		"decision_2": ans("virtual_first"),
	}
	a := Categorize(responses, nil)

	want := []string{"mortgage_assistance", "full_guidance", "legal_assistance", "virtual_tours"}
	if len(a.ServiceNeeds) != len(want) {
		t.Fatalf("expected %d services, got %v", len(want), a.ServiceNeeds)
	}
	for i, svc := range want {
		if a.ServiceNeeds[i] != svc {
			t.Errorf("service %d: expected %s, got %s", i, svc, a.ServiceNeeds[i])
		}
	}
}

func TestServiceNeedsInvestor(t *testing.T) {
	responses := map[string]models.Answer{
		"profile_3": ans("investment"),
	}
	a := Categorize(responses, nil)
	if len(a.ServiceNeeds) != 2 || a.ServiceNeeds[0] != "investment_analysis" || a.ServiceNeeds[1] != "rental_management" {
		t.Errorf("expected investor services, got %v", a.ServiceNeeds)
	}
	if a.Persona.Type != models.PersonaInvestmentMinded {
		t.Errorf("expected investment_minded, got %s", a.Persona.Type)
	}
}

func TestScoreClampedToHundred(t *testing.T) {
	responses := map[string]models.Answer{
		"timeline_1": ans("asap"),
		"budget_1":   ans("2m_3.5m"),
		"budget_2":   ans("cash"),
		"property_1": ans("apartment"),
		"property_2": ans("2br"),
		"decision_1": ans("quick_decision"),
	}
	// Pad to 20+ answers so engagement contributes its maximum.
	for i := 0; i < 20; i++ {
		responses["extra_"+string(rune('a'+i))] = ans("x")
	}
	a := Categorize(responses, nil)
	if a.LeadScore != 100 {
		t.Errorf("expected clamped score 100, got %d", a.LeadScore)
	}
}

func TestListAnswersContributeNothing(t *testing.T) {
	responses := map[string]models.Answer{
		"timeline_1": {Value: models.ListValue("asap", "3_months")},
	}
	a := Categorize(responses, nil)
	// A list where a single value is expected reads as "" everywhere.
	if a.LeadScore != 3 {
		t.Errorf("expected only engagement floor, got %d", a.LeadScore)
	}
}
