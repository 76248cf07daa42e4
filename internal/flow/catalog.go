// Package flow implements the scripted lead-qualification conversation:
// a fixed catalog of categories and questions, the cursor-based engine that
// walks it, and the categorizer that scores the collected answers.
package flow

import "github.com/easybuydubai/leadflow/internal/models"

// estimatedTotalTime is the advertised total duration of the flow in minutes.
const estimatedTotalTime = 10.0

// catalogCategories is the fixed, ordered category sequence. Order defines
// traversal order and is never mutated at runtime.
var catalogCategories = []models.Category{
	{ID: models.CategoryProfile, Name: "Profile", Description: "Understanding your situation", EstimatedTime: 1.5, Icon: "👤"},
	{ID: models.CategoryBudget, Name: "Budget", Description: "Financial comfort zone", EstimatedTime: 1, Icon: "💰"},
	{ID: models.CategoryProperty, Name: "Property", Description: "Your dream property", EstimatedTime: 1.5, Icon: "🏠"},
	{ID: models.CategoryLocation, Name: "Location", Description: "Perfect neighborhood", EstimatedTime: 1, Icon: "📍"},
	{ID: models.CategoryTimeline, Name: "Timeline", Description: "Your property journey", EstimatedTime: 0.5, Icon: "📅"},
	{ID: models.CategoryLifestyle, Name: "Lifestyle", Description: "Your lifestyle needs", EstimatedTime: 1, Icon: "🌟"},
	{ID: models.CategoryInvestment, Name: "Investment", Description: "Investment goals", EstimatedTime: 1, Icon: "📈", IsOptional: true},
	{ID: models.CategoryPriorities, Name: "Priorities", Description: "Deal makers & breakers", EstimatedTime: 1, Icon: "⭐"},
	{ID: models.CategoryDecision, Name: "Decision", Description: "How you make decisions", EstimatedTime: 0.5, Icon: "🤔"},
	{ID: models.CategoryContact, Name: "Contact", Description: "How to reach you", EstimatedTime: 1, Icon: "📱"},
}

// catalogQuestions maps each category to its ordered question list.
var catalogQuestions = map[models.CategoryID][]models.Question{
	models.CategoryProfile: {
		{
			ID:     "profile_1",
			Prompt: "Are you currently living in Dubai, or planning to move here?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Already living here", Value: "already_here", Icon: "🏙️"},
				{Label: "Planning to move", Value: "planning_move", Icon: "✈️"},
				{Label: "Investing from abroad", Value: "investing_abroad", Icon: "🌍"},
			},
			HasOther:    true,
			OtherPrompt: "Tell us more about your situation",
		},
		{
			ID:     "profile_2",
			Prompt: "Is this your first time buying property in Dubai?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Yes, first time", Value: "first_time", Icon: "🆕"},
				{Label: "I own property here", Value: "owns_property", Icon: "🏘️"},
				{Label: "I've bought before but sold", Value: "previous_owner", Icon: "🔄"},
			},
		},
		{
			ID:     "profile_3",
			Prompt: "Who will be living in this property?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Just me", Value: "single", Icon: "👤"},
				{Label: "Me and my partner", Value: "couple", Icon: "👥"},
				{Label: "My family", Value: "family", Icon: "👨‍👩‍👧‍👦"},
				{Label: "It's an investment", Value: "investment", Icon: "💼"},
			},
			HasOther:    true,
			OtherPrompt: "Tell us about who'll be living there",
		},
	},
	models.CategoryBudget: {
		{
			ID:     "budget_1",
			Prompt: "What's your comfortable budget range?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Under 1M AED", Value: "under_1m", Icon: "💵"},
				{Label: "1M - 2M AED", Value: "1m_2m", Icon: "💵"},
				{Label: "2M - 3.5M AED", Value: "2m_3.5m", Icon: "💵"},
				{Label: "3.5M - 5M AED", Value: "3.5m_5m", Icon: "💵"},
				{Label: "5M+ AED", Value: "5m_plus", Icon: "💵"},
				{Label: "Flexible/Not sure", Value: "flexible", Icon: "🤷"},
			},
			HasOther:    true,
			OtherPrompt: "Share your budget thoughts",
		},
		{
			ID:     "budget_2",
			Prompt: "How are you planning to purchase?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Cash purchase", Value: "cash", Icon: "💳"},
				{Label: "Will need a mortgage", Value: "mortgage", Icon: "🏦"},
				{Label: "Mix of both", Value: "mix", Icon: "💰"},
			},
		},
		{
			ID:     "budget_3",
			Prompt: "Have you spoken to any banks yet?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Yes, pre-approved", Value: "pre_approved", Icon: "✅"},
				{Label: "Planning to", Value: "planning", Icon: "📅"},
				{Label: "Need guidance", Value: "need_guidance", Icon: "❓"},
				{Label: "Rather not say", Value: "private", Icon: "🤐"},
			},
			// Only asked when financing is involved.
			Condition: map[string][]string{"budget_2": {"mortgage", "mix"}},
		},
	},
	models.CategoryProperty: {
		{
			ID:     "property_1",
			Prompt: "Are you thinking apartment living or do you want your own villa?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Apartment", Value: "apartment", Icon: "🏢"},
				{Label: "Villa", Value: "villa", Icon: "🏡"},
				{Label: "Townhouse", Value: "townhouse", Icon: "🏘️"},
				{Label: "Open to suggestions", Value: "open", Icon: "🤔"},
			},
			HasOther:    true,
			OtherPrompt: "What type of property interests you?",
		},
		{
			ID:     "property_2",
			Prompt: "How much space do you need?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Cozy studio", Value: "studio", Icon: "🛏️"},
				{Label: "1 bedroom", Value: "1br", Icon: "🛏️"},
				{Label: "2 bedrooms", Value: "2br", Icon: "🛏️"},
				{Label: "3 bedrooms", Value: "3br", Icon: "🛏️"},
				{Label: "4 bedrooms", Value: "4br", Icon: "🛏️"},
				{Label: "5+ bedrooms", Value: "5br_plus", Icon: "🛏️"},
			},
		},
		{
			ID:     "property_3",
			Prompt: "Do you prefer shiny and new, or are established properties fine?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Brand new only", Value: "new_only", Icon: "✨"},
				{Label: "Relatively new (under 5 years)", Value: "relatively_new", Icon: "🆕"},
				{Label: "Age doesn't matter if nice", Value: "age_flexible", Icon: "👍"},
			},
		},
	},
	models.CategoryLocation: {
		{
			ID:     "location_1",
			Prompt: "What kind of vibe are you looking for?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Beachside & resort feel", Value: "beachside", Icon: "🏖️"},
				{Label: "Urban & city center", Value: "urban", Icon: "🏙️"},
				{Label: "Family community", Value: "family_community", Icon: "👨‍👩‍👧"},
				{Label: "Quiet & green", Value: "quiet_green", Icon: "🌳"},
			},
			HasOther:    true,
			OtherPrompt: "Describe your ideal neighborhood vibe",
		},
		{
			ID:     "location_2",
			Prompt: "Tell me about your typical day - do you need to commute somewhere regularly?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Yes, to DIFC/Downtown", Value: "difc_downtown", Icon: "🏢"},
				{Label: "Yes, to Marina/JLT", Value: "marina_jlt", Icon: "🏢"},
				{Label: "Yes, to Abu Dhabi", Value: "abu_dhabi", Icon: "🏢"},
				{Label: "Work from home", Value: "wfh", Icon: "🏠"},
				{Label: "Retired/flexible", Value: "flexible", Icon: "😌"},
				{Label: "Multiple locations", Value: "multiple", Icon: "🚗"},
			},
			HasOther:    true,
			OtherPrompt: "Where do you need to commute to?",
		},
	},
	models.CategoryTimeline: {
		{
			ID:     "timeline_1",
			Prompt: "When do you hope to move in?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "ASAP", Value: "asap", Icon: "🚀"},
				{Label: "Next 3 months", Value: "3_months", Icon: "📅"},
				{Label: "3-6 months", Value: "3_6_months", Icon: "📅"},
				{Label: "6-12 months", Value: "6_12_months", Icon: "📅"},
				{Label: "Just planning ahead", Value: "planning", Icon: "🔮"},
			},
		},
		{
			ID:     "timeline_2",
			Prompt: "What's bringing you to the market now?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Lease ending soon", Value: "lease_ending", Icon: "📝"},
				{Label: "Family growing", Value: "family_growing", Icon: "👶"},
				{Label: "Good time to invest", Value: "investment_timing", Icon: "📈"},
				{Label: "Just got to Dubai", Value: "new_to_dubai", Icon: "✈️"},
				{Label: "Been planning this", Value: "planned", Icon: "📋"},
			},
			HasOther:    true,
			OtherPrompt: "What's your motivation?",
		},
	},
	models.CategoryLifestyle: {
		{
			ID:     "lifestyle_1",
			Prompt: "Do schools play a part in your location choice?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Very important", Value: "very_important", Icon: "🎓"},
				{Label: "Somewhat important", Value: "somewhat", Icon: "📚"},
				{Label: "Not a factor", Value: "not_factor", Icon: "❌"},
			},
			// Only asked when a family will live in the property.
			Condition: map[string][]string{"profile_3": {"family"}},
		},
		{
			ID:     "lifestyle_2",
			Prompt: "What would make your home perfect? (Pick what matters)",
			Type:   models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{Label: "Pool for weekends", Value: "pool", Icon: "🏊"},
				{Label: "Gym to stay fit", Value: "gym", Icon: "💪"},
				{Label: "Kids' play areas", Value: "kids_area", Icon: "🎮"},
				{Label: "Pet-friendly", Value: "pet_friendly", Icon: "🐕"},
				{Label: "Great views", Value: "views", Icon: "🌅"},
				{Label: "Peaceful garden", Value: "garden", Icon: "🌿"},
			},
			HasOther:    true,
			OtherPrompt: "What else would make it perfect?",
			IsOptional:  true,
		},
	},
	models.CategoryInvestment: {
		{
			ID:     "investment_1",
			Prompt: "What's your main goal with this investment?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Rental income", Value: "rental", Icon: "💰"},
				{Label: "Long-term appreciation", Value: "appreciation", Icon: "📈"},
				{Label: "Holiday home", Value: "holiday", Icon: "🏖️"},
				{Label: "Future residence", Value: "future_residence", Icon: "🏠"},
			},
			HasOther:    true,
			OtherPrompt: "Tell us about your investment goals",
			Condition:   map[string][]string{"profile_3": {"investment"}},
		},
		{
			ID:     "investment_2",
			Prompt: "Are you looking for something that rents easily?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Yes, rental yield is key", Value: "yield_key", Icon: "🔑"},
				{Label: "Nice to have", Value: "nice_to_have", Icon: "👍"},
				{Label: "Not important", Value: "not_important", Icon: "🤷"},
			},
			Condition: map[string][]string{"profile_3": {"investment"}},
		},
	},
	models.CategoryPriorities: {
		{
			ID:     "priorities_1",
			Prompt: "What would make you say 'this is the one!'?",
			Type:   models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{Label: "Perfect location", Value: "location", Icon: "📍"},
				{Label: "Great value", Value: "value", Icon: "💎"},
				{Label: "Amazing view", Value: "view", Icon: "🌆"},
				{Label: "Love the community", Value: "community", Icon: "🏘️"},
				{Label: "Just feels right", Value: "feeling", Icon: "❤️"},
			},
			HasOther:    true,
			OtherPrompt: "What else would seal the deal?",
		},
		{
			ID:     "priorities_2",
			Prompt: "What would make you walk away immediately?",
			Type:   models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{Label: "Too noisy", Value: "noisy", Icon: "🔊"},
				{Label: "No parking", Value: "no_parking", Icon: "🚗"},
				{Label: "Needs too much work", Value: "needs_work", Icon: "🔨"},
				{Label: "Bad location", Value: "bad_location", Icon: "❌"},
				{Label: "Over budget", Value: "over_budget", Icon: "💸"},
			},
			HasOther:    true,
			OtherPrompt: "What else is a deal breaker?",
			IsOptional:  true,
		},
	},
	models.CategoryDecision: {
		{
			ID:     "decision_1",
			Prompt: "When you find the right place, what happens next?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "I can decide quickly", Value: "quick_decision", Icon: "⚡"},
				{Label: "Need to discuss with partner", Value: "partner_discuss", Icon: "💑"},
				{Label: "Need family approval", Value: "family_approval", Icon: "👨‍👩‍👧‍👦"},
				{Label: "Want to think about it", Value: "think_about", Icon: "🤔"},
			},
		},
		{
			ID:     "decision_2",
			Prompt: "How do you prefer to explore properties?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "In-person viewings", Value: "in_person", Icon: "🚶"},
				{Label: "Virtual tours first", Value: "virtual_first", Icon: "💻"},
				{Label: "Both work for me", Value: "both", Icon: "🔄"},
				{Label: "Send me details first", Value: "details_first", Icon: "📧"},
			},
		},
	},
	models.CategoryContact: {
		{
			ID:     "contact_1",
			Prompt: "How would you prefer I share property options with you?",
			Type:   models.QuestionTypeMultipleChoice,
			Options: []models.QuestionOption{
				{Label: "WhatsApp messages", Value: "whatsapp", Icon: "📱"},
				{Label: "Email with details", Value: "email", Icon: "📧"},
				{Label: "Quick call", Value: "call", Icon: "📞"},
				{Label: "All of the above", Value: "all", Icon: "✅"},
			},
		},
		{
			ID:     "contact_2",
			Prompt: "When's usually good to reach you?",
			Type:   models.QuestionTypeSingleChoice,
			Options: []models.QuestionOption{
				{Label: "Mornings", Value: "morning", Icon: "🌅"},
				{Label: "Afternoons", Value: "afternoon", Icon: "☀️"},
				{Label: "Evenings", Value: "evening", Icon: "🌙"},
				{Label: "Weekends", Value: "weekends", Icon: "📅"},
				{Label: "Anytime is fine", Value: "anytime", Icon: "⏰"},
			},
		},
	},
}

// totalQuestionCount counts every catalog question regardless of conditions.
func totalQuestionCount() int {
	total := 0
	for _, questions := range catalogQuestions {
		total += len(questions)
	}
	return total
}

// Categories returns the fixed category sequence in traversal order.
func Categories() []models.Category {
	return catalogCategories
}

// QuestionsFor returns the ordered question list for a category.
func QuestionsFor(id models.CategoryID) []models.Question {
	return catalogQuestions[id]
}
