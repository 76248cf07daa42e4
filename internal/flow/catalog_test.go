package flow

import (
	"testing"

	"github.com/easybuydubai/leadflow/internal/models"
)

func TestCatalogShape(t *testing.T) {
	categories := Categories()
	if len(categories) != 10 {
		t.Fatalf("expected 10 categories, got %d", len(categories))
	}
	if categories[0].ID != models.CategoryProfile {
		t.Errorf("expected profile first, got %s", categories[0].ID)
	}
	if categories[len(categories)-1].ID != models.CategoryContact {
		t.Errorf("expected contact last, got %s", categories[len(categories)-1].ID)
	}
	for _, c := range categories {
		if len(QuestionsFor(c.ID)) == 0 {
			t.Errorf("category %s has no questions", c.ID)
		}
	}
	if totalQuestionCount() != 21 {
		t.Errorf("expected 21 catalog questions, got %d", totalQuestionCount())
	}
}

func TestCatalogQuestionIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Categories() {
		for _, q := range QuestionsFor(c.ID) {
			if seen[q.ID] {
				t.Errorf("duplicate question id %s", q.ID)
			}
			seen[q.ID] = true
		}
	}
}

func TestCatalogConditionsReferenceEarlierQuestions(t *testing.T) {
	// Conditions must reference questions that appear earlier in traversal
	// order, otherwise they could never be satisfied.
	position := make(map[string]int)
	idx := 0
	for _, c := range Categories() {
		for _, q := range QuestionsFor(c.ID) {
			position[q.ID] = idx
			idx++
		}
	}
	for _, c := range Categories() {
		for _, q := range QuestionsFor(c.ID) {
			for dep, allowed := range q.Condition {
				depPos, ok := position[dep]
				if !ok {
					t.Errorf("question %s condition references unknown question %s", q.ID, dep)
					continue
				}
				if depPos >= position[q.ID] {
					t.Errorf("question %s condition references later question %s", q.ID, dep)
				}
				if len(allowed) == 0 {
					t.Errorf("question %s has an empty allowed set for %s", q.ID, dep)
				}
			}
		}
	}
}

func TestCatalogChoiceQuestionsHaveOptions(t *testing.T) {
	for _, c := range Categories() {
		for _, q := range QuestionsFor(c.ID) {
			switch q.Type {
			case models.QuestionTypeSingleChoice, models.QuestionTypeMultipleChoice:
				if len(q.Options) == 0 {
					t.Errorf("choice question %s has no options", q.ID)
				}
			}
		}
	}
}
