package flow

import (
	"testing"
	"time"

	"github.com/easybuydubai/leadflow/internal/models"
)

// answerAll walks the engine to completion, answering every reachable
// question with the supplied values (falling back to the first option), and
// returns the question ids in the order they were asked.
func answerAll(e *Engine, values map[string]models.AnswerValue) []string {
	var asked []string
	for q := e.CurrentQuestion(); q != nil; q = e.CurrentQuestion() {
		asked = append(asked, q.ID)
		value, ok := values[q.ID]
		if !ok {
			if len(q.Options) > 0 {
				value = models.StringValue(q.Options[0].Value)
			} else {
				value = models.StringValue("test")
			}
		}
		e.SubmitAnswer(q.ID, value, false, "")
	}
	return asked
}

func TestCurrentQuestionIdempotent(t *testing.T) {
	e := NewEngine()
	first := e.CurrentQuestion()
	second := e.CurrentQuestion()
	if first == nil || second == nil {
		t.Fatal("expected a question on a fresh engine")
	}
	if first.ID != "profile_1" {
		t.Errorf("expected profile_1 first, got %s", first.ID)
	}
	if first.ID != second.ID {
		t.Errorf("repeated reads diverged: %s vs %s", first.ID, second.ID)
	}
}

func TestSubmitAnswerAdvancesCursor(t *testing.T) {
	e := NewEngine()
	q := e.CurrentQuestion()
	e.SubmitAnswer(q.ID, models.StringValue("already_here"), false, "")
	next := e.CurrentQuestion()
	if next == nil || next.ID != "profile_2" {
		t.Fatalf("expected profile_2 after answering profile_1, got %v", next)
	}
}

func TestCashBuyerSkipsBankQuestion(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")
	e.SubmitAnswer("budget_1", models.StringValue("1m_2m"), false, "")
	e.SubmitAnswer("budget_2", models.StringValue("cash"), false, "")

	next := e.CurrentQuestion()
	if next == nil || next.ID != "property_1" {
		t.Fatalf("expected budget_3 to be skipped for cash buyer, got %v", next)
	}
}

func TestMortgageBuyerGetsBankQuestion(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")
	e.SubmitAnswer("budget_1", models.StringValue("1m_2m"), false, "")
	e.SubmitAnswer("budget_2", models.StringValue("mortgage"), false, "")

	next := e.CurrentQuestion()
	if next == nil || next.ID != "budget_3" {
		t.Fatalf("expected budget_3 for mortgage buyer, got %v", next)
	}
}

func TestAbsentPriorAnswerFailsCondition(t *testing.T) {
	e := NewEngine()
	// Skip the profile category before profile_3 is answered; the schools
	// question depends on it and must not be asked.
	e.SkipCategory(models.CategoryProfile)
	asked := answerAll(e, nil)
	for _, id := range asked {
		if id == "lifestyle_1" {
			t.Error("lifestyle_1 asked despite its prior answer being absent")
		}
	}
}

func TestFamilyPathAsksSchoolsSkipsInvestment(t *testing.T) {
	e := NewEngine()
	asked := answerAll(e, map[string]models.AnswerValue{
		"profile_3": models.StringValue("family"),
		"budget_2":  models.StringValue("mortgage"),
	})

	want := map[string]bool{"lifestyle_1": true, "budget_3": true}
	for _, id := range asked {
		delete(want, id)
		if id == "investment_1" || id == "investment_2" {
			t.Errorf("investment question %s asked on a family path", id)
		}
	}
	for id := range want {
		t.Errorf("expected %s to be asked", id)
	}
	if !e.IsComplete() {
		t.Error("flow not complete after answering every reachable question")
	}
	// 21 catalog questions minus investment_1 and investment_2.
	if len(asked) != 19 {
		t.Errorf("expected 19 questions asked, got %d", len(asked))
	}
}

func TestRestartPreservesCollectedData(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.AddNote(models.CategoryProfile, "met at open house")
	e.SkipCategory(models.CategoryInvestment)

	e.Restart()

	q := e.CurrentQuestion()
	if q == nil || q.ID != "profile_1" {
		t.Fatalf("expected cursor back at profile_1, got %v", q)
	}
	if len(e.Responses()) != 2 {
		t.Errorf("expected 2 preserved responses, got %d", len(e.Responses()))
	}
	if len(e.Notes()[models.CategoryProfile]) != 1 {
		t.Error("note lost on restart")
	}
	summary := e.Summary()
	if len(summary.SkippedCategories) != 1 {
		t.Error("skip record lost on restart")
	}
}

func TestSubmitAnswerOverwrites(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_1", models.StringValue("planning_move"), false, "")
	if got := e.Responses()["profile_1"].Value.String(); got != "planning_move" {
		t.Errorf("expected overwrite to planning_move, got %s", got)
	}
	if len(e.Responses()) != 1 {
		t.Errorf("expected 1 response, got %d", len(e.Responses()))
	}
}

func TestProgressReporting(t *testing.T) {
	e := NewEngine()
	start := time.Now()
	e.startTime = start
	e.now = func() time.Time { return start.Add(2 * time.Minute) }

	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")

	p := e.Progress()
	if p.CurrentCategory != "budget" {
		t.Errorf("expected current category budget, got %s", p.CurrentCategory)
	}
	if p.CategoriesCompleted != 1 {
		t.Errorf("expected 1 category completed, got %d", p.CategoriesCompleted)
	}
	if p.TotalCategories != 10 {
		t.Errorf("expected 10 total categories, got %d", p.TotalCategories)
	}
	if p.QuestionsAnswered != 3 {
		t.Errorf("expected 3 questions answered, got %d", p.QuestionsAnswered)
	}
	if p.TotalQuestions != 21 {
		t.Errorf("expected 21 total questions, got %d", p.TotalQuestions)
	}
	if p.PercentageComplete != 10 {
		t.Errorf("expected 10%% complete, got %d", p.PercentageComplete)
	}
	if p.TimeElapsed != 2.0 {
		t.Errorf("expected 2.0 minutes elapsed, got %v", p.TimeElapsed)
	}
	// 9 remaining categories at 1 minute each.
	if p.EstimatedRemaining != 9.0 {
		t.Errorf("expected 9.0 minutes remaining, got %v", p.EstimatedRemaining)
	}
}

func TestProgressWhenComplete(t *testing.T) {
	e := NewEngine()
	answerAll(e, nil)
	p := e.Progress()
	if p.CurrentCategory != "complete" || p.CurrentCategoryName != "Complete" {
		t.Errorf("expected complete sentinel, got %s/%s", p.CurrentCategory, p.CurrentCategoryName)
	}
	if p.PercentageComplete != 100 {
		t.Errorf("expected 100%% complete, got %d", p.PercentageComplete)
	}
}

func TestTimelineStatuses(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")
	e.SkipCategory(models.CategoryInvestment)

	timeline := e.Timeline()
	if len(timeline) != 10 {
		t.Fatalf("expected 10 timeline entries, got %d", len(timeline))
	}
	if timeline[0].Status != models.TimelineStatusCompleted {
		t.Errorf("profile should be completed, got %s", timeline[0].Status)
	}
	if timeline[1].Status != models.TimelineStatusActive {
		t.Errorf("budget should be active, got %s", timeline[1].Status)
	}
	if timeline[2].Status != models.TimelineStatusUpcoming {
		t.Errorf("property should be upcoming, got %s", timeline[2].Status)
	}
	if timeline[6].ID != models.CategoryInvestment || timeline[6].Status != models.TimelineStatusSkipped {
		t.Errorf("investment should be skipped, got %s for %s", timeline[6].Status, timeline[6].ID)
	}
}

func TestSkipBehindCursorShowsCompleted(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")

	e.SkipCategory(models.CategoryProfile)

	timeline := e.Timeline()
	if timeline[0].Status != models.TimelineStatusCompleted {
		t.Errorf("passed category should stay completed, got %s", timeline[0].Status)
	}
	// The mark is still recorded in the skip list.
	if !e.isSkipped(models.CategoryProfile) {
		t.Error("skip mark not recorded")
	}
}

func TestSkipActiveCategoryAdvances(t *testing.T) {
	e := NewEngine()
	e.SkipCategory(models.CategoryProfile)
	q := e.CurrentQuestion()
	if q == nil || q.ID != "budget_1" {
		t.Fatalf("expected budget_1 after skipping profile, got %v", q)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	e := NewEngine()
	e.SubmitAnswer("profile_1", models.StringValue("already_here"), false, "")
	e.SubmitAnswer("profile_2", models.StringValue("first_time"), false, "")
	e.AddNote(models.CategoryBudget, "prefers off-plan")
	e.SkipCategory(models.CategoryInvestment)

	snap := e.Snapshot()
	restored := RestoreEngine(snap)

	q1, q2 := e.CurrentQuestion(), restored.CurrentQuestion()
	if q1.ID != q2.ID {
		t.Errorf("restored cursor diverged: %s vs %s", q1.ID, q2.ID)
	}
	if len(restored.Responses()) != 2 {
		t.Errorf("expected 2 restored responses, got %d", len(restored.Responses()))
	}
	if len(restored.Notes()[models.CategoryBudget]) != 1 {
		t.Error("note lost through snapshot round trip")
	}

	// Snapshot must be stable against later engine mutation.
	e.SubmitAnswer("profile_3", models.StringValue("single"), false, "")
	if len(snap.Responses) != 2 {
		t.Errorf("snapshot mutated by engine: %d responses", len(snap.Responses))
	}
}

func TestNotePermissiveForUnknownCategory(t *testing.T) {
	e := NewEngine()
	e.AddNote(models.CategoryID("made_up"), "still stored")
	if len(e.Notes()[models.CategoryID("made_up")]) != 1 {
		t.Error("note for unknown category was dropped")
	}
}
