package flow

import (
	"log/slog"
	"math"
	"time"

	"github.com/easybuydubai/leadflow/internal/models"
)

// Engine walks one session through the question catalog. It owns the cursor
// (category index, question index), the collected answers, per-category notes,
// and the skipped-category set.
//
// The engine performs no locking and no I/O; callers must serialize access per
// session. Every operation is a bounded in-memory computation.
type Engine struct {
	categories []models.Category
	questions  map[models.CategoryID][]models.Question

	categoryIndex int
	questionIndex int

	responses         map[string]models.Answer
	additionalNotes   map[models.CategoryID][]models.CategoryNote
	skippedCategories []models.CategoryID
	startTime         time.Time

	now func() time.Time
}

// NewEngine creates an engine positioned at the first question with no
// collected input.
func NewEngine() *Engine {
	return &Engine{
		categories:        catalogCategories,
		questions:         catalogQuestions,
		responses:         make(map[string]models.Answer),
		additionalNotes:   make(map[models.CategoryID][]models.CategoryNote),
		skippedCategories: []models.CategoryID{},
		startTime:         time.Now(),
		now:               time.Now,
	}
}

// RestoreEngine rebuilds an engine from a persisted snapshot.
func RestoreEngine(snap models.FlowSnapshot) *Engine {
	e := NewEngine()
	e.categoryIndex = snap.CategoryIndex
	e.questionIndex = snap.QuestionIndex
	if snap.Responses != nil {
		e.responses = snap.Responses
	}
	if snap.AdditionalNotes != nil {
		e.additionalNotes = snap.AdditionalNotes
	}
	if snap.SkippedCategories != nil {
		e.skippedCategories = snap.SkippedCategories
	}
	if !snap.StartTime.IsZero() {
		e.startTime = snap.StartTime
	}
	return e
}

// Restart resets the cursor to the first question and the elapsed-time
// baseline while keeping responses, notes, and skipped categories. Used when
// a caller re-initiates a session that already holds answers.
func (e *Engine) Restart() {
	slog.Debug("Engine.Restart: resetting cursor, keeping responses", "responses", len(e.responses))
	e.categoryIndex = 0
	e.questionIndex = 0
	e.startTime = e.now()
}

// EstimatedTotalTime returns the advertised flow duration in minutes.
func (e *Engine) EstimatedTotalTime() float64 {
	return estimatedTotalTime
}

// conditionMet reports whether every condition entry of q is satisfied by a
// recorded answer. A missing answer fails the condition.
func (e *Engine) conditionMet(q models.Question) bool {
	for questionID, allowed := range q.Condition {
		answer, ok := e.responses[questionID]
		if !ok || !answer.Value.In(allowed) {
			return false
		}
	}
	return true
}

// advanceToReachable moves the cursor past questions whose conditions are not
// satisfied, rolling over category boundaries as needed. It mutates the
// cursor even though its only caller is a getter; the auto-skip is the one
// stateful side effect of reading the current question.
func (e *Engine) advanceToReachable() *models.Question {
	for e.categoryIndex < len(e.categories) {
		category := e.categories[e.categoryIndex]
		questions := e.questions[category.ID]
		for e.questionIndex < len(questions) {
			q := questions[e.questionIndex]
			if e.conditionMet(q) {
				return &q
			}
			slog.Debug("Engine.advanceToReachable: condition not met, skipping question", "question_id", q.ID, "category", category.ID)
			e.questionIndex++
		}
		e.categoryIndex++
		e.questionIndex = 0
	}
	return nil
}

// CurrentQuestion returns the next reachable question, or nil once the flow
// is complete. Repeated calls without an intervening SubmitAnswer converge to
// the same question.
func (e *Engine) CurrentQuestion() *models.Question {
	return e.advanceToReachable()
}

// SubmitAnswer records a response for questionID, overwriting any prior
// answer, and advances the cursor by one question.
//
// The supplied id is not checked against the question the cursor points to;
// callers are expected to echo the id returned by CurrentQuestion. Answering
// an arbitrary id stores the answer but can desynchronize the cursor from the
// answered content.
func (e *Engine) SubmitAnswer(questionID string, value models.AnswerValue, isOther bool, otherText string) {
	e.responses[questionID] = models.Answer{
		Value:     value,
		IsOther:   isOther,
		OtherText: otherText,
		Timestamp: e.now(),
	}
	slog.Debug("Engine.SubmitAnswer: answer recorded", "question_id", questionID, "total_answers", len(e.responses))

	e.questionIndex++
	if e.categoryIndex >= len(e.categories) {
		return
	}
	category := e.categories[e.categoryIndex]
	if e.questionIndex >= len(e.questions[category.ID]) {
		e.categoryIndex++
		e.questionIndex = 0
	}
}

// AddNote appends a free-text note for a category. Notes for unknown category
// ids are accepted and stored under the given id; the note map is schemaless
// by design so annotations are never lost.
func (e *Engine) AddNote(categoryID models.CategoryID, note string) {
	e.additionalNotes[categoryID] = append(e.additionalNotes[categoryID], models.CategoryNote{
		Note:      note,
		Timestamp: e.now(),
	})
	slog.Debug("Engine.AddNote: note added", "category", categoryID, "notes_for_category", len(e.additionalNotes[categoryID]))
}

// SkipCategory marks a category as skipped. If it is the category the cursor
// currently points to, the cursor advances to the next category; otherwise
// the mark is informational only and traversal is unaffected.
func (e *Engine) SkipCategory(categoryID models.CategoryID) {
	e.skippedCategories = append(e.skippedCategories, categoryID)
	if e.categoryIndex < len(e.categories) && e.categories[e.categoryIndex].ID == categoryID {
		e.categoryIndex++
		e.questionIndex = 0
		slog.Debug("Engine.SkipCategory: active category skipped, cursor advanced", "category", categoryID)
		return
	}
	slog.Debug("Engine.SkipCategory: non-active category marked skipped", "category", categoryID)
}

// round1 rounds to one decimal place.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Progress reports traversal progress and time estimates. The remaining-time
// estimate can go negative when skips exceed remaining categories; that is
// accepted rather than clamped.
func (e *Engine) Progress() models.Progress {
	totalCategories := len(e.categories)
	completed := e.categoryIndex

	currentID := "complete"
	currentName := "Complete"
	if e.categoryIndex < totalCategories {
		currentID = string(e.categories[e.categoryIndex].ID)
		currentName = e.categories[e.categoryIndex].Name
	}

	elapsed := e.now().Sub(e.startTime).Minutes()
	remainingCategories := totalCategories - completed - len(e.skippedCategories)
	avgPerCategory := estimatedTotalTime / float64(totalCategories)

	return models.Progress{
		CurrentCategory:     currentID,
		CurrentCategoryName: currentName,
		CategoriesCompleted: completed,
		TotalCategories:     totalCategories,
		QuestionsAnswered:   len(e.responses),
		TotalQuestions:      totalQuestionCount(),
		PercentageComplete:  int(math.Round(float64(completed) / float64(totalCategories) * 100)),
		TimeElapsed:         round1(elapsed),
		EstimatedRemaining:  round1(float64(remainingCategories) * avgPerCategory),
		SkippedCategories:   e.skippedCategories,
	}
}

// Timeline returns one entry per category in catalog order. Categories behind
// the cursor report completed, the cursor's category reports active, and
// categories ahead report skipped or upcoming. A skip recorded for an
// already-passed category still shows completed: the completed check runs
// first, deliberately.
func (e *Engine) Timeline() []models.TimelineEntry {
	timeline := make([]models.TimelineEntry, 0, len(e.categories))
	for i, category := range e.categories {
		var status models.TimelineStatus
		switch {
		case i < e.categoryIndex:
			status = models.TimelineStatusCompleted
		case i == e.categoryIndex:
			status = models.TimelineStatusActive
		case e.isSkipped(category.ID):
			status = models.TimelineStatusSkipped
		default:
			status = models.TimelineStatusUpcoming
		}
		timeline = append(timeline, models.TimelineEntry{
			ID:         category.ID,
			Name:       category.Name,
			Icon:       category.Icon,
			Status:     status,
			IsOptional: category.IsOptional,
		})
	}
	return timeline
}

func (e *Engine) isSkipped(id models.CategoryID) bool {
	for _, skipped := range e.skippedCategories {
		if skipped == id {
			return true
		}
	}
	return false
}

// IsComplete reports whether the cursor has walked past the last category.
func (e *Engine) IsComplete() bool {
	return e.categoryIndex >= len(e.categories)
}

// Responses returns the collected answer set keyed by question id.
func (e *Engine) Responses() map[string]models.Answer {
	return e.responses
}

// Notes returns the per-category note lists.
func (e *Engine) Notes() map[models.CategoryID][]models.CategoryNote {
	return e.additionalNotes
}

// Summary snapshots everything collected so far. Safe to call at any point,
// complete or not.
func (e *Engine) Summary() models.FlowSummary {
	return models.FlowSummary{
		Responses:         e.responses,
		AdditionalNotes:   e.additionalNotes,
		SkippedCategories: e.skippedCategories,
		CompletionTime:    e.now().Sub(e.startTime).Minutes(),
		IsComplete:        e.IsComplete(),
	}
}

// Snapshot serializes the engine's mutable state for persistence. Maps are
// copied so the snapshot is stable against later mutation.
func (e *Engine) Snapshot() models.FlowSnapshot {
	responses := make(map[string]models.Answer, len(e.responses))
	for id, answer := range e.responses {
		responses[id] = answer
	}
	notes := make(map[models.CategoryID][]models.CategoryNote, len(e.additionalNotes))
	for id, list := range e.additionalNotes {
		notes[id] = append([]models.CategoryNote(nil), list...)
	}
	return models.FlowSnapshot{
		CategoryIndex:     e.categoryIndex,
		QuestionIndex:     e.questionIndex,
		Responses:         responses,
		AdditionalNotes:   notes,
		SkippedCategories: append([]models.CategoryID(nil), e.skippedCategories...),
		StartTime:         e.startTime,
	}
}
