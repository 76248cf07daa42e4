// Package models defines the core data structures for LeadFlow.
//
// It includes the question catalog descriptors, collected answers, progress
// reporting types, and the API request/response shapes shared across modules.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// CategoryID identifies one of the fixed conversation categories.
type CategoryID string

const (
	CategoryProfile    CategoryID = "profile"
	CategoryBudget     CategoryID = "budget"
	CategoryProperty   CategoryID = "property"
	CategoryLocation   CategoryID = "location"
	CategoryTimeline   CategoryID = "timeline"
	CategoryLifestyle  CategoryID = "lifestyle"
	CategoryInvestment CategoryID = "investment"
	CategoryPriorities CategoryID = "priorities"
	CategoryDecision   CategoryID = "decision"
	CategoryContact    CategoryID = "contact"
)

// QuestionType defines how a question expects to be answered.
type QuestionType string

const (
	// QuestionTypeSingleChoice expects exactly one option value.
	QuestionTypeSingleChoice QuestionType = "single_choice"
	// QuestionTypeMultipleChoice expects a set of option values.
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	// QuestionTypeTextInput expects free text.
	QuestionTypeTextInput QuestionType = "text_input"
	// QuestionTypeRange expects a numeric value.
	QuestionTypeRange QuestionType = "range"
)

// Validation constants for input validation
const (
	// MaxChatMessageLength defines the maximum allowed length for a chat message
	MaxChatMessageLength = 5000
	// MaxNoteLength defines the maximum allowed length for a category note
	MaxNoteLength = 2000
)

// Error variables for better error handling and testability
var (
	ErrEmptySessionID    = errors.New("session_id is required")
	ErrEmptyQuestionID   = errors.New("question_id is required")
	ErrEmptyCategoryID   = errors.New("category_id is required")
	ErrEmptyNote         = errors.New("note cannot be empty")
	ErrNoteTooLong       = errors.New("note exceeds maximum length")
	ErrEmptyPhoneNumber  = errors.New("phone_number is required")
	ErrEmptyMessage      = errors.New("message cannot be empty")
	ErrMessageTooLong    = errors.New("message exceeds maximum length")
	ErrBadAnswerValue    = errors.New("answer value must be a string, a list of strings, or a number")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAssistantDisabled = errors.New("chat assistant is not configured")
)

// Category is a static descriptor for a group of related questions.
// The catalog order of categories defines traversal order and is fixed.
type Category struct {
	ID            CategoryID `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	EstimatedTime float64    `json:"estimated_time"` // minutes
	Icon          string     `json:"icon"`
	IsOptional    bool       `json:"is_optional"`
}

// QuestionOption is a selectable option for choice questions.
type QuestionOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// Question is a static descriptor owned by exactly one category.
//
// Condition, when present, gates reachability: every entry maps a previously
// asked question id to the set of acceptable prior answer values. The question
// is skipped unless all entries are satisfied by recorded answers.
type Question struct {
	ID          string              `json:"id"`
	Prompt      string              `json:"question"`
	Type        QuestionType        `json:"type"`
	Options     []QuestionOption    `json:"options,omitempty"`
	HasOther    bool                `json:"has_other"`
	OtherPrompt string              `json:"other_prompt,omitempty"`
	IsOptional  bool                `json:"is_optional"`
	Condition   map[string][]string `json:"condition,omitempty"`
}

// AnswerValue is a small tagged union over the value shapes an answer can
// take: a single string (single-choice, text, numeric) or a list of strings
// (multiple-choice). The flow engine only ever needs equality and membership
// checks, never arithmetic.
type AnswerValue struct {
	str  string
	list []string
	many bool
}

// StringValue builds an AnswerValue holding a single string.
func StringValue(s string) AnswerValue {
	return AnswerValue{str: s}
}

// ListValue builds an AnswerValue holding a list of strings.
func ListValue(values ...string) AnswerValue {
	return AnswerValue{list: values, many: true}
}

// IsZero reports whether no value has been set.
func (v AnswerValue) IsZero() bool {
	return !v.many && v.str == ""
}

// String returns the single value, or "" when the answer is a list.
func (v AnswerValue) String() string {
	if v.many {
		return ""
	}
	return v.str
}

// List returns the list value, or nil when the answer is a single string.
func (v AnswerValue) List() []string {
	if !v.many {
		return nil
	}
	return v.list
}

// Equals reports whether the answer is the given single value.
func (v AnswerValue) Equals(s string) bool {
	return !v.many && v.str == s
}

// In reports whether the answer is a single value contained in allowed.
// List answers never match; condition gates are defined over single-choice
// answers only.
func (v AnswerValue) In(allowed []string) bool {
	if v.many {
		return false
	}
	for _, a := range allowed {
		if v.str == a {
			return true
		}
	}
	return false
}

// MarshalJSON encodes list answers as JSON arrays and everything else as a
// JSON string.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	if v.many {
		return json.Marshal(v.list)
	}
	return json.Marshal(v.str)
}

// UnmarshalJSON accepts a string, an array of strings, or a bare number
// (stored as its literal text).
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = AnswerValue{str: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = AnswerValue{list: list, many: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*v = AnswerValue{str: n.String()}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrBadAnswerValue, string(data))
}

// Answer records a submitted response, keyed by question id.
type Answer struct {
	Value     AnswerValue `json:"value"`
	IsOther   bool        `json:"is_other"`
	OtherText string      `json:"other_text,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// CategoryNote is a free-text annotation attached to a category.
type CategoryNote struct {
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// TimelineStatus describes where a category sits relative to the cursor.
type TimelineStatus string

const (
	TimelineStatusCompleted TimelineStatus = "completed"
	TimelineStatusActive    TimelineStatus = "active"
	TimelineStatusSkipped   TimelineStatus = "skipped"
	TimelineStatusUpcoming  TimelineStatus = "upcoming"
)

// TimelineEntry is one category's row in the timeline view.
type TimelineEntry struct {
	ID         CategoryID     `json:"id"`
	Name       string         `json:"name"`
	Icon       string         `json:"icon"`
	Status     TimelineStatus `json:"status"`
	IsOptional bool           `json:"is_optional"`
}

// Progress reports how far a session has advanced through the flow.
type Progress struct {
	CurrentCategory     string       `json:"current_category"`
	CurrentCategoryName string       `json:"current_category_name"`
	CategoriesCompleted int          `json:"categories_completed"`
	TotalCategories     int          `json:"total_categories"`
	QuestionsAnswered   int          `json:"questions_answered"`
	TotalQuestions      int          `json:"total_questions"`
	PercentageComplete  int          `json:"percentage_complete"`
	TimeElapsed         float64      `json:"time_elapsed"`
	EstimatedRemaining  float64      `json:"estimated_remaining"`
	SkippedCategories   []CategoryID `json:"skipped_categories"`
}

// FlowSummary is a point-in-time snapshot of everything collected so far.
type FlowSummary struct {
	Responses         map[string]Answer             `json:"responses"`
	AdditionalNotes   map[CategoryID][]CategoryNote `json:"additional_notes"`
	SkippedCategories []CategoryID                  `json:"skipped_categories"`
	CompletionTime    float64                       `json:"completion_time"` // minutes since start
	IsComplete        bool                          `json:"is_complete"`
}

// FlowSnapshot is the serializable state of a flow engine, used to persist
// sessions across restarts. It carries no catalog data, only cursor position
// and collected input.
type FlowSnapshot struct {
	CategoryIndex     int                           `json:"category_index"`
	QuestionIndex     int                           `json:"question_index"`
	Responses         map[string]Answer             `json:"responses"`
	AdditionalNotes   map[CategoryID][]CategoryNote `json:"additional_notes"`
	SkippedCategories []CategoryID                  `json:"skipped_categories"`
	StartTime         time.Time                     `json:"start_time"`
}

// AnswerRequest is the payload for submitting an answer.
type AnswerRequest struct {
	SessionID  string      `json:"session_id"`
	QuestionID string      `json:"question_id"`
	Answer     AnswerValue `json:"answer"`
	IsOther    bool        `json:"is_other,omitempty"`
	OtherText  string      `json:"other_text,omitempty"`
}

// Validate checks required fields of an AnswerRequest.
func (r *AnswerRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	if r.QuestionID == "" {
		return ErrEmptyQuestionID
	}
	return nil
}

// CategoryNoteRequest is the payload for attaching a note to a category.
type CategoryNoteRequest struct {
	SessionID  string     `json:"session_id"`
	CategoryID CategoryID `json:"category_id"`
	Note       string     `json:"note"`
}

// Validate checks required fields of a CategoryNoteRequest.
func (r *CategoryNoteRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	if r.CategoryID == "" {
		return ErrEmptyCategoryID
	}
	if r.Note == "" {
		return ErrEmptyNote
	}
	if len(r.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// ScheduleRequest is the payload for scheduling a follow-up contact.
type ScheduleRequest struct {
	SessionID     string `json:"session_id"`
	PhoneNumber   string `json:"phone_number"`
	PreferredTime string `json:"preferred_time"`
	ContactMethod string `json:"contact_method"`
}

// Validate checks required fields of a ScheduleRequest.
func (r *ScheduleRequest) Validate() error {
	if r.SessionID == "" {
		return ErrEmptySessionID
	}
	if r.PhoneNumber == "" {
		return ErrEmptyPhoneNumber
	}
	return nil
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse is the standard JSON envelope returned by every endpoint.
type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Result  interface{} `json:"result,omitempty"`
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and
// optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
