package model

import (
	"time"
)

type Survey struct {
	ID         int    `json:"id,omitempty"`
	Version    int    `json:"version,omitempty"`
	Name       string `json:"name"`
	Definition Node   `json:"definition,omitempty"`
}

// Answer ties a value to a question by its stable questionId.
type Answer struct {
	Question string `json:"question"`
	Value    any    `json:"value"`
}

type Respondent struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
}

type Response struct {
	ID         int        `json:"id,omitempty"`
	Survey     int        `json:"survey"`
	Respondent Respondent `json:"respondent"`
	Answers    []Answer   `json:"answers"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
}

// SurveyIDKey is the pseudo-key holding the chosen survey while a
// respondent is still picking one. It never becomes an answer.
const SurveyIDKey = "surveyId"

// FormValues maps a question's form key to its edited value.
type FormValues map[string]any
