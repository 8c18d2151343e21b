package models

import (
	"encoding/json"
	"math"
)

// TipType marks whether a tip praises or criticises the resume.
type TipType string

const (
	TipGood    TipType = "good"
	TipImprove TipType = "improve"
)

// Tip is a single piece of advice within a feedback category.
type Tip struct {
	Type        TipType `json:"type"`
	Tip         string  `json:"tip"`
	Explanation string  `json:"explanation,omitempty"`
}

// Category is a scored section of the analysis.
type Category struct {
	Score int   `json:"score"`
	Tips  []Tip `json:"tips"`
}

// Feedback is the structured result returned by the analysis model.
type Feedback struct {
	OverallScore int      `json:"overallScore"`
	ATS          Category `json:"ATS"`
	ToneAndStyle Category `json:"toneAndStyle"`
	Content      Category `json:"content"`
	Structure    Category `json:"structure"`
	Skills       Category `json:"skills"`
}

// UnmarshalJSON accepts fractional scores and rounds them to the nearest
// whole point.
func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	aux := struct {
		Score float64 `json:"score"`
		*plain
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Score = int(math.Round(aux.Score))
	return nil
}

// UnmarshalJSON accepts a fractional overall score, rounded like Category.
func (f *Feedback) UnmarshalJSON(data []byte) error {
	type plain Feedback
	aux := struct {
		OverallScore float64 `json:"overallScore"`
		*plain
	}{plain: (*plain)(f)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	f.OverallScore = int(math.Round(aux.OverallScore))
	return nil
}
