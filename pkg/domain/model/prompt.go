package model

// Prompt is one completion request: a system instruction and the user content
type Prompt struct {
	System string
	User   string
}
