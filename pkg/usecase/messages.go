package usecase

import "fmt"

// Messages holds the fixed texts returned without a successful model answer
type Messages struct {
	// Refusal answers queries classified as unrelated
	Refusal string
	// Apology replaces an answer when no model could produce one
	Apology string
	// Greeting answers greetings when the greeting model call fails
	Greeting string
	// Unavailable is the fragment used for one failed category in a
	// multi-category answer. It takes the category title as its only verb.
	Unavailable string
}

const (
	DefaultRefusal     = "Sorry, I can only answer questions about life insurance policies, benefits, eligibility, and claims."
	DefaultApology     = "Sorry, I am unable to process your request at the moment. Please try again later."
	DefaultGreeting    = "Hello! I can help with life insurance policy types, benefits, eligibility, and claims. What would you like to know?"
	DefaultUnavailable = "Information about %s is unavailable right now."
)

// DefaultMessages returns the built-in message set
func DefaultMessages() Messages {
	return Messages{
		Refusal:     DefaultRefusal,
		Apology:     DefaultApology,
		Greeting:    DefaultGreeting,
		Unavailable: DefaultUnavailable,
	}
}

// merge fills empty fields of m from the defaults
func (m Messages) merge() Messages {
	d := DefaultMessages()
	if m.Refusal == "" {
		m.Refusal = d.Refusal
	}
	if m.Apology == "" {
		m.Apology = d.Apology
	}
	if m.Greeting == "" {
		m.Greeting = d.Greeting
	}
	if m.Unavailable == "" {
		m.Unavailable = d.Unavailable
	}
	return m
}

func (m Messages) unavailable(title string) string {
	return fmt.Sprintf(m.Unavailable, title)
}
