// Package shell tracks which feature panel a session shows: a picker that
// lists the features, and at most one open feature.
package shell

import (
	"errors"
	"sync"
)

// ErrUnknownFeature is returned for ids outside the catalog.
var ErrUnknownFeature = errors.New("unknown feature")

// FeatureID names a feature panel.
type FeatureID string

const (
	FeatureVoice     FeatureID = "voice"
	FeatureMessaging FeatureID = "sms"
	FeatureScan      FeatureID = "scan"
	FeatureExperts   FeatureID = "experts"
)

// Feature is a catalog entry.
type Feature struct {
	ID          FeatureID `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
	Badge       string    `json:"badge"`
}

var catalog = []Feature{
	{FeatureVoice, "Voice AI Assistant", "Talk to Vireya hands-free with real-time voice guidance.", "Live"},
	{FeatureMessaging, "Smart Messaging", "Private chat with instant answers to sensitive questions.", "24/7"},
	{FeatureScan, "Drug Recognition", "Snap a photo of a pill to learn what it is and how to use it.", "New"},
	{FeatureExperts, "Expert Network", "Book time with verified reproductive-health professionals.", "Pro"},
}

// Catalog returns the features in display order.
func Catalog() []Feature { return append([]Feature(nil), catalog...) }

// Lookup finds a feature by id.
func Lookup(id FeatureID) (Feature, bool) {
	for _, f := range catalog {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// State is the visible shell state.
type State struct {
	PickerOpen bool     `json:"picker_open"`
	Active     *Feature `json:"active,omitempty"`
}

// Shell is safe for concurrent use. The zero value has the picker closed
// and nothing open; use New for the initial landing state.
type Shell struct {
	mu         sync.Mutex
	pickerOpen bool
	active     FeatureID
}

// New returns a shell with the picker open.
func New() *Shell { return &Shell{pickerOpen: true} }

// Open makes id the only active feature and hides the picker.
func (s *Shell) Open(id FeatureID) (State, error) {
	if _, ok := Lookup(id); !ok {
		return s.State(), ErrUnknownFeature
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = id
	s.pickerOpen = false
	return s.stateLocked(), nil
}

// Close hides the active feature and brings the picker back.
func (s *Shell) Close() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = ""
	s.pickerOpen = true
	return s.stateLocked()
}

// TogglePicker flips picker visibility. The active feature is untouched.
func (s *Shell) TogglePicker() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pickerOpen = !s.pickerOpen
	return s.stateLocked()
}

// State returns the current state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Shell) stateLocked() State {
	st := State{PickerOpen: s.pickerOpen}
	if f, ok := Lookup(s.active); ok {
		st.Active = &f
	}
	return st
}
