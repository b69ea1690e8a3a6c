// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxNameLen   = 36
	MaxIconBytes = 64 << 10
)

var (
	ErrNameEmpty    = errors.New("display name empty")
	ErrNameTooLong  = errors.New("display name too long")
	ErrIconTooLarge = errors.New("icon too large")
)

// Profile is one connection's identity: display name plus an optional
// avatar carried as an opaque bounded blob (the encoding is the client's
// business). The json tags match the wire shape of roster payloads.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"user"`
	Icon string `json:"icon,omitempty"`
}

// NewProfile is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewProfile(id, name string) (*Profile, error) {
	p := &Profile{ID: id}
	if err := p.SetName(name); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Profile) SetName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ErrNameEmpty
	}
	if len(trimmed) > MaxNameLen {
		return ErrNameTooLong
	}
	p.Name = trimmed
	return nil
}

// SetIcon enforces the blob bound at the boundary; an empty icon clears it.
func (p *Profile) SetIcon(icon string) error {
	if len(icon) > MaxIconBytes {
		return ErrIconTooLarge
	}
	p.Icon = icon
	return nil
}
