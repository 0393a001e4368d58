package credentials

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

var (
	// ErrNotFound means the store answered and holds no record for the identity.
	ErrNotFound = errors.New("credential record not found")
	// ErrStoreUnavailable means the store could not be reached or failed to answer.
	ErrStoreUnavailable = errors.New("credential store unavailable")
)

// TokenBundle is the delegated-authorization grant for one user. Expiry is absolute.
type TokenBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope"`
	TokenType    string    `json:"token_type"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the access token is no longer usable at now.
func (b TokenBundle) Expired(now time.Time) bool {
	return !b.Expiry.After(now)
}

// Refreshable reports whether a refresh token is available.
func (b TokenBundle) Refreshable() bool {
	return b.RefreshToken != ""
}

// String hides token values so a bundle can be logged safely.
func (b TokenBundle) String() string {
	return "TokenBundle{access:[REDACTED] refresh:" + presence(b.RefreshToken) + " expiry:" + b.Expiry.UTC().Format(time.RFC3339) + "}"
}

func presence(s string) string {
	if s == "" {
		return "absent"
	}
	return "[REDACTED]"
}

// FromOAuth2 converts a provider token. previousRefresh is carried forward when the provider
// did not issue a new refresh token.
func FromOAuth2(tok *oauth2.Token, previousRefresh string) TokenBundle {
	b := TokenBundle{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.Type(),
		Expiry:       tok.Expiry,
	}
	if b.RefreshToken == "" {
		b.RefreshToken = previousRefresh
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		b.Scope = scope
	}
	return b
}

// Profile is informational only and never used for authorization decisions.
type Profile struct {
	DisplayName string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"profile_picture,omitempty"`
}

// Record is the durable representation of one user's grant, keyed by the provider identity.
type Record struct {
	ID        string      `json:"id"`
	Profile   Profile     `json:"profile"`
	Tokens    TokenBundle `json:"tokens"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Clone returns a copy that shares no mutable state with r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
