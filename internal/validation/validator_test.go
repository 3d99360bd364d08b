// Wayfare - Tour Recommendation Engine and API
// Copyright 2026 Wayfare Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wayfarelabs/wayfare

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

// interactionRequest mirrors the shape of the API's interaction create
// request for validation testing.
type interactionRequest struct {
	UserID int64    `validate:"required,gt=0"`
	TourID int64    `validate:"required,gt=0"`
	Type   string   `validate:"required,oneof=view click favorite review book booking paid"`
	Rating *float64 `validate:"omitempty,gte=1,lte=5"`
	Limit  int      `validate:"omitempty,min=1,max=50"`
}

func ratingOf(v float64) *float64 { return &v }

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interactionRequest
	}{
		{
			name:  "minimal request",
			input: interactionRequest{UserID: 1, TourID: 2, Type: "view"},
		},
		{
			name:  "with rating bounds",
			input: interactionRequest{UserID: 1, TourID: 2, Type: "review", Rating: ratingOf(5)},
		},
		{
			name:  "limit at maximum",
			input: interactionRequest{UserID: 1, TourID: 2, Type: "book", Limit: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(&tt.input); err != nil {
				t.Errorf("expected valid, got: %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interactionRequest
		wantField string
	}{
		{
			name:      "missing user id",
			input:     interactionRequest{TourID: 2, Type: "view"},
			wantField: "UserID",
		},
		{
			name:      "negative tour id",
			input:     interactionRequest{UserID: 1, TourID: -5, Type: "view"},
			wantField: "TourID",
		},
		{
			name:      "unknown interaction type",
			input:     interactionRequest{UserID: 1, TourID: 2, Type: "teleport"},
			wantField: "Type",
		},
		{
			name:      "rating above range",
			input:     interactionRequest{UserID: 1, TourID: 2, Type: "review", Rating: ratingOf(6)},
			wantField: "Rating",
		},
		{
			name:      "limit above range",
			input:     interactionRequest{UserID: 1, TourID: 2, Type: "view", Limit: 500},
			wantField: "Limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			found := false
			for _, fe := range err.Errors() {
				if fe.Field() == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&interactionRequest{UserID: 1, TourID: 2, Type: "teleport"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "Type") {
		t.Errorf("message should name the field, got %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "Type" {
		t.Errorf("details field = %v, want Type", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&interactionRequest{})
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("expected multiple errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if _, ok := apiErr.Details["fields"]; !ok {
		t.Error("expected per-field details for multiple errors")
	}
}

func TestErrorMessages(t *testing.T) {
	type limits struct {
		Limit int    `validate:"min=1,max=50"`
		Name  string `validate:"min=3"`
	}

	err := ValidateStruct(&limits{Limit: 100, Name: "ab"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	if !strings.Contains(msg, "must be at most 50") {
		t.Errorf("numeric max message missing, got %q", msg)
	}
	if !strings.Contains(msg, "must be at least 3 characters") {
		t.Errorf("string min message missing, got %q", msg)
	}
}
