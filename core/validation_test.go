package core

import (
	"errors"
	"testing"
)

func TestValidatePage(t *testing.T) {
	tests := []struct {
		name    string
		page    *Page
		wantErr error
	}{
		{
			name:    "valid page",
			page:    &Page{ID: "abc", URL: "https://example.com", Markup: []byte("<html></html>")},
			wantErr: nil,
		},
		{
			name:    "valid page without url",
			page:    &Page{ID: "abc", Markup: []byte("<p>x</p>")},
			wantErr: nil,
		},
		{
			name:    "nil page",
			page:    nil,
			wantErr: ErrInvalidPage,
		},
		{
			name:    "empty id",
			page:    &Page{Markup: []byte("<p>x</p>")},
			wantErr: ErrEmptyDocumentID,
		},
		{
			name:    "whitespace markup",
			page:    &Page{ID: "abc", Markup: []byte(" \n\t")},
			wantErr: ErrEmptyMarkup,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePage(tt.page)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePage() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePage() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateVectorEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *VectorEntry
		wantErr error
	}{
		{"valid", &VectorEntry{DocID: "a", Vector: []float32{1}}, nil},
		{"nil", nil, ErrInvalidVector},
		{"empty id", &VectorEntry{Vector: []float32{1}}, ErrEmptyDocumentID},
		{"empty vector", &VectorEntry{DocID: "a"}, ErrEmptyVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVectorEntry(tt.entry)
			if tt.wantErr == nil && err != nil {
				t.Errorf("ValidateVectorEntry() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateVectorEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
