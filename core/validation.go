// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"strings"
)

// ValidatePage validates a Page according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Markup must contain something other than whitespace
//
// NOT validated:
//   - URL (pages missing from the URL map are indexed as UnknownURL)
func ValidatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: page is nil", ErrInvalidPage)
	}

	if page.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPage, ErrEmptyDocumentID)
	}

	if strings.TrimSpace(string(page.Markup)) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPage, ErrEmptyMarkup)
	}

	return nil
}

// ValidateVectorEntry validates a VectorEntry according to domain rules.
func ValidateVectorEntry(entry *VectorEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidVector)
	}

	if entry.DocID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVector, ErrEmptyDocumentID)
	}

	if len(entry.Vector) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidVector, ErrEmptyVector)
	}

	return nil
}
