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

import "errors"

var (
	// ErrInvalidPage indicates a Page failed validation.
	ErrInvalidPage = errors.New("invalid page")

	// ErrEmptyDocumentID indicates the ID field is empty.
	ErrEmptyDocumentID = errors.New("document id cannot be empty")

	// ErrEmptyMarkup indicates the Markup field is empty.
	ErrEmptyMarkup = errors.New("markup cannot be empty")

	// ErrInvalidVector indicates a VectorEntry failed validation.
	ErrInvalidVector = errors.New("invalid vector entry")

	// ErrEmptyVector indicates the Vector field is empty.
	ErrEmptyVector = errors.New("vector cannot be empty")
)
