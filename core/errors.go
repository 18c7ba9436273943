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

// Domain validation errors
var (
	// ErrNotFound indicates the requested file record does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrInvalidRecord indicates a FileRecord failed validation.
	ErrInvalidRecord = errors.New("invalid file record")

	// ErrInvalidStatus indicates an unrecognized Status value.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrMissingField indicates a required field is absent on record creation.
	ErrMissingField = errors.New("missing required field")
)
