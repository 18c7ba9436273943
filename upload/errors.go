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


package upload

import "errors"

var (
	// ErrStoreRequired is returned when a metadata store is not provided.
	ErrStoreRequired = errors.New("metadata store required")

	// ErrSubmitterRequired is returned when a job submitter is not provided.
	ErrSubmitterRequired = errors.New("job submitter required")

	// ErrSessionNotUploading is returned when appending to or completing a
	// session that has already been completed or never entered the
	// uploading state.
	ErrSessionNotUploading = errors.New("upload session is not in uploading state")

	// ErrFilenameRequired is returned when a session is started without a
	// filename.
	ErrFilenameRequired = errors.New("filename required")
)
