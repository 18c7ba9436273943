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


// Package metadata persists per-user file records as JSON documents.
//
// One document per user holds the full mapping from file id to record.
// Mutations for a user are serialized by a per-user lock, writes replace the
// document atomically via rename, and transient write failures are retried
// with linear backoff. Corrupt documents are treated as empty rather than
// surfaced as errors, so a damaged file can never wedge a user's uploads.
package metadata
