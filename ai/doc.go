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


// Package ai abstracts the embedding service used by the ingestion pipeline
// and the query path.
//
// The Embedder interface keeps the rest of the codebase independent of any
// concrete model provider. ai/openai implements it against OpenAI-compatible
// APIs; ai/mock provides a deterministic test double that needs no network.
package ai
