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


package server

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// AnonymousUser is the identity used when a request carries none.
const AnonymousUser = "anonymous"

// userID resolves the caller's identity. Precedence: explicit token query
// parameter, then the X-User header, then a bearer token, then anonymous.
// Identity here scopes storage, it does not authenticate; deployments sit
// behind a gateway that does.
func userID(c *gin.Context) string {
	if token := strings.TrimSpace(c.Query("token")); token != "" {
		return token
	}
	if user := strings.TrimSpace(c.GetHeader("X-User")); user != "" {
		return user
	}
	auth := c.GetHeader("Authorization")
	if bearer, ok := strings.CutPrefix(auth, "Bearer "); ok {
		if bearer = strings.TrimSpace(bearer); bearer != "" {
			return bearer
		}
	}
	return AnonymousUser
}
