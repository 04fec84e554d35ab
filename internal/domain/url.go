/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"net/url"
	"strings"
)

// maxUnwrap bounds how many nested share-link wrappers are peeled off.
const maxUnwrap = 4

// NormalizeImageURL converts raw into the canonical direct-image form stored
// in documents. Search-engine share links carry the real image location in an
// "imgurl" query parameter; those are unwrapped. Only absolute http, https and
// file URLs are accepted.
func NormalizeImageURL(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}
	for i := 0; i < maxUnwrap; i++ {
		inner := imgURLParam(u)
		if inner == "" {
			break
		}
		next, err := url.Parse(inner)
		if err != nil || !next.IsAbs() {
			break
		}
		u = next
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return "", false
		}
	case "file":
		if u.Path == "" {
			return "", false
		}
	default:
		return "", false
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), true
}

func imgURLParam(u *url.URL) string {
	for k, vs := range u.Query() {
		if strings.EqualFold(k, "imgurl") && len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
	}
	return ""
}
