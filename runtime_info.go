// Copyright 2026 Ambak Fintech
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

package amlog

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/compute/metadata"
)

var (
	detectedProjectID     string
	detectProjectIDOnce   sync.Once
	metadataProjectIDFunc = metadataProjectID
)

// detectProjectID resolves the Google Cloud project ID when PROJECT_ID is not
// set explicitly. It checks the conventional environment variables first and
// falls back to the GCE metadata server with a short timeout. The result is
// cached for the process lifetime.
func detectProjectID() string {
	detectProjectIDOnce.Do(func() {
		for _, key := range []string{"GOOGLE_CLOUD_PROJECT", "GCLOUD_PROJECT", "GCP_PROJECT"} {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				detectedProjectID = normalizeProjectID(v)
				return
			}
		}
		if !metadata.OnGCE() {
			return
		}
		detectedProjectID = normalizeProjectID(metadataProjectIDFunc())
	})
	return detectedProjectID
}

// metadataProjectID queries the metadata server, bounding the lookup so a
// slow or absent server cannot stall startup.
func metadataProjectID() string {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	pid, err := metadata.ProjectIDWithContext(ctx)
	if err != nil {
		return ""
	}
	return pid
}

// normalizeProjectID strips common prefixes and leading underscores from
// project IDs.
func normalizeProjectID(id string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "projects/")
	id = strings.TrimPrefix(id, "_")
	return id
}
