/* Copyright 2025 Dnote Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sync

import (
	"fmt"
	"time"
)

// Report summarizes one sync pass. It is a value and is never mutated after
// it is returned.
type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time

	// Processed is the number of queue items whose remote call succeeded
	Processed int
	// Failed is the number of queue items kept because of an error
	Failed int
	// Moot is the number of queue items dropped without a remote call
	Moot int
	// Deferred is the number of updates kept until their create lands
	Deferred int

	// Inserted is the number of remote notes that were new to this device
	Inserted int
	// Overwritten is the number of local notes replaced by a newer remote version
	Overwritten int

	// Err is the error that ended the pass, if any
	Err string
}

// Duration returns how long the pass took
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// OK tells if the pass ran to the end and every item went through
func (r Report) OK() bool {
	return r.Err == "" && r.Failed == 0
}

func (r Report) String() string {
	s := fmt.Sprintf("processed %d, failed %d, moot %d, deferred %d, inserted %d, overwritten %d",
		r.Processed, r.Failed, r.Moot, r.Deferred, r.Inserted, r.Overwritten)

	if r.Err != "" {
		s = fmt.Sprintf("%s (error: %s)", s, r.Err)
	}

	return s
}
