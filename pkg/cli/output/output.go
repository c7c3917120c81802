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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"time"

	"github.com/dnote/memosync/pkg/cli/database"
	"github.com/dnote/memosync/pkg/cli/log"
	clisync "github.com/dnote/memosync/pkg/cli/sync"
	"github.com/dnote/memosync/pkg/cli/utils"
	"github.com/fatih/color"
)

const timeFormat = "Jan 2, 2006 3:04pm (MST)"

const previewLength = 60

var failedColor = color.New(color.FgRed, color.Bold)

// StatusMarker returns the one-character indicator of a sync status
func StatusMarker(s database.SyncStatus) string {
	switch s {
	case database.StatusPending:
		return "*"
	case database.StatusSyncing:
		return "~"
	case database.StatusFailed:
		return failedColor.Sprint("!")
	default:
		return " "
	}
}

// FormatTime formats a unix nano timestamp in the local time zone
func FormatTime(ts int64) string {
	if ts == 0 {
		return "never"
	}

	return time.Unix(0, ts).Local().Format(timeFormat)
}

// NoteRow formats a note as a line of a listing
func NoteRow(n database.Note) string {
	return fmt.Sprintf("(%s) %s %s", log.ColorYellow.Sprint(utils.ShortID(n.LocalID)), StatusMarker(n.SyncStatus), utils.Preview(n.Content, previewLength))
}

// NoteList prints the notes one per line
func NoteList(notes []database.Note) {
	for _, n := range notes {
		fmt.Println(NoteRow(n))
	}
}

// NoteInfo prints a note with its metadata
func NoteInfo(n database.Note) {
	log.Infof("note id: %s\n", n.LocalID)
	if n.RemoteName != "" {
		log.Infof("remote name: %s\n", n.RemoteName)
	} else {
		log.Infof("remote name: (not synced yet)\n")
	}
	log.Infof("created at: %s\n", FormatTime(n.CreateTime))
	if n.UpdateTime != n.CreateTime {
		log.Infof("updated at: %s\n", FormatTime(n.UpdateTime))
	}
	log.Infof("status: %s\n", n.SyncStatus)

	fmt.Printf("\n------------------------content------------------------\n")
	fmt.Printf("%s", n.Content)
	fmt.Printf("\n-------------------------------------------------------\n")
}

// SyncReport prints the summary of a sync pass
func SyncReport(r clisync.Report) {
	sent := fmt.Sprintf("sent %d changes", r.Processed)
	if r.Moot > 0 {
		sent = fmt.Sprintf("%s, skipped %d", sent, r.Moot)
	}
	if r.Deferred > 0 {
		sent = fmt.Sprintf("%s, deferred %d", sent, r.Deferred)
	}

	log.Infof("%s\n", sent)
	log.Infof("received %d new notes, updated %d\n", r.Inserted, r.Overwritten)

	if r.Failed > 0 {
		log.Warnf("%d changes failed and will be retried on the next sync\n", r.Failed)
	}
}
