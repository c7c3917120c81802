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

// Package consts provides definitions of constants
package consts

var (
	// AppDirName is the name of the directory containing memosync files
	AppDirName = "memosync"
	// DBFileName is a filename for the SQLite database
	DBFileName = "memosync.db"
	// TmpContentFileBase is the base for the filename for a temporary content
	TmpContentFileBase = "MEMOSYNC_TMPCONTENT"
	// TmpContentFileExt is the extension for the temporary content file
	TmpContentFileExt = "md"
	// ConfigFilename is the name of the config file
	ConfigFilename = "memosyncrc"
	// DaemonLogFilename is the name of the daemon log file in the cache directory
	DaemonLogFilename = "daemon.log"

	// SystemLastSyncAt is the unix timestamp at which the last sync pass finished
	SystemLastSyncAt = "last_sync_time"
	// SystemLastSyncResult is "ok" or the error of the last sync pass
	SystemLastSyncResult = "last_sync_result"
	// SystemLastUpgrade is the timestamp at which the system more recently checked for an upgrade
	SystemLastUpgrade = "last_upgrade"
)

// SyncResultOK is the value of SystemLastSyncResult after a successful pass
const SyncResultOK = "ok"
