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

package database

import (
	"time"
)

// Model is the base model definition
type Model struct {
	ID        int       `gorm:"primaryKey" json:"-"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// User is a model for a user
type User struct {
	Model
	UUID        string     `json:"uuid" gorm:"type:text;uniqueIndex"`
	Email       string     `json:"email" gorm:"type:text;uniqueIndex"`
	Password    string     `json:"-"`
	LastLoginAt *time.Time `json:"-"`
}

// AccessToken is a bearer token that authenticates API requests of a user
type AccessToken struct {
	Model
	UserID      int    `gorm:"index"`
	Value       string `gorm:"type:text;uniqueIndex"`
	Description string
	LastUsedAt  *time.Time
}

// Memo is a model for a note. CreateTime and UpdateTime are owned by the
// application rather than by gorm so that they can come from a clock.
type Memo struct {
	ID         int       `gorm:"primaryKey"`
	UID        string    `gorm:"type:text;uniqueIndex"`
	UserID     int       `gorm:"index"`
	Content    string    `gorm:"type:text"`
	Visibility string    `gorm:"type:text"`
	State      string    `gorm:"type:text;index"`
	Pinned     bool      `gorm:"default:false"`
	CreateTime time.Time `gorm:"index"`
	UpdateTime time.Time
}
