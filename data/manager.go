// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package data

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Manager owns the cache boundary in front of the workbook load. The
// analytic core never sees the cache; it only receives immutable snapshots.
type Manager struct {
	path  string
	cache *lru.Cache
	mu    sync.Mutex
}

type cacheEntry struct {
	snap     *Snapshot
	loadedAt time.Time
}

// NewManager creates a manager for the workbook at path. Cache size comes
// from `cache.local_size`, snapshot lifetime from `cache.ttl` (seconds).
func NewManager(path string) *Manager {
	size := viper.GetInt("cache.local_size")
	if size <= 0 {
		size = 4
	}

	cache, err := lru.New(size)
	if err != nil {
		log.Panic().Err(err).Msg("could not create LRU cache")
	}

	return &Manager{
		path:  path,
		cache: cache,
	}
}

// Snapshot returns the cached snapshot for the manager's workbook, reloading
// it when the TTL has expired
func (m *Manager) Snapshot() (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ttl := time.Duration(viper.GetInt("cache.ttl")) * time.Second
	if entry, ok := m.cache.Get(m.path); ok {
		cached := entry.(*cacheEntry)
		if ttl <= 0 || time.Since(cached.loadedAt) < ttl {
			return cached.snap, nil
		}
		log.Debug().Str("Workbook", m.path).Msg("snapshot expired; reloading")
	}

	snap, err := LoadWorkbook(m.path)
	if err != nil {
		return nil, err
	}

	m.cache.Add(m.path, &cacheEntry{snap: snap, loadedAt: time.Now()})
	return snap, nil
}

// Invalidate drops the cached snapshot so the next call reloads the workbook
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Remove(m.path)
}
