// SPDX-License-Identifier: AGPL-3.0-or-later
// opensand-dataplane - A DVB-S2/DVB-RCS2 satellite dataplane emulator
// Copyright (C) 2023-2026 Jacob McSwain
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// The source code is available at <https://github.com/opensand-go/opensand-dataplane>

package kv

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/opensand-go/opensand-dataplane/internal/config"
	"github.com/puzpuzpuz/xsync/v4"
)

func makeInMemoryKV(_ context.Context, _ *config.Config) (KV, error) {
	return &inMemoryKV{
		kv: xsync.NewMap[string, *kvValue](),
	}, nil
}

type kvValue struct {
	mu     sync.Mutex
	values [][]byte
	ttl    time.Time
}

func (v *kvValue) expired() bool {
	return !v.ttl.IsZero() && v.ttl.Before(time.Now())
}

type inMemoryKV struct {
	kv *xsync.Map[string, *kvValue]
}

func (kv *inMemoryKV) load(key string) (*kvValue, bool) {
	value, ok := kv.kv.Load(key)
	if !ok {
		return nil, false
	}
	if value.expired() {
		kv.kv.Delete(key)
		return nil, false
	}
	return value, true
}

func (kv *inMemoryKV) Has(_ context.Context, key string) (bool, error) {
	_, ok := kv.load(key)
	return ok, nil
}

func (kv *inMemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := kv.load(key)
	if !ok {
		return nil, fmt.Errorf("key %s not found", key)
	}
	value.mu.Lock()
	defer value.mu.Unlock()
	if len(value.values) == 0 {
		return nil, fmt.Errorf("key %s has no values", key)
	}
	return value.values[0], nil
}

func (kv *inMemoryKV) Set(_ context.Context, key string, value []byte) error {
	kv.kv.Store(key, &kvValue{values: [][]byte{value}})
	return nil
}

func (kv *inMemoryKV) Delete(_ context.Context, key string) error {
	kv.kv.Delete(key)
	return nil
}

func (kv *inMemoryKV) Expire(_ context.Context, key string, ttl time.Duration) error {
	value, ok := kv.load(key)
	if !ok {
		return fmt.Errorf("key %s not found", key)
	}
	if ttl <= 0 {
		kv.kv.Delete(key)
		return nil
	}
	value.mu.Lock()
	value.ttl = time.Now().Add(ttl)
	value.mu.Unlock()
	return nil
}

func (kv *inMemoryKV) Scan(_ context.Context, _ uint64, match string, _ int64) ([]string, uint64, error) {
	keys := make([]string, 0)
	kv.kv.Range(func(key string, value *kvValue) bool {
		if value.expired() {
			kv.kv.Delete(key)
			return true
		}
		if match == "" || match == key || matchesPrefix(match, key) {
			keys = append(keys, key)
		}
		return true
	})
	return keys, 0, nil
}

// matchesPrefix gives the in-memory backend a minimal subset of Redis glob
// matching: a single trailing "*" matches a prefix.
func matchesPrefix(pattern, key string) bool {
	if !strings.HasSuffix(pattern, "*") {
		return false
	}
	return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
}

func (kv *inMemoryKV) RPush(_ context.Context, key string, value []byte) (int64, error) {
	actual, _ := kv.kv.LoadOrStore(key, &kvValue{})
	actual.mu.Lock()
	defer actual.mu.Unlock()
	actual.values = append(actual.values, value)
	return int64(len(actual.values)), nil
}

func (kv *inMemoryKV) LDrain(_ context.Context, key string) ([][]byte, error) {
	value, loaded := kv.kv.LoadAndDelete(key)
	if !loaded {
		return nil, nil
	}
	value.mu.Lock()
	defer value.mu.Unlock()
	return value.values, nil
}

func (kv *inMemoryKV) Close() error {
	return nil
}
