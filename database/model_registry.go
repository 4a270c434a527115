/*
 * Copyright 2025 tomoncle.
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
	"reflect"
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a table model picked up by migrations. Instance returns a
// struct pointer compatible with Bun; lower Priority values are created first.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

// IndexDefinition describes a secondary index created by migrations.
type IndexDefinition struct {
	Model   interface{}
	Name    string
	Columns []string
}

// ModelRegistry stores SQL models and indexes in a deterministic order.
type ModelRegistry interface {
	Register(model SQLModel)
	RegisterIndex(idx IndexDefinition)
	Models() []SQLModel
	Indexes() []IndexDefinition
}

type modelRegistry struct {
	models  []SQLModel
	indexes []IndexDefinition
	mutex   sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{
		models: make([]SQLModel, 0),
	}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

func (r *modelRegistry) RegisterIndex(idx IndexDefinition) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.indexes = append(r.indexes, idx)
}

func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *modelRegistry) Indexes() []IndexDefinition {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]IndexDefinition, len(r.indexes))
	copy(result, r.indexes)
	return result
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

// NewModelAdapter wraps a struct instance and priority into an SQLModel.
func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{
		instance: instance,
		priority: priority,
	}
}

func (a *ModelAdapter) Instance() interface{} {
	return a.instance
}

func (a *ModelAdapter) Priority() int {
	return a.priority
}

// RegisteredModel adds a model to the default registry.
func RegisteredModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisteredIndex adds an index to the default registry.
func RegisteredIndex(idx IndexDefinition) {
	defaultRegistry.RegisterIndex(idx)
}

// RegisteredIndexes returns indexes in registration order.
func RegisteredIndexes() []IndexDefinition {
	return defaultRegistry.Indexes()
}

// RegisteredModelInstances returns model instances sorted by priority.
func RegisteredModelInstances() []interface{} {
	models := defaultRegistry.Models()
	modelInstances := make([]interface{}, len(models))
	for i, model := range models {
		modelInstances[i] = model.Instance()
	}
	return modelInstances
}

func getModelName(model interface{}) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
