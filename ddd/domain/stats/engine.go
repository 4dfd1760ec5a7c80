// Package stats computes minimal counter increments between two snapshots
// of a tracked entity, across a general rollup and keyed dimensional rollups.
package stats

import "strings"

// Counter 一个被跟踪的计数；Value 对 nil 快照不会被调用
type Counter[S any] struct {
	Name  string
	Value func(s *S) int64
}

// PresenceCounter 字段存在记为 1
func PresenceCounter[S any](name string, present func(s *S) bool) Counter[S] {
	return Counter[S]{Name: name, Value: func(s *S) int64 {
		if present(s) {
			return 1
		}
		return 0
	}}
}

// CountCounter 以集合大小计数
func CountCounter[S any](name string, count func(s *S) int) Counter[S] {
	return Counter[S]{Name: name, Value: func(s *S) int64 { return int64(count(s)) }}
}

// Dimension 维度汇总，Field 为汇总字段名（如 universityStats），Key 取维度键，空串表示缺失
type Dimension[S any] struct {
	Field string
	Key   func(s *S) string
}

// DimensionContext 叶子模式下的目标桶
type DimensionContext struct {
	Field string
	Key   string
}

func (d DimensionContext) prefix() string {
	return d.Field + "." + d.Key
}

// Engine 通用汇总 + N 个维度汇总
type Engine[S any] struct {
	GeneralField string
	Counters     []Counter[S]
	Dimensions   []Dimension[S]
}

// ComputeDeltas 比较新旧快照，把增量写入 acc。任一侧可为 nil，视为没有任何计数。
// 只有顶层调用会下探维度，维度之间相互独立。
func (e *Engine[S]) ComputeDeltas(newState, oldState *S, acc Accumulator) {
	e.emit(e.generalField(), newState, oldState, acc)

	for _, dim := range e.Dimensions {
		newKey := dimensionKey(dim, newState)
		oldKey := dimensionKey(dim, oldState)

		if newKey == oldKey {
			if newKey != "" {
				e.ComputeLeaf(newState, oldState, acc, DimensionContext{Field: dim.Field, Key: newKey})
			}
			continue
		}
		// 维度值变化：从旧桶整体移出，再整体加入新桶
		if oldKey != "" {
			e.ComputeLeaf(nil, oldState, acc, DimensionContext{Field: dim.Field, Key: oldKey})
		}
		if newKey != "" {
			e.ComputeLeaf(newState, nil, acc, DimensionContext{Field: dim.Field, Key: newKey})
		}
	}
}

// ComputeLeaf 只在给定维度桶内比较计数，不再下探
func (e *Engine[S]) ComputeLeaf(newState, oldState *S, acc Accumulator, dc DimensionContext) {
	e.emit(dc.prefix(), newState, oldState, acc)
}

func (e *Engine[S]) emit(prefix string, newState, oldState *S, acc Accumulator) {
	for _, c := range e.Counters {
		acc.Add(prefix+"."+c.Name, value(c, newState)-value(c, oldState))
	}
}

func (e *Engine[S]) generalField() string {
	if e.GeneralField == "" {
		return "generalStats"
	}
	return e.GeneralField
}

func value[S any](c Counter[S], s *S) int64 {
	if s == nil {
		return 0
	}
	return c.Value(s)
}

func dimensionKey[S any](d Dimension[S], s *S) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(d.Key(s))
}
