package stats

// Accumulator 点分路径 -> 增量
type Accumulator map[string]int64

// Add 累加增量，零值不写入，累加后归零的路径被移除
func (a Accumulator) Add(path string, delta int64) {
	if delta == 0 {
		return
	}
	v := a[path] + delta
	if v == 0 {
		delete(a, path)
		return
	}
	a[path] = v
}

// Merge 将另一个累加器合并进来
func (a Accumulator) Merge(other Accumulator) {
	for path, delta := range other {
		a.Add(path, delta)
	}
}

func (a Accumulator) IsEmpty() bool {
	return len(a) == 0
}
