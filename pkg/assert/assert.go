package assert

import (
	"fmt"
	"runtime"
)

// NotNil 对象为空时 panic，用于单例构造
func NotNil(v interface{}) {
	if v == nil {
		panic("assert: unexpected nil value")
	}
}

// NotCircular 调用方在当前调用栈中重复出现时 panic，
// 避免单例构造互相依赖导致 sync.Once 死锁
func NotCircular() {
	pcs := make([]uintptr, 64)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return
	}
	frames := runtime.CallersFrames(pcs[:n])
	first, more := frames.Next()
	for more {
		var f runtime.Frame
		f, more = frames.Next()
		if f.Function == first.Function {
			panic(fmt.Sprintf("assert: circular singleton construction in %s", first.Function))
		}
	}
}
