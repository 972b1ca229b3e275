package harness

import (
	"sort"
	"sync"
)

// Variables are named string values that test cases save for later cases, such as the ID of
// an entity created by one case and read by the next.
type Variables struct {
	values map[string]string
	lock   sync.RWMutex
}

func NewVariables(initial map[string]string) *Variables {
	v := &Variables{values: make(map[string]string, len(initial))}
	for k, val := range initial {
		v.values[k] = val
	}
	return v
}

func (v *Variables) Get(name string) (string, bool) {
	v.lock.RLock()
	defer v.lock.RUnlock()
	val, ok := v.values[name]
	return val, ok
}

func (v *Variables) Set(name, value string) {
	v.lock.Lock()
	v.values[name] = value
	v.lock.Unlock()
}

// Names returns the defined variable names in sorted order.
func (v *Variables) Names() []string {
	v.lock.RLock()
	ret := make([]string, 0, len(v.values))
	for k := range v.values {
		ret = append(ret, k)
	}
	v.lock.RUnlock()
	sort.Strings(ret)
	return ret
}
