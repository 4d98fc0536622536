package testutil

import (
	"reflect"
	"runtime"
	"strings"
	"time"
)

func CompareWait(cmp func() bool, timeout time.Duration) bool {
	after := time.NewTimer(timeout)
	defer after.Stop()

	for {
		select {
		case <-after.C:
			return false
		default:
			if cmp() {
				return true
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func GetFunctionName(i interface{}) string {
	a := runtime.FuncForPC(reflect.ValueOf(i).Pointer()).Name()
	s := strings.Split(a, "/")
	return s[len(s)-1]
}
