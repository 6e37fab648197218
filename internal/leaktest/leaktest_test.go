package leaktest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestOptionsStillCatchLeaks(t *testing.T) {
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-stop
	}()

	assert.Error(t, goleak.Find(Options()...), "an unrelated goroutine must still be reported")
	close(stop)
	<-done
}
