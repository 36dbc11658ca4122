package goid_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mana-battery/svcframework/internal/goid"
)

func TestCurrentIsStableWithinAGoroutine(t *testing.T) {
	a := goid.Current()
	b := goid.Current()
	assert.Equal(t, a, b)
}

func TestCurrentDiffersAcrossGoroutines(t *testing.T) {
	var wg sync.WaitGroup

	mine := goid.Current()
	other := make(chan int64, 1)

	wg.Add(1)

	go func() {
		defer wg.Done()

		other <- goid.Current()
	}()

	wg.Wait()

	assert.NotEqual(t, mine, <-other)
}
